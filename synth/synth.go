// Package synth turns assembled theme into CSS custom properties and utility
// classes.
package synth

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/zap"

	"dtc/css"
	"dtc/theme"
	"dtc/token"
)

// Lookup gives access to theme groups by category.
type Lookup interface {
	Lookup(category string) (*theme.Group, error)
}

// BannerValues holds variables available for banner template expansion.
type BannerValues struct {
	App        string
	Version    string
	Categories []string
	Properties int
	Utilities  int
}

// Synthesizer emits declarations described by its tables.
type Synthesizer struct {
	tables Tables
	banner *template.Template
	log    *zap.Logger
}

// New creates synthesizer for tables.
func New(tables Tables, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{tables: tables, log: log.Named("synth")}
}

// Tables returns tables synthesizer was created with.
func (s *Synthesizer) Tables() Tables {
	return s.tables
}

// SetBanner parses text as banner template. Empty text removes banner.
func (s *Synthesizer) SetBanner(text string) error {
	if strings.TrimSpace(text) == "" {
		s.banner = nil
		return nil
	}
	tmpl, err := template.New("banner").Funcs(sprig.FuncMap()).Parse(text)
	if err != nil {
		return fmt.Errorf("unable to parse banner template: %w", err)
	}
	s.banner = tmpl
	return nil
}

// Missing returns MissingCategoryError for every table category absent from
// th. Synthesis silently skips such categories.
func (s *Synthesizer) Missing(th Lookup) []error {
	var res []error
	for _, c := range s.tables.Categories() {
		if _, err := th.Lookup(c); err != nil {
			res = append(res, err)
		}
	}
	return res
}

// Synthesize builds stylesheet: optional banner, single :root rule with all
// custom properties, then utility classes in table order.
func (s *Synthesizer) Synthesize(th Lookup, values BannerValues) (*css.Stylesheet, error) {
	sheet := &css.Stylesheet{}

	root := css.Rule{Selector: ":root"}
	seen := make(map[string]string)
	var categories []string
	for _, p := range s.tables.Properties {
		g, err := s.lookup(th, p.Category)
		if err != nil {
			return nil, err
		}
		if g == nil {
			continue
		}
		categories = append(categories, p.Category)
		for k, v := range g.All() {
			name := "--" + p.Prefix + "-" + k
			if prev, ok := seen[name]; ok {
				s.log.Warn("Custom property declared more than once, last declaration wins",
					zap.String("property", name), zap.String("first", prev), zap.String("category", p.Category))
			}
			seen[name] = p.Category
			root.Add(name, css.Value{Raw: v})
		}
	}

	var utilities []css.Rule
	for _, u := range s.tables.Utilities {
		g, err := s.lookup(th, u.Category)
		if err != nil {
			return nil, err
		}
		if g == nil {
			continue
		}
		categories = append(categories, u.Category)
		for k, v := range g.All() {
			r := css.Rule{Selector: "." + u.Prefix + "-" + k}
			r.Add(u.Property, css.Value{Raw: v})
			utilities = append(utilities, r)
		}
	}

	if s.banner != nil {
		values.Categories = dedup(categories)
		values.Properties = len(root.Declarations)
		values.Utilities = len(utilities)
		text, err := s.expand(values)
		if err != nil {
			return nil, err
		}
		if text != "" {
			sheet.AddComment(text)
		}
	}
	if len(root.Declarations) > 0 {
		sheet.AddRule(root)
	}
	for _, r := range utilities {
		sheet.AddRule(r)
	}

	s.log.Debug("Stylesheet synthesized",
		zap.Int("properties", len(root.Declarations)), zap.Int("utilities", len(utilities)))
	return sheet, nil
}

// lookup returns nil group without error for absent category.
func (s *Synthesizer) lookup(th Lookup, category string) (*theme.Group, error) {
	g, err := th.Lookup(category)
	if err == nil {
		return g, nil
	}
	var missing *token.MissingCategoryError
	if errors.As(err, &missing) {
		s.log.Debug("Skipping absent category", zap.String("category", category))
		return nil, nil
	}
	return nil, fmt.Errorf("unable to synthesize %s: %w", category, err)
}

func (s *Synthesizer) expand(values BannerValues) (string, error) {
	buf := new(bytes.Buffer)
	if err := s.banner.Execute(buf, values); err != nil {
		return "", fmt.Errorf("unable to expand banner template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	res := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			res = append(res, s)
		}
	}
	return res
}
