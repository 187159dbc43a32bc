package pipeline

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dtc/css"
	"dtc/synth"
	"dtc/theme"
)

// validate checks assembled theme before anything is synthesized from it.
// Every value must be usable as CSS declaration value and every generated
// name must be an identifier. Table categories absent from theme are
// returned as warnings.
func validate(th *theme.Theme, s *synth.Synthesizer, log *zap.Logger) ([]error, error) {
	var err error
	for _, c := range th.Categories() {
		g, _ := th.Lookup(c)
		for k, v := range g.All() {
			val, verr := css.ParseValue(v)
			if verr != nil {
				err = multierr.Append(err, fmt.Errorf("%s.%s: bad CSS value: %w", c, k, verr))
				continue
			}
			if verr := checkKind(c, val); verr != nil {
				err = multierr.Append(err, fmt.Errorf("%s.%s: %w", c, k, verr))
			}
		}
	}

	tables := s.Tables()
	for _, p := range tables.Properties {
		err = multierr.Append(err, checkNames(th, p.Category, p.Prefix))
	}
	for _, u := range tables.Utilities {
		err = multierr.Append(err, checkNames(th, u.Category, u.Prefix))
	}
	if err != nil {
		return nil, err
	}

	warnings := s.Missing(th)
	for _, w := range warnings {
		log.Warn("Theme is incomplete", zap.Error(w))
	}
	return warnings, nil
}

var fontWeightKeywords = []string{"normal", "bold", "bolder", "lighter", "inherit", "initial", "revert", "unset"}

// checkKind rejects values which lex fine but cannot work for category.
// Derived categories repeat source values and are checked through them.
func checkKind(category string, v css.Value) error {
	switch category {
	case theme.Spacing, theme.FontSize:
		if v.IsNumeric() && v.Unit == "" && v.Value != 0 {
			return fmt.Errorf("length %s has no unit", v.Raw)
		}
	case theme.LineHeight:
		if v.IsNumeric() && v.Value < 0 {
			return fmt.Errorf("line height %s is negative", v.Raw)
		}
	case theme.FontWeight:
		if v.IsNumeric() && (v.Unit != "" || v.Value < 1 || v.Value > 1000) {
			return fmt.Errorf("font weight %s is not a number between 1 and 1000", v.Raw)
		}
		if v.IsKeyword() && css.IsIdent(v.Raw) && !slices.Contains(fontWeightKeywords, v.Keyword) {
			return fmt.Errorf("unknown font weight %q", v.Raw)
		}
	}
	return nil
}

func checkNames(th *theme.Theme, category, prefix string) (err error) {
	if !th.Has(category) {
		return nil
	}
	g, _ := th.Lookup(category)
	for _, k := range g.Keys() {
		if name := prefix + "-" + k; !css.IsIdent(name) {
			err = multierr.Append(err, fmt.Errorf("%s.%s: %q is not a valid CSS identifier", category, k, name))
		}
	}
	return err
}

// verify parses synthesized stylesheet back and makes sure every declaration
// survived serialization.
func verify(sheet *css.Stylesheet, log *zap.Logger) error {
	parsed := css.NewParser(log).Parse([]byte(sheet.String()), "synthesized")
	if len(parsed.Warnings) > 0 {
		return fmt.Errorf("synthesized stylesheet does not parse cleanly: %v", parsed.Warnings)
	}

	want, got := sheet.Rules(), parsed.Rules()
	if len(want) != len(got) {
		return fmt.Errorf("synthesized stylesheet has %d rules, %d parsed back", len(want), len(got))
	}
	for i := range want {
		if want[i].Selector != got[i].Selector {
			return fmt.Errorf("rule %d: selector %q parsed back as %q", i, want[i].Selector, got[i].Selector)
		}
		if len(want[i].Declarations) != len(got[i].Declarations) {
			return fmt.Errorf("rule %q: %d declarations, %d parsed back", want[i].Selector, len(want[i].Declarations), len(got[i].Declarations))
		}
		for j, d := range want[i].Declarations {
			p := got[i].Declarations[j]
			if d.Property != p.Property || css.Normalize(d.Value.Raw) != css.Normalize(p.Value.Raw) {
				return fmt.Errorf("rule %q: declaration %s: %s parsed back as %s: %s",
					want[i].Selector, d.Property, d.Value.Raw, p.Property, p.Value.Raw)
			}
		}
	}
	return nil
}
