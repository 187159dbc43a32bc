// Package theme maps resolved design tokens into flat theme groups and
// assembles them into a theme with screens and derived groups.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/bytedance/sonic"
	yaml "gopkg.in/yaml.v3"

	"dtc/token"
)

// Token categories known to the assembler.
const (
	Colors     = "colors"
	Spacing    = "spacing"
	FontSize   = "fontSize"
	LineHeight = "lineHeight"
	FontFamily = "fontFamily"
	FontWeight = "fontWeight"

	Screens         = "screens"
	BackgroundColor = "backgroundColor"
	TextColor       = "textColor"
	Margin          = "margin"
	Padding         = "padding"
)

// Entry is a mapped group ready for assembly.
type Entry struct {
	Category string
	Group    *Group
}

// Theme is assembled, read only set of groups.
type Theme struct {
	order  []string
	groups map[string]*Group
}

// Assemble builds theme from viewport breakpoints and mapped groups. Groups
// are kept in the order given, screens go first and derived groups last:
// backgroundColor and textColor repeat colors, padding repeats spacing and
// margin is spacing with additional "auto" key in front.
func Assemble(vp token.Viewports, entries ...Entry) (*Theme, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	t := &Theme{groups: make(map[string]*Group)}

	screens := NewGroup()
	screens.Set("sm", strconv.Itoa(vp.Min)+"px")
	screens.Set("md", strconv.Itoa(vp.Mid)+"px")
	screens.Set("lg", strconv.Itoa(vp.Max)+"px")
	t.add(Screens, screens)

	for _, e := range entries {
		if e.Group == nil {
			return nil, fmt.Errorf("category %q has no group", e.Category)
		}
		if e.Category == "" {
			return nil, errors.New("group without category")
		}
		if _, exists := t.groups[e.Category]; exists {
			return nil, fmt.Errorf("category %q is assembled twice", e.Category)
		}
		t.add(e.Category, e.Group.Clone())
	}

	if colors, ok := t.groups[Colors]; ok {
		t.derive(BackgroundColor, colors.Clone())
		t.derive(TextColor, colors.Clone())
	}
	if spacing, ok := t.groups[Spacing]; ok {
		margin := NewGroup()
		margin.Set("auto", "auto")
		for k, v := range spacing.All() {
			// spacing may define its own "auto", position stays in front
			if !margin.Set(k, v) {
				margin.values[k] = v
			}
		}
		t.derive(Margin, margin)
		t.derive(Padding, spacing.Clone())
	}
	return t, nil
}

func (t *Theme) add(category string, g *Group) {
	t.order = append(t.order, category)
	t.groups[category] = g
}

// derive adds computed group unless token files already provided one.
func (t *Theme) derive(category string, g *Group) {
	if _, exists := t.groups[category]; exists {
		return
	}
	t.add(category, g)
}

// Lookup returns copy of the group for category.
func (t *Theme) Lookup(category string) (*Group, error) {
	g, ok := t.groups[category]
	if !ok {
		return nil, &token.MissingCategoryError{Category: category}
	}
	return g.Clone(), nil
}

// Has reports whether theme has group for category.
func (t *Theme) Has(category string) bool {
	_, ok := t.groups[category]
	return ok
}

// Categories returns category names in theme order.
func (t *Theme) Categories() []string {
	return slices.Clone(t.order)
}

// MarshalJSON writes categories in theme order.
func (t *Theme) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := sonic.Marshal(c)
		if err != nil {
			return nil, err
		}
		gb, err := t.groups[c].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(gb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes categories in theme order.
func (t *Theme) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range t.order {
		gn, err := t.groups[c].MarshalYAML()
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}, gn.(*yaml.Node))
	}
	return n, nil
}
