package synth

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"dtc/css"
	"dtc/theme"
)

// PropertyGroup exposes every key of a theme category as custom property
// "--<Prefix>-<key>" under :root.
type PropertyGroup struct {
	Category string `yaml:"category" validate:"required"`
	Prefix   string `yaml:"prefix" validate:"required"`
}

// UtilityGroup exposes every key of a theme category as single purpose class
// ".<Prefix>-<key>" setting Property.
type UtilityGroup struct {
	Category string `yaml:"category" validate:"required"`
	Prefix   string `yaml:"prefix" validate:"required"`
	Property string `yaml:"property" validate:"required"`
}

// Tables is static synthesis configuration.
type Tables struct {
	Properties []PropertyGroup `yaml:"properties" validate:"dive"`
	Utilities  []UtilityGroup  `yaml:"utilities" validate:"dive"`
}

// DefaultTables returns tables used when configuration does not provide any.
func DefaultTables() Tables {
	return Tables{
		Properties: []PropertyGroup{
			{Category: theme.Colors, Prefix: "color"},
			{Category: theme.Spacing, Prefix: "space"},
			{Category: theme.FontSize, Prefix: "size"},
			{Category: theme.LineHeight, Prefix: "leading"},
			{Category: theme.FontFamily, Prefix: "font"},
			{Category: theme.FontWeight, Prefix: "font"},
		},
		Utilities: []UtilityGroup{
			{Category: theme.Spacing, Prefix: "flow-space", Property: "--flow-space"},
			{Category: theme.Spacing, Prefix: "region-space", Property: "--region-space"},
			{Category: theme.Spacing, Prefix: "gutter", Property: "--gutter"},
		},
	}
}

// Categories returns every category tables reference, in table order without
// repetitions.
func (t Tables) Categories() []string {
	seen := make(map[string]struct{})
	var res []string
	add := func(c string) {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			res = append(res, c)
		}
	}
	for _, p := range t.Properties {
		add(p.Category)
	}
	for _, u := range t.Utilities {
		add(u.Category)
	}
	return res
}

// Validate checks that every prefix and property could be used to build
// CSS identifiers.
func (t Tables) Validate() (err error) {
	for i, p := range t.Properties {
		if p.Category == "" {
			err = multierr.Append(err, fmt.Errorf("property group %d: empty category", i))
		}
		if !css.IsIdent(p.Prefix) {
			err = multierr.Append(err, fmt.Errorf("property group %d (%s): prefix %q is not a valid identifier", i, p.Category, p.Prefix))
		}
	}
	for i, u := range t.Utilities {
		if u.Category == "" {
			err = multierr.Append(err, fmt.Errorf("utility group %d: empty category", i))
		}
		if !css.IsIdent(u.Prefix) {
			err = multierr.Append(err, fmt.Errorf("utility group %d (%s): prefix %q is not a valid identifier", i, u.Category, u.Prefix))
		}
		if !css.IsPropertyName(u.Property) {
			err = multierr.Append(err, fmt.Errorf("utility group %d (%s): property %q is not a valid identifier", i, u.Category, u.Property))
		}
	}
	if len(t.Properties) == 0 && len(t.Utilities) == 0 {
		err = multierr.Append(err, errors.New("nothing to synthesize, both tables are empty"))
	}
	return err
}
