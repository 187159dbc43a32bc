package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"dtc/fluid"
	"dtc/synth"
	"dtc/theme"
	"dtc/token"
)

// Category describes where tokens of a single theme category come from and
// how they are processed.
type Category struct {
	Name      string // theme category, "spacing"
	Files     string // doublestar pattern relative to tokens root
	Fluid     bool   // resolve fluid specifications
	Transform string // theme.TransformByName
}

// Options drive a single pipeline run.
type Options struct {
	Viewports token.Viewports
	// ViewportsFile, when set, is read from tokens root and replaces
	// Viewports.
	ViewportsFile string
	Categories    []Category

	RootFontSize float64
	Precision    int
	DefaultUnit  string

	Tables synth.Tables
	Banner string

	// App and Version are passed to banner template.
	App     string
	Version string
}

// DefaultCategories lists token files in the layout design token projects
// usually have.
func DefaultCategories() []Category {
	return []Category{
		{Name: theme.Colors, Files: "colors.{json,yaml,yml,toml}", Transform: "slug"},
		{Name: theme.Spacing, Files: "spacing.{json,yaml,yml,toml}", Fluid: true, Transform: "slug"},
		{Name: theme.FontSize, Files: "text-sizes.{json,yaml,yml,toml}", Fluid: true, Transform: "slug"},
		{Name: theme.LineHeight, Files: "text-leading.{json,yaml,yml,toml}", Transform: "slug"},
		{Name: theme.FontFamily, Files: "fonts.{json,yaml,yml,toml}", Transform: "font-family"},
		{Name: theme.FontWeight, Files: "text-weights.{json,yaml,yml,toml}", Transform: "font-weight"},
	}
}

// DefaultOptions returns options matching default configuration.
func DefaultOptions() Options {
	return Options{
		Viewports:    token.Viewports{Min: 320, Mid: 768, Max: 1440},
		Categories:   DefaultCategories(),
		RootFontSize: fluid.DefaultRootSize,
		Precision:    fluid.DefaultPrecision,
		DefaultUnit:  fluid.DefaultUnit,
		Tables:       synth.DefaultTables(),
	}
}

// Validate checks options which do not depend on token files.
func (o *Options) Validate() (err error) {
	if o.ViewportsFile == "" {
		err = multierr.Append(err, o.Viewports.Validate())
	}
	if len(o.Categories) == 0 {
		err = multierr.Append(err, errors.New("no token categories configured"))
	}
	seen := make(map[string]struct{}, len(o.Categories))
	for i, c := range o.Categories {
		if c.Name == "" {
			err = multierr.Append(err, fmt.Errorf("category %d has no name", i))
			continue
		}
		if _, ok := seen[c.Name]; ok {
			err = multierr.Append(err, fmt.Errorf("category %q configured more than once", c.Name))
		}
		seen[c.Name] = struct{}{}
		if c.Files == "" {
			err = multierr.Append(err, fmt.Errorf("category %q has no files pattern", c.Name))
		}
		if _, terr := theme.TransformByName(c.Transform); terr != nil {
			err = multierr.Append(err, fmt.Errorf("category %q: %w", c.Name, terr))
		}
	}
	if o.RootFontSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("root font size must be positive, got %v", o.RootFontSize))
	}
	if o.Precision < 0 || o.Precision > fluid.MaxPrecision {
		err = multierr.Append(err, fmt.Errorf("precision must be between 0 and %d, got %d", fluid.MaxPrecision, o.Precision))
	}
	switch o.DefaultUnit {
	case "px", "rem", "em":
	default:
		err = multierr.Append(err, fmt.Errorf("unsupported default fluid unit %q", o.DefaultUnit))
	}
	return multierr.Append(err, o.Tables.Validate())
}

func (o *Options) fluidOptions() []fluid.Option {
	return []fluid.Option{
		fluid.WithRootSize(o.RootFontSize),
		fluid.WithPrecision(o.Precision),
		fluid.WithDefaultUnit(o.DefaultUnit),
	}
}
