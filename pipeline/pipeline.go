// Package pipeline wires token loading, fluid value generation, theme mapping
// and assembly, and CSS synthesis into a single run.
package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"dtc/css"
	"dtc/fluid"
	"dtc/synth"
	"dtc/theme"
	"dtc/token"
)

// Result of successful run.
type Result struct {
	Viewports  token.Viewports
	Theme      *theme.Theme
	Stylesheet *css.Stylesheet
	// Warnings are conditions worth reporting which did not stop the run,
	// token.MissingCategoryError for now.
	Warnings []error
}

// Run processes token files from fsys. Any error aborts the run, no partial
// theme is ever returned.
func Run(ctx context.Context, fsys fs.FS, opts Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("pipeline")
	start := time.Now()

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("bad pipeline options: %w", err)
	}

	loader := token.NewLoader(fsys, log)

	vp := opts.Viewports
	if opts.ViewportsFile != "" {
		var err error
		if vp, err = loader.LoadViewports(opts.ViewportsFile); err != nil {
			return nil, err
		}
	}

	stores, err := load(loader, opts.Categories, log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stores, err = generate(stores, opts, vp)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	th, err := assemble(stores, opts.Categories, vp, log)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := synth.New(opts.Tables, log)
	if err := s.SetBanner(opts.Banner); err != nil {
		return nil, err
	}

	warnings, err := validate(th, s, log)
	if err != nil {
		return nil, err
	}

	sheet, err := s.Synthesize(th, synth.BannerValues{App: opts.App, Version: opts.Version})
	if err != nil {
		return nil, err
	}
	if err := verify(sheet, log); err != nil {
		return nil, err
	}

	log.Debug("Pipeline finished",
		zap.Int("categories", len(th.Categories())),
		zap.Int("declarations", sheet.DeclarationCount()),
		zap.Int("warnings", len(warnings)),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Viewports: vp, Theme: th, Stylesheet: sheet, Warnings: warnings}, nil
}

type loaded struct {
	category Category
	store    *token.Store
}

// load reads every category, reporting all loading problems at once.
// Categories without files are left out.
func load(loader *token.Loader, categories []Category, log *zap.Logger) ([]loaded, error) {
	var (
		res []loaded
		err error
	)
	for _, c := range categories {
		s, lerr := loader.Load(c.Name, c.Files)
		if lerr != nil {
			err = multierr.Append(err, fmt.Errorf("category %s: %w", c.Name, lerr))
			continue
		}
		if s == nil {
			log.Info("No token files for category", zap.String("category", c.Name), zap.String("files", c.Files))
			continue
		}
		res = append(res, loaded{category: c, store: s})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func generate(stores []loaded, opts Options, vp token.Viewports) ([]loaded, error) {
	var err error
	res := make([]loaded, 0, len(stores))
	for _, l := range stores {
		if !l.category.Fluid {
			res = append(res, l)
			continue
		}
		s, gerr := fluid.Generate(l.store, vp, opts.fluidOptions()...)
		if gerr != nil {
			err = multierr.Append(err, gerr)
			continue
		}
		res = append(res, loaded{category: l.category, store: s})
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func assemble(stores []loaded, categories []Category, vp token.Viewports, log *zap.Logger) (*theme.Theme, error) {
	m := theme.NewMapper(log)
	for _, c := range categories {
		// names were checked by Options.Validate
		t, _ := theme.TransformByName(c.Transform)
		m.Register(c.Name, t)
	}

	var err error
	entries := make([]theme.Entry, 0, len(stores))
	for _, l := range stores {
		g, merr := m.Map(l.category.Name, l.store)
		if merr != nil {
			err = multierr.Append(err, merr)
			continue
		}
		entries = append(entries, theme.Entry{Category: l.category.Name, Group: g})
	}
	if err != nil {
		return nil, err
	}
	return theme.Assemble(vp, entries...)
}
