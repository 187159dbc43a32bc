// Package fluid turns viewport dependent token values into CSS clamp()
// expressions which scale linearly between two viewport widths.
package fluid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"dtc/token"
)

const (
	DefaultRootSize  = 16
	DefaultPrecision = 4
	DefaultUnit      = "rem"
	// MaxPrecision keeps rounding factor well inside float64 range.
	MaxPrecision = 10
)

type options struct {
	rootSize  float64
	precision int
	unit      string
}

// Option changes generator defaults.
type Option func(*options)

// WithRootSize sets number of pixels in one rem/em, used to express viewport
// widths in relative units.
func WithRootSize(px float64) Option {
	return func(o *options) {
		if px > 0 {
			o.rootSize = px
		}
	}
}

// WithPrecision sets number of decimal places generated numbers are rounded
// to, values outside 0..MaxPrecision are ignored.
func WithPrecision(places int) Option {
	return func(o *options) {
		if places >= 0 && places <= MaxPrecision {
			o.precision = places
		}
	}
}

// WithDefaultUnit sets unit used by records which do not specify any.
func WithDefaultUnit(unit string) Option {
	return func(o *options) {
		if unit != "" {
			o.unit = unit
		}
	}
}

// Generate resolves every fluid record of the store into clamp() expression
// and returns new store with the same names in the same order. Non fluid
// records are copied as is. Input store is never modified. Records without
// explicit bound viewports use vp.Min and vp.Max.
//
// All invalid records are reported together, in which case no store is
// returned.
func Generate(s *token.Store, vp token.Viewports, opts ...Option) (*token.Store, error) {
	o := options{rootSize: DefaultRootSize, precision: DefaultPrecision, unit: DefaultUnit}
	for _, opt := range opts {
		opt(&o)
	}

	in := s.Records()
	out := make([]token.Record, 0, len(in))

	var err error
	for _, r := range in {
		f, ok := r.Value.Fluid()
		if !ok {
			out = append(out, r)
			continue
		}
		expr, ferr := o.clamp(f, vp)
		if ferr != nil {
			err = multierr.Append(err, &token.InvalidFluidSpecError{Category: s.Category(), Name: r.Name, Reason: ferr.Error()})
			continue
		}
		out = append(out, token.Record{Name: r.Name, Value: token.Scalar(expr)})
	}
	if err != nil {
		return nil, err
	}
	return token.NewStore(s.Category(), out...)
}

// Resolve generates CSS expression for a single fluid specification.
func Resolve(f token.Fluid, vp token.Viewports, opts ...Option) (string, error) {
	o := options{rootSize: DefaultRootSize, precision: DefaultPrecision, unit: DefaultUnit}
	for _, opt := range opts {
		opt(&o)
	}
	return o.clamp(f, vp)
}

func (o *options) clamp(f token.Fluid, vp token.Viewports) (string, error) {
	unit, err := o.resolveUnit(f)
	if err != nil {
		return "", err
	}

	minVP, maxVP := f.Min.ViewportOf(float64(vp.Min)), f.Max.ViewportOf(float64(vp.Max))
	for _, n := range []float64{f.Min.Size, f.Max.Size, minVP, maxVP} {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("%v is not a finite number", n)
		}
	}
	if minVP <= 0 {
		return "", fmt.Errorf("min viewport (%v) must be positive", minVP)
	}
	if maxVP <= minVP {
		return "", fmt.Errorf("max viewport (%v) must be greater than min viewport (%v)", maxVP, minVP)
	}

	if f.Min.Size == f.Max.Size {
		return o.format(f.Min.Size) + unit, nil
	}

	// viewports are in pixels, express them in the value unit
	scale := 1.0
	if unit != "px" {
		scale = o.rootSize
	}
	minVP, maxVP = minVP/scale, maxVP/scale

	slope := (f.Max.Size - f.Min.Size) / (maxVP - minVP)
	intercept := f.Min.Size - slope*minVP
	coef := o.round(slope * 100)

	lo, hi := math.Min(f.Min.Size, f.Max.Size), math.Max(f.Min.Size, f.Max.Size)

	var b strings.Builder
	b.WriteString("clamp(")
	b.WriteString(o.format(lo) + unit)
	b.WriteString(", ")
	b.WriteString(o.format(intercept) + unit)
	if coef < 0 {
		b.WriteString(" - " + o.format(-coef) + "vw")
	} else {
		b.WriteString(" + " + o.format(coef) + "vw")
	}
	b.WriteString(", ")
	b.WriteString(o.format(hi) + unit)
	b.WriteString(")")
	return b.String(), nil
}

func (o *options) resolveUnit(f token.Fluid) (string, error) {
	unit := ""
	for _, u := range []string{f.Unit, f.Min.Unit, f.Max.Unit} {
		u = strings.ToLower(strings.TrimSpace(u))
		if u == "" {
			continue
		}
		if unit != "" && u != unit {
			return "", fmt.Errorf("units do not match: %q and %q", unit, u)
		}
		unit = u
	}
	if unit == "" {
		unit = o.unit
	}
	switch unit {
	case "px", "rem", "em":
		return unit, nil
	default:
		return "", fmt.Errorf("unsupported unit %q", unit)
	}
}

func (o *options) round(n float64) float64 {
	p := math.Pow(10, float64(o.precision))
	r := math.Round(n*p) / p
	if r == 0 {
		// no "-0" in generated CSS
		return 0
	}
	return r
}

func (o *options) format(n float64) string {
	return strconv.FormatFloat(o.round(n), 'f', -1, 64)
}
