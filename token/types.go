// Package token defines design token records and stores, their decoding from
// definition files and the error kinds shared by the transformation pipeline.
package token

import (
	"slices"
)

// Kind tells how the value of a record should be interpreted.
type Kind int

const (
	KindScalar Kind = iota // plain CSS value
	KindList               // ordered list of values, e.g. font stack
	KindStruct             // named fields, e.g. {name, weight}
	KindFluid              // viewport interpolated size
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindStruct:
		return "struct"
	case KindFluid:
		return "fluid"
	default:
		return "unknown"
	}
}

// Bound is one end of a fluid value: the size a token should have at a
// given viewport width. Bound without viewport uses the process wide
// breakpoint instead, see ViewportOf.
type Bound struct {
	Size     float64
	Viewport float64
	Unit     string
	// ViewportSet marks Viewport given explicitly even when it is zero.
	ViewportSet bool
}

// ViewportOf returns bound viewport when one was given, fallback otherwise.
func (b Bound) ViewportOf(fallback float64) float64 {
	if b.ViewportSet || b.Viewport != 0 {
		return b.Viewport
	}
	return fallback
}

// Fluid describes a value that equals Min.Size at Min.Viewport and Max.Size
// at Max.Viewport, linearly interpolated in between.
type Fluid struct {
	Min  Bound
	Max  Bound
	Unit string
}

// Field is a single named member of a structured value.
type Field struct {
	Name  string
	Value string
}

// Value holds one of the supported token value shapes. Zero value is an
// empty scalar.
type Value struct {
	kind   Kind
	scalar string
	list   []string
	fields []Field
	fluid  Fluid
}

// Scalar returns value holding plain CSS text.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns value holding ordered list of CSS values.
func List(items ...string) Value {
	return Value{kind: KindList, list: slices.Clone(items)}
}

// Struct returns structured value. Fields keep the order they were given in.
func Struct(fields ...Field) Value {
	return Value{kind: KindStruct, fields: slices.Clone(fields)}
}

// FluidValue returns value which has to be resolved by fluid generator before
// it could be used in theme.
func FluidValue(f Fluid) Value {
	return Value{kind: KindFluid, fluid: f}
}

func (v Value) Kind() Kind {
	return v.kind
}

// String returns scalar text. For other kinds it returns empty string.
func (v Value) String() string {
	return v.scalar
}

// List returns copy of list items.
func (v Value) List() []string {
	return slices.Clone(v.list)
}

// Fields returns copy of structure fields.
func (v Value) Fields() []Field {
	return slices.Clone(v.fields)
}

// Field looks up structure field by name.
func (v Value) Field(name string) (string, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fluid returns fluid specification if value is fluid.
func (v Value) Fluid() (Fluid, bool) {
	if v.kind != KindFluid {
		return Fluid{}, false
	}
	return v.fluid, true
}

// IsResolved reports whether value no longer needs fluid generation.
func (v Value) IsResolved() bool {
	return v.kind != KindFluid
}

// Equal reports whether two values are identical.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == o.scalar
	case KindList:
		return slices.Equal(v.list, o.list)
	case KindStruct:
		return slices.Equal(v.fields, o.fields)
	case KindFluid:
		return v.fluid == o.fluid
	}
	return false
}

// Record is a single named design token.
type Record struct {
	Name  string
	Value Value
}

// Source is anything which could be walked as an ordered list of records:
// token stores as well as already mapped theme groups.
type Source interface {
	Records() []Record
}
