package token_test

import (
	"errors"
	"testing"

	"dtc/token"
)

func TestDecode_ItemsLayout(t *testing.T) {
	data := []byte(`{
  "title": "Colors",
  "items": [
    {"name": "Dark", "value": "#1a1a1a"},
    {"name": "Light", "value": "#fafafa"}
  ]
}`)

	s, err := token.Decode("colors", data, token.FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	recs := s.Records()
	if recs[0].Name != "Dark" || recs[0].Value.String() != "#1a1a1a" {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[1].Name != "Light" {
		t.Errorf("records are out of order: %+v", recs)
	}
}

func TestDecode_ValueShapes(t *testing.T) {
	data := []byte(`
- name: Base
  value: [Inter, "Segoe UI", sans-serif]
- name: Regular
  value: 400
- name: Tight
  value: 1.1
- name: Heading
  value:
    name: Georgia
    weight: 700
- name: lg
  value:
    min: {size: 1, viewport: 400}
    max: {size: 2, viewport: 1200}
    unit: rem
- name: xl
  min: 24
  max: 32
`)

	s, err := token.Decode("mixed", data, token.FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	base, _ := s.Get("Base")
	if base.Value.Kind() != token.KindList {
		t.Fatalf("Base kind = %v, want list", base.Value.Kind())
	}
	if got := base.Value.List(); len(got) != 3 || got[1] != "Segoe UI" {
		t.Errorf("Base list = %v", got)
	}

	regular, _ := s.Get("Regular")
	if regular.Value.String() != "400" {
		t.Errorf("Regular = %q, want 400", regular.Value.String())
	}

	tight, _ := s.Get("Tight")
	if tight.Value.String() != "1.1" {
		t.Errorf("Tight = %q, want 1.1", tight.Value.String())
	}

	heading, _ := s.Get("Heading")
	if heading.Value.Kind() != token.KindStruct {
		t.Fatalf("Heading kind = %v, want struct", heading.Value.Kind())
	}
	if w, ok := heading.Value.Field("weight"); !ok || w != "700" {
		t.Errorf("Heading weight = %q, %v", w, ok)
	}

	lg, _ := s.Get("lg")
	f, ok := lg.Value.Fluid()
	if !ok {
		t.Fatalf("lg is not fluid: %v", lg.Value.Kind())
	}
	want := token.Fluid{
		Min:  token.Bound{Size: 1, Viewport: 400, ViewportSet: true},
		Max:  token.Bound{Size: 2, Viewport: 1200, ViewportSet: true},
		Unit: "rem",
	}
	if f != want {
		t.Errorf("lg = %+v, want %+v", f, want)
	}

	xl, _ := s.Get("xl")
	f, ok = xl.Value.Fluid()
	if !ok {
		t.Fatalf("xl shorthand is not fluid")
	}
	if f.Min.Size != 24 || f.Max.Size != 32 || f.Min.ViewportSet {
		t.Errorf("xl = %+v", f)
	}
}

func TestDecode_TOML(t *testing.T) {
	data := []byte(`
[[items]]
name = "s"
value = "0.5rem"

[[items]]
name = "m"
[items.value]
unit = "px"
[items.value.min]
size = 16
[items.value.max]
size = 24
`)

	s, err := token.Decode("spacing", data, token.FormatTOML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m, ok := s.Get("m")
	if !ok {
		t.Fatal("record m not found")
	}
	f, ok := m.Value.Fluid()
	if !ok || f.Unit != "px" || f.Max.Size != 24 {
		t.Errorf("m = %+v (fluid %v)", f, ok)
	}
}

func TestDecode_DuplicateNames(t *testing.T) {
	data := []byte(`[{"name":"a","value":"1"},{"name":"a","value":"2"}]`)

	_, err := token.Decode("spacing", data, token.FormatJSON)
	var dup *token.DuplicateTokenNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateTokenNameError, got %v", err)
	}
	if dup.Key != "a" || dup.Category != "spacing" {
		t.Errorf("unexpected error details: %+v", dup)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format token.Format
	}{
		{"no items", `{"title": "x"}`, token.FormatJSON},
		{"items not list", `{"items": 1}`, token.FormatJSON},
		{"record not object", `["a"]`, token.FormatJSON},
		{"no name", `[{"value": "1"}]`, token.FormatJSON},
		{"no value", `[{"name": "a"}]`, token.FormatJSON},
		{"bool value", `[{"name": "a", "value": true}]`, token.FormatJSON},
		{"bad bound", `[{"name": "a", "value": {"min": "x", "max": 2}}]`, token.FormatJSON},
		{"bound without size", `[{"name": "a", "value": {"min": {"viewport": 1}, "max": 2}}]`, token.FormatJSON},
		{"broken json", `[{"name": `, token.FormatJSON},
		{"unknown format", `[]`, token.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := token.Decode("c", []byte(tt.data), tt.format); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]token.Format{
		"colors.json":      token.FormatJSON,
		"a/b/spacing.YAML": token.FormatYAML,
		"fonts.yml":        token.FormatYAML,
		"sizes.toml":       token.FormatTOML,
		"readme.md":        token.FormatUnknown,
	}
	for path, want := range tests {
		if got := token.FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %v, want %v", path, got, want)
		}
	}
}
