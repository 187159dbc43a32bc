package token

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Format is encoding of token definition file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFromPath detects file format by extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// Decode parses token definition document into a store. Document is either
// an object with "items" list (the layout design token files traditionally
// use) or a bare list of records. Every record has "name" and "value", fluid
// records may put "min"/"max" directly into record instead of "value".
func Decode(category string, data []byte, format Format) (*Store, error) {
	records, err := decodeRecords(data, format)
	if err != nil {
		return nil, err
	}
	return NewStore(category, records...)
}

func decodeRecords(data []byte, format Format) ([]Record, error) {
	var (
		doc any
		err error
	)
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported token file format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s document: %w", format, err)
	}

	var items []any
	switch d := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		items = d
	case map[string]any:
		raw, ok := d["items"]
		if !ok {
			return nil, errors.New(`token document has no "items" list`)
		}
		if items, ok = raw.([]any); !ok {
			return nil, fmt.Errorf(`"items" must be a list, got %T`, raw)
		}
	default:
		return nil, fmt.Errorf("unexpected token document of type %T", doc)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		r, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(item any) (Record, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return Record{}, fmt.Errorf("record must be an object, got %T", item)
	}
	name, ok := m["name"].(string)
	if !ok {
		return Record{}, errors.New(`record has no string "name"`)
	}

	raw, haveValue := m["value"]
	_, haveMin := m["min"]
	_, haveMax := m["max"]
	if !haveValue {
		if !haveMin || !haveMax {
			return Record{}, fmt.Errorf("token %q has no value", name)
		}
		// fluid shorthand: bounds and unit live in the record itself
		raw = m
	}

	v, err := decodeValue(raw)
	if err != nil {
		return Record{}, fmt.Errorf("token %q: %w", name, err)
	}
	return Record{Name: name, Value: v}, nil
}

func decodeValue(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return Scalar(v), nil
	case []any:
		items := make([]string, 0, len(v))
		for i, e := range v {
			s, err := scalarText(e)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return List(items...), nil
	case map[string]any:
		_, haveMin := v["min"]
		_, haveMax := v["max"]
		if haveMin && haveMax {
			f, err := decodeFluid(v)
			if err != nil {
				return Value{}, err
			}
			return FluidValue(f), nil
		}
		names := make([]string, 0, len(v))
		for n := range v {
			names = append(names, n)
		}
		slices.Sort(names)
		fields := make([]Field, 0, len(names))
		for _, n := range names {
			s, err := scalarText(v[n])
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", n, err)
			}
			fields = append(fields, Field{Name: n, Value: s})
		}
		return Struct(fields...), nil
	default:
		s, err := scalarText(raw)
		if err != nil {
			return Value{}, err
		}
		return Scalar(s), nil
	}
}

func decodeFluid(m map[string]any) (Fluid, error) {
	var (
		f   Fluid
		err error
	)
	if f.Min, err = decodeBound(m["min"]); err != nil {
		return Fluid{}, fmt.Errorf("min: %w", err)
	}
	if f.Max, err = decodeBound(m["max"]); err != nil {
		return Fluid{}, fmt.Errorf("max: %w", err)
	}
	if u, ok := m["unit"]; ok {
		if f.Unit, ok = u.(string); !ok {
			return Fluid{}, fmt.Errorf("unit must be a string, got %T", u)
		}
	}
	return f, nil
}

func decodeBound(raw any) (Bound, error) {
	if n, ok := number(raw); ok {
		return Bound{Size: n}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return Bound{}, fmt.Errorf("bound must be a number or an object, got %T", raw)
	}

	var b Bound
	if b.Size, ok = number(m["size"]); !ok {
		return Bound{}, errors.New(`bound has no numeric "size"`)
	}
	if vp, present := m["viewport"]; present {
		if b.Viewport, ok = number(vp); !ok {
			return Bound{}, fmt.Errorf("viewport must be a number, got %T", vp)
		}
		b.ViewportSet = true
	}
	if u, present := m["unit"]; present {
		if b.Unit, ok = u.(string); !ok {
			return Bound{}, fmt.Errorf("unit must be a string, got %T", u)
		}
	}
	return b, nil
}

// number normalizes numeric types produced by different decoders.
func number(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// scalarText keeps numbers in their shortest textual form, so 400 stays "400"
// and 1.5 stays "1.5".
func scalarText(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	}
	if n, ok := number(raw); ok {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "", fmt.Errorf("value %v is not a finite number", n)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value type %T", raw)
}
