package token

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Viewports are the process wide reference screen widths in pixels. Min and
// Max are default interpolation domain for fluid values, all three become
// responsive screen tiers.
type Viewports struct {
	Min int
	Mid int
	Max int
}

// Validate checks that all widths are positive and strictly ordered.
func (v Viewports) Validate() error {
	if v.Min <= 0 || v.Mid <= 0 || v.Max <= 0 {
		return fmt.Errorf("viewport widths must be positive: min=%d mid=%d max=%d", v.Min, v.Mid, v.Max)
	}
	if !(v.Min < v.Mid && v.Mid < v.Max) {
		return fmt.Errorf("viewport widths must satisfy min < mid < max: min=%d mid=%d max=%d", v.Min, v.Mid, v.Max)
	}
	return nil
}

// DecodeViewports parses viewport definition document: an object with
// numeric "min", "mid" and "max" widths.
func DecodeViewports(data []byte, format Format) (Viewports, error) {
	var doc map[string]any
	var err error
	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return Viewports{}, fmt.Errorf("unsupported viewports file format: %s", format)
	}
	if err != nil {
		return Viewports{}, fmt.Errorf("unable to decode %s document: %w", format, err)
	}

	var v Viewports
	for _, f := range []struct {
		key string
		dst *int
	}{{"min", &v.Min}, {"mid", &v.Mid}, {"max", &v.Max}} {
		n, ok := number(doc[f.key])
		if !ok {
			return Viewports{}, fmt.Errorf("viewports document has no numeric %q", f.key)
		}
		if n != math.Trunc(n) {
			return Viewports{}, fmt.Errorf("viewport %q must be a whole number of pixels, got %v", f.key, n)
		}
		*f.dst = int(n)
	}
	return v, v.Validate()
}
