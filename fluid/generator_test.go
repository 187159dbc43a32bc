package fluid_test

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"dtc/fluid"
	"dtc/token"
)

var defaultViewports = token.Viewports{Min: 320, Mid: 768, Max: 1440}

func fluidRecord(name string, minSize, minVP, maxSize, maxVP float64, unit string) token.Record {
	return token.Record{Name: name, Value: token.FluidValue(token.Fluid{
		Min:  token.Bound{Size: minSize, Viewport: minVP},
		Max:  token.Bound{Size: maxSize, Viewport: maxVP},
		Unit: unit,
	})}
}

func TestResolve_Examples(t *testing.T) {
	tests := []struct {
		name string
		in   token.Fluid
		want string
	}{
		{
			name: "rem",
			in:   token.Fluid{Min: token.Bound{Size: 1, Viewport: 400}, Max: token.Bound{Size: 2, Viewport: 1200}, Unit: "rem"},
			want: "clamp(1rem, 0.5rem + 2vw, 2rem)",
		},
		{
			name: "px",
			in:   token.Fluid{Min: token.Bound{Size: 16, Viewport: 400}, Max: token.Bound{Size: 32, Viewport: 1200}, Unit: "px"},
			want: "clamp(16px, 8px + 2vw, 32px)",
		},
		{
			name: "unit on bounds",
			in:   token.Fluid{Min: token.Bound{Size: 1, Viewport: 400, Unit: "rem"}, Max: token.Bound{Size: 2, Viewport: 1200, Unit: "rem"}},
			want: "clamp(1rem, 0.5rem + 2vw, 2rem)",
		},
		{
			name: "shrinking size",
			in:   token.Fluid{Min: token.Bound{Size: 32, Viewport: 400}, Max: token.Bound{Size: 16, Viewport: 1200}, Unit: "px"},
			want: "clamp(16px, 40px - 2vw, 32px)",
		},
		{
			name: "equal sizes",
			in:   token.Fluid{Min: token.Bound{Size: 1.5}, Max: token.Bound{Size: 1.5}, Unit: "rem"},
			want: "1.5rem",
		},
		{
			name: "default viewports and unit",
			in:   token.Fluid{Min: token.Bound{Size: 1}, Max: token.Bound{Size: 1.5}},
			// 20rem..90rem: slope 0.5/70
			want: "clamp(1rem, 0.8571rem + 0.7143vw, 1.5rem)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fluid.Resolve(tt.in, defaultViewports)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Precision(t *testing.T) {
	in := token.Fluid{Min: token.Bound{Size: 1}, Max: token.Bound{Size: 1.5}}

	got, err := fluid.Resolve(in, defaultViewports, fluid.WithPrecision(2))
	require.NoError(t, err)
	assert.Equal(t, "clamp(1rem, 0.86rem + 0.71vw, 1.5rem)", got)

	// out of range precision keeps default
	for _, p := range []int{-1, fluid.MaxPrecision + 1, 400} {
		got, err = fluid.Resolve(in, defaultViewports, fluid.WithPrecision(p))
		require.NoError(t, err)
		assert.Equal(t, "clamp(1rem, 0.8571rem + 0.7143vw, 1.5rem)", got, "precision %d", p)
	}
}

func TestResolve_RootSize(t *testing.T) {
	in := token.Fluid{Min: token.Bound{Size: 1, Viewport: 400}, Max: token.Bound{Size: 2, Viewport: 1200}, Unit: "em"}

	got, err := fluid.Resolve(in, defaultViewports, fluid.WithRootSize(10))
	require.NoError(t, err)
	// 40em..120em: slope 1/80
	assert.Equal(t, "clamp(1em, 0.5em + 1.25vw, 2em)", got)
}

var clampPattern = regexp.MustCompile(`^clamp\(([-\d.]+)(px|rem|em), ([-\d.]+)(?:px|rem|em) ([+-]) ([\d.]+)vw, ([-\d.]+)(?:px|rem|em)\)$`)

// evaluate computes value of generated expression at viewport width in pixels.
func evaluate(t *testing.T, expr string, viewport, rootSize float64) float64 {
	t.Helper()
	m := clampPattern.FindStringSubmatch(expr)
	require.NotNil(t, m, "unexpected expression %q", expr)

	num := func(s string) float64 {
		n, err := strconv.ParseFloat(s, 64)
		require.NoError(t, err)
		return n
	}
	lo, unit, intercept, sign, coef, hi := num(m[1]), m[2], num(m[3]), m[4], num(m[5]), num(m[6])
	if sign == "-" {
		coef = -coef
	}

	vw := viewport / 100
	if unit != "px" {
		vw /= rootSize
	}
	return math.Min(hi, math.Max(lo, intercept+coef*vw))
}

func TestResolve_MatchesBoundsAndIsMonotonic(t *testing.T) {
	cases := []struct {
		a, v0, b, v1 float64
		unit         string
	}{
		{1, 400, 2, 1200, "rem"},
		{0.875, 320, 1.125, 1440, "rem"},
		{14, 360, 18, 1280, "px"},
		{3, 320, 1.5, 1440, "em"},
		{2.25, 500, 4.75, 1600, "rem"},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%v%s@%v-%v%s@%v", c.a, c.unit, c.v0, c.b, c.unit, c.v1), func(t *testing.T) {
			expr, err := fluid.Resolve(token.Fluid{
				Min:  token.Bound{Size: c.a, Viewport: c.v0},
				Max:  token.Bound{Size: c.b, Viewport: c.v1},
				Unit: c.unit,
			}, defaultViewports)
			require.NoError(t, err)

			// rounding to 4 places keeps error well below 0.01
			assert.InDelta(t, c.a, evaluate(t, expr, c.v0, fluid.DefaultRootSize), 0.01)
			assert.InDelta(t, c.b, evaluate(t, expr, c.v1, fluid.DefaultRootSize), 0.01)

			prev := evaluate(t, expr, c.v0, fluid.DefaultRootSize)
			for w := c.v0; w <= c.v1; w += 10 {
				cur := evaluate(t, expr, w, fluid.DefaultRootSize)
				if c.b >= c.a {
					assert.GreaterOrEqual(t, cur, prev-1e-9)
				} else {
					assert.LessOrEqual(t, cur, prev+1e-9)
				}
				prev = cur
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   token.Fluid
	}{
		{"equal viewports", token.Fluid{Min: token.Bound{Size: 1, Viewport: 800}, Max: token.Bound{Size: 2, Viewport: 800}}},
		{"inverted viewports", token.Fluid{Min: token.Bound{Size: 1, Viewport: 1200}, Max: token.Bound{Size: 2, Viewport: 400}}},
		{"unit mismatch", token.Fluid{Min: token.Bound{Size: 1, Unit: "rem"}, Max: token.Bound{Size: 20, Unit: "px"}}},
		{"record unit mismatch", token.Fluid{Min: token.Bound{Size: 1, Unit: "rem"}, Max: token.Bound{Size: 2}, Unit: "em"}},
		{"unsupported unit", token.Fluid{Min: token.Bound{Size: 1}, Max: token.Bound{Size: 2}, Unit: "pt"}},
		{"not finite", token.Fluid{Min: token.Bound{Size: math.Inf(1)}, Max: token.Bound{Size: 2}}},
		{"explicit zero viewport", token.Fluid{Min: token.Bound{Size: 0, ViewportSet: true}, Max: token.Bound{Size: 2, Viewport: 1200}, Unit: "rem"}},
		{"negative viewport", token.Fluid{Min: token.Bound{Size: 1, Viewport: -100}, Max: token.Bound{Size: 2, Viewport: 1200}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fluid.Resolve(tt.in, defaultViewports)
			assert.Error(t, err)
		})
	}
}

func TestGenerate(t *testing.T) {
	in, err := token.NewStore("fontSize",
		token.Record{Name: "base", Value: token.Scalar("1rem")},
		fluidRecord("lg", 1, 400, 2, 1200, "rem"),
		token.Record{Name: "stack", Value: token.List("a", "b")},
	)
	require.NoError(t, err)
	before := in.Records()

	out, err := fluid.Generate(in, defaultViewports)
	require.NoError(t, err)

	assert.Equal(t, "fontSize", out.Category())
	recs := out.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, "base", recs[0].Name)
	assert.True(t, recs[0].Value.Equal(token.Scalar("1rem")))
	assert.Equal(t, "lg", recs[1].Name)
	assert.Equal(t, "clamp(1rem, 0.5rem + 2vw, 2rem)", recs[1].Value.String())
	assert.True(t, recs[2].Value.Equal(token.List("a", "b")))

	// input is left intact
	assert.Equal(t, before, in.Records())
	lg, _ := in.Get("lg")
	assert.False(t, lg.Value.IsResolved())
}

func TestGenerate_ScalarsUnchanged(t *testing.T) {
	in, err := token.NewStore("spacing",
		token.Record{Name: "s", Value: token.Scalar("0.5rem")},
		token.Record{Name: "m", Value: token.Scalar("clamp(1rem, 2vw, 3rem)")},
	)
	require.NoError(t, err)

	out, err := fluid.Generate(in, defaultViewports)
	require.NoError(t, err)
	assert.Equal(t, in.Records(), out.Records())
}

func TestGenerate_ReportsAllInvalidRecords(t *testing.T) {
	in, err := token.NewStore("spacing",
		fluidRecord("a", 1, 800, 2, 800, "rem"),
		fluidRecord("b", 1, 400, 2, 1200, "rem"),
		fluidRecord("c", 1, 1200, 2, 400, "rem"),
	)
	require.NoError(t, err)

	out, err := fluid.Generate(in, defaultViewports)
	require.Error(t, err)
	assert.Nil(t, out)

	var names []string
	for _, e := range multierr.Errors(err) {
		var inv *token.InvalidFluidSpecError
		require.True(t, errors.As(e, &inv), "unexpected error %v", e)
		names = append(names, inv.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)
	assert.Contains(t, err.Error(), `"a"`)
	assert.Contains(t, err.Error(), `"c"`)
	assert.NotContains(t, err.Error(), `"b"`)
}

func TestGenerate_ExplicitZeroViewport(t *testing.T) {
	s, err := token.Decode("spacing", []byte(`{"items": [
		{"name": "edge", "value": {"min": {"size": 0, "viewport": 0}, "max": {"size": 2, "viewport": 1200}, "unit": "rem"}},
		{"name": "ok", "value": {"min": {"size": 0}, "max": {"size": 2, "viewport": 1200}, "unit": "rem"}}
	]}`), token.FormatJSON)
	require.NoError(t, err)

	_, err = fluid.Generate(s, defaultViewports)
	require.Error(t, err)
	errs := multierr.Errors(err)
	require.Len(t, errs, 1)
	var fe *token.InvalidFluidSpecError
	require.ErrorAs(t, errs[0], &fe)
	assert.Equal(t, "edge", fe.Name)

	// absent viewport still falls back to breakpoint
	assert.Equal(t, 320.0, token.Bound{Size: 0}.ViewportOf(320))
	assert.Equal(t, 0.0, token.Bound{ViewportSet: true}.ViewportOf(320))
}
