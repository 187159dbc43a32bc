package theme_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"dtc/theme"
	"dtc/token"
)

var viewports = token.Viewports{Min: 320, Mid: 768, Max: 1440}

func group(kv ...string) *theme.Group {
	g := theme.NewGroup()
	for i := 0; i+1 < len(kv); i += 2 {
		g.Set(kv[i], kv[i+1])
	}
	return g
}

func TestAssemble_Screens(t *testing.T) {
	th, err := theme.Assemble(viewports)
	require.NoError(t, err)

	screens, err := th.Lookup(theme.Screens)
	require.NoError(t, err)
	assert.True(t, screens.Equal(group("sm", "320px", "md", "768px", "lg", "1440px")))
}

func TestAssemble_InvalidViewports(t *testing.T) {
	_, err := theme.Assemble(token.Viewports{Min: 768, Mid: 320, Max: 1440})
	assert.Error(t, err)
}

func TestAssemble_DerivedGroups(t *testing.T) {
	colors := group("dark", "#000", "light", "#fff")
	spacing := group("s", "0.5rem", "m", "clamp(1rem, 0.5rem + 2vw, 2rem)")

	th, err := theme.Assemble(viewports,
		theme.Entry{Category: theme.Colors, Group: colors},
		theme.Entry{Category: theme.Spacing, Group: spacing},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		theme.Screens, theme.Colors, theme.Spacing,
		theme.BackgroundColor, theme.TextColor, theme.Margin, theme.Padding,
	}, th.Categories())

	for _, c := range []string{theme.BackgroundColor, theme.TextColor} {
		g, err := th.Lookup(c)
		require.NoError(t, err)
		assert.True(t, g.Equal(colors), c)
	}

	// spacing is exactly what was mapped
	g, err := th.Lookup(theme.Spacing)
	require.NoError(t, err)
	assert.True(t, g.Equal(spacing))

	padding, err := th.Lookup(theme.Padding)
	require.NoError(t, err)
	assert.True(t, padding.Equal(spacing))

	margin, err := th.Lookup(theme.Margin)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto", "s", "m"}, margin.Keys())
	auto, _ := margin.Get("auto")
	assert.Equal(t, "auto", auto)
}

func TestAssemble_MarginKeepsSpacingAuto(t *testing.T) {
	th, err := theme.Assemble(viewports,
		theme.Entry{Category: theme.Spacing, Group: group("s", "1px", "auto", "0")},
	)
	require.NoError(t, err)

	margin, err := th.Lookup(theme.Margin)
	require.NoError(t, err)
	assert.Equal(t, []string{"auto", "s"}, margin.Keys())
	v, _ := margin.Get("auto")
	assert.Equal(t, "0", v)
}

func TestAssemble_Errors(t *testing.T) {
	_, err := theme.Assemble(viewports,
		theme.Entry{Category: theme.Colors, Group: group("a", "b")},
		theme.Entry{Category: theme.Colors, Group: group("c", "d")},
	)
	assert.Error(t, err)

	_, err = theme.Assemble(viewports, theme.Entry{Category: theme.Colors})
	assert.Error(t, err)
}

func TestTheme_LookupMissing(t *testing.T) {
	th, err := theme.Assemble(viewports)
	require.NoError(t, err)

	_, err = th.Lookup(theme.Colors)
	var missing *token.MissingCategoryError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, theme.Colors, missing.Category)
	assert.False(t, th.Has(theme.Colors))
	assert.False(t, th.Has(theme.Margin))
}

func TestTheme_LookupReturnsCopy(t *testing.T) {
	th, err := theme.Assemble(viewports, theme.Entry{Category: theme.Colors, Group: group("a", "red")})
	require.NoError(t, err)

	g, err := th.Lookup(theme.Colors)
	require.NoError(t, err)
	g.Set("b", "blue")

	again, err := th.Lookup(theme.Colors)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Len())
}

func TestTheme_MarshalJSON(t *testing.T) {
	th, err := theme.Assemble(viewports,
		theme.Entry{Category: theme.FontWeight, Group: group("regular", "400", "bold", "700")},
	)
	require.NoError(t, err)

	data, err := json.Marshal(th)
	require.NoError(t, err)
	assert.Equal(t,
		`{"screens":{"sm":"320px","md":"768px","lg":"1440px"},"fontWeight":{"regular":"400","bold":"700"}}`,
		string(data))
}

func TestTheme_MarshalYAML(t *testing.T) {
	th, err := theme.Assemble(viewports,
		theme.Entry{Category: theme.LineHeight, Group: group("flat", "1", "fine", "1.5")},
	)
	require.NoError(t, err)

	data, err := yaml.Marshal(th)
	require.NoError(t, err)
	assert.Equal(t, `screens:
    sm: 320px
    md: 768px
    lg: 1440px
lineHeight:
    flat: "1"
    fine: "1.5"
`, string(data))
}

func TestGroup_Basics(t *testing.T) {
	g := theme.NewGroup()
	assert.True(t, g.Set("a", "1"))
	assert.True(t, g.Set("b", "2"))
	assert.False(t, g.Set("a", "3"))

	v, ok := g.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	var keys []string
	for k := range g.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"a", "b"}, keys)

	recs := g.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[1].Name)
	assert.Equal(t, "2", recs[1].Value.String())
}
