package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeNamesSorted(t *testing.T) {
	names := ThemeNames()
	require.NotEmpty(t, names)
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, DefaultTheme)
}

func TestSetTheme(t *testing.T) {
	p, ok := GetPalette("gruvbox")
	require.True(t, ok)

	SetTheme(p)
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	assert.Equal(t, p, CurrentPalette)
	cfg := GlamourStyle()
	require.NotNil(t, cfg.Link.Color)
	assert.Equal(t, string(p.Secondary), *cfg.Link.Color)
}

func TestGetPaletteUnknown(t *testing.T) {
	_, ok := GetPalette("nope")
	assert.False(t, ok)
}
