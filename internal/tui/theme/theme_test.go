package theme

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"

	"github.com/stretchr/testify/require"
)

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		name string
		pos  float64
		want string
	}{
		{"start", 0, "#000000"},
		{"middle", 0.5, "#7f7f7f"},
		{"end", 1, "#ffffff"},
		{"clamped below", -1, "#000000"},
		{"clamped above", 2, "#ffffff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, InterpolateColor("#000000", "#ffffff", tt.pos))
		})
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#cba6f7")
	require.Equal(t, []uint8{0xcb, 0xa6, 0xf7}, []uint8{r, g, b})

	r, g, b = ParseHexColor("nope")
	require.Equal(t, []uint8{0, 0, 0}, []uint8{r, g, b})
}

func TestCurrent(t *testing.T) {
	th := Current()
	require.Same(t, th, Current())
	require.Equal(t, "catppuccin-mocha", th.Name)
	require.Same(t, th.S(), th.S())
}

func TestApplyGradient(t *testing.T) {
	lipgloss.Writer.Profile = colorprofile.Ascii
	require.Empty(t, ApplyGradient("", "#000000", "#ffffff"))
	require.Equal(t, "wiz flow", ansi.Strip(ApplyGradient("wiz flow", "#000000", "#ffffff")))
}
