// Package theme holds the terminal palette and the styles built from it.
package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string
	Secondary string

	// Background hierarchy (dark→light)
	BgBase     string
	BgMantle   string
	BgSurface0 string
	BgSurface1 string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	styles     *Styles
	stylesOnce sync.Once
}

// Styles contains the pre-built lipgloss styles for the TUI.
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Modal       lipgloss.Style
	Label       lipgloss.Style
	Help        lipgloss.Style
	FieldError  lipgloss.Style
	Notice      lipgloss.Style
	Busy        lipgloss.Style
	Separator   lipgloss.Style
	HintKey     lipgloss.Style
	HintDesc    lipgloss.Style
	StepDone    lipgloss.Style
	StepActive  lipgloss.Style
	StepPending lipgloss.Style
	StepSkipped lipgloss.Style
	StepError   lipgloss.Style
	StepBlocked lipgloss.Style

	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		Title:      lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		Subtitle:   lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		Modal:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c(t.Secondary)).Padding(1, 2),
		Label:      lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		Help:       lipgloss.NewStyle().Foreground(c(t.FgMuted)).Italic(true),
		FieldError: lipgloss.NewStyle().Foreground(c(t.Error)),
		Notice:     lipgloss.NewStyle().Foreground(c(t.Warning)),
		Busy:       lipgloss.NewStyle().Foreground(c(t.Info)),
		Separator:  lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		HintKey:    lipgloss.NewStyle().Foreground(c(t.FgBase)).Bold(true),
		HintDesc:   lipgloss.NewStyle().Foreground(c(t.FgSubtle)),

		StepDone:    lipgloss.NewStyle().Foreground(c(t.Success)),
		StepActive:  lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		StepPending: lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		StepSkipped: lipgloss.NewStyle().Foreground(c(t.FgSubtle)).Strikethrough(true),
		StepError:   lipgloss.NewStyle().Foreground(c(t.Error)).Bold(true),
		StepBlocked: lipgloss.NewStyle().Foreground(c(t.Warning)),

		ButtonNormal:   button.Foreground(c(t.FgBase)).Background(c(t.BgSurface0)),
		ButtonDisabled: button.Foreground(c(t.FgMuted)).Background(c(t.BgMantle)),
		ButtonFocused:  button.Foreground(c(t.BgBase)).Background(c(t.Secondary)).Bold(true),
	}
}

var (
	current     *Theme
	currentOnce sync.Once
)

// Current returns the active theme.
func Current() *Theme {
	currentOnce.Do(func() {
		current = NewCatppuccinMocha()
	})
	return current
}

// InterpolateAt returns the gradient color between Primary and Secondary at
// pos in [0, 1].
func (t *Theme) InterpolateAt(pos float64) string {
	return InterpolateColor(t.Primary, t.Secondary, pos)
}
