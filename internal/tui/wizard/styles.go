package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/tui/theme"
)

func styles() *theme.Styles {
	return theme.Current().S()
}

// statusStyle picks the stepper style for a step status.
func statusStyle(s flow.Status) lipgloss.Style {
	st := styles()
	switch s {
	case flow.StatusActive:
		return st.StepActive
	case flow.StatusComplete:
		return st.StepDone
	case flow.StatusSkipped:
		return st.StepSkipped
	case flow.StatusError:
		return st.StepError
	case flow.StatusBlocked:
		return st.StepBlocked
	default:
		return st.StepPending
	}
}

// renderHintBar renders a hint bar with the given key-description pairs.
// Example: renderHintBar("enter", "next", "esc", "back")
// Returns: "enter next • esc back"
func renderHintBar(pairs ...string) string {
	if len(pairs) == 0 || len(pairs)%2 != 0 {
		return ""
	}

	st := styles()
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		parts = append(parts, st.HintKey.Render(pairs[i])+" "+st.HintDesc.Render(pairs[i+1]))
	}
	return strings.Join(parts, " "+st.Separator.Render("•")+" ")
}
