package wizard

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/tui/theme"
)

// Stepper variants.
const (
	VariantChevron = "chevron"
	VariantCircles = "circles"
	VariantStatus  = "status"
)

var variants = []string{VariantChevron, VariantCircles, VariantStatus}

// normalizeVariant maps unknown names to the chevron stepper.
func normalizeVariant(v string) string {
	if slices.Contains(variants, v) {
		return v
	}
	return VariantChevron
}

// nextVariant returns the variant after v, wrapping around.
func nextVariant(v string) string {
	i := slices.Index(variants, normalizeVariant(v))
	return variants[(i+1)%len(variants)]
}

func statusGlyph(s flow.Status) string {
	switch s {
	case flow.StatusActive:
		return "●"
	case flow.StatusComplete:
		return "✓"
	case flow.StatusSkipped:
		return "↷"
	case flow.StatusError:
		return "✗"
	case flow.StatusBlocked:
		return "⊘"
	default:
		return "○"
	}
}

func stepLabel(s flow.Step) string {
	title := s.Title
	if title == "" {
		title = string(s.ID)
	}
	if s.Icon != "" {
		return s.Icon + " " + title
	}
	return title
}

// renderStepper draws the progress indicator. It reads navigation state
// through the Navigator only.
func renderStepper(nav flow.Navigator, variant string, width int) string {
	if len(nav.VisibleSteps()) == 0 {
		return ""
	}
	switch normalizeVariant(variant) {
	case VariantCircles:
		return renderCircles(nav, width)
	case VariantStatus:
		return renderStatusList(nav, width)
	default:
		return renderChevron(nav, width)
	}
}

// renderChevron: "1 Account › 2 Plan › 3 Billing". Falls back to a compact
// form when the trail does not fit.
func renderChevron(nav flow.Navigator, width int) string {
	st := styles()
	steps := nav.VisibleSteps()

	parts := make([]string, len(steps))
	for i, s := range steps {
		parts[i] = statusStyle(nav.StepStatus(s.ID)).Render(fmt.Sprintf("%d %s", i+1, stepLabel(s)))
	}
	trail := strings.Join(parts, st.Separator.Render(" › "))
	if lipgloss.Width(trail) <= width {
		return trail
	}

	current, total := nav.Progress()
	active := nav.ActiveStepID()
	for _, s := range steps {
		if s.ID == active {
			return st.StepActive.Render(fmt.Sprintf("Step %d/%d › %s", current, total, stepLabel(s)))
		}
	}
	return st.StepPending.Render(fmt.Sprintf("Step %d/%d", current, total))
}

// renderCircles: "✓───●───○" with a caption naming the active step.
func renderCircles(nav flow.Navigator, width int) string {
	st := styles()
	steps := nav.VisibleSteps()

	connector := "───"
	if n := len(steps); n > 1 && n+(n-1)*len(connector) > width {
		connector = "─"
	}

	var b strings.Builder
	for i, s := range steps {
		status := nav.StepStatus(s.ID)
		if i > 0 {
			prev := nav.StepStatus(steps[i-1].ID)
			style := st.StepPending
			if prev == flow.StatusComplete || prev == flow.StatusSkipped {
				style = st.StepDone
			}
			b.WriteString(style.Render(connector))
		}
		b.WriteString(statusStyle(status).Render(statusGlyph(status)))
	}

	current, total := nav.Progress()
	caption := fmt.Sprintf("Step %d of %d", current, total)
	active := nav.ActiveStepID()
	for _, s := range steps {
		if s.ID == active {
			caption += ": " + stepLabel(s)
		}
	}
	return b.String() + "\n" + st.Subtitle.Render(caption)
}

// renderStatusList: one line per step with its glyph, plus a progress bar.
// Steps reachable with alt+N are marked with their shortcut.
func renderStatusList(nav flow.Navigator, width int) string {
	st := styles()
	steps := nav.VisibleSteps()

	lines := make([]string, 0, len(steps)+1)
	for i, s := range steps {
		status := nav.StepStatus(s.ID)
		line := fmt.Sprintf("%s %d. %s", statusGlyph(status), i+1, stepLabel(s))
		if s.Optional {
			line += " (optional)"
		}
		rendered := statusStyle(status).Render(line)
		if i < 9 && s.ID != nav.ActiveStepID() && nav.CanGoTo(s.ID) {
			rendered += " " + st.HintDesc.Render(fmt.Sprintf("alt+%d", i+1))
		}
		lines = append(lines, rendered)
	}

	current, total := nav.Progress()
	lines = append(lines, progressBar(current-1, total, min(width, 30)))
	return strings.Join(lines, "\n")
}

// progressBar renders done/total as a gradient bar followed by a percentage.
func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	done = max(0, min(done, total))
	barWidth := max(width-5, 5)
	filled := barWidth * done / total

	th := theme.Current()
	var b strings.Builder
	for i := range barWidth {
		if i < filled {
			color := th.InterpolateAt(float64(i) / float64(max(barWidth-1, 1)))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(styles().StepPending.Render("░"))
		}
	}
	return b.String() + fmt.Sprintf(" %3d%%", done*100/total)
}
