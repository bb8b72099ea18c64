package wizard

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/wizflow/internal/flow"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Primary action
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	Key   string
	State ButtonState
}

// ButtonBar manages a set of buttons with consistent styling.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar centered in its width.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	st := styles()
	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		label := btn.Label
		if btn.Key != "" {
			label += " (" + btn.Key + ")"
		}
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, st.ButtonDisabled.Render(label))
		case ButtonFocused:
			rendered = append(rendered, st.ButtonFocused.Render(label))
		default:
			rendered = append(rendered, st.ButtonNormal.Render(label))
		}
	}

	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// Default button labels, overridden per flow by flow.Labels.
const (
	defaultBack   = "← Back"
	defaultCancel = "Cancel"
	defaultSkip   = "Skip"
	defaultNext   = "Next →"
	defaultFinish = "Finish"
)

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

// navButtons builds the Back|Cancel, Skip and Next|Finish buttons for the
// active step. Every button is disabled while a command is in flight.
func navButtons(labels flow.Labels, first, last, optional, busy bool) []Button {
	buttons := make([]Button, 0, 3)

	if first {
		buttons = append(buttons, Button{Label: labelOr(labels.Cancel, defaultCancel), Key: "esc"})
	} else {
		buttons = append(buttons, Button{Label: labelOr(labels.Back, defaultBack), Key: "esc"})
	}

	if optional {
		buttons = append(buttons, Button{Label: labelOr(labels.Skip, defaultSkip), Key: "ctrl+s"})
	}

	if last {
		buttons = append(buttons, Button{Label: labelOr(labels.Finish, defaultFinish), Key: "enter", State: ButtonFocused})
	} else {
		buttons = append(buttons, Button{Label: labelOr(labels.Next, defaultNext), Key: "enter", State: ButtonFocused})
	}

	if busy {
		for i := range buttons {
			buttons[i].State = ButtonDisabled
		}
	}
	return buttons
}
