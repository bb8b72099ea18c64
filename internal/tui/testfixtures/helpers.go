package testfixtures

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/x/ansi"
)

func init() {
	// Ascii profile keeps rendered output free of color sequences
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Key builds a key press from its string form, e.g. "enter", "ctrl+n",
// "alt+2", "shift+tab" or a single printable character.
func Key(s string) tea.KeyPressMsg {
	var mod tea.KeyMod
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			mod |= tea.ModCtrl
			s = strings.TrimPrefix(s, "ctrl+")
			continue
		case strings.HasPrefix(s, "alt+"):
			mod |= tea.ModAlt
			s = strings.TrimPrefix(s, "alt+")
			continue
		case strings.HasPrefix(s, "shift+"):
			mod |= tea.ModShift
			s = strings.TrimPrefix(s, "shift+")
			continue
		}
		break
	}

	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter, Mod: mod}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape, Mod: mod}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: mod}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace, Mod: mod}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " ", Mod: mod}
	}

	r := []rune(s)[0]
	if mod == 0 {
		return tea.KeyPressMsg{Code: r, Text: s}
	}
	return tea.KeyPressMsg{Code: r, Mod: mod}
}

// Type returns one key press per character of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return msgs
}

// Plain strips ANSI sequences so assertions can match on text.
func Plain(s string) string {
	return ansi.Strip(s)
}
