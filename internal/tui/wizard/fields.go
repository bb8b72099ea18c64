package wizard

import (
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/wizflow/internal/flowfile"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/tui/theme"
)

// fieldEditor edits one field of the active step. Multiline content that
// spans lines is held outside the single-line input and edited with $EDITOR.
type fieldEditor struct {
	field flowfile.Field
	input textinput.Model
	text  string
	multi bool
}

func inputStyles() textinput.Styles {
	th := theme.Current()
	c := lipgloss.Color
	return textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(c(th.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(c(th.FgMuted)),
			Suggestion:  lipgloss.NewStyle().Foreground(c(th.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(c(th.Secondary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(c(th.FgSubtle)),
			Placeholder: lipgloss.NewStyle().Foreground(c(th.FgMuted)),
			Suggestion:  lipgloss.NewStyle().Foreground(c(th.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(c(th.FgMuted)),
		},
		Cursor: textinput.CursorStyle{
			Color: c(th.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	}
}

func newFieldEditor(fd flowfile.Field, value any, width int) *fieldEditor {
	input := textinput.New()
	input.Prompt = "> "
	input.SetStyles(inputStyles())
	input.SetWidth(width)

	input.Placeholder = fd.Placeholder
	switch fd.FieldType() {
	case flowfile.TypeChoice:
		input.SetSuggestions(fd.Options)
		input.ShowSuggestions = true
		// tab cycles focus between fields
		input.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("right"))
		if input.Placeholder == "" {
			input.Placeholder = strings.Join(fd.Options, " | ")
		}
	case flowfile.TypeConfirm:
		if input.Placeholder == "" {
			input.Placeholder = "yes / no"
		}
	case flowfile.TypeMultiline:
		if input.Placeholder == "" {
			input.Placeholder = "ctrl+e to open editor"
		}
	}

	e := &fieldEditor{field: fd, input: input}
	e.setText(fd.Format(value))
	return e
}

func (e *fieldEditor) setText(s string) {
	if e.field.FieldType() == flowfile.TypeMultiline && strings.Contains(s, "\n") {
		e.multi = true
		e.text = s
		e.input.SetValue("")
		return
	}
	e.multi = false
	e.text = ""
	e.input.SetValue(s)
}

func (e *fieldEditor) raw() string {
	if e.multi {
		return e.text
	}
	return e.input.Value()
}

// value returns the typed value. Text that does not coerce is kept raw so
// the step's validation can report it.
func (e *fieldEditor) value() any {
	raw := e.raw()
	v, err := e.field.Coerce(raw)
	if err != nil {
		return raw
	}
	return v
}

func (e *fieldEditor) update(msg tea.Msg) tea.Cmd {
	if e.multi {
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return cmd
}

func (e *fieldEditor) view(focused bool, errMsg string) string {
	st := styles()
	var b strings.Builder

	label := e.field.DisplayLabel()
	if e.field.Required {
		label += " *"
	}
	if focused {
		b.WriteString(st.StepActive.Render(label))
	} else {
		b.WriteString(st.Label.Render(label))
	}
	b.WriteString("\n")

	if e.multi {
		lines := strings.Split(strings.TrimRight(e.text, "\n"), "\n")
		preview := fmt.Sprintf("%s (%d lines)", lines[0], len(lines))
		b.WriteString(st.Subtitle.Render("> " + preview))
	} else {
		b.WriteString(e.input.View())
	}

	if e.field.Help != "" {
		b.WriteString("\n" + st.Help.Render(e.field.Help))
	}
	if errMsg != "" {
		b.WriteString("\n" + st.FieldError.Render("✗ "+errMsg))
	}
	return b.String()
}

// EditedMsg carries the content of a field edited in $EDITOR.
type EditedMsg struct {
	Field   string
	Content string
	Err     error
}

// openEditor launches $EDITOR on the field's current content.
func openEditor(e *fieldEditor) tea.Cmd {
	name := e.field.Name

	tmpfile, err := os.CreateTemp("", "wizflow_"+name+"_*.md")
	if err != nil {
		return editFailed(name, err)
	}
	if _, err := tmpfile.WriteString(e.raw()); err != nil {
		_ = tmpfile.Close()
		_ = os.Remove(tmpfile.Name())
		return editFailed(name, err)
	}
	_ = tmpfile.Close()

	cmd, err := editor.Command("wizflow", tmpfile.Name())
	if err != nil {
		_ = os.Remove(tmpfile.Name())
		return editFailed(name, err)
	}

	path := tmpfile.Name()
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if err != nil {
			return EditedMsg{Field: name, Err: err}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return EditedMsg{Field: name, Err: err}
		}
		return EditedMsg{Field: name, Content: string(content)}
	})
}

func editFailed(field string, err error) tea.Cmd {
	logger.Warn("Failed to open editor for %s: %v", field, err)
	return func() tea.Msg {
		return EditedMsg{Field: field, Err: err}
	}
}

// applyEdit stores edited content. Single-line fields keep the first line.
func (e *fieldEditor) applyEdit(content string) {
	content = strings.TrimSuffix(content, "\n")
	if e.field.FieldType() != flowfile.TypeMultiline {
		content, _, _ = strings.Cut(content, "\n")
	}
	e.setText(content)
}
