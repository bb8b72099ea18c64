// Package wizard hosts a flow in the terminal.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/flowfile"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/state"
)

// ErrCancelled is returned by Run when the user leaves without finishing.
var ErrCancelled = errors.New("wizard cancelled by user")

// Op names the command a TransitionMsg reports on.
type Op string

const (
	OpNext   Op = "next"
	OpBack   Op = "back"
	OpSkip   Op = "skip"
	OpFinish Op = "finish"
	OpGoTo   Op = "goto"
)

// TransitionMsg is delivered when a navigation command completes.
type TransitionMsg struct {
	Op      Op
	Target  flow.StepID
	Outcome flow.Outcome
}

// Options configure the terminal host.
type Options struct {
	// DataDir holds ui-state.json. Empty disables persistence.
	DataDir string

	// Stepper forces a variant. When empty the saved preference, then the
	// flow's variant, then DefaultStepper apply.
	Stepper        string
	DefaultStepper string

	// OnValues is called after edited values are written to the wizard.
	OnValues func()
}

const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Model is the BubbleTea model hosting a flow.
type Model struct {
	ctx  context.Context
	wiz  *flow.Wizard
	file *flowfile.File
	opts Options

	variant string
	width   int
	height  int
	md      markdown

	stepID  flow.StepID
	editors []*fieldEditor
	focus   int

	pending   int
	notice    string
	finished  bool
	cancelled bool
}

// New creates the model for w, whose steps were compiled from f.
func New(ctx context.Context, w *flow.Wizard, f *flowfile.File, opts Options) *Model {
	m := &Model{
		ctx:    ctx,
		wiz:    w,
		file:   f,
		opts:   opts,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.variant = m.resolveVariant()
	m.loadStep()
	return m
}

func (m *Model) resolveVariant() string {
	if m.opts.Stepper != "" {
		return normalizeVariant(m.opts.Stepper)
	}
	if m.opts.DataDir != "" {
		if saved := state.Load(m.opts.DataDir).Stepper.Variant; saved != "" {
			return normalizeVariant(saved)
		}
	}
	if v := m.wiz.Variant(); v != "" {
		return normalizeVariant(v)
	}
	return normalizeVariant(m.opts.DefaultStepper)
}

// Run starts a BubbleTea program for the flow and blocks until it ends.
func Run(ctx context.Context, w *flow.Wizard, f *flowfile.File, opts Options) error {
	m := New(ctx, w, f, opts)

	finalModel, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}
	fm, ok := finalModel.(*Model)
	if !ok {
		return fmt.Errorf("unexpected model type")
	}
	if !fm.finished {
		return ErrCancelled
	}
	return nil
}

// Finished reports whether the flow completed.
func (m *Model) Finished() bool {
	return m.finished
}

// Cancelled reports whether the user cancelled the flow.
func (m *Model) Cancelled() bool {
	return m.cancelled
}

// Variant returns the stepper variant in use.
func (m *Model) Variant() string {
	return m.variant
}

// Init focuses the first field.
func (m *Model) Init() tea.Cmd {
	return m.focusCmd()
}

// Update handles messages for the wizard.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, e := range m.editors {
			e.input.SetWidth(m.contentWidth() - 4)
		}
		return m, nil

	case TransitionMsg:
		return m, m.handleTransition(msg)

	case EditedMsg:
		if msg.Err != nil {
			m.notice = "editor: " + msg.Err.Error()
			return m, nil
		}
		for _, e := range m.editors {
			if e.field.Name == msg.Field {
				e.applyEdit(msg.Content)
			}
		}
		m.commit()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}

	if e := m.focused(); e != nil {
		return m, e.update(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m.cancel()

	case "esc":
		// Under the free policy the first step can still have history.
		if len(m.wiz.History()) == 0 {
			return m.cancel()
		}
		m.commit()
		return m.dispatch(OpBack, "", func() flow.Outcome { return m.wiz.Previous() })

	case "enter", "ctrl+n":
		m.commit()
		return m.dispatch(OpNext, "", func() flow.Outcome { return m.wiz.Next(m.ctx) })

	case "ctrl+s":
		step, ok := m.wiz.ActiveStep()
		if !ok || !step.Optional {
			return nil
		}
		m.commit()
		return m.dispatch(OpSkip, "", func() flow.Outcome { return m.wiz.Skip(m.ctx) })

	case "ctrl+f":
		m.commit()
		return m.dispatch(OpFinish, "", func() flow.Outcome { return m.wiz.Finish(m.ctx) })

	case "tab":
		return m.cycleFocus(1)

	case "shift+tab":
		return m.cycleFocus(-1)

	case "ctrl+e":
		if e := m.focused(); e != nil {
			return openEditor(e)
		}
		return nil

	case "ctrl+t":
		m.variant = nextVariant(m.variant)
		m.saveVariant()
		return nil
	}

	if n, ok := jumpIndex(key); ok {
		return m.jump(n)
	}

	if e := m.focused(); e != nil {
		return e.update(msg)
	}
	return nil
}

// jumpIndex parses alt+1 through alt+9 into a 0-based index.
func jumpIndex(key string) (int, bool) {
	digit, ok := strings.CutPrefix(key, "alt+")
	if !ok || len(digit) != 1 || digit[0] < '1' || digit[0] > '9' {
		return 0, false
	}
	return int(digit[0] - '1'), true
}

func (m *Model) jump(idx int) tea.Cmd {
	nav := m.wiz.Navigator()
	steps := nav.VisibleSteps()
	if idx >= len(steps) {
		return nil
	}
	target := steps[idx].ID
	if !nav.CanGoTo(target) {
		m.notice = fmt.Sprintf("%s is not reachable yet", stepLabel(steps[idx]))
		return nil
	}
	m.commit()
	return m.dispatch(OpGoTo, target, func() flow.Outcome { return nav.GoTo(m.ctx, target) })
}

// dispatch runs a navigation command off the update loop.
func (m *Model) dispatch(op Op, target flow.StepID, run func() flow.Outcome) tea.Cmd {
	m.pending++
	m.notice = ""
	return func() tea.Msg {
		return TransitionMsg{Op: op, Target: target, Outcome: run()}
	}
}

func (m *Model) handleTransition(msg TransitionMsg) tea.Cmd {
	if m.pending > 0 {
		m.pending--
	}
	logger.Debug("TUI %s finished: %s", msg.Op, msg.Outcome)

	switch msg.Outcome {
	case flow.OutcomeFinished:
		m.finished = true
		return tea.Quit
	case flow.OutcomeBlocked:
		m.notice = "That step cannot be entered yet"
		if errs := m.wiz.Errors(); errs != nil {
			m.notice += ": " + errs.String()
		}
	case flow.OutcomeFinishFailed:
		m.notice = "Finish failed"
		if errs := m.wiz.Errors(); errs != nil {
			m.notice += ": " + errs.String()
		}
	}

	if m.wiz.ActiveStepID() != m.stepID {
		m.loadStep()
		return m.focusCmd()
	}
	return nil
}

func (m *Model) cancel() tea.Cmd {
	m.wiz.Cancel()
	m.cancelled = true
	return tea.Quit
}

// loadStep builds editors for the active step's fields from current values.
func (m *Model) loadStep() {
	m.stepID = m.wiz.ActiveStepID()
	m.editors = nil
	m.focus = 0

	def, ok := m.file.Step(string(m.stepID))
	if !ok {
		return
	}
	values := m.wiz.Values()
	for _, fd := range def.Fields {
		m.editors = append(m.editors, newFieldEditor(fd, values[fd.Name], m.contentWidth()-4))
	}
}

func (m *Model) focused() *fieldEditor {
	if m.focus < 0 || m.focus >= len(m.editors) {
		return nil
	}
	return m.editors[m.focus]
}

func (m *Model) focusCmd() tea.Cmd {
	for i, e := range m.editors {
		if i != m.focus {
			e.input.Blur()
		}
	}
	if e := m.focused(); e != nil {
		return e.input.Focus()
	}
	return nil
}

func (m *Model) cycleFocus(delta int) tea.Cmd {
	if len(m.editors) == 0 {
		return nil
	}
	m.focus = (m.focus + delta + len(m.editors)) % len(m.editors)
	return m.focusCmd()
}

// commit writes edited field values to the wizard when they changed.
func (m *Model) commit() {
	if len(m.editors) == 0 {
		return
	}
	current := m.wiz.Values()
	changed := flow.Values{}
	for _, e := range m.editors {
		v := e.value()
		if old, ok := current[e.field.Name]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		if !current.Has(e.field.Name) && v == "" {
			continue
		}
		changed[e.field.Name] = v
	}
	if len(changed) == 0 {
		return
	}
	m.wiz.SetValues(changed)
	if m.opts.OnValues != nil {
		m.opts.OnValues()
	}
}

func (m *Model) saveVariant() {
	if m.opts.DataDir == "" {
		return
	}
	st := state.Load(m.opts.DataDir)
	st.Stepper.Variant = m.variant
	if err := state.Save(m.opts.DataDir, st); err != nil {
		logger.Warn("Failed to save stepper preference: %v", err)
	}
}

func (m *Model) busy() bool {
	return m.pending > 0 || m.wiz.IsBusy()
}

func (m *Model) contentWidth() int {
	return min(max(m.width-10, 40), 100)
}

// View renders the wizard UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(m.render()).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

// render lays out the modal and centers it on screen.
func (m *Model) render() string {
	st := styles()
	width := m.contentWidth()
	inner := width - 6
	nav := m.wiz.Navigator()

	var sections []string
	if m.file.Title != "" {
		sections = append(sections, st.Title.Render(m.file.Title))
	}
	if stepper := renderStepper(nav, m.variant, inner); stepper != "" {
		sections = append(sections, stepper, "")
	}

	sections = append(sections, m.renderBody(inner))

	if errs := m.wiz.Errors(); errs != nil && !errs.OK {
		for _, msg := range errs.Errors {
			sections = append(sections, st.FieldError.Render("✗ "+msg))
		}
	}
	if m.notice != "" {
		sections = append(sections, st.Notice.Render(m.notice))
	}
	if m.busy() {
		sections = append(sections, st.Busy.Render("Working…"))
	}

	step, _ := m.wiz.ActiveStep()
	bar := NewButtonBar(navButtons(nav.Labels(), m.wiz.IsFirstStep(), m.wiz.IsLastStep(), step.Optional, m.busy()))
	bar.SetWidth(inner)
	sections = append(sections, "", bar.Render(), m.hints())

	modal := st.Modal.Width(width).Render(strings.Join(sections, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderBody shows the step's editors, or the step's own rendering when it
// collects no fields.
func (m *Model) renderBody(width int) string {
	st := styles()
	if len(m.editors) == 0 {
		return m.md.render(m.wiz.RenderActive(m.ctx), width)
	}

	step, _ := m.wiz.ActiveStep()
	parts := []string{st.StepActive.Render(stepLabel(step))}
	if desc := m.md.render(step.Description, width); desc != "" {
		parts = append(parts, desc)
	}

	var fieldErrs map[string]string
	if errs := m.wiz.Errors(); errs != nil {
		fieldErrs = errs.FieldErrors
	}
	for i, e := range m.editors {
		parts = append(parts, "", e.view(i == m.focus, fieldErrs[e.field.Name]))
	}
	return strings.Join(parts, "\n")
}

func (m *Model) hints() string {
	pairs := []string{"enter", "next", "esc", "back"}
	if len(m.editors) > 1 {
		pairs = append(pairs, "tab", "field")
	}
	if len(m.editors) > 0 {
		pairs = append(pairs, "ctrl+e", "editor")
	}
	pairs = append(pairs, "alt+N", "jump", "ctrl+t", "stepper", "ctrl+c", "quit")
	return renderHintBar(pairs...)
}
