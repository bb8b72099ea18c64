package wizard

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/state"
	"github.com/mark3labs/wizflow/internal/tui/testfixtures"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T, opts Options) (*Model, *testfixtures.MockFinisher) {
	t.Helper()
	finisher := testfixtures.NewMockFinisher()
	f, w := testfixtures.Build(t, testfixtures.OnboardingFlow, finisher.Finish)
	m := New(context.Background(), w, f, opts)
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})
	return m, finisher
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

// press sends a navigation key, runs the resulting command and feeds the
// transition back into the model.
func press(t *testing.T, m *Model, key string) TransitionMsg {
	t.Helper()
	_, cmd := m.Update(testfixtures.Key(key))
	require.NotNil(t, cmd, "key %s produced no command", key)
	msg, ok := cmd().(TransitionMsg)
	require.True(t, ok, "key %s did not produce a transition", key)
	m.Update(msg)
	return msg
}

func screen(m *Model) string {
	return testfixtures.Plain(m.render())
}

func TestModel_TypeAndAdvance(t *testing.T) {
	m, _ := newModel(t, Options{})
	send(m, testfixtures.Type("Ada")...)

	msg := press(t, m, "enter")
	require.Equal(t, OpNext, msg.Op)
	require.Equal(t, flow.OutcomeMoved, msg.Outcome)
	require.Equal(t, flow.StepID("team"), m.wiz.ActiveStepID())
	require.Equal(t, "Ada", m.wiz.Values().String("name"))
	require.Contains(t, screen(m), "Team")
}

func TestModel_InvalidShowsFieldErrors(t *testing.T) {
	m, _ := newModel(t, Options{})

	msg := press(t, m, "ctrl+n")
	require.Equal(t, flow.OutcomeInvalid, msg.Outcome)
	require.Equal(t, flow.StepID("account"), m.wiz.ActiveStepID())
	require.Contains(t, screen(m), "✗ is required")

	send(m, testfixtures.Type("Ada")...)
	send(m, testfixtures.Key("tab"))
	send(m, testfixtures.Type("not-an-email")...)
	require.Equal(t, flow.OutcomeInvalid, press(t, m, "enter").Outcome)
	require.Contains(t, screen(m), "does not match")
}

func TestModel_EscCancelsOnFirstStep(t *testing.T) {
	m, _ := newModel(t, Options{})
	_, cmd := m.Update(testfixtures.Key("esc"))
	require.NotNil(t, cmd)
	require.True(t, m.Cancelled())
	require.False(t, m.Finished())
}

func TestModel_EscGoesBackAfterFreeJump(t *testing.T) {
	f, w := testfixtures.Build(t, "policy: free\n"+testfixtures.OnboardingFlow, nil)
	m := New(context.Background(), w, f, Options{})
	m.Update(tea.WindowSizeMsg{Width: testfixtures.TestTermWidth, Height: testfixtures.TestTermHeight})

	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")
	require.Equal(t, OpGoTo, press(t, m, "alt+1").Op)
	require.Equal(t, flow.StepID("account"), m.wiz.ActiveStepID())
	require.Equal(t, []flow.StepID{"account", "team"}, m.wiz.History())

	msg := press(t, m, "esc")
	require.Equal(t, OpBack, msg.Op)
	require.False(t, m.Cancelled())
	require.Equal(t, flow.StepID("team"), m.wiz.ActiveStepID())
}

func TestModel_CtrlCCancels(t *testing.T) {
	f, w := testfixtures.Build(t, testfixtures.OnboardingFlow, nil)
	m := New(context.Background(), w, f, Options{})
	m.Update(testfixtures.Key("ctrl+c"))
	require.True(t, m.Cancelled())
}

func TestModel_BackRestoresEditors(t *testing.T) {
	m, _ := newModel(t, Options{})
	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")

	msg := press(t, m, "esc")
	require.Equal(t, OpBack, msg.Op)
	require.Equal(t, flow.StepID("account"), m.wiz.ActiveStepID())
	require.Equal(t, "Ada", m.editors[0].raw())
}

func TestModel_SkipOptionalOnly(t *testing.T) {
	m, _ := newModel(t, Options{})

	_, cmd := m.Update(testfixtures.Key("ctrl+s"))
	require.Nil(t, cmd, "account is not optional")

	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")
	msg := press(t, m, "ctrl+s")
	require.Equal(t, OpSkip, msg.Op)
	require.Equal(t, flow.StepID("notes"), m.wiz.ActiveStepID())
	require.Equal(t, flow.StatusSkipped, m.wiz.StepStatus("team"))
}

func TestModel_JumpWithAltDigits(t *testing.T) {
	m, _ := newModel(t, Options{})
	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")
	press(t, m, "enter")
	require.Equal(t, flow.StepID("notes"), m.wiz.ActiveStepID())

	_, cmd := m.Update(testfixtures.Key("alt+4"))
	require.Nil(t, cmd)
	require.Contains(t, screen(m), "Review is not reachable yet")

	_, cmd = m.Update(testfixtures.Key("alt+9"))
	require.Nil(t, cmd)

	msg := press(t, m, "alt+1")
	require.Equal(t, OpGoTo, msg.Op)
	require.Equal(t, flow.StepID("account"), msg.Target)
	require.Equal(t, flow.StepID("account"), m.wiz.ActiveStepID())
}

func TestModel_FinishFlow(t *testing.T) {
	m, finisher := newModel(t, Options{})
	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")
	send(m, testfixtures.Type("core")...)
	press(t, m, "enter")
	press(t, m, "enter")
	require.Equal(t, flow.StepID("review"), m.wiz.ActiveStepID())
	require.Contains(t, screen(m), "Check your answers")

	finisher.SetError(errors.New("quota exceeded"))
	require.Equal(t, flow.OutcomeFinishFailed, press(t, m, "enter").Outcome)
	require.Contains(t, screen(m), "Finish failed: quota exceeded")
	require.False(t, m.Finished())

	finisher.SetError(nil)
	msg := press(t, m, "ctrl+f")
	require.Equal(t, OpFinish, msg.Op)
	require.Equal(t, flow.OutcomeFinished, msg.Outcome)
	require.True(t, m.Finished())

	calls := finisher.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "core", calls[1].String("team"))
}

func TestModel_EditedMultiline(t *testing.T) {
	var commits int
	m, _ := newModel(t, Options{OnValues: func() { commits++ }})
	send(m, testfixtures.Type("Ada")...)
	press(t, m, "enter")
	press(t, m, "ctrl+s")
	require.Equal(t, 1, commits)

	send(m, EditedMsg{Field: "bio", Content: "line one\nline two\n"})
	require.Equal(t, 2, commits)
	require.Equal(t, "line one\nline two", m.wiz.Values().String("bio"))
	require.Contains(t, screen(m), "line one (2 lines)")

	send(m, EditedMsg{Field: "bio", Err: errors.New("no editor")})
	require.Contains(t, screen(m), "editor: no editor")
	require.Equal(t, 2, commits)
}

func TestModel_StepperVariants(t *testing.T) {
	m, _ := newModel(t, Options{})
	require.Equal(t, VariantChevron, m.Variant())
	require.Contains(t, screen(m), "1 Account › 2 Team › 3 Notes › 4 Review")

	send(m, testfixtures.Key("ctrl+t"))
	require.Equal(t, VariantCircles, m.Variant())
	require.Contains(t, screen(m), "Step 1 of 4: Account")

	send(m, testfixtures.Key("ctrl+t"))
	require.Equal(t, VariantStatus, m.Variant())
	out := screen(m)
	require.Contains(t, out, "● 1. Account")
	require.Contains(t, out, "○ 2. Team (optional)")
	require.Contains(t, out, "0%")

	send(m, testfixtures.Key("ctrl+t"))
	require.Equal(t, VariantChevron, m.Variant())
}

func TestModel_StepperPreferencePersists(t *testing.T) {
	dir := t.TempDir()
	m, _ := newModel(t, Options{DataDir: dir})
	send(m, testfixtures.Key("ctrl+t"))
	require.Equal(t, "circles", state.Load(dir).Stepper.Variant)

	again, _ := newModel(t, Options{DataDir: dir, DefaultStepper: "status"})
	require.Equal(t, VariantCircles, again.Variant())

	forced, _ := newModel(t, Options{DataDir: dir, Stepper: "status"})
	require.Equal(t, VariantStatus, forced.Variant())
}

func TestModel_View(t *testing.T) {
	m, _ := newModel(t, Options{})
	view := m.View()
	require.True(t, view.AltScreen)
	require.NotNil(t, view.Content)
}

func TestJumpIndex(t *testing.T) {
	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"alt+1", 0, true},
		{"alt+9", 8, true},
		{"alt+0", 0, false},
		{"alt+a", 0, false},
		{"ctrl+1", 0, false},
		{"alt+10", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := jumpIndex(tt.key)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}
