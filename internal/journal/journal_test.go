package journal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/nats"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	bus, err := nats.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return NewStore(bus.JS, bus.Stream)
}

func plainSteps(ids ...flow.StepID) []flow.Step {
	out := make([]flow.Step, len(ids))
	for i, id := range ids {
		out[i] = flow.Step{ID: id, Render: func(flow.StepAPI) string { return "" }}
	}
	return out
}

func TestStore_PublishAndLoad(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	snap := &flow.Snapshot{ActiveStepID: "b", History: []flow.StepID{"a"}, Values: flow.Values{"x": "1"}}
	_, err := store.Publish(ctx, Event{Session: "demo", Type: EventStarted})
	require.NoError(t, err)
	_, err = store.Publish(ctx, Event{Session: "demo", Type: EventTransition, Data: "a -> b", Snapshot: snap})
	require.NoError(t, err)
	_, err = store.Publish(ctx, Event{Session: "other", Type: EventFinished})
	require.NoError(t, err)

	state, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, state.Events, 2)
	require.NotEmpty(t, state.Events[0].ID)
	require.False(t, state.Events[0].Timestamp.IsZero())
	require.False(t, state.Finished)
	require.NotNil(t, state.Snapshot)
	require.Equal(t, flow.StepID("b"), state.Snapshot.ActiveStepID)
	require.Equal(t, []flow.StepID{"a"}, state.Snapshot.History)

	empty, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, empty.Events)
	require.Nil(t, empty.Snapshot)

	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"demo", "other"}, sessions)
}

func TestState_Apply(t *testing.T) {
	var st State
	st.Apply(Event{Type: EventStarted})
	st.Apply(Event{Type: EventFinished})
	require.True(t, st.Finished)

	st.Apply(Event{Type: EventStarted})
	require.False(t, st.Finished)

	st.Apply(Event{Type: EventCancelled})
	require.True(t, st.Cancelled)
	require.Len(t, st.Events, 4)
}

func TestRecorder_RecordsWizardLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	rec := NewRecorder(ctx, store, "onboarding")

	failFirst := true
	w, err := flow.New(flow.Config{
		Steps:        plainSteps("a", "b"),
		OnStepChange: rec.OnStepChange,
		OnCancel:     rec.OnCancel,
		OnFinish: rec.WrapFinish(func(context.Context, flow.Values) error {
			if failFirst {
				failFirst = false
				return errors.New("quota")
			}
			return nil
		}),
	})
	require.NoError(t, err)
	rec.Attach(w)

	w.SetValues(flow.Values{"team": "core"})
	rec.ValuesChanged()
	require.Equal(t, flow.OutcomeMoved, w.Next(ctx))
	require.Equal(t, flow.OutcomeFinishFailed, w.Next(ctx))
	require.Equal(t, flow.OutcomeFinished, w.Finish(ctx))

	state, err := store.Load(ctx, "onboarding")
	require.NoError(t, err)

	var types []string
	for _, ev := range state.Events {
		types = append(types, ev.Type)
	}
	require.Equal(t, []string{EventStarted, EventValues, EventTransition, EventFinishFailed, EventFinished}, types)
	require.Equal(t, "a -> b", state.Events[2].Data)
	require.Equal(t, "quota", state.Events[3].Data)
	require.True(t, state.Finished)
	require.Equal(t, "core", state.Snapshot.Values.String("team"))

	resumed, err := flow.New(flow.Config{
		Steps:    plainSteps("a", "b"),
		Resume:   state.Snapshot,
		OnFinish: func(context.Context, flow.Values) error { return nil },
	})
	require.NoError(t, err)
	require.Equal(t, flow.StepID("b"), resumed.ActiveStepID())
	require.Equal(t, []flow.StepID{"a"}, resumed.History())
}

func TestRecorder_NilStore(t *testing.T) {
	var rec *Recorder
	require.NotPanics(t, func() { rec.Record(EventValues, "") })

	rec = NewRecorder(context.Background(), nil, "x")
	require.NotPanics(t, func() { rec.OnCancel() })
}

func TestValuesDiff(t *testing.T) {
	require.Empty(t, ValuesDiff(flow.Values{"a": "1"}, flow.Values{"a": "1"}))

	d := ValuesDiff(flow.Values{"a": "1"}, flow.Values{"a": "2", "b": true})
	require.Contains(t, d, "--- before")
	require.Contains(t, d, "+++ after")
	require.Contains(t, d, `-  "a": "1"`)
	require.Contains(t, d, `+  "a": "2",`)
	require.Contains(t, d, `+  "b": true`)
}

func TestWriteTimeline(t *testing.T) {
	state := &State{}
	state.Apply(Event{Type: EventStarted, Snapshot: &flow.Snapshot{ActiveStepID: "a", Values: flow.Values{}}})
	state.Apply(Event{Type: EventTransition, Data: "a -> b", Snapshot: &flow.Snapshot{ActiveStepID: "b", Values: flow.Values{"name": "ada"}}})

	var buf bytes.Buffer
	require.NoError(t, WriteTimeline(&buf, state))
	out := buf.String()
	require.Contains(t, out, "started")
	require.Contains(t, out, "a -> b  [at b]")
	require.Contains(t, out, `+  "name": "ada"`)
}
