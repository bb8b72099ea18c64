package journal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/logger"
)

// publishTimeout bounds each journal write so a stalled server cannot hang
// navigation.
const publishTimeout = 2 * time.Second

// Recorder writes a wizard's lifecycle to the journal. Its methods have the
// shapes of the flow observers and never fail; publish errors are logged.
type Recorder struct {
	ctx     context.Context
	store   *Store
	session string

	mu     sync.Mutex
	wizard *flow.Wizard
}

// NewRecorder creates a recorder for session. ctx bounds every publish.
func NewRecorder(ctx context.Context, store *Store, session string) *Recorder {
	return &Recorder{ctx: ctx, store: store, session: session}
}

// Session returns the session name.
func (r *Recorder) Session() string {
	return r.session
}

// Attach sets the wizard whose snapshot accompanies each event and records
// the start of the run.
func (r *Recorder) Attach(w *flow.Wizard) {
	r.mu.Lock()
	r.wizard = w
	r.mu.Unlock()
	r.Record(EventStarted, string(w.ActiveStepID()))
}

// Record publishes an event carrying the attached wizard's snapshot.
func (r *Recorder) Record(eventType, data string) {
	if r == nil || r.store == nil {
		return
	}

	event := Event{Session: r.session, Type: eventType, Data: data}
	r.mu.Lock()
	if r.wizard != nil {
		snap := r.wizard.Snapshot()
		event.Snapshot = &snap
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.ctx, publishTimeout)
	defer cancel()
	if _, err := r.store.Publish(ctx, event); err != nil {
		logger.Warn("Journal write failed for session %s: %v", r.session, err)
	}
}

// OnStepChange records a transition.
func (r *Recorder) OnStepChange(from, to flow.StepID, _ flow.Values) {
	r.Record(EventTransition, fmt.Sprintf("%s -> %s", from, to))
}

// OnCancel records a cancellation.
func (r *Recorder) OnCancel() {
	r.Record(EventCancelled, "")
}

// ValuesChanged records the current values.
func (r *Recorder) ValuesChanged() {
	r.Record(EventValues, "")
}

// WrapFinish returns a finish handler that records the result of finish.
func (r *Recorder) WrapFinish(finish func(context.Context, flow.Values) error) func(context.Context, flow.Values) error {
	return func(ctx context.Context, values flow.Values) error {
		if err := finish(ctx, values); err != nil {
			r.Record(EventFinishFailed, err.Error())
			return err
		}
		r.Record(EventFinished, "")
		return nil
	}
}
