// Package flow implements the multi-step flow engine behind wizflow.
//
// A [Wizard] drives an ordered registry of [Step] values. Steps can hide
// themselves based on the collected [Values], guard entry and exit, and pick
// their successor dynamically. The engine keeps a history stack for
// [Wizard.Previous], a per-step [Status] map, and a generation counter so
// that overlapping asynchronous commands resolve last-attempt-wins.
//
// Guards run on the calling goroutine with the engine lock released, so
// hosts typically issue commands from background goroutines (for example a
// Bubbletea tea.Cmd) and re-read state when the command returns.
package flow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/mark3labs/wizflow/internal/logger"
)

// Labels are presentation overrides for navigation controls. The engine
// passes them through unmodified.
type Labels struct {
	Next   string `yaml:"next" json:"next,omitempty"`
	Back   string `yaml:"back" json:"back,omitempty"`
	Skip   string `yaml:"skip" json:"skip,omitempty"`
	Finish string `yaml:"finish" json:"finish,omitempty"`
	Cancel string `yaml:"cancel" json:"cancel,omitempty"`
}

// Snapshot is a copy of the resumable part of a wizard's state.
type Snapshot struct {
	ActiveStepID StepID            `json:"active_step_id"`
	History      []StepID          `json:"history"`
	Values       Values            `json:"values"`
	Statuses     map[StepID]Status `json:"statuses,omitempty"`
	Visited      []StepID          `json:"visited,omitempty"`
}

// Config configures a Wizard.
type Config struct {
	Steps         []Step
	InitialValues Values

	// StartAt selects the first active step. Ignored unless visible.
	StartAt StepID

	// Resume restores a snapshot taken from an earlier run of the same flow.
	// Its values are merged over InitialValues and its active step takes
	// precedence over StartAt.
	Resume *Snapshot

	Policy NavigationPolicy

	// OnFinish is required. An error keeps the flow open and is surfaced
	// through Errors.
	OnFinish func(ctx context.Context, values Values) error

	OnCancel     func()
	OnStepChange func(from, to StepID, values Values)

	Labels  Labels
	Variant string
}

// Wizard is a running flow instance. All methods are safe for concurrent use.
type Wizard struct {
	steps []Step
	byID  map[StepID]int

	policy       NavigationPolicy
	onFinish     func(ctx context.Context, values Values) error
	onCancel     func()
	onStepChange func(from, to StepID, values Values)
	labels       Labels
	variant      string

	mu       sync.Mutex
	values   Values
	history  []StepID
	statuses map[StepID]Status
	visited  map[StepID]bool
	active   StepID
	errs     *Validation
	busy     bool
	finished bool
	gen      generation

	// observer calls queued while holding mu, run after unlock
	pending []func()
}

// New validates cfg and creates a Wizard positioned on its start step.
func New(cfg Config) (*Wizard, error) {
	if len(cfg.Steps) == 0 {
		return nil, ErrNoSteps
	}
	if cfg.OnFinish == nil {
		return nil, ErrMissingFinish
	}
	policy, err := ParsePolicy(string(cfg.Policy))
	if err != nil {
		return nil, err
	}

	byID := make(map[StepID]int, len(cfg.Steps))
	for i, s := range cfg.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %d: %w", i, ErrEmptyStepID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, s.ID)
		}
		if s.Render == nil {
			return nil, fmt.Errorf("step %s: %w", s.ID, ErrMissingRender)
		}
		byID[s.ID] = i
	}

	w := &Wizard{
		steps:        slices.Clone(cfg.Steps),
		byID:         byID,
		policy:       policy,
		onFinish:     cfg.OnFinish,
		onCancel:     cfg.OnCancel,
		onStepChange: cfg.OnStepChange,
		labels:       cfg.Labels,
		variant:      cfg.Variant,
		values:       cfg.InitialValues.Clone(),
		statuses:     make(map[StepID]Status),
		visited:      make(map[StepID]bool),
	}

	start := cfg.StartAt
	if r := cfg.Resume; r != nil {
		w.values = w.values.Merge(r.Values)
		for _, id := range r.History {
			if _, ok := byID[id]; ok {
				w.history = append(w.history, id)
			}
		}
		for id, st := range r.Statuses {
			if _, ok := byID[id]; ok && st != StatusActive {
				w.statuses[id] = st
			}
		}
		for _, id := range r.Visited {
			if _, ok := byID[id]; ok {
				w.visited[id] = true
			}
		}
		if r.ActiveStepID != "" {
			start = r.ActiveStepID
		}
	}

	if slices.Contains(w.visibleIDsLocked(), start) {
		w.active = start
	} else if start != "" {
		logger.Debug("Start step %s is not visible, falling back", start)
	}
	w.reconcileLocked()

	logger.Debug("Wizard created with %d steps, policy=%s, active=%s", len(w.steps), w.policy, w.active)
	return w, nil
}

// Steps returns the full step registry.
func (w *Wizard) Steps() []Step {
	return slices.Clone(w.steps)
}

// Step looks up a step by id.
func (w *Wizard) Step(id StepID) (Step, bool) {
	i, ok := w.byID[id]
	if !ok {
		return Step{}, false
	}
	return w.steps[i], true
}

// Policy returns the navigation policy.
func (w *Wizard) Policy() NavigationPolicy {
	return w.policy
}

// Values returns a copy of the collected values.
func (w *Wizard) Values() Values {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.values.Clone()
}

// History returns a copy of the history stack, oldest first.
func (w *Wizard) History() []StepID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.history)
}

// ActiveStepID returns the active step id, or "" when no step is visible.
func (w *Wizard) ActiveStepID() StepID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// ActiveStep returns the active step.
func (w *Wizard) ActiveStep() (Step, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.activeStepLocked()
}

// VisibleSteps returns the steps visible for the current values.
func (w *Wizard) VisibleSteps() []Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ComputeVisibleSteps(w.steps, w.values)
}

// VisibleStepIDs returns the ids of the visible steps.
func (w *Wizard) VisibleStepIDs() []StepID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visibleIDsLocked()
}

// ActiveIndex returns the position of the active step among visible steps,
// or -1 when there is none.
func (w *Wizard) ActiveIndex() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Index(w.visibleIDsLocked(), w.active)
}

// IsFirstStep reports whether the active step is the first visible step.
func (w *Wizard) IsFirstStep() bool {
	return w.ActiveIndex() == 0
}

// IsLastStep reports whether the active step is the last visible step.
func (w *Wizard) IsLastStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := w.visibleIDsLocked()
	return len(ids) > 0 && ids[len(ids)-1] == w.active
}

// StepStatus returns the status of a step. The active step always reports
// StatusActive; steps without a recorded status report StatusUpcoming.
func (w *Wizard) StepStatus(id StepID) Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.statusLocked(id)
}

// CanGoTo reports whether GoTo(id) would be attempted.
func (w *Wizard) CanGoTo(id StepID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canGoToLocked(id)
}

// Errors returns the last guard or finish failure, or nil.
func (w *Wizard) Errors() *Validation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.errs == nil {
		return nil
	}
	v := w.errs.clone()
	return &v
}

// IsBusy reports whether an asynchronous command is in flight.
func (w *Wizard) IsBusy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// IsFinished reports whether the finish handler has succeeded.
func (w *Wizard) IsFinished() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finished
}

// Snapshot returns a copy of the resumable state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		ActiveStepID: w.active,
		History:      slices.Clone(w.history),
		Values:       w.values.Clone(),
		Statuses:     maps.Clone(w.statuses),
		Visited:      w.visitedIDsLocked(),
	}
}

// visitedIDsLocked returns the steps that have been active, in registry order.
func (w *Wizard) visitedIDsLocked() []StepID {
	var ids []StepID
	for _, s := range w.steps {
		if w.visited[s.ID] {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func (w *Wizard) visibleIDsLocked() []StepID {
	return stepIDs(ComputeVisibleSteps(w.steps, w.values))
}

func (w *Wizard) activeStepLocked() (Step, bool) {
	if w.active == "" {
		return Step{}, false
	}
	return w.steps[w.byID[w.active]], true
}

func (w *Wizard) statusLocked(id StepID) Status {
	if id != "" && id == w.active {
		return StatusActive
	}
	if st, ok := w.statuses[id]; ok {
		return st
	}
	return StatusUpcoming
}

// reconcileLocked restores the invariant that the active step is visible.
// It prunes history to visible ids and, when the active step was hidden,
// falls back to the most recent visible history entry or the first visible
// step. It never runs guards or observers.
func (w *Wizard) reconcileLocked() {
	visible := w.visibleIDsLocked()
	w.history = slices.DeleteFunc(w.history, func(id StepID) bool {
		return !slices.Contains(visible, id)
	})

	if w.active != "" && slices.Contains(visible, w.active) {
		w.visited[w.active] = true
		return
	}

	hidden := w.active
	w.active = ""
	if n := len(w.history); n > 0 {
		w.active = w.history[n-1]
		w.history = w.history[:n-1]
	} else if len(visible) > 0 {
		w.active = visible[0]
	}

	if w.active != "" {
		w.visited[w.active] = true
	}
	if hidden != "" {
		logger.Debug("Active step %s is no longer visible, moved to %q", hidden, w.active)
	}
}

// unlockAndFlush releases mu and runs queued observer calls.
func (w *Wizard) unlockAndFlush() {
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()

	for _, fn := range pending {
		notify(fn)
	}
}

func notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Step change observer panicked: %v", r)
		}
	}()
	fn()
}
