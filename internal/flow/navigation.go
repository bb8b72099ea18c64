package flow

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/wizflow/internal/logger"
)

// attempt captures the state an asynchronous command evaluates its guards
// against. Guards see the values as they were when the command started.
type attempt struct {
	op      string
	gen     uint64
	from    Step
	values  Values
	visible []StepID
}

// begin starts an asynchronous command. It returns false when there is no
// active step or pre rejects it.
func (w *Wizard) begin(op string, pre func(active Step) bool) (attempt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	step, ok := w.activeStepLocked()
	if !ok || (pre != nil && !pre(step)) {
		return attempt{}, false
	}
	a := attempt{
		op:      op,
		gen:     w.gen.next(),
		from:    step,
		values:  w.values.Clone(),
		visible: w.visibleIDsLocked(),
	}
	w.busy = true
	logger.Debug("%s from %s started (generation %d)", op, step.ID, a.gen)
	return a, true
}

// isStale reports whether a newer command started after a.
func (w *Wizard) isStale(a attempt) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	stale := !w.gen.isLatest(a.gen)
	if stale {
		logger.Debug("Discarding stale %s from %s (generation %d)", a.op, a.from.ID, a.gen)
	}
	return stale
}

// settle applies the result of a if it is still the latest command, then
// restores the active step invariant and runs queued observers.
func (w *Wizard) settle(a attempt, apply func() Outcome) Outcome {
	w.mu.Lock()
	if !w.gen.isLatest(a.gen) {
		w.mu.Unlock()
		logger.Debug("Discarding stale %s from %s (generation %d)", a.op, a.from.ID, a.gen)
		return OutcomeStale
	}
	w.busy = false

	// SetValues may have moved the cursor while guards were running.
	out := OutcomeNoop
	if w.active == a.from.ID {
		out = apply()
	}
	w.reconcileLocked()
	w.unlockAndFlush()

	logger.Debug("%s from %s: %s", a.op, a.from.ID, out)
	return out
}

// Next validates the active step, resolves its successor and moves there.
// When there is no successor the flow finishes.
func (w *Wizard) Next(ctx context.Context) Outcome {
	a, ok := w.begin("next", nil)
	if !ok {
		return OutcomeNoop
	}

	res := canExitStep(ctx, a.from, a.values)
	if w.isStale(a) {
		return OutcomeStale
	}
	if !res.OK {
		return w.settle(a, func() Outcome {
			w.failLocked(a.from.ID, res)
			return OutcomeInvalid
		})
	}
	return w.advance(ctx, a, StatusComplete)
}

// Skip leaves an optional step without validating it. It is a no-op on
// required steps. With no successor it behaves as Finish.
func (w *Wizard) Skip(ctx context.Context) Outcome {
	a, ok := w.begin("skip", func(s Step) bool { return s.Optional })
	if !ok {
		return OutcomeNoop
	}
	return w.advance(ctx, a, StatusSkipped)
}

// GoTo jumps to id if the navigation policy allows it. The target's entry
// guard applies under both the visited-only and free policies.
func (w *Wizard) GoTo(ctx context.Context, id StepID) Outcome {
	a, ok := w.begin("goto", func(s Step) bool {
		return id != s.ID && w.canGoToLocked(id)
	})
	if !ok {
		return OutcomeNoop
	}
	return w.enter(ctx, a, id, func() bool {
		if !w.canGoToLocked(id) {
			return false
		}
		w.jumpHistoryLocked(a.from.ID, id)
		return true
	})
}

// Finish validates the active step and invokes the finish handler.
func (w *Wizard) Finish(ctx context.Context) Outcome {
	a, ok := w.begin("finish", nil)
	if !ok {
		return OutcomeNoop
	}
	return w.finish(ctx, a)
}

// finish runs the exit guard of a.from and, if it passes, the finish handler.
func (w *Wizard) finish(ctx context.Context, a attempt) Outcome {
	res := canExitStep(ctx, a.from, a.values)
	if w.isStale(a) {
		return OutcomeStale
	}
	if !res.OK {
		return w.settle(a, func() Outcome {
			w.failLocked(a.from.ID, res)
			return OutcomeInvalid
		})
	}
	return w.complete(ctx, a, StatusComplete)
}

// Previous returns to the most recent visible history entry. It never runs
// guards and is a no-op while a command is in flight.
func (w *Wizard) Previous() Outcome {
	w.mu.Lock()
	if w.busy || w.active == "" {
		w.mu.Unlock()
		return OutcomeNoop
	}

	visible := w.visibleIDsLocked()
	for n := len(w.history); n > 0; n = len(w.history) {
		id := w.history[n-1]
		w.history = w.history[:n-1]
		if id == w.active || !slices.Contains(visible, id) {
			continue
		}
		w.moveLocked(w.active, id)
		w.unlockAndFlush()
		return OutcomeMoved
	}

	w.mu.Unlock()
	return OutcomeNoop
}

// Cancel invokes the cancel observer. State is left untouched.
func (w *Wizard) Cancel() {
	if w.onCancel == nil {
		return
	}
	logger.Debug("Flow cancelled")
	notify(w.onCancel)
}

// SetValues shallow-merges partial into the values and clears errors. If the
// active step becomes hidden the cursor falls back without running guards.
func (w *Wizard) SetValues(partial Values) {
	w.mu.Lock()
	w.values = w.values.Merge(partial)
	w.errs = nil
	w.reconcileLocked()
	w.unlockAndFlush()
}

// advance resolves the successor of a.from and either enters it or finishes.
// status is recorded on a.from when it is left.
func (w *Wizard) advance(ctx context.Context, a attempt, status Status) Outcome {
	target, err := resolveNextStepID(ctx, a.from, a.values, a.visible)
	if w.isStale(a) {
		return OutcomeStale
	}
	if err != nil {
		return w.settle(a, func() Outcome {
			w.failLocked(a.from.ID, FromError(err))
			return OutcomeInvalid
		})
	}
	if target == "" {
		if status == StatusSkipped {
			// Skipping the last step is a finish, guard included.
			return w.finish(ctx, a)
		}
		return w.complete(ctx, a, status)
	}

	if _, known := w.byID[target]; !known {
		return w.settle(a, func() Outcome {
			w.failLocked(a.from.ID, FromError(fmt.Errorf("%w: %s", ErrUnknownStep, target)))
			return OutcomeInvalid
		})
	}
	if !slices.Contains(a.visible, target) {
		return w.settle(a, func() Outcome {
			w.failLocked(a.from.ID, FromError(fmt.Errorf("%w: %s", ErrStepHidden, target)))
			return OutcomeInvalid
		})
	}

	return w.enter(ctx, a, target, func() bool {
		if !slices.Contains(w.visibleIDsLocked(), target) {
			return false
		}
		w.statuses[a.from.ID] = status
		w.history = append(w.history, a.from.ID)
		return true
	})
}

// enter evaluates the entry guard of target and, if it passes, runs commit
// and moves the cursor. commit may veto the move when state changed while
// the guard ran.
func (w *Wizard) enter(ctx context.Context, a attempt, target StepID, commit func() bool) Outcome {
	step := w.steps[w.byID[target]]
	ok, err := canEnterStep(ctx, step, a.values)

	return w.settle(a, func() Outcome {
		if !ok {
			w.statuses[target] = StatusBlocked
			if err != nil {
				v := FromError(err)
				w.errs = &v
			}
			return OutcomeBlocked
		}
		if !commit() {
			return OutcomeNoop
		}
		if w.statuses[target] == StatusBlocked {
			delete(w.statuses, target)
		}
		w.moveLocked(a.from.ID, target)
		return OutcomeMoved
	})
}

// complete invokes the finish handler and records status on a.from.
func (w *Wizard) complete(ctx context.Context, a attempt, status Status) Outcome {
	// The handler has side effects, so a superseded command must not reach it.
	if w.isStale(a) {
		return OutcomeStale
	}
	_, err := call(func() (struct{}, error) {
		return struct{}{}, w.onFinish(ctx, a.values)
	})

	return w.settle(a, func() Outcome {
		if err != nil {
			logger.Warn("Finish handler failed: %v", err)
			w.failLocked(a.from.ID, FromError(err))
			return OutcomeFinishFailed
		}
		w.statuses[a.from.ID] = status
		w.errs = nil
		w.finished = true
		return OutcomeFinished
	})
}

func (w *Wizard) failLocked(id StepID, v Validation) {
	v = v.normalize()
	w.errs = &v
	w.statuses[id] = StatusError
}

// moveLocked sets the active step, clears errors and queues the step change
// observer.
func (w *Wizard) moveLocked(from, to StepID) {
	w.active = to
	w.visited[to] = true
	w.errs = nil
	if w.onStepChange == nil {
		return
	}
	values := w.values.Clone()
	w.pending = append(w.pending, func() { w.onStepChange(from, to, values) })
}
