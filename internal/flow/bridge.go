package flow

import (
	"context"
	"fmt"

	"github.com/mark3labs/wizflow/internal/logger"
)

// StepAPI is the surface handed to the active step's Render function.
type StepAPI struct {
	ctx context.Context
	w   *Wizard
}

// StepAPI returns the step body surface. Commands issued through it use ctx.
func (w *Wizard) StepAPI(ctx context.Context) StepAPI {
	return StepAPI{ctx: ctx, w: w}
}

func (a StepAPI) Values() Values { return a.w.Values() }
func (a StepAPI) SetValues(partial Values) { a.w.SetValues(partial) }
func (a StepAPI) Errors() *Validation { return a.w.Errors() }
func (a StepAPI) ActiveStepID() StepID { return a.w.ActiveStepID() }
func (a StepAPI) IsBusy() bool { return a.w.IsBusy() }
func (a StepAPI) Next() Outcome { return a.w.Next(a.ctx) }
func (a StepAPI) Previous() Outcome { return a.w.Previous() }
func (a StepAPI) GoTo(id StepID) Outcome { return a.w.GoTo(a.ctx, id) }
func (a StepAPI) Skip() Outcome { return a.w.Skip(a.ctx) }
func (a StepAPI) Finish() Outcome { return a.w.Finish(a.ctx) }

// Navigator is the read-mostly surface for steppers and footers. It cannot
// change values, skip or finish.
type Navigator struct {
	w *Wizard
}

// Navigator returns the presentation surface.
func (w *Wizard) Navigator() Navigator {
	return Navigator{w: w}
}

func (n Navigator) VisibleSteps() []Step { return n.w.VisibleSteps() }
func (n Navigator) ActiveStepID() StepID { return n.w.ActiveStepID() }
func (n Navigator) StepStatus(id StepID) Status { return n.w.StepStatus(id) }
func (n Navigator) CanGoTo(id StepID) bool { return n.w.CanGoTo(id) }
func (n Navigator) Labels() Labels { return n.w.labels }
func (n Navigator) Variant() string { return n.w.variant }
func (n Navigator) IsBusy() bool { return n.w.IsBusy() }

// GoTo jumps to id if allowed.
func (n Navigator) GoTo(ctx context.Context, id StepID) Outcome {
	return n.w.GoTo(ctx, id)
}

// Progress returns the 1-based position of the active step and the number
// of visible steps. Hidden steps are not counted.
func (n Navigator) Progress() (current, total int) {
	n.w.mu.Lock()
	defer n.w.mu.Unlock()
	ids := n.w.visibleIDsLocked()
	for i, id := range ids {
		if id == n.w.active {
			return i + 1, len(ids)
		}
	}
	return 0, len(ids)
}

// Labels returns the label overrides.
func (w *Wizard) Labels() Labels {
	return w.labels
}

// Variant returns the stepper variant requested by the host.
func (w *Wizard) Variant() string {
	return w.variant
}

// RenderActive renders the active step. A panicking renderer is reported in
// the returned text instead of crashing the host.
func (w *Wizard) RenderActive(ctx context.Context) (out string) {
	step, ok := w.ActiveStep()
	if !ok {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Render for step %s panicked: %v", step.ID, r)
			out = fmt.Sprintf("render failed: %v", r)
		}
	}()
	return step.Render(w.StepAPI(ctx))
}
