// Package headless drives a flow without a terminal, feeding answers and
// advancing until the flow finishes.
package headless

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/logger"
)

// ErrStuck is returned when a step cannot be left.
var ErrStuck = errors.New("flow cannot advance")

// StepError names the step a headless run stopped on.
type StepError struct {
	Step       flow.StepID
	Outcome    flow.Outcome
	Validation *flow.Validation
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("step %s: %s", e.Step, e.Outcome)
	if e.Validation != nil && !e.Validation.OK {
		msg += ": " + strings.Join(e.Validation.Messages(), "; ")
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return ErrStuck
}

// Options tune a run.
type Options struct {
	// Progress, when set, is called with each step before it is left.
	Progress func(step flow.Step, rendered string)

	// MaxSteps bounds the number of transitions. Zero means twice the number
	// of registered steps, which catches routing cycles.
	MaxSteps int
}

// Run merges answers into the wizard and calls Next until the flow
// finishes. A step that stays invalid or blocked ends the run with a
// *StepError.
func Run(ctx context.Context, w *flow.Wizard, answers flow.Values, opts Options) error {
	if len(answers) > 0 {
		w.SetValues(answers)
	}

	limit := opts.MaxSteps
	if limit <= 0 {
		limit = 2 * len(w.Steps())
	}

	for range limit {
		if err := ctx.Err(); err != nil {
			return err
		}

		step, ok := w.ActiveStep()
		if !ok {
			return fmt.Errorf("%w: no visible steps", ErrStuck)
		}
		if opts.Progress != nil {
			opts.Progress(step, w.RenderActive(ctx))
		}

		out := w.Next(ctx)
		logger.Debug("Headless next from %s: %s", step.ID, out)

		switch out {
		case flow.OutcomeFinished:
			return nil
		case flow.OutcomeMoved:
			continue
		case flow.OutcomeBlocked:
			// report the step that refused entry
			return &StepError{Step: blockedTarget(w), Outcome: out, Validation: w.Errors()}
		default:
			return &StepError{Step: step.ID, Outcome: out, Validation: w.Errors()}
		}
	}
	return fmt.Errorf("%w: exceeded %d transitions", ErrStuck, limit)
}

func blockedTarget(w *flow.Wizard) flow.StepID {
	nav := w.Navigator()
	for _, s := range nav.VisibleSteps() {
		if nav.StepStatus(s.ID) == flow.StatusBlocked {
			return s.ID
		}
	}
	return w.ActiveStepID()
}
