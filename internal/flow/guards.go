package flow

import (
	"context"
	"fmt"
	"slices"

	"github.com/mark3labs/wizflow/internal/logger"
)

// call runs a caller-supplied function, turning a panic into an error.
func call[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrGuardPanic, r)
		}
	}()
	return fn()
}

// canEnterStep evaluates the entry guard of step. Errors count as a rejection.
func canEnterStep(ctx context.Context, step Step, values Values) (bool, error) {
	if step.CanEnter == nil {
		return true, nil
	}
	ok, err := call(func() (bool, error) { return step.CanEnter(ctx, values) })
	if err != nil {
		logger.Warn("Entry guard for step %s failed: %v", step.ID, err)
		return false, err
	}
	return ok, nil
}

// canExitStep evaluates the exit guard of step and normalizes the result.
func canExitStep(ctx context.Context, step Step, values Values) Validation {
	if step.CanExit == nil {
		return Valid()
	}
	res, err := call(func() (Validation, error) { return step.CanExit(ctx, values) })
	if err != nil {
		logger.Warn("Exit guard for step %s failed: %v", step.ID, err)
		return FromError(err)
	}
	return res.normalize()
}

// resolveNextStepID returns the step that follows from. An empty id means
// the flow should finish. visible is the visible step list at the time the
// command started.
func resolveNextStepID(ctx context.Context, from Step, values Values, visible []StepID) (StepID, error) {
	if from.Next != nil {
		id, err := call(func() (StepID, error) { return from.Next(ctx, values) })
		if err != nil {
			logger.Warn("Next resolver for step %s failed: %v", from.ID, err)
			return "", err
		}
		return id, nil
	}

	idx := slices.Index(visible, from.ID)
	if idx < 0 || idx+1 >= len(visible) {
		return "", nil
	}
	return visible[idx+1], nil
}
