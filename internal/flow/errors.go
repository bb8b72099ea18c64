package flow

import "errors"

// Registry validation errors returned by New.
var (
	ErrNoSteps       = errors.New("flow has no steps")
	ErrEmptyStepID   = errors.New("step id is empty")
	ErrDuplicateStep = errors.New("duplicate step id")
	ErrMissingRender = errors.New("step has no render function")
	ErrMissingFinish = errors.New("flow has no finish handler")
	ErrUnknownPolicy = errors.New("unknown navigation policy")
)

// Errors surfaced through Validation when a command cannot proceed.
var (
	// ErrGuardPanic wraps a panic raised inside a guard, resolver or finish handler.
	ErrGuardPanic = errors.New("guard panicked")

	// ErrUnknownStep is reported when a next resolver names a step that is not
	// in the registry.
	ErrUnknownStep = errors.New("unknown step")

	// ErrStepHidden is reported when a next resolver names a step that is not
	// currently visible.
	ErrStepHidden = errors.New("step is not visible")
)
