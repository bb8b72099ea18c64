package flow

import "context"

// StepID is the stable identity of a step.
type StepID string

// Status is the navigation status of a step.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
	StatusBlocked  Status = "blocked"
)

// VisibilityFunc reports whether a step is part of the flow for the given values.
type VisibilityFunc func(values Values) bool

// EnterGuard decides whether a step may become active. It may block; the
// engine releases its lock while guards run.
type EnterGuard func(ctx context.Context, values Values) (bool, error)

// ExitGuard validates the active step before the flow moves forward or finishes.
type ExitGuard func(ctx context.Context, values Values) (Validation, error)

// NextResolver picks the step that follows. An empty StepID means the flow
// is complete and should finish.
type NextResolver func(ctx context.Context, values Values) (StepID, error)

// RenderFunc renders the body of the active step.
type RenderFunc func(api StepAPI) string

// Step is one unit of a flow. Steps are supplied by the caller and never
// modified by the engine.
type Step struct {
	ID          StepID
	Title       string
	Description string
	Icon        string

	// Optional steps can be skipped with Skip.
	Optional bool

	// nil means always visible
	Visible VisibilityFunc

	// nil means always allowed
	CanEnter EnterGuard

	// nil means always valid
	CanExit ExitGuard

	// nil means the positional successor among visible steps
	Next NextResolver

	Render RenderFunc
}

// IsVisible evaluates the step's visibility predicate.
func (s Step) IsVisible(values Values) bool {
	if s.Visible == nil {
		return true
	}
	return s.Visible(values)
}

// EnterWhen lifts a synchronous predicate into an EnterGuard.
func EnterWhen(pred func(Values) bool) EnterGuard {
	return func(_ context.Context, values Values) (bool, error) {
		return pred(values), nil
	}
}

// ExitWhen lifts a boolean predicate into an ExitGuard. A false result is
// reported as Invalid("Blocked").
func ExitWhen(pred func(Values) bool) ExitGuard {
	return func(_ context.Context, values Values) (Validation, error) {
		return FromBool(pred(values)), nil
	}
}

// ExitWith lifts a synchronous validator into an ExitGuard.
func ExitWith(validate func(Values) Validation) ExitGuard {
	return func(_ context.Context, values Values) (Validation, error) {
		return validate(values), nil
	}
}

// NextTo always resolves to the given step. NextTo("") finishes the flow.
func NextTo(id StepID) NextResolver {
	return func(context.Context, Values) (StepID, error) {
		return id, nil
	}
}

// NextWhen lifts a synchronous router into a NextResolver.
func NextWhen(route func(Values) StepID) NextResolver {
	return func(_ context.Context, values Values) (StepID, error) {
		return route(values), nil
	}
}
