package flow

// Outcome describes what a navigation command did.
type Outcome int

const (
	// OutcomeNoop means the command's precondition did not hold.
	OutcomeNoop Outcome = iota
	// OutcomeMoved means the active step changed.
	OutcomeMoved
	// OutcomeInvalid means the exit guard rejected; see Errors.
	OutcomeInvalid
	// OutcomeBlocked means the entry guard of the target rejected.
	OutcomeBlocked
	// OutcomeFinished means the finish handler succeeded.
	OutcomeFinished
	// OutcomeFinishFailed means the finish handler returned an error; see Errors.
	OutcomeFinishFailed
	// OutcomeStale means a newer command started while this one was
	// evaluating guards, so its result was discarded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomeMoved:
		return "moved"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeFinished:
		return "finished"
	case OutcomeFinishFailed:
		return "finish-failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}
