package flow

import (
	"fmt"
	"slices"
)

// NavigationPolicy decides which non-adjacent steps GoTo may reach.
type NavigationPolicy string

const (
	// PolicyVisitedOnly allows jumps to steps that have been active, that
	// have a recorded status, or that are in history. Jumping back truncates
	// history.
	PolicyVisitedOnly NavigationPolicy = "visited-only"

	// PolicyFree allows jumps to any visible step. Every jump pushes the
	// current step onto history.
	PolicyFree NavigationPolicy = "free"
)

// ParsePolicy parses a policy name. The empty string selects PolicyVisitedOnly.
func ParsePolicy(s string) (NavigationPolicy, error) {
	switch NavigationPolicy(s) {
	case "", PolicyVisitedOnly:
		return PolicyVisitedOnly, nil
	case PolicyFree:
		return PolicyFree, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// canGoToLocked reports whether id is reachable under the configured policy.
// Callers must hold w.mu.
func (w *Wizard) canGoToLocked(id StepID) bool {
	if !slices.Contains(w.visibleIDsLocked(), id) {
		return false
	}
	if w.policy == PolicyFree {
		return true
	}
	if id == w.active {
		return true
	}
	if st, ok := w.statuses[id]; ok && st != StatusUpcoming {
		return true
	}
	if w.visited[id] {
		return true
	}
	return slices.Contains(w.history, id)
}

// jumpHistoryLocked updates history for a GoTo from -> to.
func (w *Wizard) jumpHistoryLocked(from, to StepID) {
	if w.policy == PolicyVisitedOnly {
		if idx := lastIndexOf(w.history, to); idx >= 0 {
			w.history = w.history[:idx]
			return
		}
	}
	w.history = append(w.history, from)
}

func lastIndexOf(ids []StepID, id StepID) int {
	for i := len(ids) - 1; i >= 0; i-- {
		if ids[i] == id {
			return i
		}
	}
	return -1
}
