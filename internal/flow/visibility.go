package flow

// ComputeVisibleSteps returns the steps whose visibility predicate holds for
// values, in registry order.
func ComputeVisibleSteps(steps []Step, values Values) []Step {
	visible := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.IsVisible(values) {
			visible = append(visible, s)
		}
	}
	return visible
}

func stepIDs(steps []Step) []StepID {
	ids := make([]StepID, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}
