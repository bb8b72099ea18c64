package flow

// generation is the monotonic counter that orders asynchronous commands.
// Only the command holding the latest number may mutate state when its
// guards resolve; older commands discard their results. Access is guarded
// by Wizard.mu.
type generation struct {
	current uint64
}

// next starts a new command and returns its number.
func (g *generation) next() uint64 {
	g.current++
	return g.current
}

// isLatest reports whether n belongs to the most recently started command.
func (g *generation) isLatest(n uint64) bool {
	return n == g.current
}
