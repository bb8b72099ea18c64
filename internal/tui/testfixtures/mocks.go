package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/wizflow/internal/flow"
)

// MockFinisher records finish calls and fails while Err is set.
// It is safe for concurrent use.
type MockFinisher struct {
	mu    sync.Mutex
	err   error
	calls []flow.Values
}

// NewMockFinisher creates a finisher that succeeds.
func NewMockFinisher() *MockFinisher {
	return &MockFinisher{}
}

// SetError makes subsequent calls fail with err (nil to succeed).
func (f *MockFinisher) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Finish is a flow finish handler.
func (f *MockFinisher) Finish(_ context.Context, values flow.Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, values.Clone())
	return f.err
}

// Calls returns the values passed to each call.
func (f *MockFinisher) Calls() []flow.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]flow.Values, len(f.calls))
	copy(out, f.calls)
	return out
}
