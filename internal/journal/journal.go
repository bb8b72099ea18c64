// Package journal records flow runs as an append-only event log in
// JetStream and replays them into resumable state.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/wizflow/internal/flow"
	"github.com/mark3labs/wizflow/internal/logger"
	"github.com/mark3labs/wizflow/internal/nats"
	"github.com/nats-io/nats.go/jetstream"
)

// Event types.
const (
	EventStarted      = "started"
	EventTransition   = "transition"
	EventValues       = "values"
	EventFinished     = "finished"
	EventFinishFailed = "finish_failed"
	EventCancelled    = "cancelled"
)

// Event is one entry of a session's journal.
type Event struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Session   string         `json:"session"`
	Type      string         `json:"type"`
	Data      string         `json:"data,omitempty"`
	Snapshot  *flow.Snapshot `json:"snapshot,omitempty"`
}

// Store publishes and replays journal events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
}

// NewStore creates a Store on the journal stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Publish appends event to the journal under wizflow.<session>.<type>.
func (s *Store) Publish(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Session, event.Type)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Debug("Published %s event for session %s: seq=%d", event.Type, event.Session, ack.Sequence)
	return ack, nil
}

// State is a session reconstructed from its journal.
type State struct {
	Session   string
	Snapshot  *flow.Snapshot
	Finished  bool
	Cancelled bool
	Events    []Event
}

// Apply reduces one event into the state.
func (st *State) Apply(event Event) {
	st.Events = append(st.Events, event)
	if event.Snapshot != nil {
		st.Snapshot = event.Snapshot
	}

	switch event.Type {
	case EventStarted:
		// a resumed run reopens the session
		st.Finished = false
		st.Cancelled = false
	case EventFinished:
		st.Finished = true
	case EventCancelled:
		st.Cancelled = true
	}
}

// Load replays every event of session. A session with no events yields an
// empty State.
func (s *Store) Load(ctx context.Context, session string) (*State, error) {
	consumer, err := nats.SessionConsumer(ctx, s.stream, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	state := &State{Session: session}

	const batchSize = 1000
	malformed := 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		count := 0
		for msg := range msgs.Messages() {
			count++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				malformed++
				if meta, merr := msg.Metadata(); merr == nil {
					logger.Warn("Skipping malformed event (seq=%d): %v", meta.Sequence.Stream, err)
				}
				_ = msg.Ack()
				continue
			}
			state.Apply(event)
			_ = msg.Ack()
		}

		if count < batchSize {
			break
		}
	}

	if malformed > 0 {
		logger.Warn("Skipped %d malformed events while loading session %s", malformed, session)
	}
	logger.Debug("Loaded session %s: %d events", session, len(state.Events))
	return state, nil
}

// Sessions lists the sessions with at least one event, sorted by name.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	info, err := s.stream.Info(ctx, jetstream.WithSubjectFilter(nats.SubjectForSession("*")))
	if err != nil {
		return nil, fmt.Errorf("failed to read stream info: %w", err)
	}

	seen := make(map[string]bool)
	for subject := range info.State.Subjects {
		// wizflow.<session>.<type>
		parts := strings.Split(subject, ".")
		if len(parts) == 3 {
			seen[parts[1]] = true
		}
	}

	sessions := make([]string, 0, len(seen))
	for name := range seen {
		sessions = append(sessions, name)
	}
	slices.Sort(sessions)
	return sessions, nil
}
