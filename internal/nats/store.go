package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding every flow journal.
	StreamName = "wizflow_events"

	subjectRoot = "wizflow"
)

// SubjectForSession returns the wildcard subject for every event of a session.
// Example: "wizflow.onboarding.>"
func SubjectForSession(session string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, session)
}

// SubjectForEvent returns the subject for one event type of a session.
// Example: "wizflow.onboarding.transition"
func SubjectForEvent(session, eventType string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, session, eventType)
}

// SetupStream creates or updates the journal stream with 30-day retention.
func SetupStream(ctx context.Context, js jetstream.JetStream) (jetstream.Stream, error) {
	return js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectRoot + ".>"},
		Storage:  jetstream.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
}

// SessionConsumer creates an ephemeral consumer over one session's events,
// starting from the first message.
func SessionConsumer(ctx context.Context, stream jetstream.Stream, session string) (jetstream.Consumer, error) {
	return stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: SubjectForSession(session),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
}
