package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	require.Equal(t, "wizflow.onboarding.>", SubjectForSession("onboarding"))
	require.Equal(t, "wizflow.onboarding.transition", SubjectForEvent("onboarding", "transition"))
}

func TestOpenPublishClose(t *testing.T) {
	ctx := context.Background()
	bus, err := Open(ctx, t.TempDir())
	require.NoError(t, err)

	info, err := bus.Stream.Info(ctx)
	require.NoError(t, err)
	require.Equal(t, StreamName, info.Config.Name)

	_, err = bus.JS.Publish(ctx, SubjectForEvent("s1", "started"), []byte(`{}`))
	require.NoError(t, err)
	_, err = bus.JS.Publish(ctx, SubjectForEvent("s2", "started"), []byte(`{}`))
	require.NoError(t, err)

	consumer, err := SessionConsumer(ctx, bus.Stream, "s1")
	require.NoError(t, err)
	msgs, err := consumer.FetchNoWait(10)
	require.NoError(t, err)

	count := 0
	for msg := range msgs.Messages() {
		require.Equal(t, "wizflow.s1.started", msg.Subject())
		require.NoError(t, msg.Ack())
		count++
	}
	require.Equal(t, 1, count)

	require.NoError(t, bus.Close())
	require.True(t, bus.Conn.IsClosed())
}

func TestCloseNil(t *testing.T) {
	var bus *Bus
	require.NoError(t, bus.Close())
	require.NoError(t, Shutdown(nil, nil))
}
