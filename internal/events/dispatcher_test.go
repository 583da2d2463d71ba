package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_PublishFillsMetadata(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got Event
	d.Subscribe(EventUserRegistered, func(_ context.Context, e Event) error {
		got = e
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventUserRegistered, Username: "alice"}))
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "alice", got.Username)
}

func TestInMemoryDispatcher_RunsEveryHandlerAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	errFirst := errors.New("first")
	calls := 0
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		calls++
		return errFirst
	})
	d.Subscribe(EventUserDeleted, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventSessionCreated, func(context.Context, Event) error {
		t.Fatal("handler of another event type must not run")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventUserDeleted})
	assert.ErrorIs(t, err, errFirst)
	assert.Equal(t, 2, calls)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), Event{Type: EventBookmarkCreated}))
}
