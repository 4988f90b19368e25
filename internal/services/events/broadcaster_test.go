package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBroadcaster(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil))), client
}

func receive(t *testing.T, ch <-chan *redis.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_PublishesToSessionChannel(t *testing.T) {
	b, client := setupBroadcaster(t)
	ctx := context.Background()
	snap := state.New(world.Default()).Snapshot()

	sub := client.Subscribe(ctx, Channel(snap.ID))
	defer sub.Close()
	_, err := sub.Receive(ctx) // Subscription confirmation
	require.NoError(t, err)
	ch := sub.Channel()

	require.NoError(t, b.PublishSessionCreated(ctx, snap))
	require.NoError(t, b.PublishGameStateUpdated(ctx, snap))
	require.NoError(t, b.PublishSessionClosed(ctx, snap.ID))

	created := receive(t, ch)
	assert.Equal(t, EventTypeSessionCreated, created.Type)
	assert.Equal(t, snap.ID.String(), created.SessionID)
	require.NotNil(t, created.Snapshot)
	assert.Equal(t, "starting_room", created.Snapshot.Room.ID)

	updated := receive(t, ch)
	assert.Equal(t, EventTypeGameStateUpdated, updated.Type)
	require.NotNil(t, updated.Snapshot)
	assert.Equal(t, 100, updated.Snapshot.Health)

	closed := receive(t, ch)
	assert.Equal(t, EventTypeSessionClosed, closed.Type)
	assert.Nil(t, closed.Snapshot)
}

func TestBroadcaster_PublishFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	b := NewBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mr.Close()

	err := b.PublishSessionClosed(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "failed to publish event")
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("3f8a4f3e-8e5e-4c59-9a53-0d5f0c6b7a11")
	assert.Equal(t, "game-events:3f8a4f3e-8e5e-4c59-9a53-0d5f0c6b7a11", Channel(id))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	ctx := context.Background()
	assert.NoError(t, p.PublishSessionCreated(ctx, state.Snapshot{}))
	assert.NoError(t, p.PublishGameStateUpdated(ctx, state.Snapshot{}))
	assert.NoError(t, p.PublishSessionClosed(ctx, uuid.New()))
}
