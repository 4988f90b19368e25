package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/internal/services"
	"github.com/jwebster45206/illusionaire/internal/services/events"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvent struct {
	Type events.EventType
	ID   uuid.UUID
	Room string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) record(t events.EventType, id uuid.UUID, room string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: t, ID: id, Room: room})
	return nil
}

func (p *recordingPublisher) PublishSessionCreated(_ context.Context, snap state.Snapshot) error {
	return p.record(events.EventTypeSessionCreated, snap.ID, snap.Room.ID)
}

func (p *recordingPublisher) PublishGameStateUpdated(_ context.Context, snap state.Snapshot) error {
	return p.record(events.EventTypeGameStateUpdated, snap.ID, snap.Room.ID)
}

func (p *recordingPublisher) PublishSessionClosed(_ context.Context, id uuid.UUID) error {
	return p.record(events.EventTypeSessionClosed, id, "")
}

func (p *recordingPublisher) recorded() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

func newTestManager(t *testing.T, pub events.Publisher, clock Clock) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(world.Default(), services.NewMockRiddleService(), pub, logger, Options{
		TTL:   time.Hour,
		Clock: clock,
		Game:  game.Options{Scheduler: game.NewManualScheduler()},
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newTestManager(t, nil, nil)
	ctx := context.Background()

	machine, err := m.Create(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(machine.ID())
	require.NoError(t, err)
	assert.Same(t, machine, got)

	require.NoError(t, m.Delete(ctx, machine.ID()))
	assert.Zero(t, m.Len())

	_, err = m.Get(machine.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(ctx, machine.ID()), ErrSessionNotFound)
	assert.ErrorIs(t, machine.PerformAction(ctx, "starting_room_look"), game.ErrClosed)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newTestManager(t, nil, nil)
	ctx := context.Background()

	a, err := m.Create(ctx)
	require.NoError(t, err)
	b, err := m.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.PerformAction(ctx, "starting_room_go_north"))

	assert.Equal(t, "hallway", a.Snapshot().Room.ID)
	assert.Equal(t, "starting_room", b.Snapshot().Room.ID)
}

func TestManager_ForwardsSnapshots(t *testing.T) {
	pub := &recordingPublisher{}
	m := newTestManager(t, pub, nil)
	ctx := context.Background()

	machine, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, machine.PerformAction(ctx, "starting_room_go_north"))
	require.NoError(t, m.Delete(ctx, machine.ID()))

	// Delete waits for the forwarder, so every event is recorded by now.
	assert.Equal(t, []recordedEvent{
		{Type: events.EventTypeSessionCreated, ID: machine.ID(), Room: "starting_room"},
		{Type: events.EventTypeGameStateUpdated, ID: machine.ID(), Room: "hallway"},
		{Type: events.EventTypeSessionClosed, ID: machine.ID()},
	}, pub.recorded())
}

func TestManager_ReapsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	pub := &recordingPublisher{}
	m := newTestManager(t, pub, clock)
	ctx := context.Background()

	idle, err := m.Create(ctx)
	require.NoError(t, err)
	active, err := m.Create(ctx)
	require.NoError(t, err)

	clock.Advance(45 * time.Minute)
	_, err = m.Get(active.ID())
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	assert.Equal(t, 1, m.reapIdle())

	assert.Equal(t, 1, m.Len())
	_, err = m.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(active.ID())
	assert.NoError(t, err)

	var closed []uuid.UUID
	for _, ev := range pub.recorded() {
		if ev.Type == events.EventTypeSessionClosed {
			closed = append(closed, ev.ID)
		}
	}
	assert.Equal(t, []uuid.UUID{idle.ID()}, closed)
}

func TestManager_ReapLoop(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewManager(world.Default(), services.NewMockRiddleService(), nil, logger, Options{
		TTL:          time.Minute,
		ReapInterval: 5 * time.Millisecond,
		Clock:        clock,
	})
	defer m.Close()

	_, err := m.Create(context.Background())
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestManager_Close(t *testing.T) {
	m := newTestManager(t, nil, nil)
	ctx := context.Background()
	machine, err := m.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Close())

	assert.Zero(t, m.Len())
	assert.ErrorIs(t, machine.Fight(ctx), game.ErrClosed)
	_, err = m.Create(ctx)
	assert.ErrorIs(t, err, game.ErrClosed)
	require.NoError(t, m.Close())
}
