// Package session keeps the live game sessions of a server process.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/internal/services/events"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

const (
	DefaultTTL          = time.Hour
	DefaultReapInterval = time.Minute

	publishTimeout = 5 * time.Second
)

var ErrSessionNotFound = errors.New("session not found")

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Options tunes a Manager. Zero fields take the defaults.
type Options struct {
	TTL          time.Duration // Idle time after which a session is closed
	ReapInterval time.Duration // Zero disables the background reaper
	Game         game.Options
	Clock        Clock
}

type entry struct {
	machine    *game.Machine
	lastAccess time.Time
	forwarded  chan struct{} // Closed when the snapshot forwarder exits
}

// Manager creates game sessions and keeps them by id until they are deleted
// or sit idle past the TTL.
type Manager struct {
	catalog   *world.Catalog
	riddles   game.RiddleService
	publisher events.Publisher
	opts      Options
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	closed   bool

	stop     chan struct{}
	stopOnce sync.Once
	reaper   sync.WaitGroup
}

func NewManager(catalog *world.Catalog, riddles game.RiddleService, publisher events.Publisher, logger *slog.Logger, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	m := &Manager{
		catalog:   catalog,
		riddles:   riddles,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*entry),
		stop:      make(chan struct{}),
	}
	if opts.ReapInterval > 0 {
		m.reaper.Add(1)
		go m.reapLoop(opts.ReapInterval)
	}
	return m
}

// Create starts a new session in the catalog's starting room.
func (m *Manager) Create(ctx context.Context) (*game.Machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, game.ErrClosed
	}

	machine := game.New(m.catalog, m.riddles, m.logger, m.opts.Game)
	e := &entry{
		machine:    machine,
		lastAccess: m.opts.Clock.Now(),
		forwarded:  make(chan struct{}),
	}
	m.sessions[machine.ID()] = e

	snaps, _ := machine.Subscribe()
	go m.forward(e, snaps)

	m.logger.Info("Session created", "session_id", machine.ID().String(), "sessions", len(m.sessions))
	return machine, nil
}

// forward relays a machine's snapshots to the publisher until the machine is
// closed. The first snapshot announces the session.
func (m *Manager) forward(e *entry, snaps <-chan state.Snapshot) {
	defer close(e.forwarded)
	first := true
	for snap := range snaps {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		var err error
		if first {
			err = m.publisher.PublishSessionCreated(ctx, snap)
			first = false
		} else {
			err = m.publisher.PublishGameStateUpdated(ctx, snap)
		}
		cancel()
		if err != nil {
			m.logger.Warn("Failed to publish session event", "session_id", snap.ID.String(), "error", err)
		}
	}
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id uuid.UUID) (*game.Machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastAccess = m.opts.Clock.Now()
	return e.machine, nil
}

// Delete closes a session and forgets it.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	m.closeEntry(ctx, id, e)
	m.logger.Info("Session deleted", "session_id", id.String())
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the reaper and closes every session.
func (m *Manager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.reaper.Wait()

	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*entry)
	m.mu.Unlock()

	for id, e := range sessions {
		m.closeEntry(context.Background(), id, e)
	}
	m.logger.Info("Session manager closed", "closed_sessions", len(sessions))
	return nil
}

func (m *Manager) closeEntry(ctx context.Context, id uuid.UUID, e *entry) {
	_ = e.machine.Close()
	<-e.forwarded

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := m.publisher.PublishSessionClosed(ctx, id); err != nil {
		m.logger.Warn("Failed to publish session close", "session_id", id.String(), "error", err)
	}
}

// reapIdle closes sessions idle for longer than the TTL and returns how many
// it closed.
func (m *Manager) reapIdle() int {
	cutoff := m.opts.Clock.Now().Add(-m.opts.TTL)

	m.mu.Lock()
	expired := make(map[uuid.UUID]*entry)
	for id, e := range m.sessions {
		if e.lastAccess.Before(cutoff) {
			expired[id] = e
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for id, e := range expired {
		m.closeEntry(context.Background(), id, e)
		m.logger.Info("Session expired", "session_id", id.String())
	}
	return len(expired)
}

func (m *Manager) reapLoop(interval time.Duration) {
	defer m.reaper.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if n := m.reapIdle(); n > 0 {
				m.logger.Debug("Reaped idle sessions", "count", n)
			}
		}
	}
}
