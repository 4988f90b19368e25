package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeSessionCreated   EventType = "session.created"
	EventTypeGameStateUpdated EventType = "game.state_updated"
	EventTypeSessionClosed    EventType = "session.closed"
)

// Event is the message published for every session change.
type Event struct {
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id"`
	Snapshot  *state.Snapshot `json:"snapshot,omitempty"`
}

// Publisher receives session lifecycle and state events.
type Publisher interface {
	PublishSessionCreated(ctx context.Context, snap state.Snapshot) error
	PublishGameStateUpdated(ctx context.Context, snap state.Snapshot) error
	PublishSessionClosed(ctx context.Context, sessionID uuid.UUID) error
}

// NopPublisher drops every event. It is used when no Redis is configured.
type NopPublisher struct{}

func (NopPublisher) PublishSessionCreated(context.Context, state.Snapshot) error { return nil }
func (NopPublisher) PublishGameStateUpdated(context.Context, state.Snapshot) error { return nil }
func (NopPublisher) PublishSessionClosed(context.Context, uuid.UUID) error { return nil }

// Channel is the pub/sub channel carrying one session's events.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", sessionID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ Publisher = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// PublishSessionCreated publishes a session.created event
func (b *Broadcaster) PublishSessionCreated(ctx context.Context, snap state.Snapshot) error {
	return b.publish(ctx, snap.ID, Event{Type: EventTypeSessionCreated, SessionID: snap.ID.String(), Snapshot: &snap})
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, snap state.Snapshot) error {
	return b.publish(ctx, snap.ID, Event{Type: EventTypeGameStateUpdated, SessionID: snap.ID.String(), Snapshot: &snap})
}

// PublishSessionClosed publishes a session.closed event
func (b *Broadcaster) PublishSessionClosed(ctx context.Context, sessionID uuid.UUID) error {
	return b.publish(ctx, sessionID, Event{Type: EventTypeSessionClosed, SessionID: sessionID.String()})
}

func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
