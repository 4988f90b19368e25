package services

import (
	"context"
	"time"
)

// Cache is the key-value store behind CachedRiddleService. Riddle verdicts
// are stored under "riddle:verdict:<sha256>" keys and the health check pings
// it when Redis is configured.
type Cache interface {
	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error

	// Set stores a verdict until expiration runs out (zero keeps it)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get returns the stored verdict, or "" when the key is missing
	Get(ctx context.Context, key string) (string, error)

	Del(ctx context.Context, keys ...string) error

	Exists(ctx context.Context, keys ...string) (bool, error)

	Close() error

	// WaitForConnection retries Ping until the store answers or ctx ends
	WaitForConnection(ctx context.Context) error
}
