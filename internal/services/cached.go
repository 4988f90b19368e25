package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultVerdictTTL = time.Hour

	verdictKeyPrefix = "riddle:verdict:"
	verdictYes       = "1"
	verdictNo        = "0"
)

// CachedRiddleService memoises CheckAnswer verdicts in a Cache. Riddles are
// never cached so every encounter can get a fresh one. A cache failure falls
// through to the wrapped service.
type CachedRiddleService struct {
	inner  RiddleService
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

var _ RiddleService = (*CachedRiddleService)(nil)

func NewCachedRiddleService(inner RiddleService, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedRiddleService {
	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}
	return &CachedRiddleService{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedRiddleService) GetRiddle(ctx context.Context, theme string) (string, error) {
	return c.inner.GetRiddle(ctx, theme)
}

func (c *CachedRiddleService) CheckAnswer(ctx context.Context, riddle, answer string) (bool, error) {
	key := VerdictKey(riddle, answer)

	cached, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("Verdict cache read failed", "key", key, "error", err)
	case cached == verdictYes:
		return true, nil
	case cached == verdictNo:
		return false, nil
	}

	correct, err := c.inner.CheckAnswer(ctx, riddle, answer)
	if err != nil {
		return false, err
	}

	value := verdictNo
	if correct {
		value = verdictYes
	}
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("Verdict cache write failed", "key", key, "error", err)
	}
	return correct, nil
}

// VerdictKey is the cache key for a riddle and a normalized answer.
func VerdictKey(riddle, answer string) string {
	answer = strings.Join(strings.Fields(normalizeAnswer(answer)), " ")
	sum := sha256.Sum256([]byte(riddle + "\x00" + answer))
	return verdictKeyPrefix + hex.EncodeToString(sum[:])
}
