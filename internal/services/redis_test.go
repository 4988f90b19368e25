package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisService) {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewRedisService("redis://"+mr.Addr(), logger)
	t.Cleanup(func() { _ = svc.Close() })
	return mr, svc
}

func TestRedisService_Basic(t *testing.T) {
	mr, svc := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, svc.Ping(ctx))

	key := "test:key:123"
	require.NoError(t, svc.Set(ctx, key, "test value", time.Minute))

	got, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "test value", got)
	assert.Equal(t, time.Minute, mr.TTL(key))

	exists, err := svc.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Del(ctx, key))

	exists, err = svc.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// Missing keys are not an error
	got, err = svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisService_BareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	svc := NewRedisService(mr.Addr(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer svc.Close()

	require.NoError(t, svc.Ping(context.Background()))
	assert.NotNil(t, svc.GetClient())
}

func TestRedisService_ErrorsWhenServerDown(t *testing.T) {
	mr, svc := setupTestRedis(t)
	mr.Close()
	ctx := context.Background()

	assert.Error(t, svc.Ping(ctx))
	assert.Error(t, svc.Set(ctx, "k", "v", 0))
	_, err := svc.Get(ctx, "k")
	assert.Error(t, err)
}

func TestRedisService_WaitForConnection(t *testing.T) {
	t.Run("successful connection", func(t *testing.T) {
		_, svc := setupTestRedis(t)
		require.NoError(t, svc.WaitForConnection(context.Background()))
	})

	t.Run("context cancelled", func(t *testing.T) {
		mr, svc := setupTestRedis(t)
		mr.Close()
		svc.retryDelay = 10 * time.Millisecond

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.Error(t, svc.WaitForConnection(ctx))
	})

	t.Run("retries exhausted", func(t *testing.T) {
		mr, svc := setupTestRedis(t)
		mr.Close()
		svc.maxRetries = 2
		svc.retryDelay = time.Millisecond

		err := svc.WaitForConnection(context.Background())
		assert.ErrorContains(t, err, "after 2 attempts")
	})
}
