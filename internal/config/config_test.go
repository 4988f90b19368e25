package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "ENVIRONMENT", "LOG_LEVEL", "CATALOG_PATH", "RIDDLE_PROVIDER",
	"GEMINI_API_KEY", "GEMINI_MODEL", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	"RIDDLE_TIMEOUT", "REDIS_URL", "RIDDLE_CACHE_TTL", "SESSION_TTL",
	"PLAYER_MAX_HEALTH",
}

// clearEnv blanks every config variable for the test. Empty values count as
// unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.CatalogPath)
	assert.Equal(t, ProviderLocal, cfg.RiddleProvider)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 20*time.Second, cfg.RiddleTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.RiddleCacheTTL)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 100, cfg.MaxHealth)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RIDDLE_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("RIDDLE_TIMEOUT", "5s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("PLAYER_MAX_HEALTH", "150")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, ProviderGemini, cfg.RiddleProvider)
	assert.Equal(t, 5*time.Second, cfg.RiddleTimeout)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 150, cfg.MaxHealth)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "gemini without key",
			env:     map[string]string{"RIDDLE_PROVIDER": "gemini"},
			wantErr: "GEMINI_API_KEY is required",
		},
		{
			name:    "anthropic without key",
			env:     map[string]string{"RIDDLE_PROVIDER": "anthropic"},
			wantErr: "ANTHROPIC_API_KEY is required",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"RIDDLE_PROVIDER": "oracle"},
			wantErr: `unknown RIDDLE_PROVIDER "oracle"`,
		},
		{
			name:    "bad duration",
			env:     map[string]string{"RIDDLE_TIMEOUT": "soon"},
			wantErr: "RIDDLE_TIMEOUT must be a positive duration",
		},
		{
			name:    "negative duration",
			env:     map[string]string{"SESSION_TTL": "-1m"},
			wantErr: "SESSION_TTL must be a positive duration",
		},
		{
			name:    "zero max health",
			env:     map[string]string{"PLAYER_MAX_HEALTH": "0"},
			wantErr: "PLAYER_MAX_HEALTH must be a positive integer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := FromEnv()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\nRIDDLE_PROVIDER=local\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoad_WithoutDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
