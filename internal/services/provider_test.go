package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/illusionaire/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRiddleServiceFromConfig(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		cfg      *config.Config
		expected interface{}
	}{
		{"local", &config.Config{RiddleProvider: config.ProviderLocal}, &LocalRiddleService{}},
		{"empty provider falls back to local", &config.Config{}, &LocalRiddleService{}},
		{"anthropic", &config.Config{RiddleProvider: config.ProviderAnthropic, AnthropicAPIKey: "key"}, &AnthropicService{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, release, err := NewRiddleServiceFromConfig(context.Background(), tt.cfg, log)
			require.NoError(t, err)
			defer release()
			assert.IsType(t, tt.expected, svc)
		})
	}
}
