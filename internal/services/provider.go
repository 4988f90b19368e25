package services

import (
	"context"
	"log/slog"

	"github.com/jwebster45206/illusionaire/internal/config"
)

// NewRiddleServiceFromConfig builds the configured riddle provider. The
// returned func releases its resources.
func NewRiddleServiceFromConfig(ctx context.Context, cfg *config.Config, log *slog.Logger) (RiddleService, func(), error) {
	switch cfg.RiddleProvider {
	case config.ProviderGemini:
		gemini, err := NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Gemini riddle provider", "model", cfg.GeminiModel)
		return gemini, func() { _ = gemini.Close() }, nil
	case config.ProviderAnthropic:
		log.Info("Using Anthropic riddle provider", "model", cfg.AnthropicModel)
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel, log), func() {}, nil
	default:
		log.Info("Using offline riddle book")
		return NewLocalRiddleService(nil, log), func() {}, nil
	}
}
