package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderLocal     = "local"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Empty means the built-in mansion
	CatalogPath string

	RiddleProvider  string
	GeminiAPIKey    string
	GeminiModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	RiddleTimeout   time.Duration

	// Empty disables the verdict cache and event publishing
	RedisURL       string
	RiddleCacheTTL time.Duration

	SessionTTL time.Duration
	MaxHealth  int
}

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var errs []error
	duration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnv(key, def))
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive duration, got %q", key, os.Getenv(key)))
			d, _ = time.ParseDuration(def)
		}
		return d
	}
	positive := func(key, def string) int {
		n, err := strconv.Atoi(getEnv(key, def))
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a positive integer, got %q", key, os.Getenv(key)))
			n, _ = strconv.Atoi(def)
		}
		return n
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        parseLogLevel(getEnv("LOG_LEVEL", "info")),
		CatalogPath:     os.Getenv("CATALOG_PATH"),
		RiddleProvider:  strings.ToLower(getEnv("RIDDLE_PROVIDER", ProviderLocal)),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  os.Getenv("ANTHROPIC_MODEL"),
		RiddleTimeout:   duration("RIDDLE_TIMEOUT", "20s"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RiddleCacheTTL:  duration("RIDDLE_CACHE_TTL", "1h"),
		SessionTTL:      duration("SESSION_TTL", "1h"),
		MaxHealth:       positive("PLAYER_MAX_HEALTH", "100"),
	}

	switch cfg.RiddleProvider {
	case ProviderLocal:
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required when RIDDLE_PROVIDER is gemini"))
		}
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when RIDDLE_PROVIDER is anthropic"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RIDDLE_PROVIDER %q, supported: %s, %s, %s",
			cfg.RiddleProvider, ProviderLocal, ProviderGemini, ProviderAnthropic))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
