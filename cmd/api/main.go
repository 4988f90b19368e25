package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/illusionaire/internal/config"
	"github.com/jwebster45206/illusionaire/internal/handlers"
	"github.com/jwebster45206/illusionaire/internal/logger"
	"github.com/jwebster45206/illusionaire/internal/middleware"
	"github.com/jwebster45206/illusionaire/internal/services"
	"github.com/jwebster45206/illusionaire/internal/services/events"
	"github.com/jwebster45206/illusionaire/internal/session"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Illusionaire API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"riddle_provider", cfg.RiddleProvider)

	catalog := world.Default()
	if cfg.CatalogPath != "" {
		catalog, err = world.LoadFile(cfg.CatalogPath)
		if err != nil {
			log.Error("Failed to load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
	}
	log.Info("Catalog loaded", "rooms", len(catalog.RoomIDs()), "start_room", catalog.StartRoomID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	riddles, closeRiddles, err := services.NewRiddleServiceFromConfig(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize riddle service", "error", err)
		os.Exit(1)
	}
	defer closeRiddles()

	var cache services.Cache
	var publisher events.Publisher = events.NopPublisher{}
	var redisService *services.RedisService
	if cfg.RedisURL != "" {
		redisService = services.NewRedisService(cfg.RedisURL, log)
		waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Minute)
		if err := redisService.WaitForConnection(waitCtx); err != nil {
			waitCancel()
			log.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		waitCancel()

		cache = redisService
		riddles = services.NewCachedRiddleService(riddles, redisService, cfg.RiddleCacheTTL, log)
		publisher = events.NewBroadcaster(redisService.GetClient(), log)
		log.Info("Redis enabled for verdict cache and session events")
	}

	sessions := session.NewManager(catalog, riddles, publisher, log, session.Options{
		TTL:          cfg.SessionTTL,
		ReapInterval: session.DefaultReapInterval,
		Game:         game.Options{RiddleTimeout: cfg.RiddleTimeout, MaxHealth: cfg.MaxHealth},
	})

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cache, sessions, cfg.RiddleProvider, log)
	mux.Handle("/health", healthHandler)

	sessionsHandler := handlers.NewSessionsHandler(sessions, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	if redisService != nil {
		mux.Handle("/v1/events/sessions/", handlers.NewEventsHandler(redisService.GetClient(), log))
	}

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the event stream stays open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := sessions.Close(); err != nil {
		log.Error("Error closing sessions", "error", err)
	}
	if redisService != nil {
		if err := redisService.Close(); err != nil {
			log.Error("Error closing redis connection", "error", err)
		}
	}

	log.Info("Server exited")
}
