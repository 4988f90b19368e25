package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/illusionaire/internal/config"
	"github.com/jwebster45206/illusionaire/internal/logger"
	"github.com/jwebster45206/illusionaire/internal/services"
	"github.com/jwebster45206/illusionaire/pkg/game"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logPath := getEnv("CONSOLE_LOG_FILE", "console.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", logPath, err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.New(cfg, logFile)

	catalog := world.Default()
	if cfg.CatalogPath != "" {
		catalog, err = world.LoadFile(cfg.CatalogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	riddles, closeRiddles, err := services.NewRiddleServiceFromConfig(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize riddle service: %v\n", err)
		os.Exit(1)
	}
	defer closeRiddles()

	machine := game.New(catalog, riddles, log, game.Options{
		RiddleTimeout: cfg.RiddleTimeout,
		MaxHealth:     cfg.MaxHealth,
	})
	defer func() {
		_ = machine.Close()
	}()
	log.Info("Console session started", "session_id", machine.ID(), "start_room", catalog.StartRoomID())

	p := tea.NewProgram(NewConsoleUI(machine), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
