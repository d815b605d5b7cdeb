// Package main implements the entry point for the flashdeck API server,
// which manages spaced repetition flashcard decks and review scheduling.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/flashdeck-api/internal/config"
	"github.com/phrazzld/flashdeck-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run loads configuration, sets up logging and storage, and starts the
// HTTP server. Split from main so initialization errors flow back as
// values instead of os.Exit scattered through setup.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_kind", cfg.Store.Kind)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Run(context.Background()); err != nil {
		app.cleanup()
		return err
	}
	return nil
}
