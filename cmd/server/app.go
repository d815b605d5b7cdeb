package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashdeck-api/internal/config"
	"github.com/phrazzld/flashdeck-api/internal/platform/filestore"
	"github.com/phrazzld/flashdeck-api/internal/platform/memstore"
	"github.com/phrazzld/flashdeck-api/internal/platform/postgres"
	"github.com/phrazzld/flashdeck-api/internal/platform/sqlite"
	"github.com/phrazzld/flashdeck-api/internal/service"
	"github.com/phrazzld/flashdeck-api/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	repo          store.Repository
	reviewService *service.ReviewService
}

// newApplication creates an application instance with all dependencies
// initialized: the configured storage backend, then the services built on
// top of it.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	repo, err := openRepository(cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Kind, err)
	}
	app.repo = repo

	app.reviewService = service.NewReviewService(repo, logger)

	logger.Info("Application initialized successfully",
		"store_kind", cfg.Store.Kind)
	return app, nil
}

// openRepository selects and opens the storage backend named by the
// configuration. Every backend satisfies the same store.Repository
// contract, so nothing above this point knows which one is running.
func openRepository(cfg config.StoreConfig, logger *slog.Logger) (store.Repository, error) {
	switch cfg.Kind {
	case "memory":
		return memstore.New(), nil
	case "file":
		return filestore.Open(cfg.FilePath, cfg.BackupsDir, cfg.MaxBackups, logger)
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath, logger)
	case "postgres":
		return postgres.Open(cfg.DatabaseURL, logger)
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.repo != nil {
		if err := app.repo.Close(); err != nil {
			app.logger.Error("Error closing store", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
