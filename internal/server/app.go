// Package server initializes and runs the check-in server: it opens the
// PostgreSQL database, applies migrations, optionally seeds entries and
// serves the scanner API until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/config"
	"github.com/dmitrijs2005/gophgate/internal/server/httpapi"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophgate/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	entryService   *services.EntryService
	checkInService *services.CheckInService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(ctx, c, logger, db, repomanager.NewPostgresRepositoryManager())
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (*App, error) {
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{
		config:         c,
		logger:         logger,
		db:             db,
		repomanager:    rm,
		entryService:   services.NewEntryService(db, rm),
		checkInService: services.NewCheckInService(db, rm, logger),
	}

	if c.EntriesFile != "" {
		if err := app.importEntries(ctx, c.EntriesFile); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return app, nil
}

func (app *App) importEntries(ctx context.Context, path string) error {
	list, err := LoadEntries(path)
	if err != nil {
		return err
	}

	n, err := app.entryService.Import(ctx, list)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	app.logger.Info(ctx, "entries imported", "file", path, "count", n)
	return nil
}

// LoadEntries reads a JSON array of entries.
func LoadEntries(path string) ([]models.Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries file: %w", err)
	}

	var list []models.Entry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("parse entries file %s: %w", path, err)
	}
	return list, nil
}

// Run serves the API until ctx is cancelled and then closes the database.
func (app *App) Run(ctx context.Context) error {
	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "close database", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	s := httpapi.NewHTTPServer(app.config.EndpointAddr, app.logger, app.entryService, app.checkInService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server", "error", err)
		return err
	}

	app.logger.Info(ctx, "Stopped")
	return nil
}
