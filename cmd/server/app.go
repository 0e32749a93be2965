package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/atlasprep/atlasprep-api/internal/config"
	"github.com/atlasprep/atlasprep-api/internal/generation"
	"github.com/atlasprep/atlasprep-api/internal/platform/gemini"
	"github.com/atlasprep/atlasprep-api/internal/platform/postgres"
	"github.com/atlasprep/atlasprep-api/internal/service/auth"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// application bundles the server's wired dependencies.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	studyService *study.Service

	// generator is nil when no Gemini API key is configured; the
	// generation endpoint is simply not mounted in that case.
	generator generation.Generator
}

// newApplication wires stores and services around the open database
// connection.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, 0, logger)
	noteStore := postgres.NewPostgresNoteStore(db, logger)
	cardStore := postgres.NewPostgresFlashcardStore(db, logger)
	stateStore := postgres.NewPostgresStudyStateStore(db, logger)

	studyService, err := study.NewService(stateStore, noteStore, cardStore, db, nil, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	app := &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        userStore,
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		studyService:     studyService,
	}

	if cfg.Generation.Enabled() {
		generator, err := gemini.NewGenerator(ctx, cfg.Generation, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create flashcard generator: %w", err)
		}
		app.generator = generator
		logger.Info("flashcard generation enabled",
			slog.String("model", cfg.Generation.ModelName))
	} else {
		logger.Info("flashcard generation disabled, no API key configured")
	}

	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.setupRouter())
}
