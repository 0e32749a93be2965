// Package main implements the entry point for the AtlasPrep API server,
// which tracks users' study progress, schedules spaced repetition reviews
// and generates flashcards from study notes.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/atlasprep/atlasprep-api/internal/config"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command instead of the server (up, down, status)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("generation_enabled", cfg.Generation.Enabled()))

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("database setup failed", slog.Any("error", err))
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if *migrateCmd != "" {
		if err := runMigrationCommand(db, *migrateCmd); err != nil {
			appLogger.Error("migration failed",
				slog.String("command", *migrateCmd), slog.Any("error", err))
			log.Fatalf("Migration %q failed: %v", *migrateCmd, err)
		}
		appLogger.Info("migration complete", slog.String("command", *migrateCmd))
		return
	}

	ctx := context.Background()

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		appLogger.Error("application setup failed", slog.Any("error", err))
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server exited with error", slog.Any("error", err))
		log.Fatalf("Server error: %v", err)
	}
}

// runMigrationCommand dispatches the embedded goose migrations.
func runMigrationCommand(db *sql.DB, command string) error {
	switch command {
	case "up":
		return postgres.MigrateUp(db)
	case "down":
		return postgres.MigrateDown(db)
	case "status":
		return postgres.MigrationStatus(db)
	default:
		return fmt.Errorf("unknown migration command %q (want up, down or status)", command)
	}
}
