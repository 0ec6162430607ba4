package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/lexiloop/lexiloop-api/internal/config"
	"github.com/lexiloop/lexiloop-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// slogGooseLogger adapts slog to goose's logger interface.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}

// configureGoose points goose at the embedded migrations.
func configureGoose(logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// applyMigrations brings the schema up to date.
func applyMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := configureGoose(logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// runMigrationCommand executes a single goose command against the configured
// database and returns.
func runMigrationCommand(ctx context.Context, cfg *config.Config, logger *slog.Logger, command string) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("failed to close database connection", slog.String("error", closeErr.Error()))
		}
	}()

	if err := configureGoose(logger); err != nil {
		return err
	}

	logger.Info("running migration command", slog.String("command", command))

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, postgres.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, postgres.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	case "version":
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			logger.Info("current schema version", slog.Int64("version", version))
		}
	case "reset":
		err = goose.ResetContext(ctx, db, postgres.MigrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	logger.Info("migration command completed", slog.String("command", command))
	return nil
}
