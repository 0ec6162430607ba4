// Package main implements the entry point for the LexiLoop API server, which
// tracks vocabulary mastery, schedules reviews and generates practice stories.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexiloop/lexiloop-api/internal/config"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (defaults to ./config.yaml and environment)")
	migrate := flag.String("migrate", "", "run a migration command (up, down, status, version, reset) and exit")
	flag.Parse()

	if err := run(*configPath, *migrate); err != nil {
		slog.Error("LexiLoop API exited with error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, migrate string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrate != "" {
		return runMigrationCommand(ctx, cfg, log, migrate)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	log.Info("LexiLoop API starting",
		slog.Int("port", cfg.Server.Port),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("llm_enabled", cfg.LLM.GeminiAPIKey != ""))

	return app.startHTTPServer(ctx, app.setupRouter())
}
