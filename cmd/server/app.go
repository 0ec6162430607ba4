package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexiloop/lexiloop-api/internal/catalog"
	"github.com/lexiloop/lexiloop-api/internal/config"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/domain/srs"
	"github.com/lexiloop/lexiloop-api/internal/generation"
	"github.com/lexiloop/lexiloop-api/internal/platform/gemini"
	"github.com/lexiloop/lexiloop-api/internal/platform/memory"
	"github.com/lexiloop/lexiloop-api/internal/platform/postgres"
	"github.com/lexiloop/lexiloop-api/internal/service/auth"
	"github.com/lexiloop/lexiloop-api/internal/service/goals"
	"github.com/lexiloop/lexiloop-api/internal/service/mastery"
	"github.com/lexiloop/lexiloop-api/internal/service/review"
	"github.com/lexiloop/lexiloop-api/internal/service/session"
	"github.com/lexiloop/lexiloop-api/internal/service/stats"
	"github.com/lexiloop/lexiloop-api/internal/service/story"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"github.com/lexiloop/lexiloop-api/internal/task"
)

// backend is the storage the application runs on.
type backend interface {
	store.Transactor
	Stores() store.Stores
}

// vocabularySeeder copies catalog entries into persistent storage.
type vocabularySeeder interface {
	Seed(ctx context.Context, entries []domain.Vocabulary) (int, error)
}

// application holds every long-lived dependency of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	clock  func() time.Time

	catalog    *catalog.Catalog
	jwtService auth.JWTService

	masteryService mastery.Service
	scheduler      review.Scheduler
	processor      session.Processor
	tracker        goals.Tracker
	statsService   stats.Service
	storyService   story.Service

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
	prefetcher *task.StoryPrefetcher
}

// newApplication builds the storage backend, loads the catalog and wires
// every service.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		clock:  time.Now,
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	app.catalog = cat
	logger.Info("vocabulary catalog loaded", slog.Int("entries", cat.Len()))

	b, seeder, err := app.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	inserted, err := seeder.Seed(ctx, cat.All())
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to seed vocabulary: %w", err)
	}
	logger.Info("vocabulary seeded", slog.Int("inserted", inserted))

	if err := app.wireServices(ctx, b); err != nil {
		app.cleanup()
		return nil, err
	}

	return app, nil
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	var (
		entries []domain.Vocabulary
		err     error
	)
	if cfg.SeedFile != "" {
		importCfg := catalog.DefaultImportConfig()
		if cfg.SheetName != "" {
			importCfg.SheetName = cfg.SheetName
		}
		entries, err = catalog.LoadFile(cfg.SeedFile, importCfg)
	} else {
		entries, err = catalog.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary seed: %w", err)
	}

	cat, err := catalog.New(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to build vocabulary catalog: %w", err)
	}
	return cat, nil
}

func (app *application) openBackend(ctx context.Context) (backend, vocabularySeeder, error) {
	if app.config.Database.Driver == "memory" {
		app.logger.Warn("using in-memory storage, progress is lost on restart")
		m := memory.New(app.logger)
		return m, m, nil
	}

	db, err := openDatabase(ctx, app.config.Database, app.logger)
	if err != nil {
		return nil, nil, err
	}
	app.db = db

	if app.config.Database.MigrateOnStart {
		if err := applyMigrations(ctx, db, app.logger); err != nil {
			app.cleanup()
			return nil, nil, err
		}
	}

	return postgres.NewTransactor(db, app.logger), postgres.NewPostgresVocabularyStore(db, app.logger), nil
}

func (app *application) wireServices(ctx context.Context, b backend) error {
	cfg := app.config
	stores := b.Stores()

	params, err := srs.NewParams(srs.ParamsConfig{
		BaseIntervalDays:    cfg.SRS.BaseIntervalDays,
		ConfidenceDecay:     cfg.SRS.ConfidenceDecay,
		IncorrectReviewDays: cfg.SRS.IncorrectReviewDays,
	})
	if err != nil {
		return fmt.Errorf("invalid review policy: %w", err)
	}
	policy, err := srs.NewServiceWithParams(params)
	if err != nil {
		return fmt.Errorf("invalid review policy: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.masteryService = mastery.NewService(stores.Mastery, b, app.catalog, policy, app.logger,
		mastery.WithClock(app.clock),
		mastery.WithMaxAttempts(cfg.Session.MaxAttempts))
	app.scheduler = review.NewScheduler(stores.Mastery, app.catalog, review.Config{
		DefaultLimit: cfg.Scheduler.DefaultLimit,
		MaxLimit:     cfg.Scheduler.MaxLimit,
	}, app.clock, app.logger)
	app.processor = session.NewProcessor(b, app.catalog, policy, app.logger,
		session.WithClock(app.clock),
		session.WithMaxAttempts(cfg.Session.MaxAttempts))
	app.tracker = goals.NewTracker(stores.Goals, b, cfg.Goals.Weekday(), app.clock, app.logger)
	app.statsService = stats.NewService(stores, app.clock, app.logger)

	generator, err := app.storyGenerator(ctx)
	if err != nil {
		return err
	}
	cache := generation.NewCache(cfg.LLM.CacheTTL, cfg.LLM.CacheSize, app.clock)
	app.storyService = story.NewService(generator, app.scheduler, cache, app.logger)

	app.startPrefetch()
	return nil
}

// startPrefetch launches the background story prefetch workers when enabled.
func (app *application) startPrefetch() {
	cfg := app.config.Prefetch
	if cfg.Workers <= 0 {
		app.logger.Info("story prefetch disabled")
		return
	}

	app.taskQueue = task.NewTaskQueue(cfg.QueueSize, app.logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Workers,
		TaskTimeout: cfg.TaskTimeout,
	}, app.logger)
	app.prefetcher = task.NewStoryPrefetcher(app.taskQueue, app.storyService, app.logger)
	app.workerPool.Start()
}

// storyGenerator builds the generator chain. Gemini is tried first when an
// API key is configured; the template generator always closes the chain.
func (app *application) storyGenerator(ctx context.Context) (generation.Generator, error) {
	var generators []generation.Generator

	if app.config.LLM.GeminiAPIKey != "" {
		g, err := gemini.NewGeminiGenerator(ctx, app.logger, app.config.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini generator: %w", err)
		}
		generators = append(generators, g)
	} else {
		app.logger.Info("no Gemini API key configured, using template stories only")
	}
	generators = append(generators, generation.NewTemplateGenerator(app.clock))

	chain, err := generation.NewChain(app.logger, generators...)
	if err != nil {
		return nil, fmt.Errorf("failed to create story generator: %w", err)
	}
	return chain, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.workerPool != nil {
		app.workerPool.Stop()
		app.taskQueue.Close()
		app.workerPool = nil
	}
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
	}
	app.db = nil
}
