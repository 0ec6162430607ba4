//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Each test runs inside its own transaction, which is rolled back when the
// test completes, so tests can run in parallel and leave no data behind:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        masteryStore := postgres.NewPostgresMasteryStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The database URL is read from LEXILOOP_TEST_DB_URL, falling back to
// DATABASE_URL. Tests are skipped when neither is set. The embedded schema
// migrations are applied once per test binary.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/lexiloop/lexiloop-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDatabaseURL returns the database URL for integration tests, or an
// empty string when none is configured.
func GetTestDatabaseURL() string {
	for _, name := range []string{"LEXILOOP_TEST_DB_URL", "DATABASE_URL"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// GetTestDBWithT opens a connection pool for t, migrating the schema on
// first use. The pool is closed when t completes.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("LEXILOOP_TEST_DB_URL not set - skipping integration test")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", maskDatabaseURL(dbURL), err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping test database %s: %v", maskDatabaseURL(dbURL), err)
	}

	migrateOnce.Do(func() {
		migrateErr = applyMigrations(db)
	})
	if migrateErr != nil {
		t.Fatalf("failed to migrate test database: %v", migrateErr)
	}

	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

func applyMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(postgres.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword(parsed.User.Username(), "****")
	}
	return parsed.String()
}

// DiscardLogger returns a logger for stores under test.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
