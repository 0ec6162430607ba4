package postgres

import (
	"database/sql"
	"embed"
	"time"

	"github.com/Masterminds/squirrel"
)

// Migrations holds the goose migration files for the LexiLoop schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type rowScanner interface {
	Scan(dest ...any) error
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
