// Package postgres provides PostgreSQL-specific implementations of the
// storage interfaces defined in the internal/store package. Queries are built
// with squirrel and run through database/sql on the pgx driver. Mastery
// records and streaks carry a version column that every write compares and
// bumps, which is how concurrent session ingestion is detected.
//
// The goose migrations for the schema are embedded in Migrations.
package postgres
