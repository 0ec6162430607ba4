package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// SQLSTATE codes the stores react to.
const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	checkViolationCode       = "23514"
	notNullViolationCode     = "23502"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// codeErrors maps SQLSTATE codes to the store error they surface as.
var codeErrors = map[string]error{
	uniqueViolationCode:      store.ErrDuplicate,
	foreignKeyViolationCode:  store.ErrInvalidEntity,
	checkViolationCode:       store.ErrInvalidEntity,
	notNullViolationCode:     store.ErrInvalidEntity,
	serializationFailureCode: store.ErrConcurrencyConflict,
	deadlockDetectedCode:     store.ErrConcurrencyConflict,
}

// MapError translates a driver error into the store error taxonomy, keeping
// the original error in the chain. Context cancellation passes through
// untouched; anything unrecognized becomes store.ErrPersistenceFailure.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := codeErrors[pgErr.Code]; ok {
			return fmt.Errorf("%w: %s: %v", mapped, describeViolation(pgErr), err)
		}
	}
	return fmt.Errorf("%w: %w", store.ErrPersistenceFailure, err)
}

func describeViolation(pgErr *pgconn.PgError) string {
	switch {
	case pgErr.ConstraintName != "":
		return "constraint " + pgErr.ConstraintName
	case pgErr.ColumnName != "":
		return "column " + pgErr.ColumnName
	default:
		return "sqlstate " + pgErr.Code
	}
}

// sqlState returns the SQLSTATE carried by err, or "".
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == uniqueViolationCode
}

// IsForeignKeyViolation reports whether err references a missing row,
// such as a mastery record for a word that was never seeded.
func IsForeignKeyViolation(err error) bool {
	return sqlState(err) == foreignKeyViolationCode
}

// IsSerializationFailure reports whether the transaction lost a race and can
// be retried.
func IsSerializationFailure(err error) bool {
	code := sqlState(err)
	return code == serializationFailureCode || code == deadlockDetectedCode
}

// checkVersionedWrite interprets the result of a compare-and-set write.
// Zero affected rows means another writer changed the row first.
func checkVersionedWrite(result sql.Result, entityName string) error {
	if result == nil {
		return fmt.Errorf("nil result for %s write", entityName)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %s write: %w", entityName, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s version changed", store.ErrConcurrencyConflict, entityName)
	}
	return nil
}
