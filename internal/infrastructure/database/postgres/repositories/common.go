// Package repositories implements the gifting storage ports on PostgreSQL.
package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/turtacn/AutoGift-Intelligence/pkg/errors"
)

// pqUniqueViolation is the SQLSTATE for unique_violation.
const pqUniqueViolation = "23505"

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// mapError converts a driver error into an AppError.  sql.ErrNoRows becomes
// notFoundCode, unique violations become conflicts and everything else is a
// database error.
func mapError(err error, notFoundCode errors.ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(err, notFoundCode, message+": not found")
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return errors.Wrap(err, errors.ErrCodeConflict, message+": already exists")
	}
	return errors.Wrap(err, errors.ErrCodeDatabaseError, message)
}

//Personal.AI order the ending
