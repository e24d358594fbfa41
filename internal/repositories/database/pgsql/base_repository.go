package pgsql

import (
	"context"
	"errors"
	"net/http"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes translated by mapError.
const (
	pgUniqueViolation           = "23505"
	pgUndefinedTable            = "42P01"
	pgInvalidTextRepresentation = "22P02"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewInternalError("failed to rollback transaction", err)
	}
	return nil
}

// Ping reports whether the pool can reach the database.
func (r *BaseRepository) Ping(ctx context.Context) error {
	if err := r.Pool.Ping(ctx); err != nil {
		return mapError(err, "failed to ping database")
	}
	return nil
}

// mapError translates driver errors into the apperrors taxonomy so that
// services can branch with errors.Is.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewAppError(http.StatusNotFound, msg, apperrors.ErrNotFound)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewUnavailableError(msg, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.NewAppError(http.StatusConflict, msg+": "+pgErr.ConstraintName, apperrors.ErrDuplicate)
		case pgInvalidTextRepresentation:
			// Malformed ids in lookups cannot match any row.
			return apperrors.NewAppError(http.StatusNotFound, msg, apperrors.ErrNotFound)
		case pgUndefinedTable:
			// The ledger schema is missing; the store cannot serve anything.
			return apperrors.NewUnavailableError(msg, err)
		}
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return apperrors.NewUnavailableError(msg, err)
	}
	return apperrors.NewInternalError(msg, err)
}
