package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Postgres is the production store backend, reached through the pgx
// stdlib driver.
type Postgres struct {
	SQLBase
}

// OpenPostgres connects to PostgreSQL with the given DSN.
// If logger is nil, a discard logger is used.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Debug("connected to postgres store")
	return NewPostgres(db, logger), nil
}

// NewPostgres wraps an existing connection. Used by tests that supply a
// mocked *sql.DB.
func NewPostgres(db *sql.DB, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Postgres{
		SQLBase: SQLBase{
			DB:     db,
			Logger: logger,
			Placeholder: func(n int) string {
				return fmt.Sprintf("$%d", n)
			},
			ILikePredicate: func(column string, n int) string {
				return fmt.Sprintf("%s ILIKE $%d", column, n)
			},
			Classify: classifyPostgresError,
		},
	}
}

// classifyPostgresError maps pg error codes onto the core sentinels.
func classifyPostgresError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "22P02", "42804", "22023":
		// invalid_text_representation / datatype_mismatch /
		// invalid_parameter_value: the value's shape does not fit the
		// physical column.
		return fmt.Errorf("%w: %s", core.ErrColumnTypeMismatch, pgErr.Message)
	case "42P01":
		return fmt.Errorf("%w: %s", core.ErrTableNotFound, pgErr.Message)
	}
	return err
}

var _ core.Store = (*Postgres)(nil)
