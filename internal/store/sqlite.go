package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

//go:embed schema.sql
var catalogSchemaSQL string

// SQLite is the local/offline store backend.
type SQLite struct {
	SQLBase
}

// OpenSQLite creates or opens a SQLite database at the given path.
// Use ":memory:" for an in-memory database.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)

	logger.Debug("opened sqlite store", slog.String("path", path))
	s := &SQLite{
		SQLBase: SQLBase{
			DB:     db,
			Logger: logger,
			Placeholder: func(int) string {
				return "?"
			},
			ILikePredicate: func(column string, _ int) string {
				return fmt.Sprintf("lower(%s) LIKE lower(?)", column)
			},
			Classify: classifySQLiteError,
		},
	}
	return s, nil
}

// InitCatalog creates the table/field catalog relations when absent.
func (s *SQLite) InitCatalog(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("store connection not established")
	}
	if _, err := s.DB.ExecContext(ctx, catalogSchemaSQL); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return nil
}

func classifySQLiteError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "datatype mismatch"):
		return fmt.Errorf("%w: %s", core.ErrColumnTypeMismatch, msg)
	case strings.Contains(msg, "no such table"):
		return fmt.Errorf("%w: %s", core.ErrTableNotFound, msg)
	}
	return err
}

var _ core.Store = (*SQLite)(nil)
