package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SophieEDesign/marketinghub-sub007/internal/config"
	"github.com/SophieEDesign/marketinghub-sub007/internal/linkres"
	"github.com/SophieEDesign/marketinghub-sub007/internal/mutate"
	"github.com/SophieEDesign/marketinghub-sub007/internal/paste"
	"github.com/SophieEDesign/marketinghub-sub007/internal/reciprocal"
	"github.com/SophieEDesign/marketinghub-sub007/internal/store"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// commandContext holds common dependencies for CLI commands.
type commandContext struct {
	Store    core.Store
	Resolver *linkres.Resolver
	Sync     *reciprocal.Engine
	Logger   *slog.Logger
}

// newCommandContext opens the configured record store and wires the
// resolver and sync engine on top of it. Returns the context and a
// cleanup function that must be called (typically via defer).
func newCommandContext(cmd *cobra.Command) (*commandContext, func(), error) {
	lc := cfg.Logging
	if cfg.Verbose {
		lc.Level = "debug"
	}
	logger := config.NewLogger(cmd.ErrOrStderr(), lc)

	st, err := openStore(cmd.Context(), cfg.Store, logger)
	if err != nil {
		return nil, nil, err
	}

	resolver := linkres.New(st, logger)
	syncEngine := reciprocal.New(st, resolver, logger)

	cleanup := func() {
		_ = st.Close()
	}

	return &commandContext{
		Store:    st,
		Resolver: resolver,
		Sync:     syncEngine,
		Logger:   logger,
	}, cleanup, nil
}

func openStore(ctx context.Context, sc config.StoreConfig, logger *slog.Logger) (core.Store, error) {
	switch strings.ToLower(sc.Driver) {
	case "postgres":
		return store.OpenPostgres(ctx, sc.DSN, logger)
	case "sqlite":
		st, err := store.OpenSQLite(ctx, sc.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := st.InitCatalog(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}
}

// openTable loads a table's catalog entry and builds the mutation
// executor plus the current view layout for it.
func (cc *commandContext) openTable(ctx context.Context, tableID string) (*mutate.Executor, paste.Layout, error) {
	table, err := cc.Store.GetTable(ctx, tableID)
	if err != nil {
		return nil, paste.Layout{}, err
	}
	fields, err := cc.Store.ListFields(ctx, tableID)
	if err != nil {
		return nil, paste.Layout{}, err
	}

	exec := mutate.New(cc.Store, cc.Resolver, cc.Sync, *table, fields, cc.Logger)

	layout, err := cc.viewLayout(ctx, *table, fields)
	if err != nil {
		return nil, paste.Layout{}, err
	}
	return exec, layout, nil
}

// viewLayout derives the default view: every row in creation order and
// every storable field in position order.
func (cc *commandContext) viewLayout(ctx context.Context, table core.Table, fields []core.Field) (paste.Layout, error) {
	rows, err := cc.Store.SelectRows(ctx, core.SelectQuery{
		Table:   table.PhysicalStoreName,
		Columns: []string{"id"},
		OrderBy: "created_at",
	})
	if err != nil {
		return paste.Layout{}, fmt.Errorf("failed to list rows of %s: %w", table.ID, err)
	}

	var layout paste.Layout
	for _, row := range rows {
		if id, ok := row["id"].(string); ok {
			layout.RowIDs = append(layout.RowIDs, id)
		}
	}
	for _, f := range fields {
		if f.IsComputed() {
			continue
		}
		layout.Columns = append(layout.Columns, paste.Column{ID: f.ID, FieldName: f.Name})
	}
	return layout, nil
}
