// Package mutate applies batches of proposed cell changes: each change
// is validated, link values are resolved, the write is issued, and link
// writes are propagated to their reciprocal fields.
//
// Writes go out one record at a time so every failure can be attributed
// to its originating cell; a batch is never all-or-nothing.
package mutate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/SophieEDesign/marketinghub-sub007/internal/linkres"
	"github.com/SophieEDesign/marketinghub-sub007/internal/reciprocal"
	"github.com/SophieEDesign/marketinghub-sub007/internal/validate"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Executor applies cell-change batches against one table.
type Executor struct {
	store    core.Store
	resolver *linkres.Resolver
	sync     *reciprocal.Engine
	logger   *slog.Logger

	table  core.Table
	fields []core.Field
}

// New creates an executor for the given table and its field catalog.
// If logger is nil, a discard logger is used.
func New(store core.Store, resolver *linkres.Resolver, sync *reciprocal.Engine, table core.Table, fields []core.Field, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{
		store:    store,
		resolver: resolver,
		sync:     sync,
		logger:   logger,
		table:    table,
		fields:   fields,
	}
}

// Table returns the table this executor writes to.
func (e *Executor) Table() core.Table { return e.table }

// Fields returns the table's field catalog.
func (e *Executor) Fields() []core.Field { return e.fields }

// ApplyCellChanges applies the batch in array order. Every input change
// lands in exactly one of the result's Changes or Errors, so
// AppliedCount+ErrorCount always equals len(changes). Reciprocal sync
// failures never fail the originating change; the source write has
// already committed.
func (e *Executor) ApplyCellChanges(ctx context.Context, changes []core.CellChange) core.BatchMutationResult {
	result := core.BatchMutationResult{}

	for _, change := range changes {
		applied, errMsg := e.applyOne(ctx, change)
		if errMsg != "" {
			result.Errors = append(result.Errors, core.CellError{Change: change, Message: errMsg})
			result.ErrorCount++
			continue
		}
		result.Changes = append(result.Changes, applied)
		result.AppliedCount++
	}

	result.Success = result.ErrorCount == 0
	return result
}

// applyOne validates, resolves, writes, and syncs a single change.
// Returns the applied change (with the normalized value and the
// previous value filled in) or the rejection message.
func (e *Executor) applyOne(ctx context.Context, change core.CellChange) (core.CellChange, string) {
	field := core.FieldByName(e.fields, change.FieldName)
	if field == nil {
		return change, "unknown field " + change.FieldName
	}

	value, errMsg := e.normalizeValue(ctx, *field, change.Value)
	if errMsg != "" {
		return change, errMsg
	}

	previous := change.PreviousValue
	if field.IsLink() && previous == nil {
		// Reciprocal sync diffs against the stored value; read it
		// before it is overwritten.
		previous = e.currentValue(ctx, change.RowID, field.Name)
	}

	if err := e.store.UpdateRow(ctx, e.table.PhysicalStoreName, change.RowID, map[string]any{field.Name: value}); err != nil {
		return change, err.Error()
	}

	applied := change
	applied.Value = value
	applied.PreviousValue = previous

	if field.IsLink() {
		err := e.sync.Sync(ctx, reciprocal.Request{
			SourceTableID:  e.table.ID,
			SourceField:    *field,
			SourceRecordID: change.RowID,
			NewValue:       value,
			OldValue:       previous,
			Origin:         reciprocal.OriginUser,
		})
		if err != nil {
			// Best-effort: the source write stands.
			e.logger.Warn("reciprocal sync failed",
				slog.String("table", e.table.PhysicalStoreName),
				slog.String("field", field.Name),
				slog.String("record", change.RowID),
				slog.String("error", err.Error()))
		}
	}

	return applied, ""
}

// normalizeValue runs synchronous validation and, for link fields whose
// value is a display label, the asynchronous resolution path.
func (e *Executor) normalizeValue(ctx context.Context, field core.Field, raw any) (any, string) {
	res := validate.Validate(field, raw)
	if res.Valid {
		return res.NormalizedValue, ""
	}
	if !res.NeedsResolution {
		return nil, res.Error
	}

	ids, errs := e.resolver.ResolvePastedValue(ctx, field, core.ValueToString(raw))
	if len(errs) > 0 {
		return nil, strings.Join(errs, "; ")
	}
	if len(ids) == 0 {
		return nil, ""
	}
	if field.Options.Link.AllowsMultiple() {
		return ids, ""
	}
	return ids[0], ""
}

func (e *Executor) currentValue(ctx context.Context, rowID, column string) any {
	rows, err := e.store.SelectRows(ctx, core.SelectQuery{
		Table:   e.table.PhysicalStoreName,
		Columns: []string{"id", column},
		Filters: []core.Filter{core.Eq("id", rowID)},
		Limit:   1,
	})
	if err != nil || len(rows) == 0 {
		return nil
	}
	return rows[0][column]
}
