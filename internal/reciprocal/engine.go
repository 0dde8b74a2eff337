// Package reciprocal keeps the two sides of a table link mutually
// consistent: when a link field is written, the paired field in the
// linked table is updated to mirror the change.
//
// Propagation is best-effort and asymmetric: the primary write has
// already committed when Sync runs, and reciprocal failures are logged
// and skipped rather than rolled back. An inconsistent reciprocal field
// self-heals on the next edit of either side.
package reciprocal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SophieEDesign/marketinghub-sub007/internal/linkres"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Origin marks who initiated a link write. Propagation runs only for
// user-originated writes; an update that is itself a reciprocal echo is
// never propagated again, which breaks the forward/reverse feedback
// loop.
type Origin int

const (
	// OriginUser is a direct edit.
	OriginUser Origin = iota
	// OriginReciprocal is an update performed by this engine on the
	// other side of a link.
	OriginReciprocal
)

// Request describes one completed link-field write.
type Request struct {
	// SourceTableID identifies the table that was written.
	SourceTableID string
	// SourceField is the link field that was written.
	SourceField core.Field
	// SourceRecordID is the row that was written.
	SourceRecordID string
	// NewValue and OldValue are the link value after and before the
	// write, in any of the accepted shapes (id, id list, stringified
	// list, absent).
	NewValue any
	OldValue any
	// Origin marks whether this write is already a reciprocal echo.
	Origin Origin
}

// Engine propagates link writes to the reciprocal field.
type Engine struct {
	store    core.Store
	resolver *linkres.Resolver
	logger   *slog.Logger
}

// New creates a sync engine. If logger is nil, a discard logger is used.
func New(store core.Store, resolver *linkres.Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{store: store, resolver: resolver, logger: logger}
}

// Sync propagates one link-field write to the linked table. The source
// write has already committed; Sync returns an error only when the link
// target cannot be resolved at all. Per-record propagation failures are
// logged and skipped.
func (e *Engine) Sync(ctx context.Context, req Request) error {
	if req.Origin == OriginReciprocal {
		return nil
	}

	opts := req.SourceField.Options.Link
	if opts == nil || opts.LinkedTableID == "" {
		return nil
	}

	meta, err := e.resolver.LinkedTableMetadata(ctx, opts.LinkedTableID)
	if err != nil {
		return fmt.Errorf("reciprocal sync: %w", err)
	}

	recip := e.reciprocalField(meta, req.SourceField)
	if recip == nil {
		// One-way link: nothing to propagate.
		return nil
	}

	newIDs := core.NormalizeIDList(req.NewValue)
	oldIDs := core.NormalizeIDList(req.OldValue)
	added, removed := core.DiffIDLists(oldIDs, newIDs)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	if recip.Options.Link.AllowsMultiple() {
		e.syncMulti(ctx, meta, *recip, req.SourceRecordID, added, removed)
	} else {
		e.syncSingle(ctx, meta, *recip, req.SourceRecordID, newIDs, oldIDs)
	}
	return nil
}

// reciprocalField finds the paired field in the linked table. When the
// written field carries a LinkedFieldID it is itself the reciprocal and
// the pair is the forward field it names; otherwise the written field is
// the forward side and the pair is whichever link field in the target
// declares it as reciprocal.
func (e *Engine) reciprocalField(meta *linkres.TableMetadata, source core.Field) *core.Field {
	opts := source.Options.Link
	if opts.LinkedFieldID != "" {
		if f := core.FieldByID(meta.Fields, opts.LinkedFieldID); f != nil && f.IsLink() {
			return f
		}
		if f := core.FieldByName(meta.Fields, opts.LinkedFieldID); f != nil && f.IsLink() {
			return f
		}
		return nil
	}

	for i := range meta.Fields {
		f := &meta.Fields[i]
		if !f.IsLink() || f.Options.Link == nil {
			continue
		}
		if f.Options.Link.LinkedFieldID == source.ID {
			return f
		}
	}
	return nil
}

// syncMulti applies add/remove deltas to a list-typed reciprocal field.
// Each target record is read, modified, and written back as a full
// array; there is no batch array operation on the remote store.
func (e *Engine) syncMulti(ctx context.Context, meta *linkres.TableMetadata, recip core.Field, sourceID string, added, removed []string) {
	for _, targetID := range added {
		e.editTargetList(ctx, meta, recip, targetID, sourceID, true)
	}
	for _, targetID := range removed {
		e.editTargetList(ctx, meta, recip, targetID, sourceID, false)
	}
}

func (e *Engine) editTargetList(ctx context.Context, meta *linkres.TableMetadata, recip core.Field, targetID, sourceID string, add bool) {
	table := meta.Table.PhysicalStoreName
	rows, err := e.store.SelectRows(ctx, core.SelectQuery{
		Table:   table,
		Columns: []string{"id", recip.Name},
		Filters: []core.Filter{core.Eq("id", targetID)},
		Limit:   1,
	})
	if err != nil {
		e.logger.Warn("reciprocal read failed, skipping record",
			slog.String("table", table), slog.String("record", targetID),
			slog.String("error", err.Error()))
		return
	}
	if len(rows) == 0 {
		e.logger.Warn("reciprocal target record not found, skipping",
			slog.String("table", table), slog.String("record", targetID))
		return
	}

	current := core.NormalizeIDList(rows[0][recip.Name])
	var next []string
	if add {
		if containsID(current, sourceID) {
			return
		}
		next = append(append([]string(nil), current...), sourceID)
	} else {
		for _, id := range current {
			if id != sourceID {
				next = append(next, id)
			}
		}
		if len(next) == len(current) {
			return
		}
	}

	var value any
	if len(next) > 0 {
		value = next
	}
	if err := e.store.UpdateRow(ctx, table, targetID, map[string]any{recip.Name: value}); err != nil {
		if errors.Is(err, core.ErrColumnTypeMismatch) {
			// The physical column is singular where a list is expected.
			// Degrade: skip propagation for this record until the
			// schema is migrated.
			e.logger.Warn("reciprocal column is singular, skipping multi-link sync",
				slog.String("table", table), slog.String("field", recip.Name),
				slog.String("record", targetID))
			return
		}
		e.logger.Warn("reciprocal write failed, source write is already committed",
			slog.String("table", table), slog.String("record", targetID),
			slog.String("error", err.Error()))
	}
}

// syncSingle points a singular reciprocal field at the source record,
// clearing the previous target when it changed.
func (e *Engine) syncSingle(ctx context.Context, meta *linkres.TableMetadata, recip core.Field, sourceID string, newIDs, oldIDs []string) {
	table := meta.Table.PhysicalStoreName

	var newTarget, oldTarget string
	if len(newIDs) > 0 {
		newTarget = newIDs[0]
	}
	if len(oldIDs) > 0 {
		oldTarget = oldIDs[0]
	}

	if newTarget != "" {
		if err := e.store.UpdateRow(ctx, table, newTarget, map[string]any{recip.Name: sourceID}); err != nil {
			e.logger.Warn("reciprocal write failed, source write is already committed",
				slog.String("table", table), slog.String("record", newTarget),
				slog.String("error", err.Error()))
		}
	}
	if oldTarget != "" && oldTarget != newTarget {
		if err := e.store.UpdateRow(ctx, table, oldTarget, map[string]any{recip.Name: nil}); err != nil {
			e.logger.Warn("failed to clear stale reciprocal value",
				slog.String("table", table), slog.String("record", oldTarget),
				slog.String("error", err.Error()))
		}
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
