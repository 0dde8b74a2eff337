// Package linkres resolves linked-record references between opaque
// record ids and human-readable display labels.
//
// A Resolver owns a per-instance metadata cache for linked tables. The
// cache is populated lazily and never invalidated for the life of the
// Resolver; construct one per session to bound staleness. Renaming a
// table's primary field mid-session is not picked up until a new
// Resolver is built.
package linkres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// displayChunkSize bounds how many ids one display lookup queries.
const displayChunkSize = 200

// TableMetadata is the cached shape of a linked table: its definition
// plus the field catalog.
type TableMetadata struct {
	Table  core.Table
	Fields []core.Field
}

// Resolver resolves link-field values against their target tables.
type Resolver struct {
	store  core.Store
	logger *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*TableMetadata
}

// New creates a Resolver over the given store.
// If logger is nil, a discard logger is used.
func New(store core.Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		store:  store,
		logger: logger,
		cache:  make(map[string]*TableMetadata),
	}
}

// LinkedTableMetadata returns the cached metadata for a linked table,
// fetching it at most once per distinct id even under concurrent
// callers. A failed fetch caches nothing, so a later call retries.
func (r *Resolver) LinkedTableMetadata(ctx context.Context, linkedTableID string) (*TableMetadata, error) {
	r.mu.RLock()
	cached, ok := r.cache[linkedTableID]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(linkedTableID, func() (any, error) {
		// Re-check under the flight: a previous flight may have
		// populated the cache between our read and this call.
		r.mu.RLock()
		cached, ok := r.cache[linkedTableID]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}

		table, err := r.store.GetTable(ctx, linkedTableID)
		if err != nil {
			return nil, fmt.Errorf("failed to load linked table %s: %w", linkedTableID, err)
		}
		fields, err := r.store.ListFields(ctx, linkedTableID)
		if err != nil {
			return nil, fmt.Errorf("failed to load fields of linked table %s: %w", linkedTableID, err)
		}

		meta := &TableMetadata{Table: *table, Fields: fields}
		r.mu.Lock()
		r.cache[linkedTableID] = meta
		r.mu.Unlock()
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*TableMetadata), nil
}

// DisplayField picks the field used to render labels for records of the
// linked table. The fallback chain is deterministic: the configured
// primary field, the structurally-inferred primary field, the known
// reciprocal field, the first text-like field, then none (display by id).
func DisplayField(meta *TableMetadata, linkedFieldID string) *core.Field {
	if name := meta.Table.PrimaryFieldName; name != "" && name != "id" {
		if f := core.FieldByName(meta.Fields, name); f != nil {
			return f
		}
	}
	if f := core.InferPrimaryField(meta.Fields); f != nil {
		return f
	}
	if linkedFieldID != "" {
		if f := core.FieldByID(meta.Fields, linkedFieldID); f != nil {
			return f
		}
		if f := core.FieldByName(meta.Fields, linkedFieldID); f != nil {
			return f
		}
	}
	for i := range meta.Fields {
		if core.IsSystemField(meta.Fields[i].Name) {
			continue
		}
		if meta.Fields[i].IsTextLike() {
			return &meta.Fields[i]
		}
	}
	return nil
}

// ResolveDisplay renders a link-field value as a human-readable label,
// joining multiple labels with ", ". Metadata or lookup failures degrade
// to displaying ids as their own labels; legacy values (entries that are
// not canonical ids) pass through unresolved and are appended after the
// resolved labels, never sent into an id-typed lookup.
func (r *Resolver) ResolveDisplay(ctx context.Context, field core.Field, value any) string {
	ids := core.NormalizeIDList(value)
	if len(ids) == 0 {
		return ""
	}

	canonical, legacy := partitionIDs(ids)
	labels := make([]string, 0, len(ids))

	if len(canonical) > 0 {
		byID := r.lookupLabels(ctx, field, canonical)
		for _, id := range canonical {
			labels = append(labels, byID[id])
		}
	}
	labels = append(labels, legacy...)
	return strings.Join(labels, ", ")
}

// ResolveDisplayMap is the batched variant of ResolveDisplay for
// rendering many rows at once. Every input id has an entry in the
// result, falling back to the id itself, so callers never need a
// presence check.
func (r *Resolver) ResolveDisplayMap(ctx context.Context, field core.Field, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	canonical, _ := partitionIDs(ids)

	var byID map[string]string
	if len(canonical) > 0 {
		byID = r.lookupLabels(ctx, field, canonical)
	}
	for _, id := range ids {
		if label, ok := byID[core.CanonicalID(id)]; ok {
			out[id] = label
			continue
		}
		out[id] = id
	}
	return out
}

// partitionIDs splits a value list into canonical-id-shaped entries and
// legacy entries.
func partitionIDs(ids []string) (canonical, legacy []string) {
	for _, id := range ids {
		if core.IsRecordID(id) {
			canonical = append(canonical, core.CanonicalID(id))
		} else {
			legacy = append(legacy, id)
		}
	}
	return canonical, legacy
}

// lookupLabels fetches display values for canonical ids, chunked to
// bound query size. Every requested id gets an entry; lookup failures
// and missing rows fall back to the id itself.
func (r *Resolver) lookupLabels(ctx context.Context, field core.Field, ids []string) map[string]string {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[id] = id
	}

	opts := field.Options.Link
	if opts == nil || opts.LinkedTableID == "" {
		return out
	}
	meta, err := r.LinkedTableMetadata(ctx, opts.LinkedTableID)
	if err != nil {
		r.logger.Warn("falling back to id display, linked table metadata unavailable",
			slog.String("linked_table_id", opts.LinkedTableID),
			slog.String("error", err.Error()))
		return out
	}
	display := DisplayField(meta, opts.LinkedFieldID)
	if display == nil {
		return out
	}

	for start := 0; start < len(ids); start += displayChunkSize {
		end := min(start+displayChunkSize, len(ids))
		rows, err := r.store.SelectRows(ctx, core.SelectQuery{
			Table:   meta.Table.PhysicalStoreName,
			Columns: []string{"id", display.Name},
			Filters: []core.Filter{core.In("id", ids[start:end])},
		})
		if err != nil {
			r.logger.Warn("display lookup failed, using ids as labels",
				slog.String("table", meta.Table.PhysicalStoreName),
				slog.String("error", err.Error()))
			continue
		}
		for _, row := range rows {
			id := core.CanonicalID(core.ValueToString(row["id"]))
			if label := core.ValueToString(row[display.Name]); label != "" {
				out[id] = label
			}
		}
	}
	return out
}
