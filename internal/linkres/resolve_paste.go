package linkres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// termSplitter separates pasted link text into individual terms.
func splitTerms(pasted string) []string {
	parts := strings.FieldsFunc(pasted, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}

// ResolvePastedValue turns pasted text into record ids for a link field.
// Terms are split on comma and newline. A term that already has the
// canonical id shape is verified to exist; any other term is searched
// against the target table's display fields, first exactly, then
// case-insensitively. Case-insensitive ties attempt a single-exact-match
// tiebreak and otherwise fail closed as ambiguous.
//
// Every failure is collected as a human-readable message; a non-empty
// error list means the value must not be written. A single-link field
// that resolves to more than one record is rejected as a whole with a
// cardinality error.
func (r *Resolver) ResolvePastedValue(ctx context.Context, field core.Field, pasted string) ([]string, []string) {
	opts := field.Options.Link
	if opts == nil || opts.LinkedTableID == "" {
		return nil, []string{fmt.Sprintf("link field %q has no target table configured", field.Name)}
	}

	meta, err := r.LinkedTableMetadata(ctx, opts.LinkedTableID)
	if err != nil {
		return nil, []string{fmt.Sprintf("linked table %s is not available: %v", opts.LinkedTableID, err)}
	}

	terms := splitTerms(pasted)
	if len(terms) == 0 {
		return nil, nil
	}

	searchFields := searchFieldChain(meta, opts.LinkedFieldID)
	var ids []string
	var errs []string
	seen := make(map[string]bool)

	for _, term := range terms {
		var id string
		var resolveErr string
		if core.IsRecordID(term) {
			id, resolveErr = r.verifyID(ctx, meta, term)
		} else if len(searchFields) == 0 {
			resolveErr = fmt.Sprintf("linked table %q has no searchable fields for %q", meta.Table.PhysicalStoreName, term)
		} else {
			id, resolveErr = r.searchTerm(ctx, meta, searchFields, term)
		}

		if resolveErr != "" {
			errs = append(errs, resolveErr)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if !opts.AllowsMultiple() && len(ids) > 1 {
		return nil, []string{fmt.Sprintf(
			"Single-link field cannot accept multiple values. Found: %d records", len(ids))}
	}
	if len(ids) == 0 {
		ids = nil
	}
	return ids, errs
}

// searchFieldChain orders the fields a display term is matched against:
// the display field first, then the remaining text-like fields, then
// every other storable field. Computed fields and the id column are
// never searched.
func searchFieldChain(meta *TableMetadata, linkedFieldID string) []core.Field {
	var chain []core.Field
	added := make(map[string]bool)
	add := func(f *core.Field) {
		if f == nil || added[f.Name] || f.IsComputed() || f.Name == "id" {
			return
		}
		added[f.Name] = true
		chain = append(chain, *f)
	}

	add(DisplayField(meta, linkedFieldID))
	for i := range meta.Fields {
		if meta.Fields[i].IsTextLike() {
			add(&meta.Fields[i])
		}
	}
	for i := range meta.Fields {
		add(&meta.Fields[i])
	}
	return chain
}

// verifyID confirms a canonical-shaped term references an existing row.
func (r *Resolver) verifyID(ctx context.Context, meta *TableMetadata, term string) (string, string) {
	id := core.CanonicalID(term)
	rows, err := r.store.SelectRows(ctx, core.SelectQuery{
		Table:   meta.Table.PhysicalStoreName,
		Columns: []string{"id"},
		Filters: []core.Filter{core.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return "", fmt.Sprintf("failed to verify record %q: %v", term, err)
	}
	if len(rows) == 0 {
		return "", fmt.Sprintf("record %q not found in table %q", term, meta.Table.PhysicalStoreName)
	}
	return id, ""
}

// searchTerm finds the record a display term refers to. The exact pass
// runs before the case-insensitive pass so exact matches always win.
func (r *Resolver) searchTerm(ctx context.Context, meta *TableMetadata, fields []core.Field, term string) (string, string) {
	// Exact pass.
	for _, f := range fields {
		rows, err := r.store.SelectRows(ctx, core.SelectQuery{
			Table:   meta.Table.PhysicalStoreName,
			Columns: []string{"id", f.Name},
			Filters: []core.Filter{core.Eq(f.Name, term)},
			Limit:   2,
		})
		if err != nil {
			return "", fmt.Sprintf("failed to search for %q: %v", term, err)
		}
		switch len(rows) {
		case 0:
			continue
		case 1:
			return core.CanonicalID(core.ValueToString(rows[0]["id"])), ""
		default:
			return "", fmt.Sprintf("ambiguous match for %q: multiple records share this value", term)
		}
	}

	// Case-insensitive pass.
	for _, f := range fields {
		rows, err := r.store.SelectRows(ctx, core.SelectQuery{
			Table:   meta.Table.PhysicalStoreName,
			Columns: []string{"id", f.Name},
			Filters: []core.Filter{core.ILike(f.Name, escapeLike(term))},
			Limit:   displayChunkSize,
		})
		if err != nil {
			return "", fmt.Sprintf("failed to search for %q: %v", term, err)
		}
		if len(rows) == 0 {
			continue
		}
		if len(rows) == 1 {
			return core.CanonicalID(core.ValueToString(rows[0]["id"])), ""
		}
		// Tiebreak: exactly one candidate whose stored value equals the
		// term byte-for-byte resolves; true ties fail closed.
		var exact []string
		for _, row := range rows {
			if core.ValueToString(row[f.Name]) == term {
				exact = append(exact, core.CanonicalID(core.ValueToString(row["id"])))
			}
		}
		if len(exact) == 1 {
			return exact[0], ""
		}
		return "", fmt.Sprintf("ambiguous match for %q: found %d records", term, len(rows))
	}

	return "", fmt.Sprintf("no record matching %q in table %q", term, meta.Table.PhysicalStoreName)
}

// escapeLike neutralizes LIKE wildcards in a literal search term.
func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, `%`, `\%`)
	return strings.ReplaceAll(term, `_`, `\_`)
}
