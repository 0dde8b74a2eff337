// Package store provides backends for the remote query interface: point
// selects, single-row updates, and single-row inserts over the physical
// tables, plus reads of the table/field catalogs.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Catalog table names.
const (
	tablesCatalog = "hub_tables"
	fieldsCatalog = "hub_fields"
)

// SQLBase provides common database/sql functionality for SQL-backed
// stores. Embed it in concrete backends to get the standard SelectRows,
// UpdateRow, InsertRow, and catalog implementations.
type SQLBase struct {
	DB     *sql.DB
	Logger *slog.Logger
	// Placeholder renders the n-th positional parameter ($n or ?).
	Placeholder func(n int) string
	// ILikePredicate renders a case-insensitive LIKE against the n-th
	// positional parameter.
	ILikePredicate func(column string, n int) string
	// Classify maps driver errors onto the core sentinel errors. May be
	// nil, in which case errors pass through unchanged.
	Classify func(err error) error
}

// Close closes the database connection.
func (b *SQLBase) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing store connection")
		}
		return b.DB.Close()
	}
	return nil
}

func (b *SQLBase) classify(err error) error {
	if err == nil {
		return nil
	}
	if b.Classify != nil {
		return b.Classify(err)
	}
	return err
}

// quoteIdent quotes a table or column identifier. Identifier names come
// from the catalog, not from user cell input.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// buildWhere renders the filter list as an AND-joined WHERE clause and
// returns the clause with its arguments.
func (b *SQLBase) buildWhere(filters []core.Filter, argOffset int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var preds []string
	var args []any
	n := argOffset
	for _, f := range filters {
		switch f.Op {
		case core.FilterEq:
			n++
			preds = append(preds, fmt.Sprintf("%s = %s", quoteIdent(f.Column), b.Placeholder(n)))
			args = append(args, normalizeArg(f.Value))
		case core.FilterIn:
			if len(f.Values) == 0 {
				// Empty inclusion list matches nothing.
				preds = append(preds, "1 = 0")
				continue
			}
			holes := make([]string, 0, len(f.Values))
			for _, v := range f.Values {
				n++
				holes = append(holes, b.Placeholder(n))
				args = append(args, v)
			}
			preds = append(preds, fmt.Sprintf("%s IN (%s)", quoteIdent(f.Column), strings.Join(holes, ", ")))
		case core.FilterILike:
			n++
			preds = append(preds, b.ILikePredicate(quoteIdent(f.Column), n))
			args = append(args, f.Pattern)
		default:
			return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
	}
	return " WHERE " + strings.Join(preds, " AND "), args, nil
}

// normalizeArg serializes list and object values to JSON text before they
// reach the driver; link columns store lists as JSON.
func normalizeArg(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, float64, []byte:
		return v
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}

// SelectRows runs one point read and returns matching rows as
// column-name-keyed maps.
func (b *SQLBase) SelectRows(ctx context.Context, q core.SelectQuery) ([]map[string]any, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("store connection not established")
	}

	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, 0, len(q.Columns))
		for _, c := range q.Columns {
			quoted = append(quoted, quoteIdent(c))
		}
		cols = strings.Join(quoted, ", ")
	}

	where, args, err := b.buildWhere(q.Filters, 0)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s", cols, quoteIdent(q.Table), where)
	if q.OrderBy != "" {
		query += " ORDER BY " + quoteIdent(q.OrderBy)
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select from %s: %w", q.Table, b.classify(err))
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		holders := make([]any, len(names))
		for i := range holders {
			holders[i] = new(any)
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			v := *(holders[i].(*any))
			if bs, ok := v.([]byte); ok {
				v = string(bs)
			}
			row[name] = v
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// UpdateRow writes one or more columns of a single row by id.
func (b *SQLBase) UpdateRow(ctx context.Context, table, id string, values map[string]any) error {
	if b.DB == nil {
		return fmt.Errorf("store connection not established")
	}
	if len(values) == 0 {
		return nil
	}

	// Deterministic column order keeps generated SQL stable for tests
	// and logs.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(name), b.Placeholder(i+1)))
		args = append(args, normalizeArg(values[name]))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		quoteIdent(table), strings.Join(sets, ", "), b.Placeholder(len(names)+1))

	res, err := b.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", table, id, b.classify(err))
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update %s/%s: %w", table, id, core.ErrRowNotFound)
	}
	return nil
}

// InsertRow inserts one row, generating an id when none is supplied.
func (b *SQLBase) InsertRow(ctx context.Context, table string, values map[string]any) (string, error) {
	if b.DB == nil {
		return "", fmt.Errorf("store connection not established")
	}

	id, _ := values["id"].(string)
	if id == "" {
		id = core.NewRecordID()
	}

	extra := make([]string, 0, len(values))
	for name := range values {
		if name != "id" {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)

	names := append([]string{"id"}, extra...)
	args := make([]any, 0, len(names))
	args = append(args, id)
	for _, name := range extra {
		args = append(args, normalizeArg(values[name]))
	}

	quoted := make([]string, 0, len(names))
	holes := make([]string, 0, len(names))
	for i, name := range names {
		quoted = append(quoted, quoteIdent(name))
		holes = append(holes, b.Placeholder(i+1))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(holes, ", "))

	if _, err := b.DB.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", table, b.classify(err))
	}
	return id, nil
}

// GetTable resolves a table id against the hub_tables catalog.
func (b *SQLBase) GetTable(ctx context.Context, tableID string) (*core.Table, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("store connection not established")
	}

	query := fmt.Sprintf(
		"SELECT id, physical_store_name, primary_field_name FROM %s WHERE id = %s",
		tablesCatalog, b.Placeholder(1))

	var t core.Table
	var primary sql.NullString
	err := b.DB.QueryRowContext(ctx, query, tableID).Scan(&t.ID, &t.PhysicalStoreName, &primary)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("table %s: %w", tableID, core.ErrTableNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", tableID, err)
	}
	t.PrimaryFieldName = primary.String
	return &t, nil
}

// ListFields returns the table's field catalog in position order, with
// each field's options bag decoded into its typed variant.
func (b *SQLBase) ListFields(ctx context.Context, tableID string) ([]core.Field, error) {
	if b.DB == nil {
		return nil, fmt.Errorf("store connection not established")
	}

	query := fmt.Sprintf(
		"SELECT id, name, type, required, options, position FROM %s WHERE table_id = %s ORDER BY position",
		fieldsCatalog, b.Placeholder(1))

	rows, err := b.DB.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields of %s: %w", tableID, err)
	}
	defer func() { _ = rows.Close() }()

	var fields []core.Field
	for rows.Next() {
		var f core.Field
		var required int
		var rawOptions sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &f.Type, &required, &rawOptions, &f.Position); err != nil {
			return nil, fmt.Errorf("failed to scan field: %w", err)
		}
		f.Required = required != 0

		var bag map[string]any
		if rawOptions.Valid && rawOptions.String != "" {
			if err := json.Unmarshal([]byte(rawOptions.String), &bag); err != nil {
				return nil, fmt.Errorf("invalid options for field %s: %w", f.Name, err)
			}
		}
		opts, err := core.DecodeOptions(f.Type, bag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		f.Options = opts
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fields: %w", err)
	}
	return fields, nil
}
