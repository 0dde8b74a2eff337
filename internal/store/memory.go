package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Memory is an in-memory core.Store used by engine tests and local
// experiments. It mirrors the point-query semantics of the SQL backends,
// including ErrColumnTypeMismatch for list writes into columns marked
// singular.
type Memory struct {
	mu       sync.RWMutex
	tables   map[string]*core.Table
	fields   map[string][]core.Field
	rows     map[string][]map[string]any
	singular map[string]map[string]bool

	// GetTableErr, while set, fails every GetTable call. Tests use it
	// to exercise metadata-fetch degradation.
	GetTableErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables:   make(map[string]*core.Table),
		fields:   make(map[string][]core.Field),
		rows:     make(map[string][]map[string]any),
		singular: make(map[string]map[string]bool),
	}
}

// AddTable registers a table definition and its field catalog.
func (m *Memory) AddTable(t core.Table, fields []core.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t
	m.tables[t.ID] = &cp
	m.fields[t.ID] = append([]core.Field(nil), fields...)
}

// SeedRow inserts a row directly, generating an id when absent, and
// returns the row id.
func (m *Memory) SeedRow(table string, row map[string]any) string {
	id, _ := row["id"].(string)
	if id == "" {
		id = core.NewRecordID()
	}
	cp := make(map[string]any, len(row)+1)
	for k, v := range row {
		cp[k] = v
	}
	cp["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[table] = append(m.rows[table], cp)
	return id
}

// MarkSingularColumn declares that the physical column holds a single id
// value; writing a list to it fails with ErrColumnTypeMismatch, the way
// a mis-migrated remote column does.
func (m *Memory) MarkSingularColumn(table, column string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.singular[table] == nil {
		m.singular[table] = make(map[string]bool)
	}
	m.singular[table][column] = true
}

// Row returns a copy of the row with the given id, or nil. Test helper.
func (m *Memory) Row(table, id string) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows[table] {
		if row["id"] == id {
			cp := make(map[string]any, len(row))
			for k, v := range row {
				cp[k] = v
			}
			return cp
		}
	}
	return nil
}

// SelectRows implements core.Store.
func (m *Memory) SelectRows(_ context.Context, q core.SelectQuery) ([]map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []map[string]any
	for _, row := range m.rows[q.Table] {
		ok, err := matchesAll(row, q.Filters)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result = append(result, projectRow(row, q.Columns))
		if q.Limit > 0 && len(result) >= q.Limit {
			break
		}
	}
	return result, nil
}

func projectRow(row map[string]any, columns []string) map[string]any {
	cp := make(map[string]any, len(row))
	if len(columns) == 0 {
		for k, v := range row {
			cp[k] = v
		}
		return cp
	}
	for _, c := range columns {
		cp[c] = row[c]
	}
	return cp
}

func matchesAll(row map[string]any, filters []core.Filter) (bool, error) {
	for _, f := range filters {
		ok, err := matches(row, f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matches(row map[string]any, f core.Filter) (bool, error) {
	cell := core.ValueToString(row[f.Column])
	switch f.Op {
	case core.FilterEq:
		return cell == core.ValueToString(f.Value), nil
	case core.FilterIn:
		for _, v := range f.Values {
			if cell == v {
				return true, nil
			}
		}
		return false, nil
	case core.FilterILike:
		re, err := likeToRegexp(f.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(cell), nil
	default:
		return false, fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// likeToRegexp translates a SQL LIKE pattern into a case-insensitive
// anchored regexp. Backslash escapes the wildcard characters.
func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?i)^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			i++
			sb.WriteString(regexp.QuoteMeta(string(runes[i])))
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// UpdateRow implements core.Store.
func (m *Memory) UpdateRow(_ context.Context, table, id string, values map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows[table] {
		if row["id"] != id {
			continue
		}
		for k, v := range values {
			if m.singular[table][k] && isListValue(v) {
				return fmt.Errorf("update %s/%s column %s: %w", table, id, k, core.ErrColumnTypeMismatch)
			}
			if v == nil {
				delete(row, k)
				continue
			}
			row[k] = v
		}
		return nil
	}
	return fmt.Errorf("update %s/%s: %w", table, id, core.ErrRowNotFound)
}

func isListValue(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	}
	return false
}

// InsertRow implements core.Store.
func (m *Memory) InsertRow(_ context.Context, table string, values map[string]any) (string, error) {
	return m.SeedRow(table, values), nil
}

// GetTable implements core.Store.
func (m *Memory) GetTable(_ context.Context, tableID string) (*core.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetTableErr != nil {
		return nil, m.GetTableErr
	}
	t, ok := m.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", tableID, core.ErrTableNotFound)
	}
	cp := *t
	return &cp, nil
}

// ListFields implements core.Store.
func (m *Memory) ListFields(_ context.Context, tableID string) ([]core.Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.fields[tableID]
	if !ok {
		return nil, fmt.Errorf("table %s: %w", tableID, core.ErrTableNotFound)
	}
	return append([]core.Field(nil), fields...), nil
}

// Close implements core.Store.
func (m *Memory) Close() error { return nil }

var _ core.Store = (*Memory)(nil)
