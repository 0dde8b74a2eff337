package core

import (
	"context"
	"errors"
)

// Store errors classified by backends.
var (
	// ErrRowNotFound is returned when a point read or update addresses
	// a row id that does not exist.
	ErrRowNotFound = errors.New("row not found")
	// ErrTableNotFound is returned when a table id or physical name
	// does not resolve.
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnTypeMismatch is returned when a write's value shape does
	// not match the physical column type (for example a list written
	// into a singular id column). Reciprocal sync degrades to a warning
	// on this error rather than failing the batch.
	ErrColumnTypeMismatch = errors.New("column type mismatch")
)

// FilterOp is a point-query predicate operator.
type FilterOp string

// Filter operators: the only predicates the remote store supports.
const (
	// FilterEq matches rows where the column equals Value.
	FilterEq FilterOp = "eq"
	// FilterIn matches rows where the column equals any of Values.
	FilterIn FilterOp = "in"
	// FilterILike matches rows where the column matches Pattern
	// case-insensitively. Pattern uses SQL LIKE syntax.
	FilterILike FilterOp = "ilike"
)

// Filter is one predicate of a point query.
type Filter struct {
	Column  string
	Op      FilterOp
	Value   any
	Values  []string
	Pattern string
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: FilterEq, Value: value}
}

// In builds an inclusion-list filter.
func In(column string, values []string) Filter {
	return Filter{Column: column, Op: FilterIn, Values: values}
}

// ILike builds a case-insensitive pattern filter.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: FilterILike, Pattern: pattern}
}

// SelectQuery describes one point read.
type SelectQuery struct {
	// Table is the physical relation name.
	Table string
	// Columns to return; empty means all columns.
	Columns []string
	// Filters are combined with AND.
	Filters []Filter
	// OrderBy names a column to sort ascending by; empty means store
	// order.
	OrderBy string
	// Limit caps the number of rows returned; zero means no cap.
	Limit int
}

// Store is the remote query interface: point operations only. No
// transactions and no multi-row atomic writes are assumed available.
type Store interface {
	// SelectRows runs one point read and returns the matching rows as
	// column-name-keyed maps.
	SelectRows(ctx context.Context, q SelectQuery) ([]map[string]any, error)
	// UpdateRow writes one or more columns of the row with the given
	// id. Returns ErrRowNotFound when the id does not exist.
	UpdateRow(ctx context.Context, table, id string, values map[string]any) error
	// InsertRow inserts one row and returns its id. An id present in
	// values is used as-is; otherwise one is generated.
	InsertRow(ctx context.Context, table string, values map[string]any) (string, error)

	// GetTable resolves a table id to its definition.
	GetTable(ctx context.Context, tableID string) (*Table, error)
	// ListFields returns the table's field catalog in position order.
	ListFields(ctx context.Context, tableID string) ([]Field, error)

	// Close releases the underlying connection.
	Close() error
}
