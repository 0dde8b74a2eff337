package core

import "time"

// SelectionKind identifies which selection mode is active.
type SelectionKind string

// Selection kinds.
const (
	SelectionCell   SelectionKind = "cell"
	SelectionRows   SelectionKind = "rows"
	SelectionColumn SelectionKind = "column"
)

// CellRef addresses one cell of the current view.
type CellRef struct {
	RowID    string
	ColumnID string
}

// Selection is the user's active selection: exactly one of Cell, Rows,
// or Column is set.
type Selection struct {
	Cell   *CellRef
	Rows   []string
	Column string
}

// Kind returns which selection mode is active. A zero Selection reports
// SelectionCell with a nil cell; callers validate before use.
func (s Selection) Kind() SelectionKind {
	switch {
	case s.Cell != nil:
		return SelectionCell
	case len(s.Rows) > 0:
		return SelectionRows
	case s.Column != "":
		return SelectionColumn
	}
	return SelectionCell
}

// CellChange is the atomic unit of mutation and of history.
type CellChange struct {
	RowID     string
	ColumnID  string
	FieldName string
	// Value is the proposed new value. PreviousValue is the value being
	// replaced; when nil for a link field, the executor reads the
	// current value before writing so reciprocal sync can diff.
	Value         any
	PreviousValue any
}

// Inverse returns the change that undoes this one.
func (c CellChange) Inverse() CellChange {
	return CellChange{
		RowID:         c.RowID,
		ColumnID:      c.ColumnID,
		FieldName:     c.FieldName,
		Value:         c.PreviousValue,
		PreviousValue: c.Value,
	}
}

// ValidationResult reports the outcome of validating one value against
// one field.
type ValidationResult struct {
	Valid bool
	// Error is a human-readable rejection reason when Valid is false.
	Error string
	// NormalizedValue is the value to write when Valid is true. Nil
	// means absent.
	NormalizedValue any
	// NeedsResolution is set for link fields whose value is a display
	// label rather than a record id; the caller must re-enter through
	// the asynchronous link-resolution path.
	NeedsResolution bool
}

// CellError attributes a batch failure to its originating change.
type CellError struct {
	Change  CellChange
	Message string
}

// BatchMutationResult partitions a batch into what succeeded and what
// failed. Every input change lands in exactly one of Changes or Errors,
// so AppliedCount+ErrorCount always equals the input length.
type BatchMutationResult struct {
	Success      bool
	Changes      []CellChange
	Errors       []CellError
	AppliedCount int
	ErrorCount   int
}

// HistoryEntry is one applied batch, recorded for undo/redo.
type HistoryEntry struct {
	Changes   []CellChange
	Timestamp time.Time
}
