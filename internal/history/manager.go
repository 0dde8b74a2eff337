// Package history records applied batches and replays them for
// undo/redo.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Navigation errors.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultLimit bounds how many entries the past stack retains.
const DefaultLimit = 50

// Applier applies a batch of cell changes. Satisfied by
// mutate.Executor.
type Applier interface {
	ApplyCellChanges(ctx context.Context, changes []core.CellChange) core.BatchMutationResult
}

// Manager maintains bounded past/present/future stacks of applied
// batches. Undo applies the inverse of the present batch; redo
// re-applies the head of the future. Both go through the same executor
// as any other batch and inherit its partial-failure semantics: an undo
// can itself partially fail, and the result says exactly which cells
// moved.
type Manager struct {
	applier Applier
	limit   int

	past    []core.HistoryEntry
	present *core.HistoryEntry
	future  []core.HistoryEntry
}

// New creates a history manager with the default entry limit.
func New(applier Applier) *Manager {
	return NewWithLimit(applier, DefaultLimit)
}

// NewWithLimit creates a history manager retaining at most limit past
// entries. A non-positive limit falls back to DefaultLimit.
func NewWithLimit(applier Applier, limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{applier: applier, limit: limit}
}

// Record pushes a freshly applied batch. Recording a new batch clears
// the future stack: redo is only meaningful directly after undo.
func (m *Manager) Record(changes []core.CellChange) {
	if len(changes) == 0 {
		return
	}
	if m.present != nil {
		m.past = append(m.past, *m.present)
		if len(m.past) > m.limit {
			m.past = m.past[len(m.past)-m.limit:]
		}
	}
	m.present = &core.HistoryEntry{Changes: changes, Timestamp: time.Now().UTC()}
	m.future = nil
}

// CanUndo reports whether an undo target exists.
func (m *Manager) CanUndo() bool { return m.present != nil }

// CanRedo reports whether a redo target exists.
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Undo applies the inverse of the present batch and shifts it onto the
// future stack.
func (m *Manager) Undo(ctx context.Context) (core.BatchMutationResult, error) {
	if m.present == nil {
		return core.BatchMutationResult{}, ErrNothingToUndo
	}

	inverse := make([]core.CellChange, len(m.present.Changes))
	for i, c := range m.present.Changes {
		inverse[i] = c.Inverse()
	}
	result := m.applier.ApplyCellChanges(ctx, inverse)

	m.future = append([]core.HistoryEntry{*m.present}, m.future...)
	if n := len(m.past); n > 0 {
		entry := m.past[n-1]
		m.past = m.past[:n-1]
		m.present = &entry
	} else {
		m.present = nil
	}
	return result, nil
}

// Redo re-applies the head of the future stack unchanged.
func (m *Manager) Redo(ctx context.Context) (core.BatchMutationResult, error) {
	if len(m.future) == 0 {
		return core.BatchMutationResult{}, ErrNothingToRedo
	}

	entry := m.future[0]
	result := m.applier.ApplyCellChanges(ctx, entry.Changes)

	m.future = m.future[1:]
	if m.present != nil {
		m.past = append(m.past, *m.present)
		if len(m.past) > m.limit {
			m.past = m.past[len(m.past)-m.limit:]
		}
	}
	m.present = &entry
	return result, nil
}
