// Package paste maps a clipboard grid plus a user selection onto
// concrete per-cell writes.
package paste

import (
	"fmt"

	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// Mode describes how a clipboard block maps onto a selection.
type Mode string

// Paste modes.
const (
	// ModeVertical: the clipboard has exactly one column; one target
	// cell per selected row.
	ModeVertical Mode = "vertical"
	// ModeHorizontal: the clipboard has exactly one row; one target
	// cell per selected column.
	ModeHorizontal Mode = "horizontal"
	// ModeGrid: the clipboard is a 2D block mapped index-for-index
	// onto the selection.
	ModeGrid Mode = "grid"
)

// Column is one visible column of the current view.
type Column struct {
	ID        string
	FieldName string
}

// Layout is the current view's row and column order.
type Layout struct {
	RowIDs  []string
	Columns []Column
}

// CellWrite is one concrete paste target with its value.
type CellWrite struct {
	RowID     string
	ColumnID  string
	FieldName string
	Value     string
}

// Intent is the resolved outcome of a paste gesture.
type Intent struct {
	Mode   Mode
	Writes []CellWrite
}

// Resolve decides the paste mode from the clipboard shape and produces
// the ordered list of cell writes for the given selection. Cells
// addressed beyond the clipboard's bounds are skipped, not blanked, and
// empty clipboard cells are treated as "no change" rather than an
// explicit clear.
func Resolve(sel core.Selection, grid [][]string, layout Layout) (*Intent, error) {
	if len(grid) == 0 {
		return &Intent{Mode: ModeGrid}, nil
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	mode := ModeGrid
	switch {
	case width == 1:
		mode = ModeVertical
	case len(grid) == 1:
		mode = ModeHorizontal
	}

	rows, cols, err := targetArea(sel, layout, len(grid), width)
	if err != nil {
		return nil, err
	}

	intent := &Intent{Mode: mode}
	for ri, rowID := range rows {
		if ri >= len(grid) {
			// Beyond the clipboard's height: skip, never blank.
			break
		}
		for ci, col := range cols {
			if ci >= len(grid[ri]) {
				break
			}
			value := grid[ri][ci]
			if value == "" {
				// Empty clipboard cells mean "no change".
				continue
			}
			intent.Writes = append(intent.Writes, CellWrite{
				RowID:     rowID,
				ColumnID:  col.ID,
				FieldName: col.FieldName,
				Value:     value,
			})
		}
	}
	return intent, nil
}

// targetArea expands the selection into the row and column sets the
// clipboard maps onto. A cell selection anchors the clipboard's shape;
// row and column selections bound the area to the selection itself.
func targetArea(sel core.Selection, layout Layout, height, width int) ([]string, []Column, error) {
	switch sel.Kind() {
	case core.SelectionCell:
		if sel.Cell == nil {
			return nil, nil, fmt.Errorf("empty selection")
		}
		rowStart := indexOfRow(layout.RowIDs, sel.Cell.RowID)
		colStart := indexOfColumn(layout.Columns, sel.Cell.ColumnID)
		if rowStart < 0 || colStart < 0 {
			return nil, nil, fmt.Errorf("selection cell %s/%s is not in the current view",
				sel.Cell.RowID, sel.Cell.ColumnID)
		}
		rowEnd := min(rowStart+height, len(layout.RowIDs))
		colEnd := min(colStart+width, len(layout.Columns))
		return layout.RowIDs[rowStart:rowEnd], layout.Columns[colStart:colEnd], nil

	case core.SelectionRows:
		rows := orderRowsByLayout(layout.RowIDs, sel.Rows)
		if len(rows) == 0 {
			return nil, nil, fmt.Errorf("selected rows are not in the current view")
		}
		return rows, layout.Columns, nil

	case core.SelectionColumn:
		col := indexOfColumn(layout.Columns, sel.Column)
		if col < 0 {
			return nil, nil, fmt.Errorf("selected column %s is not in the current view", sel.Column)
		}
		return layout.RowIDs, layout.Columns[col : col+1], nil
	}
	return nil, nil, fmt.Errorf("empty selection")
}

func indexOfRow(rowIDs []string, id string) int {
	for i, r := range rowIDs {
		if r == id {
			return i
		}
	}
	return -1
}

func indexOfColumn(cols []Column, id string) int {
	for i, c := range cols {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// orderRowsByLayout returns the selected rows sorted by their position
// in the view, dropping ids that are not visible.
func orderRowsByLayout(rowIDs []string, selected []string) []string {
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	var out []string
	for _, id := range rowIDs {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}
