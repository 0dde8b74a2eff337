// Package clipboard implements the text⇄grid clipboard codec.
//
// The wire format is tab-separated columns and newline-separated rows,
// with no escaping: literal tabs or newlines inside a cell are not
// representable and must be avoided upstream.
package clipboard

import "strings"

// Parse converts pasted text into a rectangular (possibly jagged) grid
// of strings. Empty and whitespace-only input yields an empty grid.
// Trailing fully-empty lines are dropped; interior empty lines are
// preserved as empty rows. Empty cells between tabs are preserved.
func Parse(text string) [][]string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	lines := strings.Split(trimmed, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	// Drop trailing empty lines only; interior blanks stay.
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	lines = lines[:end]

	grid := make([][]string, 0, len(lines))
	for _, line := range lines {
		grid = append(grid, strings.Split(line, "\t"))
	}
	return grid
}

// Format is the inverse of Parse: each row's cells joined with tab,
// rows joined with newline. An empty grid formats to the empty string.
func Format(grid [][]string) string {
	if len(grid) == 0 {
		return ""
	}
	rows := make([]string, 0, len(grid))
	for _, row := range grid {
		rows = append(rows, strings.Join(row, "\t"))
	}
	return strings.Join(rows, "\n")
}
