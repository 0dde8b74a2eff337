package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Basic(t *testing.T) {
	grid := Parse("Alice\tBob\nCarol\tDave")
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"Alice", "Bob"}, grid[0])
	assert.Equal(t, []string{"Carol", "Dave"}, grid[1])
}

func TestParse_EmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n\t \n"))
}

func TestParse_CRLF(t *testing.T) {
	grid := Parse("a\tb\r\nc\td")
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"a", "b"}, grid[0])
	assert.Equal(t, []string{"c", "d"}, grid[1])
}

func TestParse_PreservesInteriorEmptyRowsAndCells(t *testing.T) {
	grid := Parse("a\t\tb\n\nc")
	require.Len(t, grid, 3)
	assert.Equal(t, []string{"a", "", "b"}, grid[0])
	assert.Equal(t, []string{""}, grid[1])
	assert.Equal(t, []string{"c"}, grid[2])
}

func TestParse_DropsTrailingEmptyLines(t *testing.T) {
	grid := Parse("a\nb\n\n\n")
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"a"}, grid[0])
	assert.Equal(t, []string{"b"}, grid[1])
}

func TestFormat_EmptyGrid(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "", Format([][]string{}))
}

func TestRoundTrip(t *testing.T) {
	grids := [][][]string{
		{{"Alice", "Bob"}, {"Carol", "Dave"}},
		{{"a"}},
		{{"a", "", "b"}, {""}, {"c"}},
		{{"a", "b", "c"}, {"d"}}, // jagged
	}
	for _, g := range grids {
		assert.Equal(t, g, Parse(Format(g)))
	}
}

func TestRoundTrip_ScenarioText(t *testing.T) {
	text := "Alice\tBob\nCarol\tDave"
	assert.Equal(t, text, Format(Parse(text)))
}

func TestParse_IdempotentAfterCanonicalization(t *testing.T) {
	// Trailing blank rows canonicalize away on the first pass; after
	// that, format/parse is stable.
	first := Parse("a\nb\n\n")
	second := Parse(Format(first))
	assert.Equal(t, first, second)
}
