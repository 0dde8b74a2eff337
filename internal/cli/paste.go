package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/SophieEDesign/marketinghub-sub007/internal/clipboard"
	"github.com/SophieEDesign/marketinghub-sub007/internal/paste"
	"github.com/SophieEDesign/marketinghub-sub007/pkg/core"
)

// pasteTarget carries the selection flags of the paste command.
type pasteTarget struct {
	anchorRow string
	anchorCol string
	rows      []string
	column    string
}

func (p pasteTarget) selection() (core.Selection, error) {
	switch {
	case p.anchorRow != "" && p.anchorCol != "":
		return core.Selection{Cell: &core.CellRef{RowID: p.anchorRow, ColumnID: p.anchorCol}}, nil
	case len(p.rows) > 0:
		return core.Selection{Rows: p.rows}, nil
	case p.column != "":
		return core.Selection{Column: p.column}, nil
	default:
		return core.Selection{}, fmt.Errorf("a paste target is required: --row with --col, --rows, or --column")
	}
}

func newPasteCommand() *cobra.Command {
	var target pasteTarget

	cmd := &cobra.Command{
		Use:   "paste <table>",
		Short: "Apply tab-separated clipboard text from stdin to a table",
		Long: `Reads tab-separated clipboard text from stdin and applies it to the
given table. The target is an anchor cell (--row and --col), a set of
selected rows (--rows), or a whole column (--column). Values are
validated per column type; link cells accept record ids or display
labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := newCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return runPaste(cmd.Context(), cc, args[0], target, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&target.anchorRow, "row", "", "Anchor row id")
	cmd.Flags().StringVar(&target.anchorCol, "col", "", "Anchor column id")
	cmd.Flags().StringSliceVar(&target.rows, "rows", nil, "Selected row ids (comma-separated)")
	cmd.Flags().StringVar(&target.column, "column", "", "Selected column id")

	return cmd
}

func runPaste(ctx context.Context, cc *commandContext, tableID string, target pasteTarget, in io.Reader, out io.Writer) error {
	sel, err := target.selection()
	if err != nil {
		return err
	}

	exec, layout, err := cc.openTable(ctx, tableID)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read clipboard input: %w", err)
	}
	grid := clipboard.Parse(string(raw))

	intent, err := paste.Resolve(sel, grid, layout)
	if err != nil {
		return err
	}

	changes := make([]core.CellChange, 0, len(intent.Writes))
	for _, w := range intent.Writes {
		changes = append(changes, core.CellChange{
			RowID:     w.RowID,
			ColumnID:  w.ColumnID,
			FieldName: w.FieldName,
			Value:     w.Value,
		})
	}

	result := exec.ApplyCellChanges(ctx, changes)
	renderMutationResult(out, result)

	if result.ErrorCount > 0 {
		return fmt.Errorf("%d of %d cells failed", result.ErrorCount, len(changes))
	}
	return nil
}

func renderMutationResult(w io.Writer, result core.BatchMutationResult) {
	if len(result.Errors) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ROW", "COLUMN", "ERROR"})
		for _, cellErr := range result.Errors {
			t.AppendRow(table.Row{cellErr.Change.RowID, cellErr.Change.FieldName, cellErr.Message})
		}
		t.Render()
	}
	fmt.Fprintf(w, "%d applied, %d failed\n", result.AppliedCount, result.ErrorCount)
}
