package cli

import (
	"context"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newFieldsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <table>",
		Short: "List a table's field catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := newCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return runFields(cmd.Context(), cc, args[0], cmd.OutOrStdout())
		},
	}
}

func runFields(ctx context.Context, cc *commandContext, tableID string, out io.Writer) error {
	fields, err := cc.Store.ListFields(ctx, tableID)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "TYPE", "REQUIRED", "LINKED TABLE"})
	for _, f := range fields {
		linked := ""
		if f.IsLink() && f.Options.Link != nil {
			linked = f.Options.Link.LinkedTableID
			if !f.Options.Link.AllowsMultiple() {
				linked += " (single)"
			}
		}
		t.AppendRow(table.Row{f.Name, string(f.Type), f.Required, linked})
	}
	t.Render()
	return nil
}
