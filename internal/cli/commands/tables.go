package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/adapter"
	"github.com/sqldeck/sqldeck/internal/guard"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var format string
	var viewsOnly bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List tables and views",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			f := resolveFormat(format, cmdCtx.Cfg)
			if viewsOnly {
				return renderViews(cmd.Context(), cmd.OutOrStdout(), cmdCtx, f)
			}
			return renderRelations(cmd.Context(), cmd.OutOrStdout(), cmdCtx, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().BoolVar(&viewsOnly, "views", false, "List views only")

	return cmd
}

func renderRelations(ctx context.Context, w io.Writer, cmdCtx *CommandContext, format string) error {
	return renderRelationList(ctx, w, cmdCtx, format, false)
}

func renderViews(ctx context.Context, w io.Writer, cmdCtx *CommandContext, format string) error {
	return renderRelationList(ctx, w, cmdCtx, format, true)
}

func renderRelationList(ctx context.Context, w io.Writer, cmdCtx *CommandContext, format string, viewsOnly bool) error {
	relations, err := cmdCtx.Schema.Relations(ctx)
	if err != nil {
		return err
	}

	rows := make([]map[string]any, 0, len(relations))
	for _, rel := range relations {
		if viewsOnly && rel.Kind != adapter.KindView {
			continue
		}
		rows = append(rows, map[string]any{
			"name": rel.Name,
			"kind": string(rel.Kind),
		})
	}

	return renderResult(w, &guard.Result{Columns: []string{"name", "kind"}, Rows: rows}, format)
}
