package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/adapter"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema <table>",
		Short: "Show schema for a table or view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return renderTableSchema(cmd.Context(), cmd.OutOrStdout(), cmdCtx, args[0], resolveFormat(format, cmdCtx.Cfg))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json")

	return cmd
}

func renderTableSchema(ctx context.Context, w io.Writer, cmdCtx *CommandContext, tableName, format string) error {
	cols, err := cmdCtx.Schema.Columns(ctx, tableName)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("table or view %q not found", tableName)
	}

	kind := adapter.KindTable
	if relations, err := cmdCtx.Schema.Relations(ctx); err == nil {
		for _, rel := range relations {
			if rel.Name == tableName {
				kind = rel.Kind
				break
			}
		}
	}

	// Index lookup is best effort; views have none.
	indexes, err := cmdCtx.Schema.Indexes(ctx, tableName)
	if err != nil {
		indexes = nil
	}

	return renderColumns(w, tableName, kind, cols, indexes, format)
}
