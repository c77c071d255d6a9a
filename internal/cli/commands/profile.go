package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/builder"
)

// NewProfileCommand creates the profile command.
func NewProfileCommand() *cobra.Command {
	var format string
	var limit int
	var nullThreshold, cardinalityThreshold float64

	cmd := &cobra.Command{
		Use:   "profile <table>",
		Short: "Profile a table's columns",
		Long: `Profile a capped sample of a table: per-column null rate, distinct
count, numeric range, detected type, shape patterns, and data-quality
issues (high_null, mixed_types, high_cardinality, suspicious_values).`,
		Example: `  sqldeck profile customers
  sqldeck profile orders --limit 1000 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if limit > 0 {
				cmdCtx.Cfg.MaxRows = limit
			}
			if nullThreshold > 0 {
				cmdCtx.Cfg.Profile.NullRatePercent = nullThreshold
			}
			if cardinalityThreshold > 0 {
				cmdCtx.Cfg.Profile.CardinalityRatePercent = cardinalityThreshold
			}

			pipeline := cmdCtx.Pipeline(cmd)
			return profileTable(cmd.Context(), cmd.OutOrStdout(), cmdCtx, pipeline, args[0], resolveFormat(format, cmdCtx.Cfg))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json")
	cmd.Flags().IntVar(&limit, "limit", 0, "Sample size (default: configured row cap)")
	cmd.Flags().Float64Var(&nullThreshold, "null-threshold", 0, "Null rate percent that flags high_null (default: configured)")
	cmd.Flags().Float64Var(&cardinalityThreshold, "cardinality-threshold", 0, "Distinct rate percent that flags high_cardinality (default: configured)")

	return cmd
}

// sampleSQL compiles a bounded SELECT * over the table, validating the
// name against the builder's identifier rules.
func sampleSQL(ctx context.Context, cmdCtx *CommandContext, tableName string) (string, error) {
	schema, err := cmdCtx.Schema.Columns(ctx, tableName)
	if err != nil {
		return "", err
	}

	spec := builder.Spec{Table: tableName}
	spec.Limit = spec.EffectiveLimit(cmdCtx.Cfg.MaxRows)

	sql := builder.Compile(spec, schema)
	if sql == "" {
		return "", fmt.Errorf("invalid table name %q", tableName)
	}
	return sql, nil
}
