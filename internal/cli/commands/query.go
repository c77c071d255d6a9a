package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format  string
	Input   string
	Explain bool
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute SQL through the guarded pipeline",
		Long: `Execute SQL against the configured engine.

SELECT statements are wrapped with the configured row cap before they
reach the engine. Write statements (INSERT, UPDATE, DROP, ...) require
confirmation unless --yes is set.

When invoked without arguments on a terminal, enters interactive REPL
mode with schema-aware completion.`,
		Example: `  # Execute SQL directly
  sqldeck query "SELECT * FROM customers"

  # Show the engine's plan instead of executing
  sqldeck query "SELECT * FROM orders" --explain

  # Read SQL from a file
  sqldeck query --input report.sql

  # Output as JSON
  sqldeck query "SELECT * FROM customers" --format json

  # Interactive mode
  sqldeck query`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "Show the query plan instead of executing")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// Determine SQL source
	var sqlQuery string

	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	case !isTerminal(os.Stdin):
		// Read from stdin (piped input)
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sqlQuery = string(content)
	default:
		// No input, TTY detected - enter REPL mode
		return runREPL(cmd, cmdCtx, opts)
	}

	if opts.Explain {
		plan, err := cmdCtx.Adapter.ExplainQueryPlan(cmd.Context(), strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sqlQuery), ";")))
		if err != nil {
			return fmt.Errorf("explain failed: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), plan)
		return nil
	}

	pipeline := cmdCtx.Pipeline(cmd)
	result, err := pipeline.Run(cmd.Context(), sqlQuery)
	if err != nil {
		return err
	}

	return renderResult(cmd.OutOrStdout(), result, resolveFormat(opts.Format, cmdCtx.Cfg))
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
