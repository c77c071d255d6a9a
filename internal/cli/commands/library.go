package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/guard"
	"github.com/sqldeck/sqldeck/internal/library"
)

// NewLibraryCommand creates the library command group.
func NewLibraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage the saved statement library",
		Long: `Manage saved SQL statements.

Entries are deduplicated by normalized SQL text: saving an equivalent
statement updates the existing entry instead of creating a duplicate.`,
	}

	cmd.AddCommand(newLibraryListCommand())
	cmd.AddCommand(newLibrarySaveCommand())
	cmd.AddCommand(newLibraryDeleteCommand())
	cmd.AddCommand(newLibraryFavoriteCommand())
	cmd.AddCommand(newLibraryRunCommand())

	return cmd
}

func newLibraryListCommand() *cobra.Command {
	var format string
	var scope string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved statements, favorites first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			store, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(scope)
			if err != nil {
				return err
			}
			return renderStatements(cmd.OutOrStdout(), entries, resolveFormat(format, cmdCtx.Cfg))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVar(&scope, "scope", library.ScopeGlobal, "Library scope")

	return cmd
}

func newLibrarySaveCommand() *cobra.Command {
	var (
		name        string
		description string
		tags        []string
		scope       string
		favorite    bool
	)

	cmd := &cobra.Command{
		Use:   "save [SQL]",
		Short: "Save a statement (or update the equivalent entry)",
		Example: `  sqldeck library save --name "active customers" "SELECT * FROM customers WHERE active = 1"
  cat report.sql | sqldeck library save --name report --tags finance,monthly`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)

			var sqlText string
			if len(args) > 0 {
				sqlText = args[0]
			} else {
				content, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				sqlText = string(content)
			}
			sqlText = strings.TrimSpace(sqlText)
			if sqlText == "" {
				return fmt.Errorf("no SQL to save")
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			store, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			saved, err := store.Save(library.Statement{
				Name:        name,
				SQLText:     sqlText,
				Scope:       scope,
				IsFavorite:  favorite,
				Tags:        tags,
				Description: description,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Statement name (required)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Statement description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Comma-separated tags")
	cmd.Flags().StringVar(&scope, "scope", library.ScopeGlobal, "Library scope")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Mark as favorite")

	return cmd
}

func newLibraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			store, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newLibraryFavoriteCommand() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark or unmark a statement as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)
			store, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			return store.SetFavorite(args[0], !unset)
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the favorite flag")

	return cmd
}

func newLibraryRunCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Execute a saved statement through the guarded pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := cmdCtx.OpenLibrary()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stmt, err := store.Get(args[0])
			if err != nil {
				return err
			}

			pipeline := cmdCtx.Pipeline(cmd)
			result, err := pipeline.Run(cmd.Context(), stmt.SQLText)
			if err != nil {
				return err
			}

			// Recency only updates after a successful run.
			if err := store.MarkUsed(stmt.ID); err != nil {
				cmdCtx.Logger.Warn("failed to mark statement used", "id", stmt.ID, "error", err)
			}

			return renderResult(cmd.OutOrStdout(), result, resolveFormat(format, cmdCtx.Cfg))
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, csv, md")

	return cmd
}

func renderStatements(w io.Writer, entries []library.Statement, format string) error {
	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		lastUsed := ""
		if e.LastUsedAt != nil {
			lastUsed = e.LastUsedAt.Format("2006-01-02 15:04")
		}
		favorite := ""
		if e.IsFavorite {
			favorite = "*"
		}
		rows = append(rows, map[string]any{
			"id":        e.ID,
			"name":      e.Name,
			"favorite":  favorite,
			"tags":      strings.Join(e.Tags, ","),
			"last_used": lastUsed,
			"sql":       truncateSQL(e.SQLText),
		})
	}

	return renderResult(w, &guard.Result{
		Columns: []string{"id", "name", "favorite", "tags", "last_used", "sql"},
		Rows:    rows,
	}, format)
}

func truncateSQL(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
