package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/guard"
	"github.com/sqldeck/sqldeck/internal/profile"
)

func runREPL(cmd *cobra.Command, cmdCtx *CommandContext, opts *QueryOptions) error {
	ctx := cmd.Context()
	pipeline := cmdCtx.Pipeline(cmd)
	format := resolveFormat(opts.Format, cmdCtx.Cfg)

	// Session history lives next to the statement library
	historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.LibraryPath), "repl_history")

	var completer readline.AutoCompleter
	if cmdCtx.Cfg.Autocomplete {
		sc := newSchemaCompleter(cmdCtx)
		sc.refresh(ctx)
		completer = sc
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sqldeck> ",
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sqldeck REPL (%s: %s, row cap: %d)\n",
		cmdCtx.Cfg.Engine.Type, cmdCtx.Adapter.DialectName(), pipelineCap(cmdCtx))
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	var multiLineBuffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			multiLineBuffer.Reset()
			rl.SetPrompt("sqldeck> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Handle dot-commands
		if strings.HasPrefix(line, ".") && multiLineBuffer.Len() == 0 {
			if handled := handleDotCommand(ctx, cmd, cmdCtx, pipeline, line, format); handled {
				if line == ".quit" || line == ".exit" {
					break
				}
				continue
			}
		}

		// Accumulate multi-line SQL until semicolon
		multiLineBuffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			multiLineBuffer.WriteString(" ")
			rl.SetPrompt("    ...> ")
			continue
		}
		rl.SetPrompt("sqldeck> ")

		query := multiLineBuffer.String()
		multiLineBuffer.Reset()

		result, err := pipeline.Run(ctx, query)
		switch {
		case errors.Is(err, guard.ErrConfirmationDeclined):
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		case err != nil:
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		default:
			if renderErr := renderResult(cmd.OutOrStdout(), result, format); renderErr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", renderErr)
			}
			if sc, ok := completer.(*schemaCompleter); ok {
				sc.refresh(ctx)
			}
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func pipelineCap(cmdCtx *CommandContext) int {
	return guard.Options{MaxRows: cmdCtx.Cfg.MaxRows}.Cap()
}

func handleDotCommand(ctx context.Context, cmd *cobra.Command, cmdCtx *CommandContext, pipeline *guard.Pipeline, line, format string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(out)
		return true

	case ".tables":
		if err := renderRelations(ctx, out, cmdCtx, format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".schema":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .schema <table>")
			return true
		}
		if err := renderTableSchema(ctx, out, cmdCtx, parts[1], format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".profile":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(errOut, "Usage: .profile <table>")
			return true
		}
		if err := profileTable(ctx, out, cmdCtx, pipeline, parts[1], format); err != nil {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return true

	case ".history":
		for i, entry := range pipeline.History().Entries() {
			_, _ = fmt.Fprintf(out, "%3d  %s\n", i+1, entry)
		}
		return true

	case ".clear":
		fmt.Print("\033[H\033[2J")
		return true

	default:
		_, _ = fmt.Fprintf(errOut, "Unknown command: %s (type .help for commands)\n", command)
		return true
	}
}

// profileTable browses a capped sample of the table and renders its
// column profiles.
func profileTable(ctx context.Context, w io.Writer, cmdCtx *CommandContext, pipeline *guard.Pipeline, tableName, format string) error {
	sql, err := sampleSQL(ctx, cmdCtx, tableName)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, sql)
	if err != nil {
		return err
	}

	profiles := profile.Profile(result.Rows, result.Columns, cmdCtx.Cfg.ProfileThresholds())
	return renderProfiles(w, profiles, format)
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help            Show this help message
  .tables          List tables and views
  .schema <name>   Show schema for a table or view
  .profile <name>  Profile a table's columns
  .history         Show this session's statement history
  .clear           Clear the screen
  .quit / .exit    Exit the REPL

Tips:
  - SQL statements must end with a semicolon (;)
  - SELECTs are capped at the configured row limit
  - Tab completion covers keywords, tables, and columns
`
	_, _ = fmt.Fprintln(w, help)
}
