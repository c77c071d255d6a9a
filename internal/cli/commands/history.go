package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command. It reads the REPL's
// persisted history file; in-session recency lives in the REPL's
// .history dot-command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent REPL statements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContextWithoutEngine(cmd)

			historyFile := filepath.Join(filepath.Dir(cmdCtx.Cfg.LibraryPath), "repl_history")
			content, err := os.ReadFile(historyFile)
			if os.IsNotExist(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no history)")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			lines := strings.Split(strings.TrimSpace(string(content)), "\n")
			if limit > 0 && len(lines) > limit {
				lines = lines[len(lines)-limit:]
			}
			for i, line := range lines {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", i+1, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")

	return cmd
}
