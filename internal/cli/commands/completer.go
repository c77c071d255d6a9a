package commands

import (
	"context"
	"strings"
	"sync"

	"github.com/sqldeck/sqldeck/internal/complete"
)

// schemaCompleter adapts the suggestion engine to readline. The table
// and column snapshots are refreshed after successful statements rather
// than per keystroke, so completion never blocks on the engine.
type schemaCompleter struct {
	cmdCtx *CommandContext

	mu      sync.RWMutex
	tables  []string
	columns []string
}

func newSchemaCompleter(cmdCtx *CommandContext) *schemaCompleter {
	return &schemaCompleter{cmdCtx: cmdCtx}
}

// refresh re-snapshots table and column names from the schema cache.
// Failures leave the previous snapshot in place.
func (c *schemaCompleter) refresh(ctx context.Context) {
	tables, err := c.cmdCtx.Schema.TableNames(ctx)
	if err != nil {
		c.cmdCtx.Logger.Debug("completion refresh failed", "error", err)
		return
	}

	seen := make(map[string]struct{})
	var columns []string
	for _, t := range tables {
		names, err := c.cmdCtx.Schema.ColumnNames(ctx, t)
		if err != nil {
			continue
		}
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			columns = append(columns, name)
		}
	}

	c.mu.Lock()
	c.tables = tables
	c.columns = columns
	c.mu.Unlock()
}

// Do implements readline.AutoCompleter. The returned candidates carry
// only the text remaining after the current token's prefix, as readline
// expects.
func (c *schemaCompleter) Do(line []rune, pos int) ([][]rune, int) {
	c.mu.RLock()
	tables, columns := c.tables, c.columns
	c.mu.RUnlock()

	text := string(line)
	caret := len([]byte(string(line[:pos])))
	_, _, prefix := complete.TokenAt(text, caret)

	suggestions := complete.Suggest(text, caret, tables, columns)
	candidates := make([][]rune, 0, len(suggestions))
	for _, s := range suggestions {
		if !strings.HasPrefix(strings.ToLower(s.InsertText), strings.ToLower(prefix)) {
			continue
		}
		candidates = append(candidates, []rune(s.InsertText[len(prefix):]))
	}
	return candidates, len([]rune(prefix))
}
