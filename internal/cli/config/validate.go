package config

import (
	"fmt"
	"strings"

	"github.com/sqldeck/sqldeck/internal/adapter"
)

// outputFormats are the renderings the CLI knows how to produce.
var outputFormats = map[string]bool{
	"table": true,
	"json":  true,
	"csv":   true,
	"md":    true,
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.Engine.Type == "" {
		return fmt.Errorf("engine type is required")
	}
	if !adapter.IsRegistered(c.Engine.Type) {
		return fmt.Errorf("unsupported engine type %q (supported: %s)",
			c.Engine.Type, strings.Join(adapter.ListAdapters(), ", "))
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max_rows must not be negative")
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("history_size must not be negative")
	}
	if c.OutputFormat != "" && !outputFormats[c.OutputFormat] {
		return fmt.Errorf("unsupported output format %q (supported: table, json, csv, md)", c.OutputFormat)
	}
	return nil
}
