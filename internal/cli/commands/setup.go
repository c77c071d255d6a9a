package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqldeck/sqldeck/internal/adapter"
	"github.com/sqldeck/sqldeck/internal/cli/config"
	"github.com/sqldeck/sqldeck/internal/guard"
	"github.com/sqldeck/sqldeck/internal/library"
	"github.com/sqldeck/sqldeck/internal/schemacache"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Adapter adapter.Adapter
	Schema  *schemacache.Cache
}

// NewCommandContext creates a CommandContext with a connected adapter
// and schema cache. Returns the context and a cleanup function that
// must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	db, err := adapter.New(cfg.AdapterConfig(), logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Connect(cmd.Context(), cfg.AdapterConfig()); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.Engine.Type, err)
	}

	cache, err := schemacache.New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	return &CommandContext{
		Cfg:     cfg,
		Logger:  logger,
		Adapter: db,
		Schema:  cache,
	}, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without a
// database connection. Useful for commands that only touch local state.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	return &CommandContext{
		Cfg:    getConfig(),
		Logger: config.GetLogger(cmd.Context()),
	}
}

// Pipeline builds a guarded execution pipeline over the context's
// adapter, wired to invalidate the schema cache after writes.
func (c *CommandContext) Pipeline(cmd *cobra.Command) *guard.Pipeline {
	opts := guard.Options{
		MaxRows:                c.Cfg.MaxRows,
		ConfirmUnboundedSelect: c.Cfg.ConfirmUnboundedSelect,
	}

	var confirm guard.Confirmer
	if c.Cfg.AssumeYes {
		confirm = guard.AutoConfirm{}
	} else {
		confirm = &promptConfirmer{cmd: cmd}
	}

	p := guard.New(c.Adapter, confirm, opts, c.Logger)
	p.SetInvalidator(c.Schema.Reset)
	return p
}

// OpenLibrary opens (and migrates) the statement library at the
// configured path, creating the parent directory when needed.
func (c *CommandContext) OpenLibrary() (*library.SQLiteStore, error) {
	path := c.Cfg.LibraryPath
	if path == "" {
		path = config.DefaultLibraryPath
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create library directory: %w", err)
			}
		}
	}

	store := library.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// promptConfirmer asks on stderr and reads one line from the command's
// input stream.
type promptConfirmer struct {
	cmd *cobra.Command
}

func (p *promptConfirmer) ask(prompt string) bool {
	_, _ = fmt.Fprintf(p.cmd.ErrOrStderr(), "%s [y/N] ", prompt)

	var answer string
	if _, err := fmt.Fscanln(p.cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func (p *promptConfirmer) ConfirmWrite(stmt string) bool {
	return p.ask(fmt.Sprintf("About to execute a write statement:\n  %s\nProceed?", stmt))
}

func (p *promptConfirmer) ConfirmUnboundedSelect(_ string, cap int) bool {
	return p.ask(fmt.Sprintf("Statement has no LIMIT; run it capped at %d rows?", cap))
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	maxRows := config.DefaultMaxRows
	if v, err := strconv.Atoi(os.Getenv("SQLDECK_MAX_ROWS")); err == nil && v >= 0 {
		maxRows = v
	}

	return &config.Config{
		Engine: config.EngineConfig{
			Type: getEnvOrDefault("SQLDECK_ENGINE_TYPE", config.DefaultEngineType),
			Path: getEnvOrDefault("SQLDECK_ENGINE_PATH", config.DefaultEnginePath),
		},
		MaxRows:                maxRows,
		ConfirmUnboundedSelect: os.Getenv("SQLDECK_CONFIRM_UNBOUNDED_SELECT") != "false",
		AssumeYes:              os.Getenv("SQLDECK_YES") == "true",
		Autocomplete:           os.Getenv("SQLDECK_AUTOCOMPLETE") != "false",
		LibraryPath:            getEnvOrDefault("SQLDECK_LIBRARY_PATH", config.DefaultLibraryPath),
		HistorySize:            config.DefaultHistorySize,
		OutputFormat:           getEnvOrDefault("SQLDECK_OUTPUT", config.DefaultOutput),
		Verbose:                os.Getenv("SQLDECK_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// resolveFormat picks the output format, preferring the command-local
// flag over the configured default.
func resolveFormat(flagValue string, cfg *config.Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.OutputFormat != "" {
		return cfg.OutputFormat
	}
	return config.DefaultOutput
}
