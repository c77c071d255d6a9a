package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search
// for config files.
const maxUpwardSearchLevels = 10

var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// configNames are the file names probed when no explicit config path is
// given, in priority order.
var configNames = []string{"sqldeck.yaml", "sqldeck.yml"}

func configIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFile resolves the config file to use. Priority: explicit
// path, then sqldeck.yaml/.yml in the working directory or any parent.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}

	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads configuration from file, environment variables, and
// flags. Precedence (highest to lowest): flags > env vars > config
// file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k = koanf.New(".")

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"engine.type":                      DefaultEngineType,
		"engine.path":                      DefaultEnginePath,
		"max_rows":                         DefaultMaxRows,
		"confirm_unbounded_select":         true,
		"autocomplete":                     true,
		"profile.null_rate_percent":        30.0,
		"profile.cardinality_rate_percent": 95.0,
		"library_path":                     DefaultLibraryPath,
		"history_size":                     DefaultHistorySize,
		"output":                           DefaultOutput,
		"verbose":                          false,
		"yes":                              false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file.
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables (SQLDECK_ prefix).
	// Transform: SQLDECK_ENGINE_TYPE -> engine.type
	if err := k.Load(env.Provider("SQLDECK_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority, explicitly set only).
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// A named connection replaces the base engine settings wholesale.
	if cfg.Connection != "" {
		conn, ok := cfg.Connections[cfg.Connection]
		if !ok {
			return nil, fmt.Errorf("unknown connection %q in %s", cfg.Connection, configFileUsed)
		}
		cfg.Engine = conn
	}

	expandEngineEnvVars(&cfg.Engine)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// envKey maps an environment variable name to its config key. Only the
// engine and profile sections are nested; every other key is flat
// snake_case, so underscores inside those names must be kept, not
// turned into path separators (SQLDECK_MAX_ROWS -> max_rows).
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, "SQLDECK_"))
	for _, section := range []string{"engine", "profile"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// flagKey maps a CLI flag name to its config key. Flags use kebab-case
// and a few short names; config keys are snake_case or dotted paths.
func flagKey(name string) string {
	switch name {
	case "engine":
		return "engine.type"
	case "database":
		return "engine.path"
	case "library":
		return "library_path"
	}
	return strings.ReplaceAll(name, "-", "_")
}

// GetConfigFileUsed returns the path to the config file being used, if
// any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the most recently loaded configuration.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger. This
// lets the commands package retrieve the logger from context without an
// import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns with environment variable
// values, leaving unknown variables untouched.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// expandEngineEnvVars expands environment variables in credential-like
// engine fields so secrets can stay out of sqldeck.yaml.
func expandEngineEnvVars(e *EngineConfig) {
	e.Host = expandEnvVars(e.Host)
	e.Database = expandEnvVars(e.Database)
	e.User = expandEnvVars(e.User)
	e.Password = expandEnvVars(e.Password)
}
