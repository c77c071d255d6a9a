// Package config provides configuration management for the sqldeck CLI.
//
// Configuration is layered: defaults, then sqldeck.yaml, then SQLDECK_*
// environment variables, then explicitly set CLI flags.
package config

import (
	"github.com/sqldeck/sqldeck/internal/adapter"
	"github.com/sqldeck/sqldeck/internal/profile"
)

// EngineConfig describes one database connection.
type EngineConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// ProfileConfig holds the data-quality thresholds for column profiling.
type ProfileConfig struct {
	NullRatePercent        float64 `koanf:"null_rate_percent"`
	CardinalityRatePercent float64 `koanf:"cardinality_rate_percent"`
}

// Config holds all CLI configuration options.
type Config struct {
	Engine                 EngineConfig            `koanf:"engine"`
	Connections            map[string]EngineConfig `koanf:"connections"`
	Connection             string                  `koanf:"connection"`
	MaxRows                int                     `koanf:"max_rows"`
	ConfirmUnboundedSelect bool                    `koanf:"confirm_unbounded_select"`
	AssumeYes              bool                    `koanf:"yes"`
	Autocomplete           bool                    `koanf:"autocomplete"`
	Profile                ProfileConfig           `koanf:"profile"`
	LibraryPath            string                  `koanf:"library_path"`
	HistorySize            int                     `koanf:"history_size"`
	OutputFormat           string                  `koanf:"output"`
	Verbose                bool                    `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultEngineType  = "duckdb"
	DefaultEnginePath  = ":memory:"
	DefaultMaxRows     = 500
	DefaultHistorySize = 50
	DefaultLibraryPath = ".sqldeck/library.db"
	DefaultOutput      = "table"
)

// AdapterConfig converts the selected engine settings into the adapter
// layer's connection config.
func (c *Config) AdapterConfig() adapter.Config {
	e := c.Engine
	return adapter.Config{
		Type:     e.Type,
		Path:     e.Path,
		Host:     e.Host,
		Port:     e.Port,
		Database: e.Database,
		Username: e.User,
		Password: e.Password,
		Schema:   e.Schema,
		Options:  e.Options,
	}
}

// ProfileThresholds converts the configured cutoffs into the profiling
// engine's thresholds, falling back to the defaults for unset values.
func (c *Config) ProfileThresholds() profile.Thresholds {
	th := profile.DefaultThresholds()
	if c.Profile.NullRatePercent > 0 {
		th.NullRatePercent = c.Profile.NullRatePercent
	}
	if c.Profile.CardinalityRatePercent > 0 {
		th.CardinalityRatePercent = c.Profile.CardinalityRatePercent
	}
	return th
}
