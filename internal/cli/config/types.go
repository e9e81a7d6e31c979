// Package config provides configuration management for the covidlens CLI.
//
// This package extends the shared pipeline configuration from internal/config
// with CLI-specific fields (output mode, logging) and the layered loading of
// defaults, config file, environment, and flags.
package config

import (
	sharedcfg "github.com/leapstack-labs/covidlens/internal/config"
)

// PipelineConfig is an alias for the shared pipeline configuration.
// This allows CLI code to use config.PipelineConfig without importing internal/config.
type PipelineConfig = sharedcfg.PipelineConfig

// Config holds all CLI configuration options.
type Config struct {
	PipelineConfig `koanf:",squash"`

	Verbose      bool        `koanf:"verbose"`
	LogLevel     string      `koanf:"log_level"`
	OutputFormat string      `koanf:"output"`
	State        StateConfig `koanf:"state"`
	Serve        ServeConfig `koanf:"serve"`

	// ProjectRoot is the directory relative paths were resolved against.
	ProjectRoot string `koanf:"-"`
}

// StateConfig holds the run history settings. An empty Path disables the history.
type StateConfig struct {
	Path string `koanf:"path"`
	// Keep is how many runs the history retains.
	Keep int `koanf:"keep"`
}

// ServeConfig holds the settings of the web dashboard.
type ServeConfig struct {
	Host  string `koanf:"host"`
	Port  int    `koanf:"port"`
	Watch bool   `koanf:"watch"`
	// SessionSecret signs the selection cookie. Empty generates one per process.
	SessionSecret string `koanf:"session_secret"`
}

// Pipeline returns the pipeline part of the configuration.
func (c *Config) Pipeline() *PipelineConfig {
	return &c.PipelineConfig
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultDataDir  = sharedcfg.DefaultDataDir
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel = "warn"
	DefaultState    = ".covidlens/state.db"
	DefaultKeepRuns = 100
	DefaultHost     = "localhost"
	DefaultPort     = 8080

	// EnvPrefix prefixes every environment variable read by the CLI.
	// A double underscore separates nested keys: COVIDLENS_VACCINATION__GROUP_BY.
	EnvPrefix = "COVIDLENS_"
)
