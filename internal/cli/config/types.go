// Package config provides configuration management for the strata CLI.
//
// Settings are layered, lowest to highest precedence: built-in defaults,
// strata.yaml, the project .env file, STRATA_ environment variables and
// explicitly set command-line flags.
package config

import (
	sharedcfg "github.com/leapstack-labs/strata/internal/config"
	"github.com/leapstack-labs/strata/pkg/core"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = core.TargetConfig

// SourcesConfig locates the CSV exports.
type SourcesConfig struct {
	// Dir is the directory per-table file paths are relative to.
	Dir string `koanf:"dir" yaml:"dir"`
	// Files overrides the default file of a raw table, keyed by table name
	// (e.g. crm_cust_info).
	Files map[string]string `koanf:"files" yaml:"files,omitempty"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string        `koanf:"-" yaml:"-"`
	StatePath    string        `koanf:"state_path" yaml:"state_path"`
	LogLevel     string        `koanf:"log_level" yaml:"log_level"`
	LogFormat    string        `koanf:"log_format" yaml:"log_format"`
	OutputFormat string        `koanf:"output" yaml:"output,omitempty"`
	Strict       bool          `koanf:"strict" yaml:"strict,omitempty"`
	Target       *TargetConfig `koanf:"target" yaml:"target"`
	Sources      SourcesConfig `koanf:"sources" yaml:"sources"`
}

// Default configuration values.
const (
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// Default returns the configuration used when no file, env or flag sets anything.
func Default() *Config {
	target := &TargetConfig{}
	sharedcfg.ApplyTargetDefaults(target)
	return &Config{
		StatePath:    DefaultStateFile,
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
		OutputFormat: DefaultOutput,
		Target:       target,
		Sources:      SourcesConfig{Dir: sharedcfg.DefaultSourcesDir},
	}
}
