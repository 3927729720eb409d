package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	sharedcfg "github.com/leapstack-labs/strata/internal/config"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix prefixes every environment variable the loader reads.
// A double underscore separates nested keys: STRATA_TARGET__PASSWORD
// sets target.password.
const EnvPrefix = "STRATA_"

// flagKeys maps command-line flags to config keys. Flags not listed here
// are command options, not configuration.
var flagKeys = map[string]string{
	"database":    "target.database",
	"target-type": "target.type",
	"sources-dir": "sources.dir",
	"state":       "state_path",
	"log-level":   "log_level",
	"log-format":  "log_format",
	"output":      "output",
	"strict":      "strict",
}

// pathFlags are resolved against the working directory rather than the
// project root, matching what the user typed.
var pathFlags = map[string]bool{"database": true, "sources-dir": true, "state": true}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// envKey turns STRATA_SOURCES__DIR into sources.dir.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// inferProjectRoot determines the directory relative paths are anchored to.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for strata.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := sharedcfg.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, in-memory, or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// readDotenv reads the project .env file. A missing file is not an error.
func readDotenv(projectRoot string) (map[string]string, error) {
	vars, err := godotenv.Read(filepath.Join(projectRoot, sharedcfg.EnvFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", sharedcfg.EnvFileName, err)
	}
	return vars, nil
}

// LoadConfig loads configuration from defaults, the config file, the .env
// file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > .env > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil

	projectRoot := inferProjectRoot(cfgFile)

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"state_path":  DefaultStateFile,
		"log_level":   DefaultLogLevel,
		"log_format":  DefaultLogFormat,
		"output":      DefaultOutput,
		"strict":      false,
		"sources.dir": sharedcfg.DefaultSourcesDir,
		"target.type": sharedcfg.DefaultTargetType,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile != "" {
		configFileUsed = cfgFile
	} else {
		configFileUsed = sharedcfg.FindConfigFile(projectRoot)
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. .env file: STRATA_ keys become config, the rest only feed ${VAR} expansion
	dotenv, err := readDotenv(projectRoot)
	if err != nil {
		return nil, err
	}
	fromDotenv := make(map[string]interface{})
	for name, val := range dotenv {
		if strings.HasPrefix(name, EnvPrefix) {
			fromDotenv[envKey(name)] = val
		}
	}
	if err := k.Load(confmap.Provider(fromDotenv, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", sharedcfg.EnvFileName, err)
	}

	// 4. Environment variables (STRATA_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags (highest priority, only when explicitly set)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			val := posflag.FlagVal(flags, f)
			if pathFlags[f.Name] {
				if s, _ := val.(string); s != "" && s != ":memory:" {
					if abs, err := filepath.Abs(s); err == nil {
						val = abs
					}
				}
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{}
	}
	expandTargetEnvVars(cfg.Target, dotenv)
	sharedcfg.ApplyTargetDefaults(cfg.Target)

	cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	cfg.Sources.Dir = resolvePathRelativeTo(cfg.Sources.Dir, projectRoot)
	if cfg.Target.Type == "duckdb" {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns from the process environment, then
// from the .env file. Unknown variables are left as written.
func expandEnvVars(s string, dotenv map[string]string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		if val := dotenv[name]; val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig, dotenv map[string]string) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password, dotenv)
	t.User = expandEnvVars(t.User, dotenv)
	t.Host = expandEnvVars(t.Host, dotenv)
	t.Database = expandEnvVars(t.Database, dotenv)
	for key, val := range t.Options {
		t.Options[key] = expandEnvVars(val, dotenv)
	}
}
