package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/strata/internal/catalog"
	sharedcfg "github.com/leapstack-labs/strata/internal/config"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validOutputs    = []string{"auto", "text", "markdown", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level %q (want one of %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("invalid log_format %q (want one of %s)", c.LogFormat, strings.Join(validLogFormats, ", "))
	}
	if c.OutputFormat != "" && !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("invalid output %q (want one of %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	for table := range c.Sources.Files {
		if _, ok := catalog.Lookup(table); !ok {
			return fmt.Errorf("sources.files: unknown table %q\nHint: valid tables are %s", table, strings.Join(catalog.Names(), ", "))
		}
	}
	if err := sharedcfg.ValidateTarget(c.Target); err != nil {
		return fmt.Errorf("invalid target configuration: %w", err)
	}
	return nil
}
