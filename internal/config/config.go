// Package config provides the project-level configuration shared by the CLI
// and the engine: target defaults, target validation and config file
// discovery. CLI-specific layering lives in internal/cli/config.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

// Default values shared by the CLI and the init scaffold.
const (
	DefaultTargetType   = "duckdb"
	DefaultDatabase     = "strata.duckdb"
	DefaultSourcesDir   = "datasets"
	DefaultStateFile    = ".strata/state.db"
	DefaultPostgresPort = 5432
)

// DefaultSchemaForType returns the session default schema for a target type.
// Layer tables are always schema-qualified; this only matters for
// unqualified references and metadata lookups.
func DefaultSchemaForType(dbType string) string {
	switch strings.ToLower(dbType) {
	case "postgres":
		return "public"
	default:
		return "main"
	}
}

// ApplyTargetDefaults fills unset target fields.
func ApplyTargetDefaults(t *core.TargetConfig) {
	if t == nil {
		return
	}

	if t.Type == "" {
		t.Type = DefaultTargetType
	}
	t.Type = adapter.Canonical(t.Type)

	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
	}

	switch t.Type {
	case "duckdb":
		if t.Database == "" {
			t.Database = DefaultDatabase
		}
	case "postgres":
		if t.Port == 0 {
			t.Port = DefaultPostgresPort
		}
	}
}

// ValidateTarget checks that the target names a registered adapter.
func ValidateTarget(t *core.TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target configuration is required")
	}
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if _, err := adapter.Lookup(t.Type); err != nil {
		return err
	}
	if t.Type == "postgres" && t.Database == "" {
		return fmt.Errorf("target.database is required for postgres")
	}
	return nil
}
