// Package core defines the shared language of the strata pipeline.
//
// This package contains:
//   - Layer and table identities (Layer, TableRef)
//   - Service contracts shared by adapters and the engine (AdapterConfig, Rows)
//   - Run-history entities and the Store interface
//   - Configuration types (TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
