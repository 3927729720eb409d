// Package postgres provides a PostgreSQL database adapter for strata.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/strata/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/strata/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) }, "postgresql", "pg")
}
