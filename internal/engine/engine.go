// Package engine runs the strata pipeline: schema initialization, raw CSV
// loading, cleansed refresh and curated view builds.
//
// The engine is single-writer and sequential. Every operation records a run
// and its per-table outcomes in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
	"github.com/leapstack-labs/strata/internal/state"
	"github.com/leapstack-labs/strata/pkg/adapter"
	"github.com/leapstack-labs/strata/pkg/core"
)

// Engine orchestrates the pipeline layers.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	logger  *slog.Logger
	store   core.Store
	sources Sources
	clock   func() time.Time
}

// Sources locates the CSV exports.
type Sources struct {
	// Dir is the directory source file paths are relative to.
	Dir string
	// Files overrides the default source file per entity name.
	Files map[string]string
}

// Path returns the CSV path for an entity.
func (s Sources) Path(e catalog.Entity) string {
	file := e.SourceFile
	if override, ok := s.Files[e.Name]; ok && override != "" {
		file = override
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(s.Dir, file)
}

// Config holds engine configuration.
type Config struct {
	// AdapterConfig selects and configures the target database.
	AdapterConfig adapter.Config
	// Sources locates the raw CSV files.
	Sources Sources
	// StatePath is the path to the SQLite run-history database.
	// Empty means an in-memory store.
	StatePath string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
	// Clock supplies the cleansed audit timestamp and the birth date
	// cutoff. Defaults to the current UTC time.
	Clock func() time.Time
}

// New creates a new engine with lazy database connection.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	dbConfig := cfg.AdapterConfig
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}
	if _, err := adapter.Lookup(dbConfig.Type); err != nil {
		return nil, err
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	logger.Debug("initializing engine", "adapter_type", dbConfig.Type, "state_path", statePath)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Engine{
		dbConfig: dbConfig,
		logger:   logger,
		store:    store,
		sources:  cfg.Sources,
		clock:    clock,
	}, nil
}

// ensureDBConnected lazily connects to the database.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.dbConfig.Type)

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}
	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	e.db = db
	e.dbConnected = true
	return nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing engine: %w", err)
	}
	return nil
}

// Store returns the run-history store.
func (e *Engine) Store() core.Store {
	return e.store
}

// Target returns the adapter type the engine writes to.
func (e *Engine) Target() string {
	return e.dbConfig.Type
}

// --- run bookkeeping ---

func (e *Engine) beginRun(kind core.RunKind) (*core.Run, error) {
	run, err := e.store.CreateRun(kind, e.dbConfig.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	e.logger.Debug("created run", "run_id", run.ID, "kind", kind)
	return run, nil
}

func (e *Engine) finishRun(run *core.Run, status core.RunStatus, runErr error) {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := e.store.CompleteRun(run.ID, status, msg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", run.ID, "error", err)
		return
	}
	run.Status = status
	run.Error = msg
}

func (e *Engine) recordTable(runID string, ref core.TableRef, rows int64, d time.Duration, tableErr error) {
	tr := &core.TableRun{
		RunID:        runID,
		Table:        ref.Qualified(),
		Layer:        ref.Layer,
		Status:       core.TableRunStatusSuccess,
		RowsAffected: rows,
		ExecutionMS:  d.Milliseconds(),
	}
	if tableErr != nil {
		tr.Status = core.TableRunStatusFailed
		tr.Error = tableErr.Error()
	}
	if err := e.store.RecordTableRun(tr); err != nil {
		e.logger.Warn("failed to record table run", "table", tr.Table, "error", err)
	}
}

// runStatus maps an operation outcome to a run status.
func runStatus(err error, degraded bool) core.RunStatus {
	switch {
	case err != nil:
		return core.RunStatusFailed
	case degraded:
		return core.RunStatusDegraded
	default:
		return core.RunStatusCompleted
	}
}
