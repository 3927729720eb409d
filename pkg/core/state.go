package core

import "time"

// Store defines the interface for run-history operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	// Run operations
	CreateRun(kind RunKind, target string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetLatestRun(kind RunKind) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// Table run operations
	RecordTableRun(tr *TableRun) error
	GetTableRunsForRun(runID string) ([]*TableRun, error)
}

// RunKind names the pipeline operation a run executed.
type RunKind string

// Run kinds.
const (
	RunKindInit         RunKind = "init"
	RunKindLoadRaw      RunKind = "load-raw"
	RunKindLoadCleansed RunKind = "load-cleansed"
	RunKindBuildCurated RunKind = "curate"
	RunKindFullPipeline RunKind = "run"
)

// RunStatus represents the status of a pipeline run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	// RunStatusDegraded marks a completed run in which some raw tables failed to load.
	RunStatusDegraded RunStatus = "degraded"
	RunStatusFailed   RunStatus = "failed"
)

// Run represents a single pipeline invocation.
type Run struct {
	ID          string
	Kind        RunKind
	Target      string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// TableRunStatus represents the outcome of one table within a run.
type TableRunStatus string

// Table run status values.
const (
	TableRunStatusSuccess TableRunStatus = "success"
	TableRunStatusFailed  TableRunStatus = "failed"
)

// TableRun records what happened to one table during a run.
type TableRun struct {
	ID           string
	RunID        string
	Table        string
	Layer        Layer
	Status       TableRunStatus
	RowsAffected int64
	Error        string
	ExecutionMS  int64
	RecordedAt   time.Time
}
