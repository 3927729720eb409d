package output

import "time"

// TableLoad is one raw table in a load result.
type TableLoad struct {
	Table      string `json:"table"`
	File       string `json:"file"`
	Status     string `json:"status"`
	Rows       int64  `json:"rows"`
	DurationMS int64  `json:"duration_ms"`
	Kind       string `json:"kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

// LoadSummary totals a raw load.
type LoadSummary struct {
	Tables     int   `json:"tables"`
	Failed     int   `json:"failed"`
	Rows       int64 `json:"rows"`
	DurationMS int64 `json:"duration_ms"`
}

// LoadOutput is the JSON form of load-raw.
type LoadOutput struct {
	RunID   string      `json:"run_id"`
	Tables  []TableLoad `json:"tables"`
	Summary LoadSummary `json:"summary"`
}

// EntityRefresh is one cleansed table in a refresh result.
type EntityRefresh struct {
	Table      string `json:"table"`
	Input      int    `json:"input_rows"`
	Rows       int64  `json:"rows"`
	Dropped    int    `json:"dropped"`
	DurationMS int64  `json:"duration_ms"`
}

// RefreshOutput is the JSON form of load-cleansed.
type RefreshOutput struct {
	RunID      string          `json:"run_id"`
	LoadedAt   time.Time       `json:"loaded_at"`
	Entities   []EntityRefresh `json:"entities"`
	DurationMS int64           `json:"duration_ms"`
}

// ViewBuild is one curated view in a curate result.
type ViewBuild struct {
	View       string `json:"view"`
	DurationMS int64  `json:"duration_ms"`
}

// CurateOutput is the JSON form of curate.
type CurateOutput struct {
	RunID      string      `json:"run_id"`
	Views      []ViewBuild `json:"views"`
	DurationMS int64       `json:"duration_ms"`
}

// RunOutput is the JSON form of run. Stages that did not run are omitted.
type RunOutput struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Error      string         `json:"error,omitempty"`
	Load       *LoadOutput    `json:"load,omitempty"`
	Refresh    *RefreshOutput `json:"refresh,omitempty"`
	Curate     *CurateOutput  `json:"curate,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// TableRunInfo is one recorded table outcome.
type TableRunInfo struct {
	Table       string `json:"table"`
	Layer       string `json:"layer"`
	Status      string `json:"status"`
	Rows        int64  `json:"rows"`
	ExecutionMS int64  `json:"execution_ms"`
	Error       string `json:"error,omitempty"`
}

// RunInfo is one recorded run.
type RunInfo struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Target      string         `json:"target"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Tables      []TableRunInfo `json:"tables,omitempty"`
}

// TableInfo is the current state of a pipeline table or view.
type TableInfo struct {
	Table   string `json:"table"`
	Exists  bool   `json:"exists"`
	Rows    int64  `json:"rows"`
	Columns int    `json:"columns"`
}

// HistoryOutput is the JSON form of history.
type HistoryOutput struct {
	Runs   []RunInfo   `json:"runs"`
	Tables []TableInfo `json:"tables,omitempty"`
}

// InitOutput is the JSON form of init.
type InitOutput struct {
	ConfigFile    string   `json:"config_file"`
	ConfigCreated bool     `json:"config_created"`
	Target        string   `json:"target"`
	Tables        []string `json:"tables"`
}
