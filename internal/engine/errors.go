package engine

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/leapstack-labs/strata/pkg/adapter"
)

// LoadErrorKind classifies why a raw table failed to load.
type LoadErrorKind string

// Load error kinds.
const (
	LoadMissingFile LoadErrorKind = "missing_file"
	LoadMalformed   LoadErrorKind = "malformed"
	LoadFailed      LoadErrorKind = "load_failed"
)

// LoadError is an isolated failure of one raw table.
type LoadError struct {
	Table string
	File  string
	Kind  LoadErrorKind
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s from %s (%s): %v", e.Table, e.File, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// classifyLoadError picks the kind for an adapter LoadCSV error.
func classifyLoadError(err error) LoadErrorKind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return LoadMissingFile
	case errors.Is(err, adapter.ErrMalformedData):
		return LoadMalformed
	default:
		return LoadFailed
	}
}

// TransformError aborts a cleansed refresh. Entities refreshed before it
// stay refreshed.
type TransformError struct {
	Entity string
	Err    error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Entity, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// StrictError is returned in strict mode when some raw tables failed to load.
type StrictError struct {
	Failed []*LoadError
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("%d raw table(s) failed to load", len(e.Failed))
}

func (e *StrictError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
