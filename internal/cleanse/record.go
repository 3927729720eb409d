package cleanse

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Record is one raw row keyed by column name, as produced by sqlx.MapScan.
// Values carry whatever Go type the driver returned.
type Record map[string]any

// String returns the column as a nullable string.
func (r Record) String(col string) (*string, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, &FieldError{Column: col, Value: v, Err: err}
	}
	return &s, nil
}

// Int returns the column as a nullable int64.
func (r Record) Int(col string) (*int64, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return nil, &FieldError{Column: col, Value: v, Err: err}
	}
	return &n, nil
}

// Time returns the column as a nullable time.
func (r Record) Time(col string) (*time.Time, error) {
	v, err := r.value(col)
	if err != nil || v == nil {
		return nil, err
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, &FieldError{Column: col, Value: v, Err: err}
	}
	return &t, nil
}

func (r Record) value(col string) (any, error) {
	v, ok := r[col]
	if !ok {
		return nil, &FieldError{Column: col, Err: errMissingColumn}
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

// FieldError reports a raw value that could not be coerced to its column type.
type FieldError struct {
	Column string
	Value  any
	Err    error
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("column %s: %v", e.Column, e.Err)
	}
	return fmt.Sprintf("column %s: cannot use %v (%T): %v", e.Column, e.Value, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

var errMissingColumn = errors.New("missing from row")

// RowError locates a FieldError within the input rows.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// nullable unwraps a pointer into a driver-friendly value; nil stays untyped nil.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
