// Package cleanse holds the rules that turn raw source rows into cleansed
// rows: deduplication, trimming, vocabulary mapping, date validation and
// derived fields.
//
// Every rule is a pure function of its input rows. Output never depends on
// input order, so a refresh over unchanged raw data is reproducible.
package cleanse

import (
	"time"

	"github.com/leapstack-labs/strata/internal/catalog"
)

// Result is the output of one entity transform, with values ordered as the
// cleansed table's columns.
type Result struct {
	Input int
	Rows  [][]any
}

// Dropped is the number of input rows that produced no output row.
func (r Result) Dropped() int {
	return r.Input - len(r.Rows)
}

// Transform cleanses the raw rows of one entity.
type Transform struct {
	Entity string
	Apply  func(records []Record, loadedAt time.Time) (Result, error)
}

type valuer interface {
	values(loadedAt time.Time) []any
}

func newTransform[R any, C valuer](entity string, parse func(Record) (R, error), clean func([]R, time.Time) []C) Transform {
	return Transform{
		Entity: entity,
		Apply: func(records []Record, loadedAt time.Time) (Result, error) {
			raw := make([]R, len(records))
			for i, rec := range records {
				v, err := parse(rec)
				if err != nil {
					return Result{}, &RowError{Row: i, Err: err}
				}
				raw[i] = v
			}
			cleaned := clean(raw, loadedAt)
			rows := make([][]any, len(cleaned))
			for i, c := range cleaned {
				rows[i] = c.values(loadedAt)
			}
			return Result{Input: len(records), Rows: rows}, nil
		},
	}
}

func each[R, C any](fn func(R) C) func([]R, time.Time) []C {
	return func(raw []R, _ time.Time) []C {
		out := make([]C, len(raw))
		for i, r := range raw {
			out[i] = fn(r)
		}
		return out
	}
}

var transforms = []Transform{
	newTransform(catalog.CRMCustomers, parseCustomer, func(raw []RawCustomer, _ time.Time) []Customer {
		return CleanCustomers(raw)
	}),
	newTransform(catalog.CRMProducts, parseProduct, func(raw []RawProduct, _ time.Time) []Product {
		return CleanProducts(raw)
	}),
	newTransform(catalog.CRMSales, parseSale, func(raw []RawSale, _ time.Time) []Sale {
		return CleanSales(raw)
	}),
	newTransform(catalog.ERPDemographics, parseDemographic, func(raw []RawDemographic, now time.Time) []Demographic {
		out := make([]Demographic, len(raw))
		for i, d := range raw {
			out[i] = CleanDemographic(d, now)
		}
		return out
	}),
	newTransform(catalog.ERPLocations, parseLocation, each(CleanLocation)),
	newTransform(catalog.ERPCategories, parseCategory, each(func(c Category) Category { return c })),
}

// Transforms returns one transform per catalog entity, in catalog order.
func Transforms() []Transform {
	out := make([]Transform, len(transforms))
	copy(out, transforms)
	return out
}

// ForEntity returns the transform for the named entity.
func ForEntity(name string) (Transform, bool) {
	for _, t := range transforms {
		if t.Entity == name {
			return t, true
		}
	}
	return Transform{}, false
}
