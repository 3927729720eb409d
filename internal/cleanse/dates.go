package cleanse

import (
	"strconv"
	"time"
)

// compactDateLayout is the YYYYMMDD form used by integer date columns.
const compactDateLayout = "20060102"

// compactDate converts a YYYYMMDD integer to a date. Zero, values that are
// not exactly eight digits and impossible calendar dates yield nil.
func compactDate(n *int64) *time.Time {
	if n == nil || *n <= 0 {
		return nil
	}
	s := strconv.FormatInt(*n, 10)
	if len(s) != len(compactDateLayout) {
		return nil
	}
	t, err := time.Parse(compactDateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// truncateDate drops the time of day, keeping the calendar date in UTC.
func truncateDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func compareTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareString(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func compareInt(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
