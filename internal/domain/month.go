package domain

import (
	"fmt"
	"time"
)

// dateLayouts are the formats accepted for raw source dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01",
}

// MonthStart collapses any timestamp to the first day of its calendar month
// in UTC. All table dates use first-of-month semantics.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ParseSourceDate parses a raw source date string and collapses it to a
// month start. Returns false when no accepted layout matches; callers drop
// such rows rather than failing the load.
func ParseSourceDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthStart(t), true
		}
	}
	return time.Time{}, false
}

// ParseMonthParam normalizes a client-supplied month parameter. Accepts
// YYYY-MM or YYYY-MM-DD (the day is discarded); anything else is an error.
func ParseMonthParam(s string) (time.Time, error) {
	if len(s) >= 7 {
		if t, err := time.Parse("2006-01", s[:7]); err == nil {
			if len(s) == 7 {
				return MonthStart(t), nil
			}
			if _, err := time.Parse("2006-01-02", s); err == nil {
				return MonthStart(t), nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("date must be YYYY-MM or YYYY-MM-DD, got %q", s)
}

// FormatDate renders a table date in its canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
