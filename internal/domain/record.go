package domain

import (
	"math"
	"time"
)

// Record is one merged basin-month row of the stress index table. Raw and
// derived values are pointers so that "missing" stays distinguishable from
// zero at every stage.
type Record struct {
	BasinID string
	Date    time.Time // first of month, UTC

	// Raw signal values as loaded from the sources.
	Twsa    *float64
	Sm      *float64
	Rain    *float64
	RainDef *float64

	// Per-basin standard scores.
	TwsaZ    *float64
	SmZ      *float64
	RainZ    *float64
	RainDefZ *float64

	// Composite index and its classification.
	Asi   *float64
	Class string
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 {
	return &v
}

// Round3 rounds a nullable value to three decimal places, preserving nil.
// All externally visible numerics carry at most three decimals.
func Round3(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*1000) / 1000
	return &r
}
