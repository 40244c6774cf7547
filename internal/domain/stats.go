package domain

import "math"

// BasinStats holds the mean and population standard deviation of one
// signal over a single basin's history.
type BasinStats struct {
	Mean   float64
	StdDev float64
	N      int
}

// NewBasinStats computes mean and population (ddof=0) standard deviation.
func NewBasinStats(values []float64) BasinStats {
	n := len(values)
	if n == 0 {
		return BasinStats{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}

	return BasinStats{
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(n)),
		N:      n,
	}
}

// Usable reports whether z-scores can be computed from these stats: at
// least two observations and non-zero variance. With a single point the
// population stddev is exactly zero, so the StdDev check covers both.
func (s BasinStats) Usable() bool {
	return s.N >= 2 && s.StdDev > 0
}

// Z standardizes a value against the basin's history. Returns nil when the
// input is missing or the stats are unusable — never zero, which would
// falsely read as "no stress".
func (s BasinStats) Z(x *float64) *float64 {
	if x == nil || !s.Usable() {
		return nil
	}
	z := (*x - s.Mean) / s.StdDev
	return &z
}

// Neg returns the exact negation of a nullable value, preserving nil. Used
// to derive the mirrored rain score from whichever rain column was loaded.
func Neg(v *float64) *float64 {
	if v == nil {
		return nil
	}
	n := -*v
	return &n
}
