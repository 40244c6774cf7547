// Package domain models the Aquifer Stress Index (ASI) computed per basin
// and per calendar month from three independent satellite-derived series.
//
// # Input Series
//
// Three sources contribute monthly observations, each keyed by basin id
// and month:
//
//	grace.csv  →  twsa      terrestrial water storage anomaly (GRACE)
//	era5.csv   →  sm        soil moisture (ERA5 reanalysis)
//	imerg.csv  →  rain      precipitation amount  — or —
//	              rain_def  precipitation deficit (mutually exclusive)
//
// Any source may be missing entirely, and any basin-month may be missing
// from any source. Absence is a valid state: it propagates as a nil value
// through every stage and is never coerced to zero, because zero is a
// legitimate "no stress" reading.
//
// # Standardization
//
// Each signal is standardized per basin over that basin's own history:
//
//	z = (x − mean) / population stddev
//
// A basin needs at least two non-missing observations with non-zero
// variance for z-scores to be defined; otherwise every z for that
// basin/signal is missing.
//
// Precipitation sign convention: rain_z is the surplus score (wetter ⇒
// higher), oriented like twsa_z and sm_z; rain_def_z is its mirror (drier
// ⇒ higher). Exactly one of the two is estimated from data, depending on
// which column the source carried; the other is always its exact negation.
//
// # Composite Index
//
// ASI blends the available z-scores with nominal weights 0.4 (twsa_z),
// 0.4 (sm_z), 0.2 (rain_z), renormalized over whichever subset is present
// so the effective weights always sum to 1. Lower ASI means more stressed:
// a drier month lowers rain_z and so lowers the composite.
//
// # Classification
//
//	missing           →  no-data
//	asi ≤ −1.0        →  alert
//	−1.0 < asi ≤ −0.5 →  watch
//	asi > −0.5        →  normal
//
// Thresholds are fixed constants of the system, not fitted to the data.
package domain
