package domain

// Severity tiers, from absent data to unstressed.
const (
	ClassNoData = "no-data"
	ClassAlert  = "alert"
	ClassWatch  = "watch"
	ClassNormal = "normal"
)

// Classification thresholds on the composite index. Both boundaries belong
// to the more severe tier (asi = −1.0 is alert, asi = −0.5 is watch).
const (
	AlertThreshold = -1.0
	WatchThreshold = -0.5
)

// Classify maps a composite index to its severity tier.
func Classify(asi *float64) string {
	switch {
	case asi == nil:
		return ClassNoData
	case *asi <= AlertThreshold:
		return ClassAlert
	case *asi <= WatchThreshold:
		return ClassWatch
	default:
		return ClassNormal
	}
}
