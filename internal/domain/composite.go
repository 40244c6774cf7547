package domain

// Nominal component weights. Rain enters through the surplus score so all
// three components share one orientation: higher means wetter, and a drier
// month pulls the composite down toward stress.
const (
	WeightTwsa = 0.4
	WeightSm   = 0.4
	WeightRain = 0.2
)

// Composite blends the available standard scores into the ASI. Weights are
// renormalized over the present subset, so a basin-month missing the rain
// signal is scored on twsa+sm at an effective 0.5/0.5 instead of being
// penalized for the gap. Returns nil when no component is present.
func Composite(twsaZ, smZ, rainZ *float64) *float64 {
	var num, den float64

	if twsaZ != nil {
		num += WeightTwsa * *twsaZ
		den += WeightTwsa
	}
	if smZ != nil {
		num += WeightSm * *smZ
		den += WeightSm
	}
	if rainZ != nil {
		num += WeightRain * *rainZ
		den += WeightRain
	}

	if den == 0 {
		return nil
	}
	asi := num / den
	return &asi
}
