package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposite(t *testing.T) {
	t.Run("all three signals at nominal weights", func(t *testing.T) {
		asi := Composite(Float(1), Float(2), Float(3))
		require.NotNil(t, asi)
		assert.InDelta(t, 0.4*1+0.4*2+0.2*3, *asi, 1e-12)
	})

	t.Run("missing rain renormalizes to 0.5/0.5", func(t *testing.T) {
		asi := Composite(Float(1), Float(3), nil)
		require.NotNil(t, asi)
		assert.InDelta(t, 2.0, *asi, 1e-12)
	})

	t.Run("single signal passes through unchanged", func(t *testing.T) {
		asi := Composite(nil, nil, Float(-1.7))
		require.NotNil(t, asi)
		assert.InDelta(t, -1.7, *asi, 1e-12)
	})

	t.Run("no signals means missing", func(t *testing.T) {
		assert.Nil(t, Composite(nil, nil, nil))
	})
}

// With k of 3 signals present the effective weights must sum to 1 and stay
// proportional to the nominal weights restricted to the present subset.
func TestComposite_WeightRenormalization(t *testing.T) {
	tests := []struct {
		name             string
		twsa, sm, rain   *float64
		expected float64 // composite of all-ones inputs must be exactly 1
	}{
		{"twsa+sm", Float(1), Float(1), nil, 1},
		{"twsa+rain", Float(1), nil, Float(1), 1},
		{"sm+rain", nil, Float(1), Float(1), 1},
		{"twsa only", Float(1), nil, nil, 1},
		{"all three", Float(1), Float(1), Float(1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asi := Composite(tt.twsa, tt.sm, tt.rain)
			require.NotNil(t, asi)
			// All present scores are 1, so the composite equals the sum of
			// effective weights.
			assert.InDelta(t, tt.expected, *asi, 1e-12)
		})
	}

	t.Run("proportionality of the present subset", func(t *testing.T) {
		// twsa=1, rain=0: effective twsa weight is 0.4/0.6.
		asi := Composite(Float(1), nil, Float(0))
		require.NotNil(t, asi)
		assert.InDelta(t, 0.4/0.6, *asi, 1e-12)
	})
}
