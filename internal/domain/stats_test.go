package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBasinStats(t *testing.T) {
	t.Run("population stddev, not sample", func(t *testing.T) {
		s := NewBasinStats([]float64{1, 2, 3})
		assert.Equal(t, 2.0, s.Mean)
		assert.InDelta(t, math.Sqrt(2.0/3.0), s.StdDev, 1e-12)
		assert.Equal(t, 3, s.N)
	})

	t.Run("empty history", func(t *testing.T) {
		s := NewBasinStats(nil)
		assert.False(t, s.Usable())
	})

	t.Run("single point has zero population stddev", func(t *testing.T) {
		s := NewBasinStats([]float64{5})
		assert.Equal(t, 0.0, s.StdDev)
		assert.False(t, s.Usable())
	})

	t.Run("constant history is unusable", func(t *testing.T) {
		s := NewBasinStats([]float64{4, 4, 4})
		assert.False(t, s.Usable())
	})
}

func TestBasinStats_Z(t *testing.T) {
	t.Run("exact standard score", func(t *testing.T) {
		s := NewBasinStats([]float64{10, 30})
		// mean 20, population stddev 10
		z := s.Z(Float(30))
		require.NotNil(t, z)
		assert.InDelta(t, 1.0, *z, 1e-12)

		z = s.Z(Float(10))
		require.NotNil(t, z)
		assert.InDelta(t, -1.0, *z, 1e-12)
	})

	t.Run("missing value stays missing", func(t *testing.T) {
		s := NewBasinStats([]float64{10, 30})
		assert.Nil(t, s.Z(nil))
	})

	t.Run("zero variance yields missing, never zero", func(t *testing.T) {
		s := NewBasinStats([]float64{7, 7})
		assert.Nil(t, s.Z(Float(7)))
	})

	t.Run("fewer than two points yields missing", func(t *testing.T) {
		s := NewBasinStats([]float64{7})
		assert.Nil(t, s.Z(Float(7)))
	})
}

func TestNeg(t *testing.T) {
	assert.Nil(t, Neg(nil))

	v := Neg(Float(1.25))
	require.NotNil(t, v)
	assert.Equal(t, -1.25, *v)
}

func TestRound3(t *testing.T) {
	assert.Nil(t, Round3(nil))
	assert.Equal(t, 1.235, *Round3(Float(1.23456)))
	assert.Equal(t, -1.235, *Round3(Float(-1.23456)))
	assert.Equal(t, 0.5, *Round3(Float(0.5)))
}
