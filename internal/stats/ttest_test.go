package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTTestSummary(t *testing.T) {
	t.Run("Too Few Samples", func(t *testing.T) {
		r := TTestSummary(1, 1, 1, 2, 1, 10)
		assert.False(t, r.Valid)
		assert.True(t, math.IsNaN(r.T))
		assert.True(t, math.IsNaN(r.P))
		assert.False(t, r.Reject(0.05))
	})

	t.Run("Zero Variance", func(t *testing.T) {
		r := TTestSummary(1, 0, 10, 2, 0, 10)
		assert.False(t, r.Valid)
	})

	t.Run("Identical Means", func(t *testing.T) {
		r := TTestSummary(5, 2, 10, 5, 2, 10)
		assert.True(t, r.Valid)
		assert.InDelta(t, 0.0, r.T, 1e-12)
		assert.InDelta(t, 1.0, r.P, 1e-12)
		assert.False(t, r.Reject(0.05))
	})

	t.Run("Clear Separation", func(t *testing.T) {
		r := TTestSummary(10, 1, 10, 0, 1, 10)
		assert.True(t, r.Valid)
		assert.InDelta(t, 10/math.Sqrt(0.2), r.T, 1e-9)
		assert.Equal(t, 9, r.DF)
		assert.Less(t, r.P, 0.001)
		assert.True(t, r.Reject(0.05))
	})

	t.Run("Conservative DF", func(t *testing.T) {
		r := TTestSummary(1, 1, 5, 2, 1, 30)
		assert.True(t, r.Valid)
		assert.Equal(t, 4, r.DF)
	})

	t.Run("Sign Follows Group Order", func(t *testing.T) {
		a := TTestSummary(10, 2, 16, 8, 2, 16)
		b := TTestSummary(8, 2, 16, 10, 2, 16)
		assert.InDelta(t, -b.T, a.T, 1e-12)
		assert.InDelta(t, a.P, b.P, 1e-12)
	})
}
