package metrics

import (
	"math"
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xPositions(xs ...float64) [][3]float64 {
	out := make([][3]float64, len(xs))
	for i, x := range xs {
		out[i] = [3]float64{x, 0, 0}
	}
	return out
}

func TestSpeedsWhere(t *testing.T) {
	t.Run("Adjacent Pairs", func(t *testing.T) {
		times := []float64{0, 1, 2, 3}
		speeds := speedsWhere(times, xPositions(0, 2, 4, 6), []bool{true, true, true, true})
		require.Len(t, speeds, 3)
		assert.InDelta(t, 2.0, speeds[0], 1e-9)
	})

	t.Run("Masked Row Breaks Adjacency", func(t *testing.T) {
		times := []float64{0, 1, 2, 3}
		speeds := speedsWhere(times, xPositions(0, 1, 2, 3), []bool{true, true, false, true})
		require.Len(t, speeds, 1)
		assert.InDelta(t, 1.0, speeds[0], 1e-9)
	})

	t.Run("Non Positive Dt Dropped", func(t *testing.T) {
		times := []float64{0, 0, 1}
		speeds := speedsWhere(times, xPositions(0, 1, 2), []bool{true, true, true})
		require.Len(t, speeds, 1)
		assert.InDelta(t, 1.0, speeds[0], 1e-9)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, speedsWhere(nil, nil, nil))
	})
}

func TestVelocityFor(t *testing.T) {
	s := testSuite("")
	header := []string{"Time", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z", "roomEvent", "robotEvent"}

	t.Run("Crisis Boundary Pair Counts Overall Only", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "0", "0", "0", "", ""},
			{"1.0", "1", "0", "0", "", ""},
			{"2.0", "2", "0", "0", "", ""},
			{"3.0", "3", "0", "0", "", "robot shook"},
			{"4.0", "4", "0", "0", "", ""},
			{"5.0", "5", "0", "0", "", ""},
		}}
		overall, pre, post, err := s.velocityFor(lg)
		require.NoError(t, err)
		assert.Equal(t, 5, overall.N)
		assert.Equal(t, 2, pre.N)
		assert.Equal(t, 2, post.N)
		assert.InDelta(t, 1.0, overall.Mean, 1e-9)
		assert.InDelta(t, 1.0, pre.Mean, 1e-9)
		assert.InDelta(t, 1.0, post.Mean, 1e-9)
	})

	t.Run("Survey Room Samples Excluded", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "0", "0", "0", "", ""},
			{"1.0", "1", "0", "0", "", ""},
			{"2.0", "2", "0", "0", "Entered Survey Room", ""},
			{"3.0", "3", "0", "0", "", ""},
			{"4.0", "4", "0", "0", "Exited Survey Room", ""},
			{"5.0", "5", "0", "0", "", ""},
		}}
		overall, pre, post, err := s.velocityFor(lg)
		require.NoError(t, err)
		// Rows 2 and 3 sit inside the survey room; the exit row itself is
		// back outside.
		assert.Equal(t, 2, overall.N)
		assert.Equal(t, 0, pre.N)
		assert.Equal(t, 0, post.N)
	})

	t.Run("Generic Event Column Fallback", func(t *testing.T) {
		lg := &trial.Log{
			Header: []string{"Time", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z", "Event"},
			Rows: [][]string{
				{"0.0", "0", "0", "0", ""},
				{"1.0", "1", "0", "0", "Player Entered Survey Room"},
				{"2.0", "2", "0", "0", ""},
				{"3.0", "3", "0", "0", "player exited survey room"},
				{"4.0", "4", "0", "0", ""},
			},
		}
		overall, _, _, err := s.velocityFor(lg)
		require.NoError(t, err)
		// Only the exit row and the one after it remain adjacent.
		assert.Equal(t, 1, overall.N)
	})

	t.Run("Unparseable Row Breaks Adjacency", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "0", "0", "0", "", ""},
			{"1.0", "bad", "0", "0", "", ""},
			{"2.0", "2", "0", "0", "", ""},
		}}
		overall, _, _, err := s.velocityFor(lg)
		require.NoError(t, err)
		assert.Equal(t, 0, overall.N)
		assert.True(t, math.IsNaN(overall.Mean))
	})

	t.Run("Missing Column", func(t *testing.T) {
		lg := &trial.Log{Header: []string{"Time", "PlayerVR.x", "PlayerVR.y"}}
		_, _, _, err := s.velocityFor(lg)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}
