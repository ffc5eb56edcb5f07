package metrics

import (
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceFor(t *testing.T) {
	s := testSuite("")
	header := []string{"Time", "robotEvent", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z", "Robot.x", "Robot.y", "Robot.z"}

	t.Run("Splits Around The Marker Row", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "", "0", "0", "0", "1", "0", "0"},
			{"1.0", "", "0", "0", "0", "2", "0", "0"},
			{"2.0", "robot shook", "0", "0", "0", "3", "0", "0"},
			{"3.0", "", "0", "0", "0", "4", "0", "0"},
			{"4.0", "", "0", "0", "0", "5", "0", "0"},
			{"5.0", "", "bad", "0", "0", "6", "0", "0"},
		}}
		overall, pre, post, err := s.distanceFor(lg)
		require.NoError(t, err)
		assert.Equal(t, 5, overall.N)
		assert.InDelta(t, 3.0, overall.Mean, 1e-9)
		assert.Equal(t, 2, pre.N)
		assert.InDelta(t, 1.5, pre.Mean, 1e-9)
		assert.Equal(t, 2, post.N)
		assert.InDelta(t, 4.5, post.Mean, 1e-9)
		assert.InDelta(t, 5.0, overall.Max, 1e-9)
		assert.InDelta(t, 1.0, overall.Min, 1e-9)
	})

	t.Run("No Marker Leaves Segments Empty", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "", "0", "0", "0", "1", "0", "0"},
			{"1.0", "", "0", "0", "0", "2", "0", "0"},
		}}
		overall, pre, post, err := s.distanceFor(lg)
		require.NoError(t, err)
		assert.Equal(t, 2, overall.N)
		assert.Equal(t, 0, pre.N)
		assert.Equal(t, 0, post.N)
	})

	t.Run("Missing Column", func(t *testing.T) {
		lg := &trial.Log{Header: []string{"Time", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z"}}
		_, _, _, err := s.distanceFor(lg)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}
