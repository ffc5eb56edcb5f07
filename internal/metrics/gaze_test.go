package metrics

import (
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGazeSD(t *testing.T) {
	assert.Equal(t, "", formatGazeSD(nil))
	assert.Equal(t, "", formatGazeSD([]gazeSample{{v: [3]float64{1, 2, 3}}}))

	samples := []gazeSample{
		{v: [3]float64{0, 5, 1}},
		{v: [3]float64{2, 5, 1}},
	}
	assert.Equal(t, "[1.414214, 0.000000, 0.000000]", formatGazeSD(samples))
}

func TestGazeSamples(t *testing.T) {
	s := testSuite("")

	lg := &trial.Log{
		Header: []string{"Time", "Gaze Visualizer.x", "Gaze Visualizer.y", "Gaze Visualizer.z"},
		Rows: [][]string{
			{"0.0", "1", "2", "3"},
			{"0.1", "4", "oops", "6"},
			{"0.2", "7", "8"},
			{"0.3", "9", "10", "11"},
		},
	}
	samples, err := s.gazeSamples(lg)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 0, samples[0].row)
	assert.Equal(t, 3, samples[1].row)
	assert.Equal(t, [3]float64{9, 10, 11}, samples[1].v)

	lg.Header = []string{"Time"}
	_, err = s.gazeSamples(lg)
	assert.ErrorIs(t, err, ErrMissingColumn)
}
