package metrics

import (
	"strings"
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookingPercent(t *testing.T) {
	t.Run("Short Rows Leave The Denominator", func(t *testing.T) {
		rows := [][]string{
			{"0.1", "Robot"},
			{"0.2"},
			{"0.3", ""},
			{"0.4", "Wall"},
			{"0.5", "Robot"},
		}
		m := lookingPercent(rows, 1, "Robot")
		assert.True(t, m.Calculated)
		assert.InDelta(t, 50.0, m.Value, 1e-9)
		assert.Equal(t, 4, m.SampleSize)
	})

	t.Run("Match Is Exact", func(t *testing.T) {
		rows := [][]string{{"0.1", "robot"}, {"0.2", "Robot "}}
		m := lookingPercent(rows, 1, "Robot")
		assert.InDelta(t, 0.0, m.Value, 1e-9)
	})

	t.Run("No Usable Rows", func(t *testing.T) {
		m := lookingPercent([][]string{{"0.1"}}, 1, "Robot")
		assert.False(t, m.Calculated)
	})
}

func TestLookRuns(t *testing.T) {
	isRobot := func(v string) bool { return v == "Robot" }

	t.Run("Counts Maximal Runs", func(t *testing.T) {
		rows := [][]string{
			{"1", "Robot"},
			{"2", "Robot"},
			{"3", "Wall"},
			{"4", "Robot"},
		}
		m := lookRuns(rows, 1, isRobot)
		assert.Equal(t, 2.0, m.Value)
		assert.Equal(t, 4, m.SampleSize)
	})

	t.Run("Blank And Short Rows Break Runs", func(t *testing.T) {
		rows := [][]string{
			{"1", "Robot"},
			{"2"},
			{"3", "Robot"},
			{"4", ""},
			{"5", "Robot"},
		}
		m := lookRuns(rows, 1, isRobot)
		assert.Equal(t, 3.0, m.Value)
	})

	t.Run("Prefix Matching For Signage", func(t *testing.T) {
		prefix := func(v string) bool { return strings.HasPrefix(v, "Signage") }
		rows := [][]string{
			{"1", "Signage_A"},
			{"2", "Signage_B"},
			{"3", "Wall"},
			{"4", "signage_a"},
		}
		m := lookRuns(rows, 1, prefix)
		assert.Equal(t, 1.0, m.Value)
	})

	t.Run("Empty", func(t *testing.T) {
		m := lookRuns(nil, 1, isRobot)
		assert.Equal(t, 0.0, m.Value)
		assert.Equal(t, 0, m.SampleSize)
	})
}

func TestSplitRows(t *testing.T) {
	s := testSuite("")
	lg := &trial.Log{
		Header: []string{"Time", "robotEvent", "LookingAt"},
		Rows: [][]string{
			{"0.0", "", "Robot"},
			{"1.0", "robot shook", "Wall"},
			{"2.0", "", "Robot"},
			{"3.0", "", "Wall"},
		},
	}

	pre, post, ok := s.splitRows(lg)
	require.True(t, ok)
	assert.Len(t, pre, 1)
	assert.Len(t, post, 2)

	lg.Rows[1][1] = ""
	_, _, ok = s.splitRows(lg)
	assert.False(t, ok)
}
