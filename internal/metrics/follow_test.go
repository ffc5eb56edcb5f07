package metrics

import (
	"math"
	"testing"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fRow(t, px, rx float64) followRow {
	return followRow{t: t, player: [3]float64{px, 0, 0}, robot: [3]float64{rx, 0, 0}}
}

func TestFollowStats(t *testing.T) {
	const enter, exit = "entered survey room", "exited survey room"

	t.Run("Accumulates Between Matched Samples", func(t *testing.T) {
		rows := []followRow{
			fRow(0, 0, 0),
			fRow(1, 1, 1),
			fRow(2, 2, 2),
			fRow(3, 3, 10),
		}
		dist, dur := followStats(rows, math.Inf(1), false, 0.5, 10, enter, exit)
		assert.InDelta(t, 2.0, dist, 1e-9)
		assert.InDelta(t, 2.0, dur, 1e-9)
	})

	t.Run("Side Lock Excludes Cross Crisis Candidates", func(t *testing.T) {
		rows := []followRow{
			fRow(0, 0, 6),
			fRow(1, 1, 0),
			fRow(6, 6, 1),
		}
		// Whole session: the t=6 player sample serves the t=0 row's match.
		dist, dur := followStats(rows, math.Inf(1), false, 2, 10, enter, exit)
		assert.InDelta(t, 5.0, dist, 1e-9)
		assert.InDelta(t, 6.0, dur, 1e-9)

		// Split at 5: neither side can see the other's samples, so each
		// side is left with at most one match and accumulates nothing.
		dist, dur = followStats(rows, 5, false, 2, 10, enter, exit)
		assert.InDelta(t, 0.0, dist, 1e-9)
		assert.InDelta(t, 0.0, dur, 1e-9)
		dist, dur = followStats(rows, 5, true, 2, 10, enter, exit)
		assert.InDelta(t, 0.0, dist, 1e-9)
		assert.InDelta(t, 0.0, dur, 1e-9)
	})

	t.Run("Survey Visit Resets The Chain", func(t *testing.T) {
		rows := []followRow{
			fRow(0, 0, 0),
			{t: 1, room: enter},
			fRow(2, 2, 2),
			{t: 3, room: exit},
			fRow(4, 4, 4),
			fRow(5, 5, 5),
		}
		dist, dur := followStats(rows, math.Inf(1), false, 0.5, 10, enter, exit)
		assert.InDelta(t, 1.0, dist, 1e-9)
		assert.InDelta(t, 1.0, dur, 1e-9)
	})

	t.Run("Window Bounds The Backward Scan", func(t *testing.T) {
		rows := []followRow{
			fRow(0, 1, 99),
			fRow(10, 99, 0),
			fRow(11, 99, 0),
		}
		_, dur := followStats(rows, math.Inf(1), false, 2, 20, enter, exit)
		assert.InDelta(t, 1.0, dur, 1e-9)

		_, dur = followStats(rows, math.Inf(1), false, 2, 5, enter, exit)
		assert.InDelta(t, 0.0, dur, 1e-9)
	})

	t.Run("Empty", func(t *testing.T) {
		dist, dur := followStats(nil, math.Inf(1), false, 2, 10, enter, exit)
		assert.Zero(t, dist)
		assert.Zero(t, dur)
	})
}

func TestFollowRows(t *testing.T) {
	s := testSuite("")
	header := []string{"Time", "roomEvent", "robotEvent", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z", "Robot.x", "Robot.y", "Robot.z"}

	t.Run("Packs Rows And Finds Shook", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.0", "", "", "0", "0", "0", "1", "0", "0"},
			{"0.5", "Entered Survey Room", "", "0", "0", "0", "1", "0", "0"},
			{"1.0"},
			{"1.5", "", "Robot SHOOK hard"},
			{"2.0", "", "robot shook", "2", "0", "0", "3", "0", "0"},
			{"2.5", "", "", "3", "0", "0", "4", "0", "0"},
		}}
		rows, crisisT, err := s.followRows(lg)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, "entered survey room", rows[1].room)
		// The marker on the truncated row does not count; the first packed
		// marker row does.
		assert.InDelta(t, 2.0, crisisT, 1e-9)
	})

	t.Run("Estimate Hint Fallback", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"1.0", "", "", "0", "0", "0", "1", "0", "0"},
			{"3.0", "", "announced 0.2 delay", "1", "0", "0", "2", "0", "0"},
		}}
		_, crisisT, err := s.followRows(lg)
		require.NoError(t, err)
		assert.InDelta(t, 3.229, crisisT, 1e-9)
	})

	t.Run("Hint Matches Any Cell", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"0.25", "", "", "0", "0", "0", "1", "0", "0"},
			{"1.0", "", "", "1", "0", "0", "2", "0", "0"},
		}}
		_, crisisT, err := s.followRows(lg)
		require.NoError(t, err)
		// The timestamp cell itself contains the hint.
		assert.InDelta(t, 0.479, crisisT, 1e-9)
	})

	t.Run("No Marker", func(t *testing.T) {
		lg := &trial.Log{Header: header, Rows: [][]string{
			{"1.0", "", "", "0", "0", "0", "1", "0", "0"},
		}}
		rows, crisisT, err := s.followRows(lg)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.True(t, math.IsNaN(crisisT))
	})

	t.Run("Missing Columns", func(t *testing.T) {
		lg := &trial.Log{Header: []string{"Time", "roomEvent", "PlayerVR.x", "PlayerVR.y", "PlayerVR.z"}}
		_, _, err := s.followRows(lg)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})
}
