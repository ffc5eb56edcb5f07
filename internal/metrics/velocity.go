// internal/metrics/velocity.go
package metrics

import (
	"math"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/crisis"
	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

// Velocity summarizes player movement speed between consecutive samples,
// excluding everything recorded inside the survey room. The velocity logs
// use strict headers; a renamed column is a defect worth surfacing, not
// papering over.
func (s *Suite) Velocity(wb *workbook.Workbook) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	cols := s.study.Columns.Velocity
	if err := quadHeaders(wb, sheets, cols, "Player Velocity", [4]string{"Mean", "SD", "Min", "Max"}); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		overall, pre, post := stats.Describe(nil), stats.Describe(nil), stats.Describe(nil)

		lg, err := s.readStandard(id)
		if err == nil {
			overall, pre, post, err = s.velocityFor(lg)
			if err == nil {
				tally.Processed++
			}
		}
		if err != nil {
			tally.account(id, err)
		}

		for si, seg := range [3]stats.Summary{overall, pre, post} {
			segCols := [3][]int{cols.Overall, cols.Pre, cols.Post}[si]
			vals := [4]float64{seg.Mean, seg.SD, seg.Min, seg.Max}
			if err := writeQuad(wb, sheets[si], p.sheetRow, segCols, vals); err != nil {
				return tally, err
			}
		}
	}
	tally.LogSummary(s.log, "velocity")
	return tally, nil
}

func (s *Suite) velocityFor(lg *trial.Log) (overall, pre, post stats.Summary, err error) {
	empty := stats.Describe(nil)
	timeI := lg.ColumnExact(colTime)
	axes := [3]int{}
	for i, name := range playerAxes {
		axes[i] = lg.ColumnExact(name)
	}
	if timeI < 0 || axes[0] < 0 || axes[1] < 0 || axes[2] < 0 {
		return empty, empty, empty, ErrMissingColumn
	}

	n := len(lg.Rows)

	// Survey room spans are fenced by exact room events; older logs only
	// mention them in the generic event column.
	inSurvey := make([]bool, n)
	if roomI := lg.ColumnExact(colRoomEvent); roomI >= 0 {
		state := false
		for i, row := range lg.Rows {
			switch trial.Field(row, roomI) {
			case s.study.Markers.SurveyEnter:
				state = true
			case s.study.Markers.SurveyExit:
				state = false
			}
			inSurvey[i] = state
		}
	} else if evtI := lg.ColumnExact(colEvent); evtI >= 0 {
		enterSub := strings.ToLower(s.study.Markers.SurveyEnter)
		exitSub := strings.ToLower(s.study.Markers.SurveyExit)
		state := false
		for i, row := range lg.Rows {
			ev := strings.ToLower(trial.Field(row, evtI))
			if strings.Contains(ev, enterSub) {
				state = true
			} else if strings.Contains(ev, exitSub) {
				state = false
			}
			inSurvey[i] = state
		}
	}

	times := make([]float64, n)
	pos := make([][3]float64, n)
	valid := make([]bool, n)
	for i, row := range lg.Rows {
		t, okT := trial.FloatField(row, timeI)
		times[i] = math.NaN()
		if okT {
			times[i] = t
		}
		ok := okT && isFinite(t)
		for a := 0; a < 3; a++ {
			v, okA := trial.FloatField(row, axes[a])
			if !okA || !isFinite(v) {
				ok = false
				continue
			}
			pos[i][a] = v
		}
		valid[i] = ok && !inSurvey[i]
	}

	overall = stats.Describe(speedsWhere(times, pos, valid))
	pre, post = empty, empty

	split := crisis.SplitIndex(lg, timeI, s.study.Markers)
	if split < 0 || !isFinite(times[split]) {
		return overall, pre, post, nil
	}
	crisisT := times[split]

	preMask := make([]bool, n)
	postMask := make([]bool, n)
	for i := range valid {
		preMask[i] = valid[i] && times[i] < crisisT
		postMask[i] = valid[i] && times[i] >= crisisT
	}
	return overall, stats.Describe(speedsWhere(times, pos, preMask)), stats.Describe(speedsWhere(times, pos, postMask)), nil
}

// speedsWhere walks rows in order and emits ||Δpos||/Δt for every pair of
// adjacent rows that both satisfy the mask. A masked-out row breaks
// adjacency, so no pair ever spans it.
func speedsWhere(times []float64, pos [][3]float64, mask []bool) []float64 {
	var speeds []float64
	prev := -1
	for i := range mask {
		if !mask[i] {
			continue
		}
		if prev >= 0 && i-prev == 1 {
			if dt := times[i] - times[prev]; dt > 0 {
				speeds = append(speeds, dist3(pos[i], pos[prev])/dt)
			}
		}
		prev = i
	}
	return speeds
}

func writeQuad(wb *workbook.Workbook, sheet string, row int, cols []int, vals [4]float64) error {
	for i, col := range cols {
		if err := wb.SetFloat(sheet, row, col, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

func quadHeaders(wb *workbook.Workbook, sheets [3]string, cols models.Quad, title string, names [4]string) error {
	segCols := [3][]int{cols.Overall, cols.Pre, cols.Post}
	segNames := [3]string{"Overall", "Pre", "Post"}
	for si := range sheets {
		for i, col := range segCols[si] {
			header := names[i] + " " + title + " (" + segNames[si] + ")"
			if err := wb.SetHeader(sheets[si], col, header); err != nil {
				return err
			}
		}
	}
	return nil
}
