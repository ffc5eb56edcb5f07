// internal/metrics/distance.go
package metrics

import (
	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

// Distance summarizes the player-robot separation per sample. Note the
// column order differs from velocity: the workbook has always listed the
// maximum before the minimum here.
func (s *Suite) Distance(wb *workbook.Workbook) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	cols := s.study.Columns.Distance
	if err := quadHeaders(wb, sheets, cols, "Player-Robot Distance", [4]string{"Mean", "SD", "Max", "Min"}); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		overall, pre, post := stats.Describe(nil), stats.Describe(nil), stats.Describe(nil)

		lg, err := s.readStandard(id)
		if err == nil {
			overall, pre, post, err = s.distanceFor(lg)
			if err == nil {
				tally.Processed++
			}
		}
		if err != nil {
			tally.account(id, err)
		}

		for si, seg := range [3]stats.Summary{overall, pre, post} {
			segCols := [3][]int{cols.Overall, cols.Pre, cols.Post}[si]
			vals := [4]float64{seg.Mean, seg.SD, seg.Max, seg.Min}
			if err := writeQuad(wb, sheets[si], p.sheetRow, segCols, vals); err != nil {
				return tally, err
			}
		}
	}
	tally.LogSummary(s.log, "distance")
	return tally, nil
}

func (s *Suite) distanceFor(lg *trial.Log) (overall, pre, post stats.Summary, err error) {
	empty := stats.Describe(nil)
	var pAxes, rAxes [3]int
	for i := 0; i < 3; i++ {
		pAxes[i] = lg.Column(playerAxes[i])
		rAxes[i] = lg.Column(robotAxes[i])
		if pAxes[i] < 0 || rAxes[i] < 0 {
			return empty, empty, empty, ErrMissingColumn
		}
	}

	type distSample struct {
		row int
		d   float64
	}
	var samples []distSample
	for i, row := range lg.Rows {
		var pp, rp [3]float64
		ok := true
		for a := 0; a < 3 && ok; a++ {
			pv, okP := trial.FloatField(row, pAxes[a])
			rv, okR := trial.FloatField(row, rAxes[a])
			if !okP || !okR || !isFinite(pv) || !isFinite(rv) {
				ok = false
				continue
			}
			pp[a], rp[a] = pv, rv
		}
		if ok {
			samples = append(samples, distSample{row: i, d: dist3(pp, rp)})
		}
	}

	all := make([]float64, len(samples))
	for i, ds := range samples {
		all[i] = ds.d
	}
	overall = stats.Describe(all)
	pre, post = empty, empty

	split, found := s.splitAt(lg)
	if !found {
		return overall, pre, post, nil
	}
	var preD, postD []float64
	for _, ds := range samples {
		if ds.row < split {
			preD = append(preD, ds.d)
		} else if ds.row > split {
			postD = append(postD, ds.d)
		}
	}
	return overall, stats.Describe(preD), stats.Describe(postD), nil
}
