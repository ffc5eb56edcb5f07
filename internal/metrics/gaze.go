// internal/metrics/gaze.go
package metrics

import (
	"fmt"

	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

type gazeSample struct {
	row int
	v   [3]float64
}

// GazeSpread writes the per-axis standard deviation of the gaze visualizer
// position as one bracketed triple per segment. A wide spread means the
// participant's gaze roamed.
func (s *Suite) GazeSpread(wb *workbook.Workbook) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	cols := s.study.Columns.Gaze
	if err := s.tripleHeaders(wb, sheets, cols, "SD Gaze [x, y, z]"); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		cells := [3]string{"", "", ""}

		lg, err := s.readStandard(id)
		if err == nil {
			var samples []gazeSample
			samples, err = s.gazeSamples(lg)
			if err == nil {
				cells[0] = formatGazeSD(samples)
				if split, ok := s.splitAt(lg); ok {
					var pre, post []gazeSample
					for _, gs := range samples {
						if gs.row < split {
							pre = append(pre, gs)
						} else if gs.row > split {
							post = append(post, gs)
						}
					}
					cells[1] = formatGazeSD(pre)
					cells[2] = formatGazeSD(post)
				}
				tally.Processed++
			}
		}
		if err != nil {
			tally.account(id, err)
		}

		segCols := [3]int{cols.Overall, cols.Pre, cols.Post}
		for si := range sheets {
			if err := wb.SetString(sheets[si], p.sheetRow, segCols[si], cells[si]); err != nil {
				return tally, err
			}
		}
	}
	tally.LogSummary(s.log, "gaze")
	return tally, nil
}

// gazeSamples keeps rows where all three gaze coordinates are present and
// parse. Partial rows are dropped whole so the axes stay aligned.
func (s *Suite) gazeSamples(lg *trial.Log) ([]gazeSample, error) {
	axes := [3]int{}
	for i, name := range gazeAxes {
		axes[i] = lg.Column(name)
		if axes[i] < 0 {
			return nil, ErrMissingColumn
		}
	}

	var samples []gazeSample
	for i, row := range lg.Rows {
		gs := gazeSample{row: i}
		ok := true
		for a := 0; a < 3; a++ {
			v, okA := trial.FloatField(row, axes[a])
			if !okA {
				ok = false
				break
			}
			gs.v[a] = v
		}
		if ok {
			samples = append(samples, gs)
		}
	}
	return samples, nil
}

// formatGazeSD renders the per-axis sample SDs, or "" below two samples.
func formatGazeSD(samples []gazeSample) string {
	if len(samples) < 2 {
		return ""
	}
	var axes [3][]float64
	for _, gs := range samples {
		for a := 0; a < 3; a++ {
			axes[a] = append(axes[a], gs.v[a])
		}
	}
	sd := [3]float64{}
	for a := 0; a < 3; a++ {
		sd[a] = stats.Describe(axes[a]).SD
	}
	return fmt.Sprintf("[%.6f, %.6f, %.6f]", sd[0], sd[1], sd[2])
}
