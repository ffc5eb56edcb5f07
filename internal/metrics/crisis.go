// internal/metrics/crisis.go
package metrics

import (
	"math"

	"github.com/yyspencer/Fire2Scripts/internal/crisis"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

// CrisisTimes fills the crisis time column of the overall sheet from each
// participant's tracker log.
func (s *Suite) CrisisTimes(wb *workbook.Workbook) (*Tally, error) {
	sheet, parts, err := s.participants(wb)
	if err != nil {
		return nil, err
	}
	col := s.study.Columns.CrisisTime
	if err := wb.SetHeader(sheet, col, "Crisis Time (s)"); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		t, err := s.crisisFor(id)
		if err != nil {
			tally.account(id, err)
			if err := wb.SetFloat(sheet, p.sheetRow, col, math.NaN()); err != nil {
				return tally, err
			}
			continue
		}
		if err := wb.SetFloat(sheet, p.sheetRow, col, t); err != nil {
			return tally, err
		}
		tally.Processed++
		s.log.Debug("Crisis time detected", zap.String("participant", id), zap.Float64("time", t))
	}
	tally.LogSummary(s.log, "crisis")
	return tally, nil
}

// Intervals writes the pre-crisis and post-crisis interval columns: time
// from the log's first sample to the crisis, and from the crisis to the
// last sample. Either end missing leaves both cells empty.
func (s *Suite) Intervals(wb *workbook.Workbook) (*Tally, error) {
	sheet, parts, err := s.participants(wb)
	if err != nil {
		return nil, err
	}
	preCol := s.study.Columns.PreInterval
	postCol := s.study.Columns.PostInterval
	if err := wb.SetHeader(sheet, preCol, "Pre-crisis Interval"); err != nil {
		return nil, err
	}
	if err := wb.SetHeader(sheet, postCol, "Post-crisis Interval"); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		pre, post := math.NaN(), math.NaN()

		path, folder, err := trial.Locate(s.root, s.study.Folders.Standard, id)
		if err == nil {
			var lg *trial.Log
			if lg, err = trial.ReadLog(path); err == nil {
				var crisisT, first, last float64
				if crisisT, first, last, err = crisis.Measure(lg, folder, s.study.Markers); err == nil {
					if !math.IsNaN(first) && !math.IsNaN(last) {
						pre = crisisT - first
						post = last - crisisT
					}
					tally.Processed++
				}
			}
		}
		if err != nil {
			tally.account(id, err)
		}

		if err := wb.SetFloat(sheet, p.sheetRow, preCol, pre); err != nil {
			return tally, err
		}
		if err := wb.SetFloat(sheet, p.sheetRow, postCol, post); err != nil {
			return tally, err
		}
	}
	tally.LogSummary(s.log, "intervals")
	return tally, nil
}

// crisisFor locates and reads one participant's log, then detects the
// crisis time in it.
func (s *Suite) crisisFor(id string) (float64, error) {
	path, folder, err := trial.Locate(s.root, s.study.Folders.Standard, id)
	if err != nil {
		return math.NaN(), err
	}
	lg, err := trial.ReadLog(path)
	if err != nil {
		return math.NaN(), err
	}
	return crisis.DetectTime(lg, folder, s.study.Markers)
}
