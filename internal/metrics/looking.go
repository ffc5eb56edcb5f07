// internal/metrics/looking.go
package metrics

import (
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

// Looking writes the percentage of samples spent looking at the robot, for
// the whole session and for each side of the crisis.
func (s *Suite) Looking(wb *workbook.Workbook) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	cols := s.study.Columns.Looking
	if err := s.tripleHeaders(wb, sheets, cols, "% Looking At Robot"); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		overall, pre, post := models.NoMetric(), models.NoMetric(), models.NoMetric()

		lg, err := s.readStandard(id)
		if err == nil {
			lookCol := lg.Column(colLookingAt)
			if lookCol < 0 {
				err = ErrMissingColumn
			} else {
				overall = lookingPercent(lg.Rows, lookCol, s.study.Markers.LookTarget)
				if preRows, postRows, ok := s.splitRows(lg); ok {
					pre = lookingPercent(preRows, lookCol, s.study.Markers.LookTarget)
					post = lookingPercent(postRows, lookCol, s.study.Markers.LookTarget)
				}
				tally.Processed++
			}
		}
		if err != nil {
			tally.account(id, err)
		}
		if err := writeTriple(wb, sheets, cols, p.sheetRow, overall, pre, post, false); err != nil {
			return tally, err
		}
	}
	tally.LogSummary(s.log, "looking")
	return tally, nil
}

// Looks counts contiguous stretches of robot-directed gaze. The modified
// no-shake sessions keep their own folder family here.
func (s *Suite) Looks(wb *workbook.Workbook) (*Tally, error) {
	target := s.study.Markers.LookTarget
	return s.runCounts(wb, "looks", s.study.Columns.Looks, "Looks At Robot", s.study.Folders.Modified,
		func(v string) bool { return v == target })
}

// Signage counts contiguous stretches of gaze on any exit sign. Sign
// objects share a common name prefix in the logs.
func (s *Suite) Signage(wb *workbook.Workbook) (*Tally, error) {
	prefix := s.study.Markers.SignagePrefix
	return s.runCounts(wb, "signage", s.study.Columns.Signage, "Looks At Signage", s.study.Folders.Standard,
		func(v string) bool { return strings.HasPrefix(v, prefix) })
}

func (s *Suite) runCounts(wb *workbook.Workbook, analysis string, cols models.Triple, title string, folders []string, match func(string) bool) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	if err := s.tripleHeaders(wb, sheets, cols, title); err != nil {
		return nil, err
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		overall, pre, post := models.NoMetric(), models.NoMetric(), models.NoMetric()

		lg, err := s.readFrom(folders, id)
		if err == nil {
			lookCol := lg.Column(colLookingAt)
			if lookCol < 0 {
				err = ErrMissingColumn
			} else {
				overall = lookRuns(lg.Rows, lookCol, match)
				if preRows, postRows, ok := s.splitRows(lg); ok {
					pre = lookRuns(preRows, lookCol, match)
					post = lookRuns(postRows, lookCol, match)
				}
				tally.Processed++
			}
		}
		if err != nil {
			tally.account(id, err)
		}
		if err := writeTriple(wb, sheets, cols, p.sheetRow, overall, pre, post, true); err != nil {
			return tally, err
		}
	}
	tally.LogSummary(s.log, analysis)
	return tally, nil
}

// lookingPercent counts exact matches of the target over rows long enough
// to carry the gaze column. Short event rows stay out of the denominator;
// blank gaze cells stay in, they mean "looking at nothing".
func lookingPercent(rows [][]string, lookCol int, target string) models.MetricResult {
	match, total := 0, 0
	for _, row := range rows {
		if lookCol >= len(row) {
			continue
		}
		total++
		if row[lookCol] == target {
			match++
		}
	}
	if total == 0 {
		return models.NoMetric()
	}
	return models.Metric(float64(match)/float64(total)*100, total)
}

// lookRuns counts maximal runs of matching samples. A short or blank row
// breaks a run without starting one.
func lookRuns(rows [][]string, lookCol int, match func(string) bool) models.MetricResult {
	count := 0
	inRun := false
	for _, row := range rows {
		if lookCol >= len(row) || row[lookCol] == "" {
			inRun = false
			continue
		}
		if match(row[lookCol]) {
			if !inRun {
				count++
				inRun = true
			}
		} else {
			inRun = false
		}
	}
	return models.Metric(float64(count), len(rows))
}

// splitRows divides a log's rows at the crisis marker. The marker row
// itself belongs to neither side. ok is false when the log has no usable
// marker.
func (s *Suite) splitRows(lg *trial.Log) (pre, post [][]string, ok bool) {
	split, found := s.splitAt(lg)
	if !found {
		return nil, nil, false
	}
	return lg.Rows[:split], lg.Rows[split+1:], true
}

// tripleSheets pairs the participant list with the three sheet names.
func (s *Suite) tripleSheets(wb *workbook.Workbook) ([3]string, []participant, error) {
	_, parts, err := s.participants(wb)
	if err != nil {
		return [3]string{}, nil, err
	}
	overall, pre, post, err := s.resultSheets(wb)
	if err != nil {
		return [3]string{}, nil, err
	}
	return [3]string{overall, pre, post}, parts, nil
}

func (s *Suite) tripleHeaders(wb *workbook.Workbook, sheets [3]string, cols models.Triple, title string) error {
	if err := wb.SetHeader(sheets[0], cols.Overall, title+" (Overall)"); err != nil {
		return err
	}
	if err := wb.SetHeader(sheets[1], cols.Pre, title+" (Pre)"); err != nil {
		return err
	}
	return wb.SetHeader(sheets[2], cols.Post, title+" (Post)")
}

// readStandard reads a participant's log from the standard folder family.
func (s *Suite) readStandard(id string) (*trial.Log, error) {
	return s.readFrom(s.study.Folders.Standard, id)
}

func (s *Suite) readFrom(folders []string, id string) (*trial.Log, error) {
	path, _, err := trial.Locate(s.root, folders, id)
	if err != nil {
		return nil, err
	}
	return trial.ReadLog(path)
}
