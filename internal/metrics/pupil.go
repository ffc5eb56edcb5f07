// internal/metrics/pupil.go
package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

// PupilTally tracks the many ways a pupil extraction can come up short.
type PupilTally struct {
	Processed      int
	MissingCrisis  []string
	MissingLog     []string
	ReadError      []string
	Empty          []string
	NoTimeColumn   []string
	NoPupilColumns []string
	EmptyWindows   map[string]int
}

func (t *PupilTally) LogSummary(log *zap.Logger) {
	log.Info("Pupil analysis finished",
		zap.Int("processed", t.Processed),
		zap.Int("missingCrisis", len(t.MissingCrisis)),
		zap.Int("missingLog", len(t.MissingLog)),
		zap.Int("readError", len(t.ReadError)),
		zap.Int("emptyLog", len(t.Empty)),
		zap.Int("noTimeColumn", len(t.NoTimeColumn)),
		zap.Int("noPupilColumns", len(t.NoPupilColumns)))
	for tag, n := range t.EmptyWindows {
		log.Debug("Windows with no usable samples", zap.String("window", tag), zap.Int("participants", n))
	}
}

// timeWindow bounds one extraction interval. Zero-length boundaries matter
// here: the crisis sample itself belongs to the post windows only.
type timeWindow struct {
	lo, hi               float64
	includeLo, includeHi bool
}

func (w timeWindow) contains(t float64) bool {
	if t < w.lo || (t == w.lo && !w.includeLo) {
		return false
	}
	if t > w.hi || (t == w.hi && !w.includeHi) {
		return false
	}
	return true
}

// PupilWindows summarizes pupil diameter in four windows around the crisis
// read back from the overall sheet: the windowLen seconds each side of it,
// and the full stretch each side. Results land on the pre and post sheets,
// one four-column block per eye and window.
func (s *Suite) PupilWindows(wb *workbook.Workbook, windowLen float64) (*PupilTally, error) {
	overall, err := wb.Sheet(s.study.Sheets.Overall)
	if err != nil {
		return nil, err
	}
	overallRows, err := wb.Rows(overall)
	if err != nil {
		return nil, err
	}
	_, preSheet, postSheet, err := s.resultSheets(wb)
	if err != nil {
		return nil, err
	}
	if err := s.pupilHeaders(wb, preSheet, postSheet, windowLen); err != nil {
		return nil, err
	}

	idCol := s.study.Columns.ParticipantID - 1
	crisisCol := s.study.Columns.CrisisTime - 1

	tally := &PupilTally{EmptyWindows: make(map[string]int)}
	for i := 1; i < len(overallRows); i++ {
		raw := strings.TrimSpace(trial.Field(overallRows[i], idCol))
		if raw == "" {
			continue
		}
		id := trial.PrefixID(raw)
		sheetRow := i + 1

		crisisT, okCrisis := parseFloat(trial.Field(overallRows[i], crisisCol))
		if !okCrisis {
			tally.MissingCrisis = append(tally.MissingCrisis, id)
			if err := s.clearPupilRow(wb, preSheet, postSheet, sheetRow); err != nil {
				return tally, err
			}
			continue
		}

		lg := s.pupilLog(id, tally)
		if lg == nil {
			if err := s.clearPupilRow(wb, preSheet, postSheet, sheetRow); err != nil {
				return tally, err
			}
			continue
		}

		timeI := pupilTimeColumn(lg)
		if timeI < 0 {
			tally.NoTimeColumn = append(tally.NoTimeColumn, id)
			if err := s.clearPupilRow(wb, preSheet, postSheet, sheetRow); err != nil {
				return tally, err
			}
			continue
		}
		leftI := lg.ColumnRelaxed("leftpupil")
		rightI := lg.ColumnRelaxed("rightpupil")
		if leftI < 0 || rightI < 0 {
			tally.NoPupilColumns = append(tally.NoPupilColumns, id)
			if err := s.clearPupilRow(wb, preSheet, postSheet, sheetRow); err != nil {
				return tally, err
			}
			continue
		}

		windows := map[string]timeWindow{
			"preShort":  {crisisT - windowLen, crisisT, true, false},
			"preFull":   {math.Inf(-1), crisisT, false, false},
			"postShort": {crisisT, crisisT + windowLen, true, true},
			"postFull":  {crisisT, math.Inf(1), true, false},
		}
		eyes := map[string]int{"left": leftI, "right": rightI}

		results := make(map[string]stats.PupilSummary, 8)
		for wname, w := range windows {
			for ename, eyeI := range eyes {
				ps := stats.DescribePupil(pupilSamples(lg.Rows, timeI, eyeI, w))
				if ps.Used == 0 {
					tally.EmptyWindows[wname+"_"+ename]++
				}
				results[wname+"_"+ename] = ps
			}
		}

		blocks := s.study.Columns.Pupil
		for _, dst := range []struct {
			sheet string
			cols  []int
			key   string
		}{
			{preSheet, blocks.ShortLeft, "preShort_left"},
			{preSheet, blocks.ShortRight, "preShort_right"},
			{preSheet, blocks.FullLeft, "preFull_left"},
			{preSheet, blocks.FullRight, "preFull_right"},
			{postSheet, blocks.ShortLeft, "postShort_left"},
			{postSheet, blocks.ShortRight, "postShort_right"},
			{postSheet, blocks.FullLeft, "postFull_left"},
			{postSheet, blocks.FullRight, "postFull_right"},
		} {
			ps := results[dst.key]
			vals := [4]float64{ps.Mean, ps.SD, ps.Max, ps.Min}
			if err := writeQuad(wb, dst.sheet, sheetRow, dst.cols, vals); err != nil {
				return tally, err
			}
		}
		tally.Processed++
	}
	tally.LogSummary(s.log)
	return tally, nil
}

// pupilLog resolves and reads one participant's log, recording misses in
// the tally. nil means "skip this participant".
func (s *Suite) pupilLog(id string, tally *PupilTally) *trial.Log {
	path, _, err := trial.LocatePrefix(s.root, s.study.Folders.Pupil, id)
	if err != nil {
		tally.MissingLog = append(tally.MissingLog, id)
		return nil
	}
	lg, err := trial.ReadLog(path)
	if err != nil {
		tally.ReadError = append(tally.ReadError, id)
		return nil
	}
	if len(lg.Rows) == 0 {
		tally.Empty = append(tally.Empty, id)
		return nil
	}
	return lg
}

// pupilTimeColumn prefers the exact Time header, then any header whose
// normalized form is just "time".
func pupilTimeColumn(lg *trial.Log) int {
	if i := lg.ColumnExact(colTime); i >= 0 {
		return i
	}
	for i, h := range lg.Header {
		if trial.NormalizeToken(h) == "time" {
			return i
		}
	}
	return -1
}

// pupilSamples pulls finite diameter readings whose timestamp falls in the
// window. Tracker dropouts (-1) stay in for the dropout accounting.
func pupilSamples(rows [][]string, timeI, eyeI int, w timeWindow) []float64 {
	var out []float64
	for _, row := range rows {
		t, ok := trial.FloatField(row, timeI)
		if !ok || !w.contains(t) {
			continue
		}
		v, ok := trial.FloatField(row, eyeI)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Suite) pupilHeaders(wb *workbook.Workbook, preSheet, postSheet string, windowLen float64) error {
	short := strconv.FormatFloat(windowLen, 'f', -1, 64) + "s"
	statNames := [4]string{"Mean", "SD", "Max", "Min"}
	blocks := s.study.Columns.Pupil
	for _, sheet := range []struct {
		name  string
		label string
	}{{preSheet, "Pre"}, {postSheet, "Post"}} {
		for _, blk := range []struct {
			cols []int
			eye  string
			span string
		}{
			{blocks.ShortLeft, "Left", short},
			{blocks.ShortRight, "Right", short},
			{blocks.FullLeft, "Left", "Full"},
			{blocks.FullRight, "Right", "Full"},
		} {
			for i, col := range blk.cols {
				header := fmt.Sprintf("%s Pupil %s (%s %s)", blk.eye, statNames[i], blk.span, sheet.label)
				if err := wb.SetHeader(sheet.name, col, header); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Suite) clearPupilRow(wb *workbook.Workbook, preSheet, postSheet string, row int) error {
	blocks := s.study.Columns.Pupil
	nan := [4]float64{math.NaN(), math.NaN(), math.NaN(), math.NaN()}
	for _, sheet := range []string{preSheet, postSheet} {
		for _, cols := range [][]int{blocks.ShortLeft, blocks.ShortRight, blocks.FullLeft, blocks.FullRight} {
			if err := writeQuad(wb, sheet, row, cols, nan); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}
