// internal/metrics/crosscorr.go
package metrics

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/crisis"
	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

// LagResult carries the cohort-level outcome of one cross-correlation run,
// for reporting.
type LagResult struct {
	Lags      []int
	AbsSums   []float64
	GlobalLag int
	Cohort    int
}

// CrossCorrelate scans player-robot speed cross-correlation over a
// symmetric lag window sized from the cohort's shortest series. Each
// participant gets their best lag, the correlation there, and the
// correlation at the single lag that best explains the cohort as a whole.
func (s *Suite) CrossCorrelate(wb *workbook.Workbook, speedDir string, segment trial.Segment) (*Tally, *LagResult, error) {
	sheet, parts, err := s.participants(wb)
	if err != nil {
		return nil, nil, err
	}
	cols, prefix := s.ccColumns(segment)
	for i, title := range []string{"Best Lag (t)", "CC(t)", "CC(global)"} {
		if err := wb.SetHeader(sheet, cols[i], prefix+title); err != nil {
			return nil, nil, err
		}
	}

	type series struct {
		sheetRow      int
		player, robot []float64
	}

	tally := &Tally{}
	var included []series
	var lengths []int
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		player, robot, err := trial.ReadSpeedPairs(filepath.Join(speedDir, id+".txt"), segment)
		if err != nil {
			tally.account(id, err)
		} else if len(player) < 2 {
			tally.Short = append(tally.Short, id)
		} else {
			included = append(included, series{sheetRow: p.sheetRow, player: player, robot: robot})
			lengths = append(lengths, len(player))
			continue
		}
		for _, col := range cols {
			if err := wb.SetFloat(sheet, p.sheetRow, col, math.NaN()); err != nil {
				return tally, nil, err
			}
		}
	}

	lags := stats.LagRange(lengths)
	sums := make([]float64, len(lags))
	bestByRow := make(map[int][2]float64, len(included))
	for _, ser := range included {
		bestLag, bestCC := 0, -2.0
		for li, lag := range lags {
			cc := stats.CCAtLag(ser.player, ser.robot, lag)
			sums[li] += math.Abs(cc)
			if cc > bestCC {
				bestLag, bestCC = lag, cc
			}
		}
		bestByRow[ser.sheetRow] = [2]float64{float64(bestLag), bestCC}
	}
	globalLag := stats.GlobalBestLag(lags, sums)

	for _, ser := range included {
		best := bestByRow[ser.sheetRow]
		if err := wb.SetInt(sheet, ser.sheetRow, cols[0], int(best[0])); err != nil {
			return tally, nil, err
		}
		if err := wb.SetFloat(sheet, ser.sheetRow, cols[1], best[1]); err != nil {
			return tally, nil, err
		}
		ccGlobal := stats.CCAtLag(ser.player, ser.robot, globalLag)
		if err := wb.SetFloat(sheet, ser.sheetRow, cols[2], ccGlobal); err != nil {
			return tally, nil, err
		}
		tally.Processed++
	}

	result := &LagResult{Lags: lags, AbsSums: sums, GlobalLag: globalLag, Cohort: len(included)}
	s.log.Info("Cross-correlation finished",
		zap.String("segment", segmentName(segment)),
		zap.Int("cohort", result.Cohort),
		zap.Int("globalLag", globalLag))
	tally.LogSummary(s.log, "correlate-"+segmentName(segment))
	return tally, result, nil
}

func (s *Suite) ccColumns(segment trial.Segment) ([]int, string) {
	switch segment {
	case trial.SegmentPre:
		return s.study.Columns.CCPre, "Pre "
	case trial.SegmentPost:
		return s.study.Columns.CCPost, "Post "
	default:
		return s.study.Columns.CCAll, ""
	}
}

func segmentName(segment trial.Segment) string {
	switch segment {
	case trial.SegmentPre:
		return "pre"
	case trial.SegmentPost:
		return "post"
	default:
		return "all"
	}
}

// LagScan recomputes the cohort lag curve straight from the speed
// directory, for reporting without touching the workbook.
func (s *Suite) LagScan(speedDir string, segment trial.Segment) (*LagResult, error) {
	entries, err := os.ReadDir(speedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read speed directory %s: %w", speedDir, err)
	}

	type pair struct{ player, robot []float64 }
	var series []pair
	var lengths []int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		player, robot, err := trial.ReadSpeedPairs(filepath.Join(speedDir, e.Name()), segment)
		if err != nil || len(player) < 2 {
			continue
		}
		series = append(series, pair{player, robot})
		lengths = append(lengths, len(player))
	}

	lags := stats.LagRange(lengths)
	sums := make([]float64, len(lags))
	for _, ser := range series {
		for li, lag := range lags {
			sums[li] += math.Abs(stats.CCAtLag(ser.player, ser.robot, lag))
		}
	}
	return &LagResult{
		Lags:      lags,
		AbsSums:   sums,
		GlobalLag: stats.GlobalBestLag(lags, sums),
		Cohort:    len(series),
	}, nil
}

// ExportSpeeds derives the speed files the correlation commands read. One
// file per participant, player and robot speed per sample pair, with the
// crisis split marked by a blank line and -1 for gaps where a speed could
// not be formed.
func (s *Suite) ExportSpeeds(wb *workbook.Workbook, speedDir string) (*Tally, error) {
	_, parts, err := s.participants(wb)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(speedDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create speed directory %s: %w", speedDir, err)
	}

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PaddedID(p.rawID)
		lg, err := s.readStandard(id)
		if err != nil {
			tally.account(id, err)
			continue
		}
		pre, post, err := s.speedPairs(lg)
		if err != nil {
			tally.account(id, err)
			continue
		}
		if err := trial.WriteSpeedFile(filepath.Join(speedDir, id+".txt"), pre, post); err != nil {
			return tally, err
		}
		tally.Processed++
	}
	tally.LogSummary(s.log, "speed-export")
	return tally, nil
}

func (s *Suite) speedPairs(lg *trial.Log) (pre, post [][2]float64, err error) {
	timeI := lg.Column(colTime)
	var pAxes, rAxes [3]int
	for i := 0; i < 3; i++ {
		pAxes[i] = lg.Column(playerAxes[i])
		rAxes[i] = lg.Column(robotAxes[i])
	}
	if timeI < 0 || pAxes[0] < 0 || pAxes[1] < 0 || pAxes[2] < 0 ||
		rAxes[0] < 0 || rAxes[1] < 0 || rAxes[2] < 0 {
		return nil, nil, ErrMissingColumn
	}

	n := len(lg.Rows)
	times := make([]float64, n)
	ppos := make([][3]float64, n)
	rpos := make([][3]float64, n)
	valid := make([]bool, n)
	for i, row := range lg.Rows {
		t, ok := trial.FloatField(row, timeI)
		times[i] = t
		ok = ok && isFinite(t)
		for a := 0; a < 3 && ok; a++ {
			var pv, rv float64
			if pv, ok = trial.FloatField(row, pAxes[a]); !ok || !isFinite(pv) {
				ok = false
				break
			}
			if rv, ok = trial.FloatField(row, rAxes[a]); !ok || !isFinite(rv) {
				ok = false
				break
			}
			ppos[i][a], rpos[i][a] = pv, rv
		}
		valid[i] = ok
	}

	// One pair per adjacent row so both segments stay sample-aligned with
	// the log. Unformable speeds keep their slot as -1.
	pairs := make([][2]float64, 0, max(n-1, 0))
	for i := 1; i < n; i++ {
		dt := times[i] - times[i-1]
		if valid[i] && valid[i-1] && dt > 0 {
			pairs = append(pairs, [2]float64{
				dist3(ppos[i], ppos[i-1]) / dt,
				dist3(rpos[i], rpos[i-1]) / dt,
			})
		} else {
			pairs = append(pairs, [2]float64{-1, -1})
		}
	}

	split := crisis.SplitIndex(lg, timeI, s.study.Markers)
	if split < 0 {
		return pairs, nil, nil
	}
	return pairs[:split], pairs[split:], nil
}
