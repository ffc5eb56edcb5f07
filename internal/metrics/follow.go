// internal/metrics/follow.go
package metrics

import (
	"math"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

type followRow struct {
	t      float64
	player [3]float64
	robot  [3]float64
	room   string
	raw    []string
}

// Follow measures how far and for how long the player trailed the robot. A
// sample counts as following when the player stood within the proximity
// threshold of the robot's current position at some point inside the
// trailing window; distance and time then accumulate between consecutive
// following samples. Survey room visits interrupt a follow.
func (s *Suite) Follow(wb *workbook.Workbook, proximity, window float64) (*Tally, error) {
	sheets, parts, err := s.tripleSheets(wb)
	if err != nil {
		return nil, err
	}
	distCols := s.study.Columns.Follow.Distance
	timeCols := s.study.Columns.Follow.Duration
	if err := s.tripleHeaders(wb, sheets, distCols, "Followed Distance (m)"); err != nil {
		return nil, err
	}
	if err := s.tripleHeaders(wb, sheets, timeCols, "Followed Time (s)"); err != nil {
		return nil, err
	}

	enter := strings.ToLower(s.study.Markers.SurveyEnter)
	exit := strings.ToLower(s.study.Markers.SurveyExit)

	tally := &Tally{}
	for _, p := range parts {
		id := trial.PrefixID(p.rawID)
		dist := [3]models.MetricResult{models.NoMetric(), models.NoMetric(), models.NoMetric()}
		dur := [3]models.MetricResult{models.NoMetric(), models.NoMetric(), models.NoMetric()}

		path, _, err := trial.LocatePrefix(s.root, s.study.Folders.Follow, id)
		if err == nil {
			var lg *trial.Log
			if lg, err = trial.ReadLog(path); err == nil {
				var rows []followRow
				var crisisT float64
				rows, crisisT, err = s.followRows(lg)
				if err == nil {
					if math.IsNaN(crisisT) {
						// No crisis marker, the whole session is one segment.
						d, t := followStats(rows, math.Inf(1), false, proximity, window, enter, exit)
						dist[0], dur[0] = models.Metric(d, len(rows)), models.Metric(t, len(rows))
					} else {
						dPre, tPre := followStats(rows, crisisT, false, proximity, window, enter, exit)
						dPost, tPost := followStats(rows, crisisT, true, proximity, window, enter, exit)
						dist[0], dur[0] = models.Metric(dPre+dPost, len(rows)), models.Metric(tPre+tPost, len(rows))
						dist[1], dur[1] = models.Metric(dPre, len(rows)), models.Metric(tPre, len(rows))
						dist[2], dur[2] = models.Metric(dPost, len(rows)), models.Metric(tPost, len(rows))
					}
					tally.Processed++
					s.log.Debug("Follow measured", zap.String("participant", id),
						zap.Float64("crisis", crisisT), zap.Int("samples", len(rows)))
				}
			}
		}
		if err != nil {
			tally.account(id, err)
		}

		if err := writeTriple(wb, sheets, distCols, p.sheetRow, dist[0], dist[1], dist[2], false); err != nil {
			return tally, err
		}
		if err := writeTriple(wb, sheets, timeCols, p.sheetRow, dur[0], dur[1], dur[2], false); err != nil {
			return tally, err
		}
	}
	tally.LogSummary(s.log, "follow")
	return tally, nil
}

// followRows packs the rows where time and both positions parse, and
// detects the crisis time over the raw rows. NaN crisis means no marker.
func (s *Suite) followRows(lg *trial.Log) ([]followRow, float64, error) {
	timeI := lg.Column(colTime)
	roomI := lg.Column(colRoomEvent)
	var pAxes, rAxes [3]int
	for i := 0; i < 3; i++ {
		pAxes[i] = lg.Column(playerAxes[i])
		rAxes[i] = lg.Column(robotAxes[i])
	}
	if timeI < 0 || roomI < 0 || pAxes[0] < 0 || pAxes[1] < 0 || pAxes[2] < 0 ||
		rAxes[0] < 0 || rAxes[1] < 0 || rAxes[2] < 0 {
		return nil, math.NaN(), ErrMissingColumn
	}

	maxI := timeI
	for _, c := range []int{roomI, pAxes[0], pAxes[1], pAxes[2], rAxes[0], rAxes[1], rAxes[2]} {
		if c > maxI {
			maxI = c
		}
	}

	var rows []followRow
	for _, raw := range lg.Rows {
		if len(raw) <= maxI {
			continue
		}
		fr := followRow{
			room: strings.ToLower(strings.TrimSpace(trial.Field(raw, roomI))),
			raw:  raw,
		}
		t, ok := trial.FloatField(raw, timeI)
		if !ok {
			continue
		}
		fr.t = t
		for a := 0; a < 3 && ok; a++ {
			var pv, rv float64
			if pv, ok = trial.FloatField(raw, pAxes[a]); !ok {
				break
			}
			if rv, ok = trial.FloatField(raw, rAxes[a]); !ok {
				break
			}
			fr.player[a], fr.robot[a] = pv, rv
		}
		if ok {
			rows = append(rows, fr)
		}
	}

	// Marker scans run over the packed rows only, so a marker on an
	// unparsable row never yields a crisis time.
	crisisT := math.NaN()
	shook := strings.ToLower(s.study.Markers.Shook)
	if evI := lg.Column(colRobotEvent); evI >= 0 {
		for _, fr := range rows {
			if strings.Contains(strings.ToLower(strings.TrimSpace(trial.Field(fr.raw, evI))), shook) {
				crisisT = fr.t
				break
			}
		}
	}
	if math.IsNaN(crisisT) {
		hint := strings.ToLower(s.study.Markers.EstimateHint)
		if hint == "" {
			hint = strings.ToLower(s.study.Markers.Estimate)
		}
	scan:
		for _, fr := range rows {
			for _, cell := range fr.raw {
				if strings.Contains(strings.ToLower(cell), hint) {
					crisisT = fr.t + s.study.Markers.EstimateOffset
					break scan
				}
			}
		}
	}
	return rows, crisisT, nil
}

// followStats accumulates followed distance and time on one side of the
// crisis. The backward scan finds the most recent sample (within the
// window) where the player stood near the robot's current position.
func followStats(rows []followRow, crisisT float64, post bool, proximity, window float64, enter, exit string) (dist, dur float64) {
	onSide := func(t float64) bool {
		if post {
			return t >= crisisT
		}
		return t < crisisT
	}

	inSurvey := false
	var prevPos [3]float64
	var prevTime float64
	prevSet := false

	for i := range rows {
		r := rows[i]
		if !isFinite(r.t) || !onSide(r.t) {
			continue
		}
		switch r.room {
		case enter:
			inSurvey = true
			prevSet = false
			continue
		case exit:
			inSurvey = false
			prevSet = false
			continue
		}
		if inSurvey {
			continue
		}

		matched := false
		var pj [3]float64
		for j := len(rows) - 1; j >= 0; j-- {
			rj := rows[j]
			if !isFinite(rj.t) || !onSide(rj.t) {
				continue
			}
			if r.t-rj.t > window {
				break
			}
			if dist3(rj.player, r.robot) <= proximity {
				matched = true
				pj = rj.player
				break
			}
		}
		if matched {
			if prevSet {
				dist += dist3(prevPos, pj)
				dur += r.t - prevTime
			}
			prevPos, prevTime, prevSet = pj, r.t, true
		}
	}
	return dist, dur
}
