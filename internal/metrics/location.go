// internal/metrics/location.go
package metrics

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/crisis"
	"github.com/yyspencer/Fire2Scripts/internal/stats"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

// LocationDelta is one participant's crisis-to-departure gap: crisis time
// minus the moment the robot moved again after its longest stop inside the
// survey-room sphere.
type LocationDelta struct {
	ID    string
	Delta float64
}

// LocationSkip names a participant the location analysis could not score.
type LocationSkip struct {
	ID     string
	Reason string
}

// LocationOutcome aggregates one condition group.
type LocationOutcome struct {
	Group    string
	Included []LocationDelta
	Outliers []LocationDelta
	Skipped  []LocationSkip
	Mean     float64
	Variance float64
}

// LocationDeltas times the robot's longest stationary stop inside the
// survey-room sphere against the crisis, per condition group. This
// analysis only reads the workbook, results go to the log and the caller.
func (s *Suite) LocationDeltas(wb *workbook.Workbook, eps, outlierLimit float64) ([]LocationOutcome, error) {
	if len(s.study.Location.Anchor) != 3 || len(s.study.Location.AnchorVar) != 3 {
		return nil, errors.New("study schema has no location anchor calibration")
	}
	var center [3]float64
	copy(center[:], s.study.Location.Anchor)
	radius := 2 * math.Sqrt(s.study.Location.AnchorVar[0]+s.study.Location.AnchorVar[1]+s.study.Location.AnchorVar[2])

	_, parts, err := s.participants(wb)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*LocationOutcome, len(s.study.Folders.Location))
	order := make([]string, 0, len(s.study.Folders.Location))
	for _, folder := range s.study.Folders.Location {
		groups[folder] = &LocationOutcome{Group: folder, Mean: math.NaN(), Variance: math.NaN()}
		order = append(order, folder)
	}

	for _, p := range parts {
		id := locationID(p.rawID)
		path, folder, err := trial.LocatePrefix(s.root, s.study.Folders.Location, id)
		if err != nil {
			continue
		}
		group := groups[folder]

		lg, err := trial.ReadLog(path)
		if err != nil {
			group.Skipped = append(group.Skipped, LocationSkip{id, "unreadable log"})
			continue
		}
		delta, reason := s.locationDelta(lg, folder, center, radius, eps)
		if reason != "" {
			group.Skipped = append(group.Skipped, LocationSkip{id, reason})
			continue
		}
		if math.Abs(delta) > outlierLimit {
			group.Outliers = append(group.Outliers, LocationDelta{id, delta})
			continue
		}
		group.Included = append(group.Included, LocationDelta{id, delta})
	}

	out := make([]LocationOutcome, 0, len(order))
	for _, folder := range order {
		g := groups[folder]
		deltas := make([]float64, len(g.Included))
		for i, d := range g.Included {
			deltas[i] = d.Delta
		}
		if len(deltas) > 0 {
			sum := stats.Describe(deltas)
			if len(deltas) == 1 {
				g.Mean = deltas[0]
			} else {
				g.Mean = sum.Mean
				g.Variance = sum.SD * sum.SD
			}
		}
		s.log.Info("Location group summarized",
			zap.String("group", g.Group),
			zap.Int("included", len(g.Included)),
			zap.Int("outliers", len(g.Outliers)),
			zap.Int("skipped", len(g.Skipped)),
			zap.Float64("mean", g.Mean),
			zap.Float64("variance", g.Variance))
		out = append(out, *g)
	}
	return out, nil
}

// locationDelta scores one log. A non-empty reason means the log does not
// support the analysis.
func (s *Suite) locationDelta(lg *trial.Log, folder string, center [3]float64, radius, eps float64) (float64, string) {
	crisisT, err := crisis.DetectTimeRelaxed(lg, folder, s.study.Markers)
	if err != nil {
		return math.NaN(), "no crisis marker"
	}

	timeI := lg.ColumnRelaxed("time")
	if timeI < 0 {
		timeI = 0
	}
	var axes [3]int
	for i, name := range robotAxes {
		if axes[i] = lg.ColumnRelaxed(name); axes[i] < 0 {
			return math.NaN(), "no robot position columns"
		}
	}
	roomI := lg.ColumnRelaxed("roomevent")

	enterIdx, exitIdx, reason := s.surveyWindow(lg, roomI)
	if reason != "" {
		return math.NaN(), reason
	}

	// Robot positions are logged mirrored on some rigs, the magnitudes are
	// what the calibration sphere was fitted to.
	rowPos := func(i int) ([3]float64, float64, bool) {
		var pos [3]float64
		row := lg.Rows[i]
		for a := 0; a < 3; a++ {
			v, ok := trial.FloatField(row, axes[a])
			if !ok || v == -1 {
				return pos, 0, false
			}
			pos[a] = math.Abs(v)
		}
		t, _ := trial.FloatField(row, timeI)
		return pos, t, true
	}

	type session struct {
		startT, endT float64
		endIdx       int
		endPos       [3]float64
	}
	var sessions []session
	active := false
	var anchor, lastPos [3]float64
	var startT, lastT float64
	lastIdx := -1

	closeSession := func() {
		sessions = append(sessions, session{startT: startT, endT: lastT, endIdx: lastIdx, endPos: lastPos})
		active = false
	}
	for i := enterIdx; i <= exitIdx && i < len(lg.Rows); i++ {
		pos, t, ok := rowPos(i)
		if !ok {
			continue
		}
		inside := dist3(pos, center) <= radius
		if !active {
			if inside {
				active = true
				anchor, startT = pos, t
				lastPos, lastT, lastIdx = pos, t, i
			}
			continue
		}
		if !inside {
			closeSession()
			continue
		}
		if dist3(pos, anchor) > eps {
			closeSession()
			active = true
			anchor, startT = pos, t
			lastPos, lastT, lastIdx = pos, t, i
			continue
		}
		lastPos, lastT, lastIdx = pos, t, i
	}
	if active {
		closeSession()
	}

	best := -1
	bestDur := math.NaN()
	for i, ses := range sessions {
		dur := ses.endT - ses.startT
		if math.IsNaN(dur) {
			continue
		}
		if best < 0 || dur > bestDur {
			best, bestDur = i, dur
		}
	}
	if best < 0 {
		return math.NaN(), "no stationary stop inside sphere"
	}

	stop := sessions[best]
	moveT := math.NaN()
	for j := stop.endIdx + 1; j <= exitIdx && j < len(lg.Rows); j++ {
		pos, t, ok := rowPos(j)
		if !ok || !isFinite(t) {
			continue
		}
		if dist3(pos, stop.endPos) > eps {
			moveT = t
			break
		}
	}
	if math.IsNaN(moveT) {
		return math.NaN(), "robot never moved again before exit"
	}
	return crisisT - moveT, ""
}

// surveyWindow locates the single robot enter/exit tag pair. Logs with
// zero or multiple pairs are ambiguous and skipped.
func (s *Suite) surveyWindow(lg *trial.Log, roomI int) (enterIdx, exitIdx int, reason string) {
	enterTag := trial.NormalizeText(s.study.Markers.RobotEnter)
	exitTag := trial.NormalizeText(s.study.Markers.RobotExit)

	rowHas := func(row []string, tag string) bool {
		if roomI >= 0 {
			return strings.Contains(trial.NormalizeText(trial.Field(row, roomI)), tag)
		}
		for _, cell := range row {
			if strings.Contains(trial.NormalizeText(cell), tag) {
				return true
			}
		}
		return false
	}

	enterIdx, exitIdx = -1, -1
	enterCnt, exitCnt := 0, 0
	for i, row := range lg.Rows {
		if rowHas(row, enterTag) {
			if enterCnt == 0 {
				enterIdx = i
			}
			enterCnt++
		}
		if rowHas(row, exitTag) {
			if exitCnt == 0 {
				exitIdx = i
			}
			exitCnt++
		}
	}
	switch {
	case enterCnt != 1 || exitCnt != 1:
		return -1, -1, "survey room tags not unique"
	case exitIdx < enterIdx:
		return -1, -1, "exit tag precedes enter tag"
	}
	return enterIdx, exitIdx, ""
}

// locationID pads digit-only indices and keeps the first five characters
// either way.
func locationID(raw string) string {
	sRaw := strings.TrimSpace(raw)
	if _, err := strconv.Atoi(sRaw); err == nil {
		return trial.PrefixID(trial.PaddedID(sRaw))
	}
	return trial.PrefixID(sRaw)
}
