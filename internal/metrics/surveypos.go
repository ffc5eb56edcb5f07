// internal/metrics/surveypos.go
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/trial"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// SurveyPositions collects where the robot stood when it entered the
// survey room, one sample per log in the survey directory. The per-axis
// spread across sessions is what calibrates the location anchor sphere.
type SurveyPositions struct {
	ByParticipant map[string][3]float64
	Mean          [3]float64
	Variance      [3]float64
	Count         int
}

// SurveyPositions scans every tracker log in dir for the robot's entry
// position. Population variance is reported, the calibration treats the
// scanned sessions as the whole population.
func (s *Suite) SurveyPositions(dir string) (*SurveyPositions, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read survey directory %s: %w", dir, err)
	}

	enterTag := strings.ToLower(s.study.Markers.RobotEnter)
	out := &SurveyPositions{ByParticipant: make(map[string][3]float64)}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		lg, err := trial.ReadLog(filepath.Join(dir, e.Name()))
		if err != nil {
			s.log.Warn("Skipping unreadable survey log", zap.String("file", e.Name()), zap.Error(err))
			continue
		}

		roomI := lg.Column(colRoomEvent)
		var axes [3]int
		ok := roomI >= 0
		for i, name := range robotAxes {
			if axes[i] = lg.Column(name); axes[i] < 0 {
				ok = false
			}
		}
		if !ok {
			s.log.Warn("Survey log missing columns", zap.String("file", e.Name()))
			continue
		}

		for _, row := range lg.Rows {
			if strings.ToLower(strings.TrimSpace(trial.Field(row, roomI))) != enterTag {
				continue
			}
			var pos [3]float64
			parsed := true
			for a := 0; a < 3; a++ {
				v, okA := trial.FloatField(row, axes[a])
				if !okA {
					parsed = false
					break
				}
				pos[a] = v
			}
			if parsed {
				out.ByParticipant[trial.PrefixID(e.Name())] = pos
			} else {
				s.log.Warn("Entry row did not parse", zap.String("file", e.Name()))
			}
			break
		}
	}

	out.Count = len(out.ByParticipant)
	if out.Count == 0 {
		s.log.Warn("No valid survey room entries found", zap.String("dir", dir))
		return out, nil
	}

	ids := make([]string, 0, out.Count)
	for id := range out.ByParticipant {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var series [3][]float64
	for _, id := range ids {
		pos := out.ByParticipant[id]
		for a := 0; a < 3; a++ {
			series[a] = append(series[a], pos[a])
		}
	}
	for a := 0; a < 3; a++ {
		out.Mean[a] = stat.Mean(series[a], nil)
		out.Variance[a] = stat.PopVariance(series[a], nil)
	}
	s.log.Info("Survey entry positions summarized",
		zap.Int("sessions", out.Count),
		zap.Float64s("mean", out.Mean[:]),
		zap.Float64s("variance", out.Variance[:]))
	return out, nil
}
