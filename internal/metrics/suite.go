// internal/metrics/suite.go

// Package metrics computes the study's behavioral measures from tracker
// logs and writes them into the result workbook. Every analysis walks the
// participant column of the overall sheet, finds that participant's log
// under the session folders, and fills its own columns on one or more
// sheets. A participant that cannot be analyzed gets cleared cells, never a
// fabricated value.
package metrics

import (
	"errors"
	"io/fs"
	"math"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/crisis"
	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"

	"go.uber.org/zap"
)

// Tracker CSV column names as the capture rig writes them.
const (
	colTime       = "Time"
	colLookingAt  = "LookingAt"
	colRoomEvent  = "roomEvent"
	colRobotEvent = "robotEvent"
	colEvent      = "Event"
)

var (
	playerAxes = [3]string{"PlayerVR.x", "PlayerVR.y", "PlayerVR.z"}
	robotAxes  = [3]string{"Robot.x", "Robot.y", "Robot.z"}
	gazeAxes   = [3]string{"Gaze Visualizer.x", "Gaze Visualizer.y", "Gaze Visualizer.z"}
)

// ErrMissingColumn means a tracker log lacks a column the analysis needs.
var ErrMissingColumn = errors.New("required column not found")

// Suite bundles what every analyzer needs.
type Suite struct {
	log   *zap.Logger
	study *models.Study
	root  string
}

func NewSuite(log *zap.Logger, study *models.Study, root string) *Suite {
	return &Suite{log: log, study: study, root: root}
}

// Tally accounts for how each participant fared. The buckets mirror the
// failure modes seen in practice: no log found, log missing a column, log
// present but without the crisis marker, or unreadable outright.
type Tally struct {
	Processed int
	NoLog     []string
	NoColumn  []string
	NoMarker  []string
	Short     []string
	Corrupt   []string
}

func (t *Tally) account(id string, err error) {
	switch {
	case errors.Is(err, trial.ErrNoTrialLog), errors.Is(err, fs.ErrNotExist):
		t.NoLog = append(t.NoLog, id)
	case errors.Is(err, ErrMissingColumn), errors.Is(err, crisis.ErrNoEventColumn):
		t.NoColumn = append(t.NoColumn, id)
	case errors.Is(err, crisis.ErrNoMarker):
		t.NoMarker = append(t.NoMarker, id)
	default:
		t.Corrupt = append(t.Corrupt, id)
	}
}

// LogSummary reports the tally at the end of a run.
func (t *Tally) LogSummary(log *zap.Logger, analysis string) {
	log.Info("Analysis finished",
		zap.String("analysis", analysis),
		zap.Int("processed", t.Processed),
		zap.Int("noLog", len(t.NoLog)),
		zap.Int("noColumn", len(t.NoColumn)),
		zap.Int("noMarker", len(t.NoMarker)),
		zap.Int("short", len(t.Short)),
		zap.Int("corrupt", len(t.Corrupt)))
	for bucket, ids := range map[string][]string{
		"noLog":    t.NoLog,
		"noColumn": t.NoColumn,
		"noMarker": t.NoMarker,
		"short":    t.Short,
		"corrupt":  t.Corrupt,
	} {
		if len(ids) > 0 {
			log.Warn("Participants not analyzed",
				zap.String("analysis", analysis),
				zap.String("reason", bucket),
				zap.Strings("participants", ids))
		}
	}
}

// participant is one data row of the overall sheet.
type participant struct {
	sheetRow int // one-based row in every sheet
	rawID    string
}

// participants lists the data rows of the overall sheet, skipping rows with
// an empty ID cell.
func (s *Suite) participants(wb *workbook.Workbook) (string, []participant, error) {
	sheet, err := wb.Sheet(s.study.Sheets.Overall)
	if err != nil {
		return "", nil, err
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return "", nil, err
	}

	idCol := s.study.Columns.ParticipantID - 1
	var out []participant
	for i := 1; i < len(rows); i++ {
		raw := strings.TrimSpace(trial.Field(rows[i], idCol))
		if raw == "" {
			continue
		}
		out = append(out, participant{sheetRow: i + 1, rawID: raw})
	}
	return sheet, out, nil
}

// resultSheets resolves the three sheet names in overall, pre, post order.
func (s *Suite) resultSheets(wb *workbook.Workbook) (string, string, string, error) {
	overall, err := wb.Sheet(s.study.Sheets.Overall)
	if err != nil {
		return "", "", "", err
	}
	pre, err := wb.Sheet(s.study.Sheets.Pre)
	if err != nil {
		return "", "", "", err
	}
	post, err := wb.Sheet(s.study.Sheets.Post)
	if err != nil {
		return "", "", "", err
	}
	return overall, pre, post, nil
}

// splitAt finds the crisis row for row-wise segment splits.
func (s *Suite) splitAt(lg *trial.Log) (int, bool) {
	split := crisis.SplitIndex(lg, lg.Column(colTime), s.study.Markers)
	return split, split >= 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func dist3(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// writeMetric writes one result cell, clearing it when uncalculated.
func writeMetric(wb *workbook.Workbook, sheet string, row, col int, m models.MetricResult, asInt bool) error {
	if !m.Calculated {
		return wb.SetFloat(sheet, row, col, m.Float())
	}
	if asInt {
		return wb.SetInt(sheet, row, col, int(m.Value))
	}
	return wb.SetFloat(sheet, row, col, m.Value)
}

// writeTriple places overall/pre/post results for one metric.
func writeTriple(wb *workbook.Workbook, sheets [3]string, cols models.Triple, row int, overall, pre, post models.MetricResult, asInt bool) error {
	if err := writeMetric(wb, sheets[0], row, cols.Overall, overall, asInt); err != nil {
		return err
	}
	if err := writeMetric(wb, sheets[1], row, cols.Pre, pre, asInt); err != nil {
		return err
	}
	return writeMetric(wb, sheets[2], row, cols.Post, post, asInt)
}
