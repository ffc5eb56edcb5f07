// internal/crisis/crisis.go

// Package crisis finds the crisis moment in a tracker log. Sessions where
// the robot physically shook carry an explicit marker in the robot event
// column; in the no-shake conditions the moment is estimated from the
// scripted announcement, which fires a fixed offset before the event is
// logged.
package crisis

import (
	"errors"
	"math"
	"strings"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
)

var (
	// ErrNoEventColumn means the log has no robot event column at all.
	ErrNoEventColumn = errors.New("robot event column not found")
	// ErrNoMarker means the expected crisis marker never appears.
	ErrNoMarker = errors.New("crisis marker not found")
)

// Estimated reports whether logs from this folder carry the announcement
// marker instead of a real shake event.
func Estimated(folder string) bool {
	return strings.Contains(folder, "noshook")
}

// DetectTime scans for the crisis moment the way the workbook columns
// record it. Shake sessions return the marker row's own timestamp; no-shake
// sessions return the announcement time plus the offset, rounded to
// microseconds. Markers are matched as raw substrings against the event
// cell.
func DetectTime(log *trial.Log, folder string, m models.Markers) (float64, error) {
	evCol := log.ColumnContains("robotevent")
	if evCol < 0 {
		return math.NaN(), ErrNoEventColumn
	}

	estimate := Estimated(folder)
	for _, row := range log.Rows {
		t, ok := trial.FloatField(row, 0)
		if !ok {
			continue
		}
		ev := trial.Field(row, evCol)
		if estimate {
			if strings.Contains(ev, m.Estimate) {
				return roundTo(t+m.EstimateOffset, 6), nil
			}
		} else if strings.Contains(ev, m.Shook) {
			return t, nil
		}
	}
	return math.NaN(), ErrNoMarker
}

// DetectTimeRelaxed is the tolerant variant used by the location analysis:
// header names resolve loosely, event text is whitespace-normalized before
// matching, and the estimated time is left unrounded.
func DetectTimeRelaxed(log *trial.Log, folder string, m models.Markers) (float64, error) {
	evCol := log.ColumnRelaxed("robotevent")
	if evCol < 0 {
		return math.NaN(), ErrNoEventColumn
	}
	timeCol := log.ColumnRelaxed("time")
	if timeCol < 0 {
		timeCol = 0
	}

	estimate := Estimated(folder)
	shook := trial.NormalizeText(m.Shook)
	announce := trial.NormalizeText(m.Estimate)
	for _, row := range log.Rows {
		t, ok := trial.FloatField(row, timeCol)
		if !ok {
			continue
		}
		ev := trial.NormalizeText(trial.Field(row, evCol))
		if estimate {
			if strings.Contains(ev, announce) {
				return t + m.EstimateOffset, nil
			}
		} else if strings.Contains(ev, shook) {
			return t, nil
		}
	}
	return math.NaN(), ErrNoMarker
}

// SplitIndex finds the row where the post-crisis segment begins, for
// analyses that split row-wise. The shake marker row itself is the split;
// otherwise the announcement row anchors a scan forward to the first row at
// or past announcement time plus offset. Returns -1 when the log cannot be
// split.
func SplitIndex(log *trial.Log, timeCol int, m models.Markers) int {
	evCol := log.Column("robotEvent")
	if evCol < 0 {
		evCol = log.Column("Event")
	}
	if evCol < 0 {
		return -1
	}
	if timeCol < 0 {
		timeCol = 0
	}

	shook := strings.ToLower(m.Shook)
	announce := strings.ToLower(m.Estimate)

	for i, row := range log.Rows {
		ev := strings.ToLower(strings.TrimSpace(trial.Field(row, evCol)))
		if strings.Contains(ev, shook) {
			return i
		}
	}
	for i, row := range log.Rows {
		ev := strings.ToLower(strings.TrimSpace(trial.Field(row, evCol)))
		if !strings.Contains(ev, announce) {
			continue
		}
		t0, ok := trial.FloatField(row, timeCol)
		if !ok {
			continue
		}
		target := t0 + m.EstimateOffset
		for j := i; j < len(log.Rows); j++ {
			if t, ok := trial.FloatField(log.Rows[j], timeCol); ok && t >= target {
				return j
			}
		}
		return -1
	}
	return -1
}

// Measure returns the crisis time together with the log's first and last
// timestamps. Rows truncated before the event column do not count, and the
// first timestamp only counts when the very first data row survives; a log
// that opens with a malformed row yields NaN intervals rather than silently
// shifting its origin.
func Measure(log *trial.Log, folder string, m models.Markers) (crisisTime, first, last float64, err error) {
	crisisTime, err = DetectTime(log, folder, m)
	if err != nil {
		return math.NaN(), math.NaN(), math.NaN(), err
	}

	evCol := log.ColumnContains("robotevent")
	first, last = math.NaN(), math.NaN()
	for i, row := range log.Rows {
		if len(row) <= evCol {
			continue
		}
		t, ok := trial.FloatField(row, 0)
		if !ok {
			continue
		}
		if i == 0 {
			first = t
		}
		last = t
	}
	return crisisTime, first, last, nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
