// internal/trial/parse.go
package trial

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Log is one parsed tracker CSV. Rows are kept ragged, exactly as recorded.
// The capture rig pads event rows with fewer cells than data rows, so every
// column access has to tolerate short rows.
type Log struct {
	Header []string
	Rows   [][]string
}

// ReadLog parses a tracker CSV without enforcing a fixed field count.
func ReadLog(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trial log %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse trial log %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("trial log %s is empty", path)
	}
	return &Log{Header: records[0], Rows: records[1:]}, nil
}

// ColumnExact finds a header by trimmed, case-sensitive equality.
func (l *Log) ColumnExact(name string) int {
	for i, h := range l.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Column finds a header by trimmed, case-insensitive equality.
func (l *Log) Column(name string) int {
	for i, h := range l.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// ColumnContains finds the first header containing the substring, compared
// lowercased. Used for event columns whose exact name drifted between
// capture builds ("robotEvent", "Robot Event", ...).
func (l *Log) ColumnContains(substr string) int {
	needle := strings.ToLower(substr)
	for i, h := range l.Header {
		if strings.Contains(strings.ToLower(strings.TrimSpace(h)), needle) {
			return i
		}
	}
	return -1
}

// ColumnRelaxed matches after stripping spaces, underscores, dots and
// hyphens, so "Left_Pupil Size" and "leftpupil.size" both resolve.
func (l *Log) ColumnRelaxed(key string) int {
	needle := NormalizeToken(key)
	for i, h := range l.Header {
		if strings.Contains(NormalizeToken(h), needle) {
			return i
		}
	}
	return -1
}

// NormalizeToken lowercases and drops separator runs.
func NormalizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case ' ', '\t', '_', '.', '-':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeText lowercases, maps non-breaking spaces to plain ones and
// collapses whitespace runs. Event tags are compared in this form.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Field returns the cell at idx or "" when the row is too short.
func Field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// FloatField parses the cell at idx. ok is false for missing or
// unparseable cells. NaN and Inf parse, callers filter finiteness where
// it matters.
func FloatField(row []string, idx int) (float64, bool) {
	s := strings.TrimSpace(Field(row, idx))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
