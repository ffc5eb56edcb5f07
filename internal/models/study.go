// internal/models/study.go
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Study describes the workbook layout and tracker log conventions for one
// study. Everything the analyzers need to know about where data lives inside
// the spreadsheet comes from here, so a layout change is a config edit.
type Study struct {
	Sheets   SheetLayout  `yaml:"sheets"`
	Folders  FolderSets   `yaml:"folders"`
	Markers  Markers      `yaml:"markers"`
	Columns  ColumnLayout `yaml:"columns"`
	Location Location     `yaml:"location"`
}

// SheetLayout gives the zero-based positions of the three result sheets.
type SheetLayout struct {
	Overall int `yaml:"overall"`
	Pre     int `yaml:"pre"`
	Post    int `yaml:"post"`
}

// FolderSets lists the session folders searched per analysis family, in
// search order. First folder containing a matching log wins.
type FolderSets struct {
	Standard []string `yaml:"standard"`
	Modified []string `yaml:"modified"`
	Follow   []string `yaml:"follow"`
	Pupil    []string `yaml:"pupil"`
	Location []string `yaml:"location"`
}

// Markers holds the event strings scanned for in tracker logs.
// EstimateHint is the looser needle the follow analysis falls back to when
// no shook marker exists: any cell containing it marks the crisis row.
type Markers struct {
	Shook          string  `yaml:"shook"`
	Estimate       string  `yaml:"estimate"`
	EstimateHint   string  `yaml:"estimate_hint"`
	EstimateOffset float64 `yaml:"estimate_offset"`
	SurveyEnter    string  `yaml:"survey_enter"`
	SurveyExit     string  `yaml:"survey_exit"`
	RobotEnter     string  `yaml:"robot_enter"`
	RobotExit      string  `yaml:"robot_exit"`
	LookTarget     string  `yaml:"look_target"`
	SignagePrefix  string  `yaml:"signage_prefix"`
}

// Location calibrates the survey-room stop detection: the robot's parking
// spot and its observed positional variance across calibration runs.
type Location struct {
	Anchor    []float64 `yaml:"anchor"`
	AnchorVar []float64 `yaml:"anchor_var"`
}

// Triple maps one metric onto its column in each of the three sheets.
// Columns are one-based as shown in a spreadsheet UI; zero disables a sheet.
type Triple struct {
	Overall int `yaml:"overall"`
	Pre     int `yaml:"pre"`
	Post    int `yaml:"post"`
}

// Quad maps a four-column summary block (mean, SD and the two extremes)
// onto each sheet.
type Quad struct {
	Overall []int `yaml:"overall"`
	Pre     []int `yaml:"pre"`
	Post    []int `yaml:"post"`
}

// PupilBlocks gives the four-column stat blocks for each pupil window. The
// same columns are used on the pre and post sheets.
type PupilBlocks struct {
	ShortLeft  []int `yaml:"short_left"`
	ShortRight []int `yaml:"short_right"`
	FullLeft   []int `yaml:"full_left"`
	FullRight  []int `yaml:"full_right"`
}

// FollowColumns places the followed-distance and followed-time results.
type FollowColumns struct {
	Distance Triple `yaml:"distance"`
	Duration Triple `yaml:"duration"`
}

type ColumnLayout struct {
	ParticipantID int `yaml:"participant_id"`
	Condition     int `yaml:"condition"`
	CrisisTime    int `yaml:"crisis_time"`
	PreInterval   int `yaml:"pre_interval"`
	PostInterval  int `yaml:"post_interval"`

	Looking  Triple `yaml:"looking"`
	Looks    Triple `yaml:"looks"`
	Signage  Triple `yaml:"signage"`
	Velocity Quad   `yaml:"velocity"`
	Gaze     Triple `yaml:"gaze"`
	Distance Quad   `yaml:"distance"`

	CCAll  []int `yaml:"cc_all"`
	CCPre  []int `yaml:"cc_pre"`
	CCPost []int `yaml:"cc_post"`

	Follow FollowColumns `yaml:"follow"`
	Pupil  PupilBlocks   `yaml:"pupil"`
}

// LoadStudy reads and validates the study schema from a YAML file.
func LoadStudy(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read study schema %s: %w", path, err)
	}

	var study Study
	if err := yaml.Unmarshal(data, &study); err != nil {
		return nil, fmt.Errorf("failed to unmarshal study schema %s: %w", path, err)
	}

	if err := study.Validate(); err != nil {
		return nil, fmt.Errorf("invalid study schema %s: %w", path, err)
	}
	return &study, nil
}

// Validate catches layout mistakes before an analyzer scribbles into the
// wrong cells.
func (s *Study) Validate() error {
	if s.Columns.ParticipantID < 1 {
		return fmt.Errorf("columns.participant_id must be positive, got %d", s.Columns.ParticipantID)
	}
	if s.Columns.CrisisTime < 1 {
		return fmt.Errorf("columns.crisis_time must be positive, got %d", s.Columns.CrisisTime)
	}
	for name, cols := range map[string][]int{
		"velocity.overall": s.Columns.Velocity.Overall,
		"velocity.pre":     s.Columns.Velocity.Pre,
		"velocity.post":    s.Columns.Velocity.Post,
		"distance.overall": s.Columns.Distance.Overall,
		"distance.pre":     s.Columns.Distance.Pre,
		"distance.post":    s.Columns.Distance.Post,
	} {
		if len(cols) != 4 {
			return fmt.Errorf("columns.%s must list 4 columns, got %d", name, len(cols))
		}
	}
	for name, cols := range map[string][]int{
		"cc_all":  s.Columns.CCAll,
		"cc_pre":  s.Columns.CCPre,
		"cc_post": s.Columns.CCPost,
	} {
		if len(cols) != 3 {
			return fmt.Errorf("columns.%s must list 3 columns, got %d", name, len(cols))
		}
	}
	for name, cols := range map[string][]int{
		"pupil.short_left":  s.Columns.Pupil.ShortLeft,
		"pupil.short_right": s.Columns.Pupil.ShortRight,
		"pupil.full_left":   s.Columns.Pupil.FullLeft,
		"pupil.full_right":  s.Columns.Pupil.FullRight,
	} {
		if len(cols) != 4 {
			return fmt.Errorf("columns.%s must list 4 columns, got %d", name, len(cols))
		}
	}
	if len(s.Folders.Standard) == 0 {
		return fmt.Errorf("folders.standard must not be empty")
	}
	if s.Markers.Shook == "" || s.Markers.Estimate == "" {
		return fmt.Errorf("markers.shook and markers.estimate are required")
	}
	if len(s.Location.Anchor) != 0 && len(s.Location.Anchor) != 3 {
		return fmt.Errorf("location.anchor must list 3 coordinates, got %d", len(s.Location.Anchor))
	}
	if len(s.Location.AnchorVar) != 0 && len(s.Location.AnchorVar) != 3 {
		return fmt.Errorf("location.anchor_var must list 3 coordinates, got %d", len(s.Location.AnchorVar))
	}
	return nil
}
