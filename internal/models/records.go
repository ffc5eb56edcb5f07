// internal/models/records.go
package models

import (
	"math"
	"time"
)

// MetricRecord is one exported metric value for one participant and segment.
// Value is NULL when the metric could not be computed.
type MetricRecord struct {
	ID            uint   `gorm:"primaryKey"`
	ParticipantID string `gorm:"size:16;not null"`
	Condition     string `gorm:"size:32"`
	Metric        string `gorm:"size:64;not null"`
	Segment       string `gorm:"size:16;not null"`
	Value         *float64
	SampleSize    int
	CreatedAt     time.Time
}

// CrisisRecord stores the detected crisis moment and the surrounding
// intervals for one participant.
type CrisisRecord struct {
	ID            uint   `gorm:"primaryKey"`
	ParticipantID string `gorm:"size:16;not null"`
	Folder        string `gorm:"size:64"`
	CrisisTime    float64
	PreInterval   *float64
	PostInterval  *float64
	CreatedAt     time.Time
}

// Segment labels used on MetricRecord rows.
const (
	SegmentOverall = "overall"
	SegmentPre     = "pre"
	SegmentPost    = "post"
)

// NullableFloat maps NaN onto a NULL database value.
func NullableFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
