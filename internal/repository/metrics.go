// internal/repository/metrics.go
package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/yyspencer/Fire2Scripts/internal/database"
	"github.com/yyspencer/Fire2Scripts/internal/models"
)

// SaveMetrics upserts metric rows keyed by (participant, metric, segment),
// so re-running an export refreshes values instead of duplicating them.
func SaveMetrics(records []models.MetricRecord) error {
	if len(records) == 0 {
		return nil
	}
	return database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "participant_id"},
			{Name: "metric"},
			{Name: "segment"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"condition", "value", "sample_size", "created_at"}),
	}).Create(&records).Error
}

// SaveCrises upserts crisis rows keyed by participant.
func SaveCrises(records []models.CrisisRecord) error {
	if len(records) == 0 {
		return nil
	}
	return database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"folder", "crisis_time", "pre_interval", "post_interval", "created_at",
		}),
	}).Create(&records).Error
}

type TimelinePoint struct {
	ParticipantID string   `json:"participantId"`
	Condition     string   `json:"condition"`
	Value         *float64 `json:"value"`
}

type ComparePoint struct {
	ParticipantID string   `json:"participantId"`
	Condition     string   `json:"condition"`
	Pre           *float64 `json:"pre"`
	Post          *float64 `json:"post"`
}

type MetricSummary struct {
	Metric       string   `json:"metric"`
	Segment      string   `json:"segment"`
	Participants int      `json:"participants"`
	Mean         *float64 `json:"mean"`
	SD           *float64 `json:"sd"`
}

// GetTimeline returns one metric across the cohort, ordered by participant.
func GetTimeline(ctx context.Context, metric, segment string) ([]TimelinePoint, error) {
	var data []TimelinePoint
	query := `
		SELECT participant_id, condition, value
		FROM metric_records
		WHERE metric = ? AND segment = ?
		ORDER BY participant_id;
	`
	err := database.DB.WithContext(ctx).Raw(query, metric, segment).Scan(&data).Error
	return data, err
}

// GetComparison joins the pre and post segments of a metric per participant.
func GetComparison(ctx context.Context, metric string) ([]ComparePoint, error) {
	var data []ComparePoint
	query := `
		SELECT
			pre.participant_id AS participant_id,
			pre.condition AS condition,
			pre.value AS pre,
			post.value AS post
		FROM
			(SELECT participant_id, condition, value FROM metric_records WHERE metric = ? AND segment = ?) AS pre
		JOIN
			(SELECT participant_id, value FROM metric_records WHERE metric = ? AND segment = ?) AS post
			ON pre.participant_id = post.participant_id
		ORDER BY pre.participant_id;
	`
	err := database.DB.WithContext(ctx).
		Raw(query, metric, models.SegmentPre, metric, models.SegmentPost).
		Scan(&data).Error
	return data, err
}

// GetSummary aggregates every stored metric by segment.
func GetSummary(ctx context.Context) ([]MetricSummary, error) {
	var data []MetricSummary
	query := `
		SELECT
			metric,
			segment,
			COUNT(value) AS participants,
			AVG(value) AS mean,
			STDDEV_SAMP(value) AS sd
		FROM metric_records
		GROUP BY metric, segment
		ORDER BY metric, segment;
	`
	err := database.DB.WithContext(ctx).Raw(query).Scan(&data).Error
	return data, err
}
