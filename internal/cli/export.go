// internal/cli/export.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/database"
	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/repository"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upsert the processed workbook's metrics into Postgres",
	Long: `Reads the processed workbook and upserts every numeric metric cell
into the metric store, one row per participant, metric, and segment.
Uncomputed cells become NULL values. The dashboard ("fire2 serve") reads
from this store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := workbook.Open(studyPath(config.Conf.Study.OutputWorkbook))
		if err != nil {
			return fmt.Errorf("open processed workbook (run \"fire2 analyze\" first): %w", err)
		}
		defer wb.Close()

		metricRecs, crisisRecs, err := collectRecords(wb)
		if err != nil {
			return err
		}

		database.Init(log)
		if err := repository.SaveMetrics(metricRecs); err != nil {
			return err
		}
		if err := repository.SaveCrises(crisisRecs); err != nil {
			return err
		}
		log.Info("Export complete",
			zap.Int("metricRows", len(metricRecs)),
			zap.Int("crisisRows", len(crisisRecs)))
		return nil
	},
}

func collectRecords(wb *workbook.Workbook) ([]models.MetricRecord, []models.CrisisRecord, error) {
	overall, err := wb.Sheet(study.Sheets.Overall)
	if err != nil {
		return nil, nil, err
	}
	preSheet, err := wb.Sheet(study.Sheets.Pre)
	if err != nil {
		return nil, nil, err
	}
	postSheet, err := wb.Sheet(study.Sheets.Post)
	if err != nil {
		return nil, nil, err
	}
	rows, err := wb.Rows(overall)
	if err != nil {
		return nil, nil, err
	}

	type slot struct {
		metric  string
		segment string
		sheet   string
		col     int
	}
	var slots []slot
	triple := func(metric string, cols models.Triple) {
		slots = append(slots,
			slot{metric, models.SegmentOverall, overall, cols.Overall},
			slot{metric, models.SegmentPre, preSheet, cols.Pre},
			slot{metric, models.SegmentPost, postSheet, cols.Post})
	}
	quad := func(base string, q models.Quad, names [4]string) {
		for i, n := range names {
			slots = append(slots,
				slot{base + "_" + n, models.SegmentOverall, overall, q.Overall[i]},
				slot{base + "_" + n, models.SegmentPre, preSheet, q.Pre[i]},
				slot{base + "_" + n, models.SegmentPost, postSheet, q.Post[i]})
		}
	}
	cc := func(cols []int, segment string) {
		for i, name := range [3]string{"cc_best_lag", "cc_best", "cc_global"} {
			slots = append(slots, slot{name, segment, overall, cols[i]})
		}
	}
	pupil := func(base string, cols []int) {
		for i, n := range [4]string{"mean", "sd", "max", "min"} {
			slots = append(slots,
				slot{base + "_" + n, models.SegmentPre, preSheet, cols[i]},
				slot{base + "_" + n, models.SegmentPost, postSheet, cols[i]})
		}
	}

	triple("looking_pct", study.Columns.Looking)
	triple("looks", study.Columns.Looks)
	triple("signage_looks", study.Columns.Signage)
	quad("velocity", study.Columns.Velocity, [4]string{"mean", "sd", "min", "max"})
	quad("distance", study.Columns.Distance, [4]string{"mean", "sd", "max", "min"})
	triple("follow_distance", study.Columns.Follow.Distance)
	triple("follow_time", study.Columns.Follow.Duration)
	cc(study.Columns.CCAll, models.SegmentOverall)
	cc(study.Columns.CCPre, models.SegmentPre)
	cc(study.Columns.CCPost, models.SegmentPost)
	pupil("pupil_short_left", study.Columns.Pupil.ShortLeft)
	pupil("pupil_short_right", study.Columns.Pupil.ShortRight)
	pupil("pupil_full_left", study.Columns.Pupil.FullLeft)
	pupil("pupil_full_right", study.Columns.Pupil.FullRight)

	var metricRecs []models.MetricRecord
	var crisisRecs []models.CrisisRecord
	for r := 2; r <= len(rows); r++ {
		rawID, err := wb.Cell(overall, r, study.Columns.ParticipantID)
		if err != nil || strings.TrimSpace(rawID) == "" {
			continue
		}
		id := trial.PaddedID(rawID)
		cond, _ := wb.Cell(overall, r, study.Columns.Condition)
		cond = strings.TrimSpace(cond)

		for _, sl := range slots {
			if sl.col < 1 {
				continue
			}
			rec := models.MetricRecord{
				ParticipantID: id,
				Condition:     cond,
				Metric:        sl.metric,
				Segment:       sl.segment,
			}
			if v, ok := cellFloat(wb, sl.sheet, r, sl.col); ok {
				rec.Value = models.NullableFloat(v)
			}
			metricRecs = append(metricRecs, rec)
		}

		if v, ok := cellFloat(wb, overall, r, study.Columns.CrisisTime); ok {
			cr := models.CrisisRecord{ParticipantID: id, CrisisTime: v}
			if _, folder, err := trial.Locate(config.Conf.Study.DataRoot, study.Folders.Standard, id); err == nil {
				cr.Folder = folder
			}
			if pre, ok := cellFloat(wb, overall, r, study.Columns.PreInterval); ok {
				cr.PreInterval = models.NullableFloat(pre)
			}
			if post, ok := cellFloat(wb, overall, r, study.Columns.PostInterval); ok {
				cr.PostInterval = models.NullableFloat(post)
			}
			crisisRecs = append(crisisRecs, cr)
		}
	}
	return metricRecs, crisisRecs, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
