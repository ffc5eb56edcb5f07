// internal/cli/report.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/report"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

var reportMetric string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate HTML chart reports from the speed files and the processed workbook",
	Long: `Writes echarts HTML pages into the reports directory: the cohort
lag-correlation curve per segment, a speed timeline per participant, and a
pre-vs-post bar comparison of the chosen metric.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := report.NewGenerator(log, studyPath(config.Conf.Reports.Directory))
		if err != nil {
			return err
		}
		s := newSuite()
		speedDir := studyPath(config.Conf.Study.SpeedDir)

		for _, seg := range []struct {
			seg   trial.Segment
			label string
		}{
			{trial.SegmentAll, "all"},
			{trial.SegmentPre, "pre"},
			{trial.SegmentPost, "post"},
		} {
			res, err := s.LagScan(speedDir, seg.seg)
			if err != nil {
				log.Warn("Lag scan failed", zap.String("segment", seg.label), zap.Error(err))
				continue
			}
			if err := gen.LagCurve(res, seg.label); err != nil {
				return err
			}
		}

		if err := speedTimelines(gen, speedDir); err != nil {
			return err
		}

		wb, err := workbook.Open(studyPath(config.Conf.Study.OutputWorkbook))
		if err != nil {
			return fmt.Errorf("open processed workbook (run \"fire2 analyze\" first): %w", err)
		}
		defer wb.Close()

		labels, pre, post, err := prePostSeries(wb, reportMetric)
		if err != nil {
			return err
		}
		return gen.PrePostBars(labels, pre, post)
	},
}

func speedTimelines(gen *report.Generator, speedDir string) error {
	entries, err := os.ReadDir(speedDir)
	if err != nil {
		return fmt.Errorf("read speed dir (run \"fire2 speed-export\" first): %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".txt")
		path := filepath.Join(speedDir, e.Name())
		player, robot, err := trial.ReadSpeedPairs(path, trial.SegmentAll)
		if err != nil || len(player) == 0 {
			log.Warn("Skipping speed timeline", zap.String("id", id), zap.Error(err))
			continue
		}

		// The full series is the pre block followed by the post block, so
		// the pre length marks the first post-crisis sample.
		split := -1
		if pre, _, errPre := trial.ReadSpeedPairs(path, trial.SegmentPre); errPre == nil && len(pre) < len(player) {
			split = len(pre)
		}
		if err := gen.SpeedTimeline(id, player, robot, split); err != nil {
			return err
		}
	}
	return nil
}

// prePostSeries pulls one metric's pre and post columns for every
// participant with both values present.
func prePostSeries(wb *workbook.Workbook, metric string) (labels []string, pre, post []float64, err error) {
	var cols models.Triple
	switch metric {
	case "looking":
		cols = study.Columns.Looking
	case "looks":
		cols = study.Columns.Looks
	case "signage":
		cols = study.Columns.Signage
	default:
		return nil, nil, nil, fmt.Errorf("unknown metric %q (want looking, looks, or signage)", metric)
	}

	overall, err := wb.Sheet(study.Sheets.Overall)
	if err != nil {
		return nil, nil, nil, err
	}
	preSheet, err := wb.Sheet(study.Sheets.Pre)
	if err != nil {
		return nil, nil, nil, err
	}
	postSheet, err := wb.Sheet(study.Sheets.Post)
	if err != nil {
		return nil, nil, nil, err
	}

	rows, err := wb.Rows(overall)
	if err != nil {
		return nil, nil, nil, err
	}
	for r := 2; r <= len(rows); r++ {
		id, err := wb.Cell(overall, r, study.Columns.ParticipantID)
		if err != nil || strings.TrimSpace(id) == "" {
			continue
		}
		preVal, okPre := cellFloat(wb, preSheet, r, cols.Pre)
		postVal, okPost := cellFloat(wb, postSheet, r, cols.Post)
		if !okPre || !okPost {
			continue
		}
		labels = append(labels, trial.PaddedID(id))
		pre = append(pre, preVal)
		post = append(post, postVal)
	}
	return labels, pre, post, nil
}

func cellFloat(wb *workbook.Workbook, sheet string, row, col int) (float64, bool) {
	raw, err := wb.Cell(sheet, row, col)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func init() {
	reportCmd.Flags().StringVar(&reportMetric, "metric", "looking", "Metric for the pre/post bars: looking, looks, or signage")

	rootCmd.AddCommand(reportCmd)
}
