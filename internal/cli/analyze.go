// internal/cli/analyze.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/metrics"
	"github.com/yyspencer/Fire2Scripts/internal/trial"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Workbook analyses (each copies the source workbook, then writes its columns)",
}

// runAnalysis wraps the copy-run-save cycle shared by the single-metric
// subcommands. Analyzers report their own tallies.
func runAnalysis(run func(*metrics.Suite, *workbook.Workbook) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		wb, err := openOutput()
		if err != nil {
			return err
		}
		defer wb.Close()

		if err := run(newSuite(), wb); err != nil {
			return err
		}
		if err := wb.Save(); err != nil {
			return err
		}
		log.Info("Workbook saved", zap.String("path", wb.Path()))
		return nil
	}
}

var crisisCmd = &cobra.Command{
	Use:   "crisis",
	Short: "Detect each participant's crisis time and write it to the overall sheet",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.CrisisTimes(wb)
		return err
	}),
}

var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Write pre- and post-crisis interval lengths per participant",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Intervals(wb)
		return err
	}),
}

var lookingCmd = &cobra.Command{
	Use:   "looking",
	Short: "Percentage of trial rows spent looking at the robot (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Looking(wb)
		return err
	}),
}

var looksCmd = &cobra.Command{
	Use:   "looks",
	Short: "Count of distinct looks at the robot (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Looks(wb)
		return err
	}),
}

var signageCmd = &cobra.Command{
	Use:   "signage",
	Short: "Count of distinct looks at exit signage (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Signage(wb)
		return err
	}),
}

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Player velocity statistics outside the survey room (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Velocity(wb)
		return err
	}),
}

var gazeCmd = &cobra.Command{
	Use:   "gaze",
	Short: "Standard deviation of the gaze visualizer per axis (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.GazeSpread(wb)
		return err
	}),
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Player-robot distance statistics (overall, pre, post)",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Distance(wb)
		return err
	}),
}

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow distance and time while near the robot on the same side of the crisis",
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.Follow(wb, config.Conf.Study.FollowProximity, config.Conf.Study.FollowWindow)
		return err
	}),
}

var pupilCmd = &cobra.Command{
	Use:   "pupil",
	Short: "Pupil size statistics in short and full windows around the crisis",
	Long: `Reads each participant's crisis time from the crisis column of the
overall sheet, so the source workbook must already carry those values.
"analyze all" computes them in the same pass instead.`,
	RunE: runAnalysis(func(s *metrics.Suite, wb *workbook.Workbook) error {
		_, err := s.PupilWindows(wb, config.Conf.Study.PupilWindow)
		return err
	}),
}

var correlateSegment string

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Cross-correlate player and robot speed series from the speed files",
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := analysisSegments(correlateSegment)
		if err != nil {
			return err
		}

		wb, err := openOutput()
		if err != nil {
			return err
		}
		defer wb.Close()

		s := newSuite()
		speedDir := studyPath(config.Conf.Study.SpeedDir)
		for _, seg := range segments {
			if _, _, err := s.CrossCorrelate(wb, speedDir, seg); err != nil {
				return err
			}
		}
		if err := wb.Save(); err != nil {
			return err
		}
		log.Info("Workbook saved", zap.String("path", wb.Path()))
		return nil
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every workbook analysis against a single copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openOutput()
		if err != nil {
			return err
		}
		defer wb.Close()

		s := newSuite()
		steps := []struct {
			name string
			run  func() error
		}{
			{"crisis", func() error { _, err := s.CrisisTimes(wb); return err }},
			{"intervals", func() error { _, err := s.Intervals(wb); return err }},
			{"looking", func() error { _, err := s.Looking(wb); return err }},
			{"looks", func() error { _, err := s.Looks(wb); return err }},
			{"signage", func() error { _, err := s.Signage(wb); return err }},
			{"velocity", func() error { _, err := s.Velocity(wb); return err }},
			{"gaze", func() error { _, err := s.GazeSpread(wb); return err }},
			{"distance", func() error { _, err := s.Distance(wb); return err }},
			{"follow", func() error {
				_, err := s.Follow(wb, config.Conf.Study.FollowProximity, config.Conf.Study.FollowWindow)
				return err
			}},
		}

		speedDir := studyPath(config.Conf.Study.SpeedDir)
		for _, seg := range []trial.Segment{trial.SegmentAll, trial.SegmentPre, trial.SegmentPost} {
			seg := seg
			steps = append(steps, struct {
				name string
				run  func() error
			}{"correlate", func() error { _, _, err := s.CrossCorrelate(wb, speedDir, seg); return err }})
		}

		// Pupil windows go last: they read the crisis column written above.
		steps = append(steps, struct {
			name string
			run  func() error
		}{"pupil", func() error { _, err := s.PupilWindows(wb, config.Conf.Study.PupilWindow); return err }})

		for _, step := range steps {
			log.Info("Running analysis", zap.String("analysis", step.name))
			if err := step.run(); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}

		if err := wb.Save(); err != nil {
			return err
		}
		log.Info("Workbook saved", zap.String("path", wb.Path()))
		return nil
	},
}

func analysisSegments(flag string) ([]trial.Segment, error) {
	switch flag {
	case "all":
		return []trial.Segment{trial.SegmentAll}, nil
	case "pre":
		return []trial.Segment{trial.SegmentPre}, nil
	case "post":
		return []trial.Segment{trial.SegmentPost}, nil
	case "every":
		return []trial.Segment{trial.SegmentAll, trial.SegmentPre, trial.SegmentPost}, nil
	}
	return nil, fmt.Errorf("unknown segment %q (want all, pre, post, or every)", flag)
}

func init() {
	correlateCmd.Flags().StringVar(&correlateSegment, "segment", "all", "Speed segment: all, pre, post, or every")

	analyzeCmd.AddCommand(crisisCmd)
	analyzeCmd.AddCommand(intervalsCmd)
	analyzeCmd.AddCommand(lookingCmd)
	analyzeCmd.AddCommand(looksCmd)
	analyzeCmd.AddCommand(signageCmd)
	analyzeCmd.AddCommand(velocityCmd)
	analyzeCmd.AddCommand(gazeCmd)
	analyzeCmd.AddCommand(distanceCmd)
	analyzeCmd.AddCommand(followCmd)
	analyzeCmd.AddCommand(pupilCmd)
	analyzeCmd.AddCommand(correlateCmd)
	analyzeCmd.AddCommand(allCmd)
	rootCmd.AddCommand(analyzeCmd)
}
