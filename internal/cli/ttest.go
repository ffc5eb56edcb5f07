// internal/cli/ttest.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/metrics"
)

var ttestAlpha float64

var ttestCmd = &cobra.Command{
	Use:   "ttest",
	Short: "Test post-crisis pupil sizes against each participant's luminance calibration",
	Long: `Compares the measured post-crisis pupil size (left/right aggregate
files) against the size predicted by the participant's own
luminance-to-pupil mapping, via Welch's t-test. A rejection means the
pupil deviated from its calibration, the arousal signal the study looks
for.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		studyCfg := config.Conf.Study
		rep, err := newSuite().PupilTTest(
			studyPath(studyCfg.MappingDir),
			studyPath(studyCfg.LeftPupilFile),
			studyPath(studyCfg.RightPupilFile),
			ttestAlpha)
		if err != nil {
			return err
		}

		fmt.Println("Index\tEye\tP-Value\tConclusion")
		for _, row := range rep.Rows {
			if row.Missing {
				fmt.Printf("%s\tMISSING\n", row.Index)
				continue
			}
			if !row.Result.Valid {
				fmt.Printf("%s\t%s\tN/A\tN/A\n", row.Index, row.Eye)
				continue
			}
			conclusion := "Fail"
			if row.Reject {
				conclusion = "Reject"
			}
			fmt.Printf("%s\t%s\t%.6g\t%s\n", row.Index, row.Eye, row.Result.P, conclusion)
		}

		fmt.Printf("\nSignificance level: %g\n", rep.Alpha)
		for _, eye := range []struct{ label, key string }{{"Left", "left"}, {"Right", "right"}} {
			tested := rep.TestedByEye[eye.key]
			rate := 0.0
			if tested > 0 {
				rate = float64(rep.RejectByEye[eye.key]) / float64(tested) * 100
			}
			fmt.Printf("%s rejected: %d / %d (%.1f%%)\n", eye.label, rep.RejectByEye[eye.key], tested, rate)
		}
		fmt.Printf("Missing luminance mapping: %d\n", rep.MissingMappings)
		fmt.Printf("Missing pupil data: %d\n", rep.MissingData)
		return nil
	},
}

var pupilAggregateCmd = &cobra.Command{
	Use:   "pupil-aggregate",
	Short: "Summarize the left and right pupil aggregate files",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := newSuite()
		for _, side := range []struct {
			eye  string
			path string
		}{
			{"left", studyPath(config.Conf.Study.LeftPupilFile)},
			{"right", studyPath(config.Conf.Study.RightPupilFile)},
		} {
			before, after, err := s.PupilAggregate(side.path, side.eye)
			if err != nil {
				return err
			}
			fmt.Printf("%s eye\n", side.eye)
			printAggregate("  before", before)
			printAggregate("  after", after)
		}
		return nil
	},
}

func printAggregate(label string, r metrics.AggregateRange) {
	fmt.Printf("%s: mean=%.6f min=%.6f max=%.6f (n=%d)\n", label, r.Mean, r.Min, r.Max, r.N)
}

func init() {
	ttestCmd.Flags().Float64Var(&ttestAlpha, "alpha", 0.05, "Significance level")

	rootCmd.AddCommand(ttestCmd)
	rootCmd.AddCommand(pupilAggregateCmd)
}
