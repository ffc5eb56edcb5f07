// internal/cli/survey.go
package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/yyspencer/Fire2Scripts/internal/config"
)

var surveyCmd = &cobra.Command{
	Use:   "survey-position",
	Short: "Where the robot stood on entering the survey room, across sessions",
	Long: `Scans the survey directory's tracker logs for the robot's
survey-room entry position and reports the per-axis mean and population
variance. These numbers calibrate the location analysis anchor sphere.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newSuite().SurveyPositions(studyPath(config.Conf.Study.SurveyDir))
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(res.ByParticipant))
		for id := range res.ByParticipant {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			p := res.ByParticipant[id]
			fmt.Printf("%s  [%.6f, %.6f, %.6f]\n", id, p[0], p[1], p[2])
		}
		if res.Count > 0 {
			fmt.Printf("\nmean     [%.6f, %.6f, %.6f]\n", res.Mean[0], res.Mean[1], res.Mean[2])
			fmt.Printf("variance [%.6f, %.6f, %.6f]  (n=%d)\n", res.Variance[0], res.Variance[1], res.Variance[2], res.Count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(surveyCmd)
}
