// internal/cli/location.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yyspencer/Fire2Scripts/internal/config"
)

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Crisis-to-departure deltas for the robot's survey-room stop, per condition",
	Long: `For each shook/noshook participant, finds the robot's longest
stationary stop inside the survey-room sphere, the moment it moved again,
and reports crisis time minus that moment. Deltas beyond the outlier
threshold are reported but excluded from the group statistics. Nothing is
written back to the workbook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openSource()
		if err != nil {
			return err
		}
		defer wb.Close()

		outcomes, err := newSuite().LocationDeltas(wb, config.Conf.Study.StillnessEps, config.Conf.Study.DeltaOutlier)
		if err != nil {
			return err
		}

		for _, o := range outcomes {
			fmt.Printf("\n%s (%d scored, %d outliers, %d skipped)\n",
				o.Group, len(o.Included), len(o.Outliers), len(o.Skipped))
			for _, d := range o.Included {
				fmt.Printf("  %s  delta=%.6f\n", d.ID, d.Delta)
			}
			for _, d := range o.Outliers {
				fmt.Printf("  %s  delta=%.6f  (outlier, excluded)\n", d.ID, d.Delta)
			}
			for _, sk := range o.Skipped {
				fmt.Printf("  %s  skipped: %s\n", sk.ID, sk.Reason)
			}
			fmt.Printf("  mean=%.6f  variance=%.6f\n", o.Mean, o.Variance)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationCmd)
}
