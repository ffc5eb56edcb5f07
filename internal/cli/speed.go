// internal/cli/speed.go
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
)

var speedExportCmd = &cobra.Command{
	Use:   "speed-export",
	Short: "Regenerate the speed files from the raw trial logs",
	Long: `Writes speed/<id>.txt for every participant in the workbook: one
player-robot speed pair per adjacent log row, with a blank line at the
crisis split. These files feed "analyze correlate".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wb, err := openSource()
		if err != nil {
			return err
		}
		defer wb.Close()

		speedDir := studyPath(config.Conf.Study.SpeedDir)
		if _, err := newSuite().ExportSpeeds(wb, speedDir); err != nil {
			return err
		}
		log.Info("Speed files written", zap.String("dir", speedDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speedExportCmd)
}
