// internal/cli/highlight.go
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

var highlightCmd = &cobra.Command{
	Use:   "highlight",
	Short: "Copy the workbook and highlight baseline-condition participants",
	Long: `Writes a copy of the source workbook with the index cell of every
condition-4 (baseline) row filled yellow, for manual review.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := studyPath(config.Conf.Study.SourceWorkbook)
		dst := studyPath(config.Conf.Study.HighlightWorkbook)

		checked, highlighted, err := workbook.HighlightBaseline(src, dst)
		if err != nil {
			return err
		}
		log.Info("Baseline rows highlighted",
			zap.Int("checked", checked),
			zap.Int("highlighted", highlighted),
			zap.String("path", dst))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(highlightCmd)
}
