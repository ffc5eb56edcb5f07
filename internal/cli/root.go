// internal/cli/root.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	logger "github.com/yyspencer/Fire2Scripts/internal/logging"
	"github.com/yyspencer/Fire2Scripts/internal/metrics"
	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/workbook"
)

var (
	// Persistent flags
	configDir    string
	dataRoot     string
	workbookFlag string
	outputFlag   string
	logLevel     string

	log   *zap.Logger
	study *models.Study
)

var rootCmd = &cobra.Command{
	Use:   "fire2",
	Short: "Analysis suite for the Fire 2 human-robot interaction study",
	Long: `fire2 processes the shared study workbook and the per-trial CSV logs
recorded during the Fire 2 evacuation trials.

Each analyze subcommand copies the source workbook, computes one behavioral
metric per participant (crisis time, looking percentages, velocity, follow
behavior, pupil windows, speed cross-correlation, ...), and writes its
columns into the copy. "analyze all" runs the whole pipeline against a
single copy. The remaining commands cover the side studies (stationarity
deltas, survey-room positions, pupil t-tests), chart reports, and the
optional database export with its dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return boot()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// boot loads config, applies flag overrides, and brings up the logger and
// the study schema every command depends on.
func boot() error {
	if err := config.Load(configDir); err != nil {
		return err
	}
	if dataRoot != "" {
		config.Conf.Study.DataRoot = dataRoot
	}
	if workbookFlag != "" {
		config.Conf.Study.SourceWorkbook = workbookFlag
	}
	if outputFlag != "" {
		config.Conf.Study.OutputWorkbook = outputFlag
	}
	if logLevel != "" {
		config.Conf.Logging.Level = logLevel
	}

	var err error
	log, err = logger.Init(config.Conf.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	config.Watch(log)

	study, err = models.LoadStudy(studyPath(config.Conf.Study.SchemaFile))
	if err != nil {
		return err
	}
	return nil
}

// studyPath resolves a configured path against the data root.
func studyPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(config.Conf.Study.DataRoot, p)
}

func newSuite() *metrics.Suite {
	return metrics.NewSuite(log, study, config.Conf.Study.DataRoot)
}

// openOutput copies the source workbook over the output workbook and opens
// the copy, the way every analysis run starts.
func openOutput() (*workbook.Workbook, error) {
	src := studyPath(config.Conf.Study.SourceWorkbook)
	dst := studyPath(config.Conf.Study.OutputWorkbook)
	return workbook.CopyOpen(src, dst)
}

// openSource opens the source workbook directly for read-only commands.
func openSource() (*workbook.Workbook, error) {
	return workbook.Open(studyPath(config.Conf.Study.SourceWorkbook))
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Config directory (default: ./config)")
	rootCmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "Study data root (overrides config)")
	rootCmd.PersistentFlags().StringVar(&workbookFlag, "workbook", "", "Source workbook path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&outputFlag, "output", "", "Output workbook path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
