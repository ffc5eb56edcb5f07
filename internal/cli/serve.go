// internal/cli/serve.go
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	"github.com/yyspencer/Fire2Scripts/internal/database"
	"github.com/yyspencer/Fire2Scripts/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the exported metrics as a JSON dashboard",
	Long: `Starts the dashboard API over the export database: the cached cohort
summary, per-metric timelines and pre/post comparisons, and
ready-to-render chart options.

Run "fire2 export" first so the database has something to serve.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database.Init(log)

		sched := server.NewRefreshScheduler(log,
			time.Duration(config.Conf.Server.RefreshInterval)*time.Minute)
		sched.Start()

		r := server.Setup(log, sched)

		port := ":" + config.Conf.Server.Port
		log.Info("Dashboard listening on http://localhost" + port)
		return r.Run(port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
