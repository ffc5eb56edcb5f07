// internal/server/server.go
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Setup builds the dashboard router. Callers own starting the scheduler
// and running the engine.
func Setup(log *zap.Logger, sched *RefreshScheduler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	metricsHandler := NewMetricsHandler(log, sched)
	chartsHandler := NewChartsHandler(log)

	router.GET("/healthz", metricsHandler.Healthz)

	api := router.Group("/api")
	{
		api.GET("/summary", metricsHandler.Summary)
		api.GET("/timeline/:metric", metricsHandler.Timeline)
		api.GET("/compare/:metric", metricsHandler.Compare)

		charts := api.Group("/charts")
		{
			charts.GET("/timeline/:metric", chartsHandler.Timeline)
			charts.GET("/compare/:metric", chartsHandler.Compare)
		}
	}

	return router
}
