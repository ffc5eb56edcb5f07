// internal/server/handlers.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/repository"
)

type MetricsHandler struct {
	log   *zap.Logger
	sched *RefreshScheduler
}

func NewMetricsHandler(log *zap.Logger, sched *RefreshScheduler) *MetricsHandler {
	return &MetricsHandler{log: log, sched: sched}
}

func (h *MetricsHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Summary serves the cached cohort overview.
func (h *MetricsHandler) Summary(c *gin.Context) {
	summary, refreshed := h.sched.Summary()
	c.JSON(http.StatusOK, gin.H{
		"refreshedAt": refreshed,
		"metrics":     summary,
	})
}

// Timeline serves one metric across all participants. The segment defaults
// to the overall value and must be one of overall, pre, or post.
func (h *MetricsHandler) Timeline(c *gin.Context) {
	metric := c.Param("metric")
	segment := c.DefaultQuery("segment", models.SegmentOverall)
	switch segment {
	case models.SegmentOverall, models.SegmentPre, models.SegmentPost:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid segment"})
		return
	}

	data, err := repository.GetTimeline(c.Request.Context(), metric, segment)
	if err != nil {
		h.log.Error("Failed to get timeline data", zap.Error(err),
			zap.String("metric", metric), zap.String("segment", segment))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load timeline data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric":  metric,
		"segment": segment,
		"points":  data,
	})
}

// Compare serves the pre/post pairing of one metric per participant.
func (h *MetricsHandler) Compare(c *gin.Context) {
	metric := c.Param("metric")

	data, err := repository.GetComparison(c.Request.Context(), metric)
	if err != nil {
		h.log.Error("Failed to get comparison data", zap.Error(err), zap.String("metric", metric))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comparison data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metric": metric,
		"points": data,
	})
}
