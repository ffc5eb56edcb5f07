// internal/server/charts.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/yyspencer/Fire2Scripts/internal/models"
	"github.com/yyspencer/Fire2Scripts/internal/repository"
)

// ChartsHandler serves ready-to-render ECharts option objects, so the
// dashboard front end only feeds them to echarts.setOption().
type ChartsHandler struct {
	log *zap.Logger
}

func NewChartsHandler(log *zap.Logger) *ChartsHandler {
	return &ChartsHandler{log: log}
}

// Timeline renders one metric across the cohort as a bar chart.
func (h *ChartsHandler) Timeline(c *gin.Context) {
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

	chart := generateCohortChart(data, metric, segment)
	optionsJSON, err := json.Marshal(chart.JSON())
	if err != nil {
		h.log.Error("Failed to marshal chart options", zap.Error(err), zap.String("metric", metric))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build chart"})
		return
	}
	c.Data(http.StatusOK, "application/json", optionsJSON)
}

// Compare renders the pre/post pairing of one metric as a scatter.
func (h *ChartsHandler) Compare(c *gin.Context) {
	metric := c.Param("metric")

	data, err := repository.GetComparison(c.Request.Context(), metric)
	if err != nil {
		h.log.Error("Failed to get comparison data", zap.Error(err), zap.String("metric", metric))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comparison data"})
		return
	}

	chart := generateCompareChart(data, metric)
	optionsJSON, err := json.Marshal(chart.JSON())
	if err != nil {
		h.log.Error("Failed to marshal chart options", zap.Error(err), zap.String("metric", metric))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build chart"})
		return
	}
	c.Data(http.StatusOK, "application/json", optionsJSON)
}

func generateCohortChart(data []repository.TimelinePoint, metric, segment string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Cohort " + metric,
			Subtitle: segment,
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	ids := make([]string, 0, len(data))
	items := make([]opts.BarData, 0, len(data))
	for _, point := range data {
		ids = append(ids, point.ParticipantID)
		var value interface{}
		if point.Value != nil {
			value = *point.Value
		}
		items = append(items, opts.BarData{Value: value})
	}
	bar.SetXAxis(ids).AddSeries(metric, items)
	return bar
}

func generateCompareChart(data []repository.ComparePoint, metric string) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Pre vs. Post " + metric,
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "pre", Scale: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "post", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.ScatterData, 0, len(data))
	for _, point := range data {
		if point.Pre == nil || point.Post == nil {
			continue
		}
		items = append(items, opts.ScatterData{
			Name:  point.ParticipantID,
			Value: []interface{}{*point.Pre, *point.Post},
		})
	}
	scatter.AddSeries(metric, items)
	return scatter
}
