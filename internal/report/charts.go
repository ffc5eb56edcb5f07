// internal/report/charts.go

// Package report renders standalone HTML charts from analysis output, so
// results can be eyeballed without opening the workbook.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yyspencer/Fire2Scripts/internal/metrics"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

type Generator struct {
	log *zap.Logger
	dir string
}

func NewGenerator(log *zap.Logger, dir string) (*Generator, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Generator{log: log, dir: dir}, nil
}

// SpeedTimeline charts one participant's player and robot speed series
// over sample index. split is the index of the first post-crisis sample
// and draws a vertical crisis line; pass a negative split when the series
// has no crisis split.
func (g *Generator) SpeedTimeline(id string, player, robot []float64, split int) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Player and Robot Speed",
			Subtitle: "Participant " + id,
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Speed (m/s)", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	xs := make([]string, len(player))
	playerItems := make([]opts.LineData, len(player))
	robotItems := make([]opts.LineData, len(robot))
	for i := range player {
		xs[i] = strconv.Itoa(i)
		playerItems[i] = opts.LineData{Value: player[i]}
		robotItems[i] = opts.LineData{Value: robot[i]}
	}

	var playerOpts []charts.SeriesOpts
	if split > 0 && split < len(player) {
		playerOpts = append(playerOpts, charts.WithMarkLineNameXAxisItemOpts(
			opts.MarkLineNameXAxisItem{Name: "Crisis", XAxis: split}))
	}

	line.SetXAxis(xs).
		AddSeries("Player", playerItems, playerOpts...).
		AddSeries("Robot", robotItems).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return g.write("speed_"+id+".html", line)
}

// LagCurve charts the cohort's summed absolute correlation per lag, with
// the chosen global lag in the subtitle.
func (g *Generator) LagCurve(res *metrics.LagResult, segment string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Cross-Correlation by Lag (" + segment + ")",
			Subtitle: fmt.Sprintf("Global best lag: %d (cohort of %d)", res.GlobalLag, res.Cohort),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lag (samples)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Sum |CC|", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	xs := make([]string, len(res.Lags))
	items := make([]opts.LineData, len(res.Lags))
	for i, lag := range res.Lags {
		xs[i] = strconv.Itoa(lag)
		items[i] = opts.LineData{Value: res.AbsSums[i]}
	}
	line.SetXAxis(xs).AddSeries("Sum |CC|", items)
	return g.write("lag_"+segment+".html", line)
}

// PrePostBars charts one metric's pre- and post-crisis values side by
// side, one bar pair per participant.
func (g *Generator) PrePostBars(labels []string, pre, post []float64) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Before and After Crisis by Participant",
			Subtitle: "Participants with a blank side excluded",
		}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	preItems := make([]opts.BarData, len(pre))
	postItems := make([]opts.BarData, len(post))
	for i := range pre {
		preItems[i] = opts.BarData{Value: pre[i]}
		postItems[i] = opts.BarData{Value: post[i]}
	}
	bar.SetXAxis(labels).
		AddSeries("Pre", preItems).
		AddSeries("Post", postItems)
	return g.write("compare.html", bar)
}

type renderable interface {
	Render(w io.Writer) error
}

func (g *Generator) write(name string, chart renderable) error {
	path := filepath.Join(g.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()
	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render report %s: %w", path, err)
	}
	g.log.Info("Report written", zap.String("path", path))
	return nil
}
