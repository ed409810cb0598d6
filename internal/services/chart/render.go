package chart

import (
	"bytes"
	"context"
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rfglabs/modeldesk/internal/interfaces"
	"github.com/rfglabs/modeldesk/internal/models"
)

// RenderPNG assembles the chart dataset and renders it as a PNG line
// chart, one series per model plus the benchmark overlay.
func (s *Service) RenderPNG(ctx context.Context, opts interfaces.ChartOptions) ([]byte, error) {
	series, err := s.BuildChart(ctx, opts)
	if err != nil {
		return nil, err
	}
	return renderSeries(series)
}

func renderSeries(series *models.ChartSeries) ([]byte, error) {
	times := make([]time.Time, len(series.Labels))
	for i, label := range series.Labels {
		t, err := time.Parse(labelLayout, label)
		if err != nil {
			return nil, fmt.Errorf("chart label %q: %w", label, err)
		}
		times[i] = t
	}

	var chartSeries []gochart.Series
	for _, ds := range series.Datasets {
		var xs []time.Time
		var ys []float64
		for i, v := range ds.Data {
			if v == nil {
				continue
			}
			xs = append(xs, times[i])
			ys = append(ys, *v)
		}
		if len(xs) < 2 {
			continue
		}

		chartSeries = append(chartSeries, gochart.TimeSeries{
			Name: ds.Label,
			Style: gochart.Style{
				StrokeColor: colorFromTag(ds.Color),
				StrokeWidth: 2.0,
			},
			XValues: xs,
			YValues: ys,
		})
	}
	if len(chartSeries) == 0 {
		return nil, fmt.Errorf("no plottable series")
	}

	graph := gochart.Chart{
		Title:  "Model Performance",
		Width:  1100,
		Height: 500,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			TickPosition: gochart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return gochart.TimeFromFloat64(t).Format("Jan 02 15:04")
				}
				return ""
			},
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{
				Min: series.AxisRange.Min,
				Max: series.AxisRange.Max,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: chartSeries,
	}

	graph.Elements = []gochart.Renderable{
		gochart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func colorFromTag(tag string) drawing.Color {
	if len(tag) > 0 && tag[0] == '#' {
		tag = tag[1:]
	}
	if len(tag) != 6 {
		return drawing.ColorFromHex("2563eb")
	}
	return drawing.ColorFromHex(tag)
}
