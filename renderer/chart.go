package renderer

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// WriteNetWorthChart renders a PNG line chart of the yearly net worth.
// A larger run draws the median with the low and high values around it.
func WriteNetWorthChart(w io.Writer, r *Report) error {
	spreads := r.Spreads(NetWorth)
	if len(spreads) < 2 {
		return fmt.Errorf("need at least 2 years, got %d", len(spreads))
	}

	years := make([]float64, len(spreads))
	low := make([]float64, len(spreads))
	median := make([]float64, len(spreads))
	high := make([]float64, len(spreads))
	for i, s := range spreads {
		years[i] = float64(s.Year)
		low[i], median[i], high[i] = s.Low.Float(), s.Median.Float(), s.High.Float()
	}

	name := "Net Worth"
	if r.Single() == nil {
		name = "Median Net Worth"
	}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"),
				StrokeWidth: 2.5,
			},
			XValues: years,
			YValues: median,
		},
	}
	if r.Single() == nil {
		for _, band := range []struct {
			name   string
			values []float64
		}{{"Low", low}, {"High", high}} {
			series = append(series, chart.ContinuousSeries{
				Name: band.name,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("9ca3af"),
					StrokeWidth:     1.5,
					StrokeDashArray: []float64{5.0, 3.0},
				},
				XValues: years,
				YValues: band.values,
			})
		}
	}

	graph := chart.Chart{
		Title:  newRunView(r).Title,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
