package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/coinfolio"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var palette = []string{"2563eb", "0c6b63", "f59e0b", "dc2626", "7c3aed", "0891b2", "65a30d", "db2777"}

// TimelineChart renders a PNG line chart of the timeline: value at trade,
// net invested, cost basis and cumulative realized profit.
// Returns raw PNG bytes.
func TimelineChart(points []coinfolio.TimelinePoint, cur string) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	value := make([]float64, len(points))
	invested := make([]float64, len(points))
	cost := make([]float64, len(points))
	realized := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Date
		value[i] = p.ValueAtTrade
		invested[i] = p.Invested
		cost[i] = p.CostBasis
		realized[i] = p.Realized
	}

	series := func(name, color string, width float64, dash []float64, y []float64) chart.TimeSeries {
		return chart.TimeSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(color),
				StrokeWidth:     width,
				StrokeDashArray: dash,
			},
			XValues: xValues,
			YValues: y,
		}
	}

	graph := chart.Chart{
		Title:  "Portfolio Timeline",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return money(f, cur)
				}
				return ""
			},
		},
		Series: []chart.Series{
			series("Portfolio value", palette[0], 2.5, nil, value),
			series("Net invested", palette[1], 2, nil, invested),
			series("Cost basis", "9ca3af", 1.5, []float64{5.0, 3.0}, cost),
			series("Realized P/L", palette[2], 1.5, nil, realized),
		},
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// AllocationChart renders a PNG pie chart of the allocation slices.
func AllocationChart(slices []coinfolio.AllocationSlice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, fmt.Errorf("nothing to allocate")
	}

	values := make([]chart.Value, len(slices))
	for i, s := range slices {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", s.Symbol, s.Percent),
			Value: s.Value,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(palette[i%len(palette)]),
				StrokeColor: drawing.ColorWhite,
			},
		}
	}

	pie := chart.PieChart{
		Title:  "Allocation",
		Width:  512,
		Height: 512,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
