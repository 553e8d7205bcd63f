package growth

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/signals"
)

// ErrNoChartData is returned when there is nothing to plot.
var ErrNoChartData = errors.New("no growth data to chart")

// RenderNetWorthChart renders a PNG line chart of a combined series.
// Two series: Net Worth (blue solid) and Portfolio Value (gray dashed),
// plus a moving-average trend line once there are more points than the
// short window.
// Y-axis labels are formatted in currency. A single point is drawn as a
// flat line over one day.
func RenderNetWorthChart(points []models.CombinedGrowthPoint, currency string) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoChartData
	}
	if len(points) == 1 {
		prev := points[0]
		prev.Date = prev.Date.AddDate(0, 0, -1)
		points = []models.CombinedGrowthPoint{prev, points[0]}
	}

	xValues := make([]time.Time, len(points))
	netWorthY := make([]float64, len(points))
	portfolioY := make([]float64, len(points))

	for i, p := range points {
		xValues[i] = p.Date
		netWorthY[i] = p.NetWorth.InexactFloat64()
		portfolioY[i] = p.TotalPortfolioValue.InexactFloat64()
	}

	netWorthSeries := chart.TimeSeries{
		Name: "Net Worth",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: netWorthY,
	}

	portfolioSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: portfolioY,
	}

	series := []chart.Series{netWorthSeries, portfolioSeries}
	if len(points) > signals.ShortWindow {
		series = append(series, chart.TimeSeries{
			Name: fmt.Sprintf("Trend (%d-pt avg)", signals.ShortWindow),
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("16a34a"), // green-600
				StrokeWidth: 1.5,
			},
			XValues: xValues,
			YValues: signals.RollingSMA(netWorthY, signals.ShortWindow),
		})
	}

	graph := chart.Chart{
		Title:  "Net Worth",
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
					return common.FormatMoneyWhole(decimal.NewFromFloat(f), currency)
				}
				return ""
			},
		},
		Series: series,
	}

	// go-chart rejects a zero-height y range, so flat series get padding.
	if lo, hi := bounds(netWorthY, portfolioY); lo == hi {
		pad := math.Max(math.Abs(lo)*0.1, 1)
		graph.YAxis.Range = &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
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

func bounds(series ...[]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, ys := range series {
		for _, y := range ys {
			lo = math.Min(lo, y)
			hi = math.Max(hi, y)
		}
	}
	return lo, hi
}
