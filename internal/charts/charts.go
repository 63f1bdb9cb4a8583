package charts

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// ErrNoComponents is returned when the engine exposed no
// trend/seasonality decomposition to plot.
var ErrNoComponents = errors.New("forecast has no component decomposition")

// ChartGenerator renders the pipeline charts as PNG bytes.
type ChartGenerator struct{}

// NewChartGenerator creates a new chart generator.
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{}
}

func amountFormatter(v interface{}) string {
	return fmt.Sprintf("%.0f", v.(float64))
}

// HistoryChart renders the raw monthly spend series as a line plot.
func (g *ChartGenerator) HistoryChart(series model.MonthlySeries) ([]byte, error) {
	if len(series) == 0 {
		return nil, nil
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 06"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: amountFormatter,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Monthly spend",
				XValues: series.Dates(),
				YValues: series.Values(),
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render history chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// ForecastChart renders history, the point forecast, the uncertainty
// band, and the train/test boundary.
func (g *ChartGenerator) ForecastChart(series model.MonthlySeries, split model.SeriesSplit, fc *model.Forecast) ([]byte, error) {
	if len(series) == 0 || fc == nil || len(fc.Points) == 0 {
		return nil, nil
	}

	forecastDates := make([]time.Time, len(fc.Points))
	pointValues := make([]float64, len(fc.Points))
	lowerValues := make([]float64, len(fc.Points))
	upperValues := make([]float64, len(fc.Points))
	for i, p := range fc.Points {
		forecastDates[i] = p.Date
		pointValues[i] = p.Value
		lowerValues[i] = p.Lower
		upperValues[i] = p.Upper
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 06"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: amountFormatter,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Actual",
				XValues: series.Dates(),
				YValues: series.Values(),
				Style: chart.Style{
					StrokeColor: chart.ColorBlack,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Forecast",
				XValues: forecastDates,
				YValues: pointValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
			chart.TimeSeries{
				Name:    "Upper bound",
				XValues: forecastDates,
				YValues: upperValues,
				Style: chart.Style{
					StrokeColor:     chart.ColorBlue.WithAlpha(100),
					StrokeWidth:     1,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
			chart.TimeSeries{
				Name:    "Lower bound",
				XValues: forecastDates,
				YValues: lowerValues,
				Style: chart.Style{
					StrokeColor:     chart.ColorBlue.WithAlpha(100),
					StrokeWidth:     1,
					StrokeDashArray: []float64{5.0, 5.0},
				},
			},
			chart.AnnotationSeries{
				Annotations: []chart.Value2{
					{
						// Time axes plot as UnixNano floats.
						XValue: float64(split.Cutoff.UnixNano()),
						YValue: maxValue(series.Values()),
						Label:  "train/test",
					},
				},
				Style: chart.Style{
					FontSize:    12,
					FontColor:   chart.ColorRed,
					StrokeColor: chart.ColorRed,
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render forecast chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// ComponentsChart renders the trend and seasonal curves decomposed by
// the engine. Returns ErrNoComponents when the engine exposed none.
func (g *ChartGenerator) ComponentsChart(fc *model.Forecast) ([]byte, error) {
	if fc == nil || len(fc.Points) == 0 || len(fc.Trend) == 0 {
		return nil, ErrNoComponents
	}

	dates := make([]time.Time, len(fc.Points))
	for i, p := range fc.Points {
		dates[i] = p.Date
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    "Trend",
			XValues: dates[:len(fc.Trend)],
			YValues: fc.Trend,
			Style: chart.Style{
				StrokeColor: chart.ColorGreen,
				StrokeWidth: 2,
			},
		},
	}
	if len(fc.Seasonal) > 0 {
		series = append(series, chart.TimeSeries{
			Name:    "Seasonality",
			XValues: dates[:len(fc.Seasonal)],
			YValues: fc.Seasonal,
			Style: chart.Style{
				StrokeColor:     chart.ColorOrange,
				StrokeWidth:     2,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		})
	}

	graph := chart.Chart{
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 06"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: amountFormatter,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: series,
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render components chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func maxValue(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
