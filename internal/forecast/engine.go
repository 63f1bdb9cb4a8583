// Package forecast wraps external time-series forecasting engines
// behind a narrow interface so the pipeline never depends on a
// particular library.
package forecast

import (
	"context"
	"time"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// Config holds the engine options recognized by the workflow.
type Config struct {
	YearlySeasonality bool
	WeeklySeasonality bool
	DailySeasonality  bool

	// ConfidenceLevel is the coverage of the uncertainty interval,
	// in (0, 1). Typically 0.8.
	ConfidenceLevel float64
}

// Engine fits a model to the training series and predicts every month
// from the start of the training range through horizon periods past
// its end. Engines are stochastic; repeated calls on the same input
// may differ numerically.
type Engine interface {
	Forecast(ctx context.Context, training model.MonthlySeries, cfg Config, horizon int) (*model.Forecast, error)
}

// MonthStarts returns the n consecutive month-start dates immediately
// following the month containing after.
func MonthStarts(after time.Time, n int) []time.Time {
	start := time.Date(after.Year(), after.Month(), 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, i+1, 0)
	}
	return dates
}

// forecastDates is the full prediction index: every training month
// followed by horizon future month-starts.
func forecastDates(training model.MonthlySeries, horizon int) []time.Time {
	dates := training.Dates()
	last, ok := training.Last()
	if !ok {
		return dates
	}
	return append(dates, MonthStarts(last.Month, horizon)...)
}
