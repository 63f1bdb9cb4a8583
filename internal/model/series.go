package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPoint is the summed spend for a single calendar month.
type MonthlyPoint struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// MonthlySeries is a monthly spend series, sorted ascending by month
// with unique months. Months with no transactions are absent, not zero.
type MonthlySeries []MonthlyPoint

// Dates returns the month-start dates of the series in order.
func (s MonthlySeries) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, p := range s {
		dates[i] = p.Month
	}
	return dates
}

// Values returns the series totals as float64, for the engine boundary.
func (s MonthlySeries) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i], _ = p.Total.Float64()
	}
	return values
}

// Total returns the exact sum of all points in the series.
func (s MonthlySeries) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s {
		sum = sum.Add(p.Total)
	}
	return sum
}

// Last returns the most recent point. The second return value is false
// for an empty series.
func (s MonthlySeries) Last() (MonthlyPoint, bool) {
	if len(s) == 0 {
		return MonthlyPoint{}, false
	}
	return s[len(s)-1], true
}

// SeriesSplit partitions a monthly series into a training prefix and a
// holdout suffix at the cutoff date. Training points have Month <=
// Cutoff, holdout points come after it.
type SeriesSplit struct {
	Training MonthlySeries `json:"training"`
	Holdout  MonthlySeries `json:"holdout"`
	Cutoff   time.Time     `json:"cutoff"`
}

// ForecastPoint is a point estimate with its uncertainty interval for a
// single date.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// Forecast is the engine output over the training range extended by the
// requested horizon. Trend and Seasonal carry the per-date component
// decomposition when the engine exposes one; both are nil otherwise.
type Forecast struct {
	Points          []ForecastPoint `json:"points"`
	Trend           []float64       `json:"trend,omitempty"`
	Seasonal        []float64       `json:"seasonal,omitempty"`
	ConfidenceLevel float64         `json:"confidence_level"`
}

// ValueAt returns the point estimate for the given date. The second
// return value is false when the forecast has no point for that date.
func (f *Forecast) ValueAt(date time.Time) (float64, bool) {
	for _, p := range f.Points {
		if p.Date.Equal(date) {
			return p.Value, true
		}
	}
	return 0, false
}

// EvaluationRow pairs a holdout actual with its forecast estimate.
type EvaluationRow struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
}

// Evaluation is the holdout comparison and its mean absolute error.
type Evaluation struct {
	Rows []EvaluationRow `json:"rows"`
	MAE  float64         `json:"mae"`
}
