package forecast

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/sartorproj/goarima/arima"
	"github.com/sartorproj/goarima/timeseries"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// ARIMAEngine fits an ARIMA(p,d,q) model via goarima. It exposes no
// trend/seasonality decomposition, so Forecast leaves the component
// curves nil and the seasonality toggles have no effect.
type ARIMAEngine struct {
	p, d, q int
}

// NewARIMAEngine creates an ARIMA engine with the given order.
func NewARIMAEngine(p, d, q int) *ARIMAEngine {
	return &ARIMAEngine{p: p, d: d, q: q}
}

// NewDefaultARIMAEngine creates an ARIMA(1,1,0) engine, a reasonable
// default for short monthly spend series.
func NewDefaultARIMAEngine() *ARIMAEngine {
	return NewARIMAEngine(1, 1, 0)
}

// Forecast fits the training series and predicts every training month
// plus horizon future month-starts. In-sample values come from the
// model fit; uncertainty bounds are derived from residual dispersion
// at the configured confidence level, widening with the forecast step.
func (e *ARIMAEngine) Forecast(ctx context.Context, training model.MonthlySeries, cfg Config, horizon int) (*model.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := training.Values()
	series, err := timeseries.NewWithTimestamps(training.Dates(), values)
	if err != nil {
		return nil, errors.Wrap(err, "building ARIMA input series")
	}

	m := arima.New(e.p, e.d, e.q)
	if err := m.Fit(series); err != nil {
		return nil, errors.Wrapf(err, "fitting ARIMA(%d,%d,%d)", e.p, e.d, e.q)
	}

	future, err := m.Predict(horizon)
	if err != nil {
		return nil, errors.Wrap(err, "predicting with ARIMA model")
	}

	sigma := standardDeviation(m.Residuals())
	z := normalQuantile(cfg.ConfidenceLevel)
	fitted := alignFitted(values, m.FittedValues())

	dates := forecastDates(training, horizon)
	points := make([]model.ForecastPoint, 0, len(dates))

	for i, date := range training.Dates() {
		points = append(points, model.ForecastPoint{
			Date:  date,
			Value: fitted[i],
			Lower: fitted[i] - z*sigma,
			Upper: fitted[i] + z*sigma,
		})
	}

	futureDates := dates[len(training):]
	for i, date := range futureDates {
		width := z * sigma * math.Sqrt(float64(i+1))
		points = append(points, model.ForecastPoint{
			Date:  date,
			Value: future[i],
			Lower: future[i] - width,
			Upper: future[i] + width,
		})
	}

	return &model.Forecast{
		Points:          points,
		ConfidenceLevel: cfg.ConfidenceLevel,
	}, nil
}

// alignFitted maps the model's fitted values onto the full series
// index. Under differencing of order d the fit covers only the last
// len(values)-d observations; the uncovered prefix falls back to the
// observed values.
func alignFitted(values, fitted []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	offset := len(values) - len(fitted)
	if offset < 0 {
		offset = 0
		fitted = fitted[len(fitted)-len(values):]
	}
	copy(out[offset:], fitted)
	return out
}

func standardDeviation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	variance := 0.0
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}

// normalQuantile returns the two-sided standard normal quantile for
// the given interval coverage.
func normalQuantile(coverage float64) float64 {
	if coverage <= 0 || coverage >= 1 {
		coverage = 0.8
	}
	return math.Sqrt2 * math.Erfinv(coverage)
}
