package forecast

import (
	"context"
	"time"

	forecaster "github.com/aouyang1/go-forecaster"
	"github.com/aouyang1/go-forecaster/forecast/options"
	"github.com/pkg/errors"

	"github.com/ivanoskov/expense_forecast/internal/model"
)

// Fourier orders per seasonality. Monthly data is sparse, so only a
// few harmonics are requested.
const seasonalityOrders = 3

// Seasonality periods for the workflow toggles.
const (
	yearPeriod = 365*24*time.Hour + 6*time.Hour
	weekPeriod = 7 * 24 * time.Hour
	dayPeriod  = 24 * time.Hour
)

// AdditiveEngine fits a trend plus seasonality decomposition with
// changepoint detection via go-forecaster. It is the default engine.
type AdditiveEngine struct{}

// NewAdditiveEngine creates the default forecasting engine.
func NewAdditiveEngine() *AdditiveEngine {
	return &AdditiveEngine{}
}

// Forecast fits the training series and predicts every training month
// plus horizon future month-starts, with uncertainty bounds.
func (e *AdditiveEngine) Forecast(ctx context.Context, training model.MonthlySeries, cfg Config, horizon int) (*model.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := forecaster.New(e.options(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "creating additive forecaster")
	}

	if err := f.Fit(training.Dates(), training.Values()); err != nil {
		return nil, errors.Wrap(err, "fitting additive model")
	}

	res, err := f.Predict(forecastDates(training, horizon))
	if err != nil {
		return nil, errors.Wrap(err, "predicting with additive model")
	}

	points := make([]model.ForecastPoint, len(res.T))
	for i, date := range res.T {
		points[i] = model.ForecastPoint{
			Date:  date,
			Value: res.Forecast[i],
			Lower: res.Lower[i],
			Upper: res.Upper[i],
		}
	}

	return &model.Forecast{
		Points:          points,
		Trend:           res.SeriesComponents.Trend,
		Seasonal:        res.SeriesComponents.Seasonality,
		ConfidenceLevel: cfg.ConfidenceLevel,
	}, nil
}

// options maps the workflow seasonality toggles onto go-forecaster
// seasonality configs for the series model.
func (e *AdditiveEngine) options(cfg Config) *forecaster.Options {
	return &forecaster.Options{
		SeriesOptions: &forecaster.SeriesOptions{
			ForecastOptions: &options.Options{
				SeasonalityOptions: e.seasonalities(cfg),
			},
		},
	}
}

func (e *AdditiveEngine) seasonalities(cfg Config) options.SeasonalityOptions {
	var seas options.SeasonalityOptions
	if cfg.YearlySeasonality {
		seas.SeasonalityConfigs = append(seas.SeasonalityConfigs,
			options.NewSeasonalityConfig("yearly", yearPeriod, seasonalityOrders))
	}
	if cfg.WeeklySeasonality {
		seas.SeasonalityConfigs = append(seas.SeasonalityConfigs,
			options.NewSeasonalityConfig("weekly", weekPeriod, seasonalityOrders))
	}
	if cfg.DailySeasonality {
		seas.SeasonalityConfigs = append(seas.SeasonalityConfigs,
			options.NewSeasonalityConfig("daily", dayPeriod, seasonalityOrders))
	}
	return seas
}
