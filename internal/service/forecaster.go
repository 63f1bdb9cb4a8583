package service

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ivanoskov/expense_forecast/internal/forecast"
	"github.com/ivanoskov/expense_forecast/internal/model"
	"github.com/ivanoskov/expense_forecast/internal/repository"
)

// SpendForecaster runs the forecasting pipeline: aggregate, split,
// forecast, evaluate. Each stage takes explicit inputs and returns a
// new result; nothing is shared across stage boundaries.
type SpendForecaster struct {
	repo   repository.Repository
	engine forecast.Engine
	logger *slog.Logger
}

// NewSpendForecaster creates a new pipeline service.
func NewSpendForecaster(repo repository.Repository, engine forecast.Engine, logger *slog.Logger) *SpendForecaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpendForecaster{
		repo:   repo,
		engine: engine,
		logger: logger,
	}
}

// RunParams are the per-run pipeline options.
type RunParams struct {
	Filter         model.TransactionFilter
	HoldoutPeriods int
	Horizon        int
	Engine         forecast.Config
}

// Report is the full pipeline output. Rendering and persistence happen
// downstream so a report failure cannot corrupt these results.
type Report struct {
	Series     model.MonthlySeries
	Split      model.SeriesSplit
	Forecast   *model.Forecast
	Evaluation *model.Evaluation
}

// Run executes the pipeline once. Ingestion, filter, and data errors
// abort immediately with no partial output.
func (s *SpendForecaster) Run(ctx context.Context, params RunParams) (*Report, error) {
	series, err := s.MonthlySeries(ctx, params.Filter)
	if err != nil {
		return nil, err
	}
	s.logger.Info("aggregated monthly series",
		"city", params.Filter.City,
		"category", params.Filter.Category,
		"months", len(series),
	)

	split, err := s.Split(series, params.HoldoutPeriods)
	if err != nil {
		return nil, err
	}
	s.logger.Info("split series",
		"training", len(split.Training),
		"holdout", len(split.Holdout),
		"cutoff", split.Cutoff.Format("2006-01"),
	)

	fc, err := s.engine.Forecast(ctx, split.Training, params.Engine, params.Horizon)
	if err != nil {
		return nil, err
	}
	s.logger.Info("forecast complete", "points", len(fc.Points), "horizon", params.Horizon)

	eval, err := s.Evaluate(split.Holdout, fc)
	if err != nil {
		return nil, err
	}
	s.logger.Info("evaluation complete", "rows", len(eval.Rows), "mae", eval.MAE)

	return &Report{
		Series:     series,
		Split:      split,
		Forecast:   fc,
		Evaluation: eval,
	}, nil
}

// MonthlySeries loads transactions for the filter and buckets them
// into calendar-month sums, sorted ascending. Months with no matching
// transactions are absent from the result. A filter matching zero
// transactions returns ErrEmptyFilter.
func (s *SpendForecaster) MonthlySeries(ctx context.Context, filter model.TransactionFilter) (model.MonthlySeries, error) {
	transactions, err := s.repo.GetTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, ErrEmptyFilter
	}
	return Aggregate(transactions), nil
}

// Aggregate sums transactions into one point per calendar month.
func Aggregate(transactions []model.Transaction) model.MonthlySeries {
	totals := make(map[time.Time]model.MonthlyPoint)
	for i := range transactions {
		t := &transactions[i]
		month := t.Month()
		point := totals[month]
		point.Month = month
		point.Total = point.Total.Add(t.Amount)
		totals[month] = point
	}

	series := make(model.MonthlySeries, 0, len(totals))
	for _, point := range totals {
		series = append(series, point)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Month.Before(series[j].Month)
	})
	return series
}

// Split partitions the series at max(date) minus holdoutPeriods
// months. Training points fall on or before the cutoff, holdout points
// after it. Returns ErrInsufficientData when either side is empty.
func (s *SpendForecaster) Split(series model.MonthlySeries, holdoutPeriods int) (model.SeriesSplit, error) {
	last, ok := series.Last()
	if !ok {
		return model.SeriesSplit{}, ErrInsufficientData
	}

	cutoff := last.Month.AddDate(0, -holdoutPeriods, 0)
	split := model.SeriesSplit{Cutoff: cutoff}
	for _, point := range series {
		if point.Month.After(cutoff) {
			split.Holdout = append(split.Holdout, point)
		} else {
			split.Training = append(split.Training, point)
		}
	}

	if len(split.Training) == 0 || len(split.Holdout) == 0 {
		return model.SeriesSplit{}, ErrInsufficientData
	}
	return split, nil
}

// Evaluate inner-joins holdout actuals to forecast estimates on date
// and computes the mean absolute error over the joined rows. Returns
// ErrNoOverlap when the join is empty.
func (s *SpendForecaster) Evaluate(holdout model.MonthlySeries, fc *model.Forecast) (*model.Evaluation, error) {
	var rows []model.EvaluationRow
	sum := 0.0
	for _, point := range holdout {
		predicted, ok := fc.ValueAt(point.Month)
		if !ok {
			continue
		}
		actual, _ := point.Total.Float64()
		rows = append(rows, model.EvaluationRow{
			Date:      point.Month,
			Actual:    actual,
			Predicted: predicted,
		})
		sum += math.Abs(actual - predicted)
	}

	if len(rows) == 0 {
		return nil, ErrNoOverlap
	}
	return &model.Evaluation{
		Rows: rows,
		MAE:  sum / float64(len(rows)),
	}, nil
}
