package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/expense_forecast/internal/forecast"
	"github.com/ivanoskov/expense_forecast/internal/model"
)

// fakeRepo serves a fixed transaction slice, filtered like the real
// repository.
type fakeRepo struct {
	transactions []model.Transaction
}

func (r *fakeRepo) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	var out []model.Transaction
	for i := range r.transactions {
		if filter.Matches(&r.transactions[i]) {
			out = append(out, r.transactions[i])
		}
	}
	return out, nil
}

// linearEngine extrapolates the last training step deterministically,
// predicting over the training range plus the horizon.
type linearEngine struct{}

func (linearEngine) Forecast(ctx context.Context, training model.MonthlySeries, cfg forecast.Config, horizon int) (*model.Forecast, error) {
	values := training.Values()
	step := 0.0
	if len(values) >= 2 {
		step = values[len(values)-1] - values[len(values)-2]
	}

	var points []model.ForecastPoint
	for i, date := range training.Dates() {
		points = append(points, model.ForecastPoint{Date: date, Value: values[i], Lower: values[i], Upper: values[i]})
	}
	last, _ := training.Last()
	lastValue := values[len(values)-1]
	for i, date := range forecast.MonthStarts(last.Month, horizon) {
		v := lastValue + step*float64(i+1)
		points = append(points, model.ForecastPoint{Date: date, Value: v, Lower: v - 1, Upper: v + 1})
	}
	return &model.Forecast{Points: points, ConfidenceLevel: cfg.ConfidenceLevel}, nil
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func transaction(day time.Time, city, category string, amount float64) model.Transaction {
	return model.Transaction{
		Date:     day,
		City:     city,
		Category: category,
		Amount:   decimal.NewFromFloat(amount),
	}
}

// linearTransactions builds one transaction per month with amounts
// 100, 110, 120, ... for n months starting at the given month.
func linearTransactions(start time.Time, n int, city, category string) []model.Transaction {
	out := make([]model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, i, 13)
		out = append(out, transaction(date, city, category, 100+10*float64(i)))
	}
	return out
}

func TestAggregate_SortedUniqueMonths(t *testing.T) {
	transactions := []model.Transaction{
		transaction(time.Date(2014, 10, 14, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 50),
		transaction(time.Date(2014, 8, 2, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 30),
		transaction(time.Date(2014, 10, 3, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 20),
		transaction(time.Date(2014, 9, 21, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 10),
	}

	series := Aggregate(transactions)

	require.Len(t, series, 3)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Month.Before(series[i].Month), "months must be strictly increasing")
	}
	assert.Equal(t, month(2014, time.October), series[2].Month)
	assert.Equal(t, "70", series[2].Total.String())
}

func TestAggregate_PreservesTotalExactly(t *testing.T) {
	transactions := []model.Transaction{
		transaction(time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), "Mumbai", "Fuel", 0.1),
		transaction(time.Date(2015, 1, 9, 0, 0, 0, 0, time.UTC), "Mumbai", "Fuel", 0.2),
		transaction(time.Date(2015, 2, 5, 0, 0, 0, 0, time.UTC), "Mumbai", "Fuel", 1234.56),
	}

	series := Aggregate(transactions)

	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
	}
	assert.True(t, series.Total().Equal(total), "aggregated total %s != transaction total %s", series.Total(), total)
	// 0.1 + 0.2 must not pick up float drift.
	assert.Equal(t, "0.3", series[0].Total.String())
}

func TestAggregate_GapMonthsAbsent(t *testing.T) {
	transactions := []model.Transaction{
		transaction(time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 10),
		transaction(time.Date(2015, 4, 5, 0, 0, 0, 0, time.UTC), "Delhi", "Food", 20),
	}

	series := Aggregate(transactions)

	require.Len(t, series, 2)
	assert.Equal(t, month(2015, time.January), series[0].Month)
	assert.Equal(t, month(2015, time.April), series[1].Month)
}

func TestMonthlySeries_EmptyFilter(t *testing.T) {
	repo := &fakeRepo{transactions: linearTransactions(month(2014, time.January), 5, "Delhi", "Food")}
	s := NewSpendForecaster(repo, linearEngine{}, nil)

	_, err := s.MonthlySeries(context.Background(), model.TransactionFilter{City: "delhi", Category: "Food"})
	assert.ErrorIs(t, err, ErrEmptyFilter, "case-sensitive match must not find lowercased city")
}

func TestSplit_Partition(t *testing.T) {
	series := Aggregate(linearTransactions(month(2014, time.January), 14, "Delhi", "Food"))
	s := NewSpendForecaster(nil, nil, nil)

	split, err := s.Split(series, 6)
	require.NoError(t, err)

	assert.Len(t, split.Training, 8)
	assert.Len(t, split.Holdout, 6)
	assert.Equal(t, len(series), len(split.Training)+len(split.Holdout))

	lastTraining, _ := split.Training.Last()
	assert.False(t, lastTraining.Month.After(split.Cutoff), "max(training) must be <= cutoff")
	assert.True(t, split.Cutoff.Before(split.Holdout[0].Month), "cutoff must be < min(holdout)")
}

func TestSplit_InsufficientData(t *testing.T) {
	s := NewSpendForecaster(nil, nil, nil)

	_, err := s.Split(nil, 6)
	assert.ErrorIs(t, err, ErrInsufficientData)

	// All points fall into the holdout: no training prefix.
	series := Aggregate(linearTransactions(month(2014, time.January), 3, "Delhi", "Food"))
	_, err = s.Split(series, 6)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestEvaluate_MAE(t *testing.T) {
	s := NewSpendForecaster(nil, nil, nil)
	holdout := model.MonthlySeries{
		{Month: month(2015, time.January), Total: decimal.NewFromInt(100)},
		{Month: month(2015, time.February), Total: decimal.NewFromInt(200)},
	}
	fc := &model.Forecast{Points: []model.ForecastPoint{
		{Date: month(2015, time.January), Value: 90},
		{Date: month(2015, time.February), Value: 220},
	}}

	eval, err := s.Evaluate(holdout, fc)
	require.NoError(t, err)

	require.Len(t, eval.Rows, 2)
	assert.InDelta(t, 15.0, eval.MAE, 1e-9)
}

func TestEvaluate_InnerJoin(t *testing.T) {
	s := NewSpendForecaster(nil, nil, nil)
	holdout := model.MonthlySeries{
		{Month: month(2015, time.January), Total: decimal.NewFromInt(100)},
		{Month: month(2015, time.February), Total: decimal.NewFromInt(200)},
		{Month: month(2015, time.March), Total: decimal.NewFromInt(300)},
	}
	fc := &model.Forecast{Points: []model.ForecastPoint{
		{Date: month(2015, time.February), Value: 200},
	}}

	eval, err := s.Evaluate(holdout, fc)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(eval.Rows), len(fc.Points))
	require.Len(t, eval.Rows, 1)
	assert.Zero(t, eval.MAE, "equal actual and predicted must give MAE of exactly 0")
}

func TestEvaluate_NoOverlap(t *testing.T) {
	s := NewSpendForecaster(nil, nil, nil)
	holdout := model.MonthlySeries{
		{Month: month(2015, time.January), Total: decimal.NewFromInt(100)},
	}
	fc := &model.Forecast{Points: []model.ForecastPoint{
		{Date: month(2020, time.January), Value: 100},
	}}

	_, err := s.Evaluate(holdout, fc)
	assert.ErrorIs(t, err, ErrNoOverlap)
}

func TestRun_LinearTrendEndToEnd(t *testing.T) {
	// 14 monthly points 100, 110, ..., 230 with a 6-month holdout.
	repo := &fakeRepo{transactions: linearTransactions(month(2014, time.January), 14, "Delhi", "Food")}
	s := NewSpendForecaster(repo, linearEngine{}, nil)

	result, err := s.Run(context.Background(), RunParams{
		Filter:         model.TransactionFilter{City: "Delhi", Category: "Food"},
		HoldoutPeriods: 6,
		Horizon:        6,
		Engine:         forecast.Config{ConfidenceLevel: 0.8},
	})
	require.NoError(t, err)

	assert.Len(t, result.Split.Training, 8)
	assert.Len(t, result.Split.Holdout, 6)

	// Forecast horizon dates are consecutive month-starts right after
	// the last training month.
	lastTraining, _ := result.Split.Training.Last()
	horizon := result.Forecast.Points[len(result.Split.Training):]
	require.Len(t, horizon, 6)
	for i, p := range horizon {
		assert.Equal(t, lastTraining.Month.AddDate(0, i+1, 0), p.Date)
	}

	// The fake engine extrapolates the exact linear trend, so the
	// holdout is matched perfectly.
	require.Len(t, result.Evaluation.Rows, 6)
	assert.Zero(t, result.Evaluation.MAE)
}

func TestRun_EmptyFilterAborts(t *testing.T) {
	repo := &fakeRepo{transactions: linearTransactions(month(2014, time.January), 14, "Delhi", "Food")}
	s := NewSpendForecaster(repo, linearEngine{}, nil)

	result, err := s.Run(context.Background(), RunParams{
		Filter:         model.TransactionFilter{City: "Delhi", Category: "Travel"},
		HoldoutPeriods: 6,
		Horizon:        6,
	})
	assert.ErrorIs(t, err, ErrEmptyFilter)
	assert.Nil(t, result, "no partial output on filter errors")
}

func TestMonthlySeries_Idempotent(t *testing.T) {
	repo := &fakeRepo{transactions: linearTransactions(month(2014, time.January), 14, "Delhi", "Food")}
	s := NewSpendForecaster(repo, linearEngine{}, nil)
	filter := model.TransactionFilter{City: "Delhi", Category: "Food"}

	first, err := s.MonthlySeries(context.Background(), filter)
	require.NoError(t, err)
	second, err := s.MonthlySeries(context.Background(), filter)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Month, second[i].Month)
		assert.True(t, first[i].Total.Equal(second[i].Total))
	}
}
