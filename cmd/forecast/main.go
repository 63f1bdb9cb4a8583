package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ivanoskov/expense_forecast/internal/charts"
	"github.com/ivanoskov/expense_forecast/internal/config"
	"github.com/ivanoskov/expense_forecast/internal/forecast"
	"github.com/ivanoskov/expense_forecast/internal/logging"
	"github.com/ivanoskov/expense_forecast/internal/model"
	"github.com/ivanoskov/expense_forecast/internal/report"
	"github.com/ivanoskov/expense_forecast/internal/repository"
	"github.com/ivanoskov/expense_forecast/internal/service"
)

func main() {
	logger := logging.Setup(logging.DefaultConfig())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var engine forecast.Engine
	switch cfg.Engine {
	case "arima":
		engine = forecast.NewDefaultARIMAEngine()
	default:
		engine = forecast.NewAdditiveEngine()
	}

	repo := repository.NewCSVRepository(cfg.InputFile)
	forecaster := service.NewSpendForecaster(repo, engine, logger)

	result, err := forecaster.Run(context.Background(), service.RunParams{
		Filter: model.TransactionFilter{
			City:     cfg.FilterCity,
			Category: cfg.FilterCategory,
		},
		HoldoutPeriods: cfg.HoldoutPeriods,
		Horizon:        cfg.Horizon,
		Engine: forecast.Config{
			YearlySeasonality: cfg.YearlySeasonality,
			WeeklySeasonality: cfg.WeeklySeasonality,
			DailySeasonality:  cfg.DailySeasonality,
			ConfidenceLevel:   cfg.ConfidenceLevel,
		},
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}

	printEvaluation(result.Evaluation)

	// Rendering and persistence are isolated: a failure here is
	// reported but the computed results above are already out.
	sink, err := report.NewFileSink(cfg.OutputDir, logger)
	if err != nil {
		logger.Error("failed to create report sink", "error", err)
		os.Exit(0)
	}
	renderReports(result, sink, logger)
}

func printEvaluation(eval *model.Evaluation) {
	fmt.Println("Date        Actual      Predicted")
	for _, row := range eval.Rows {
		fmt.Printf("%s  %10.2f  %10.2f\n", row.Date.Format("2006-01-02"), row.Actual, row.Predicted)
	}
	fmt.Printf("MAE: %.2f\n", eval.MAE)
}

func renderReports(result *service.Report, sink report.Sink, logger *slog.Logger) {
	generator := charts.NewChartGenerator()

	history, err := generator.HistoryChart(result.Series)
	if err != nil {
		logger.Error("failed to render history chart", "error", err)
	} else if err := sink.WriteChart("history", history); err != nil {
		logger.Error("failed to write history chart", "error", err)
	}

	forecastPlot, err := generator.ForecastChart(result.Series, result.Split, result.Forecast)
	if err != nil {
		logger.Error("failed to render forecast chart", "error", err)
	} else if err := sink.WriteChart("forecast", forecastPlot); err != nil {
		logger.Error("failed to write forecast chart", "error", err)
	}

	components, err := generator.ComponentsChart(result.Forecast)
	switch {
	case errors.Is(err, charts.ErrNoComponents):
		logger.Info("engine exposed no decomposition, skipping components chart")
	case err != nil:
		logger.Error("failed to render components chart", "error", err)
	default:
		if err := sink.WriteChart("components", components); err != nil {
			logger.Error("failed to write components chart", "error", err)
		}
	}

	if err := sink.WriteEvaluation(result.Evaluation); err != nil {
		logger.Error("failed to write evaluation report", "error", err)
	}
}
