package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the workflow configuration, loaded from environment
// variables (optionally via a .env file).
type Config struct {
	// InputFile is the path to the transactions CSV.
	InputFile string `koanf:"FORECAST_INPUT_FILE"`

	// FilterCity and FilterCategory select the series to forecast.
	// Matching is exact and case-sensitive.
	FilterCity     string `koanf:"FORECAST_CITY"`
	FilterCategory string `koanf:"FORECAST_CATEGORY"`

	// HoldoutPeriods is the number of most recent months withheld for
	// evaluation. Must be at least 1.
	HoldoutPeriods int `koanf:"FORECAST_HOLDOUT_PERIODS"`

	// Horizon is the number of months to forecast past the end of the
	// training range. Must be at least HoldoutPeriods.
	Horizon int `koanf:"FORECAST_HORIZON"`

	// Seasonality toggles passed to the engine.
	YearlySeasonality bool `koanf:"FORECAST_YEARLY_SEASONALITY"`
	WeeklySeasonality bool `koanf:"FORECAST_WEEKLY_SEASONALITY"`
	DailySeasonality  bool `koanf:"FORECAST_DAILY_SEASONALITY"`

	// ConfidenceLevel is the uncertainty interval coverage, in (0, 1).
	ConfidenceLevel float64 `koanf:"FORECAST_CONFIDENCE_LEVEL"`

	// Engine selects the forecasting engine: "additive" (default) or
	// "arima".
	Engine string `koanf:"FORECAST_ENGINE"`

	// OutputDir is where charts and the evaluation report are written.
	OutputDir string `koanf:"FORECAST_OUTPUT_DIR"`
}

// Defaults applied when the environment leaves an option unset.
const (
	DefaultHoldoutPeriods  = 6
	DefaultHorizon         = 6
	DefaultConfidenceLevel = 0.8
	DefaultEngine          = "additive"
	DefaultOutputDir       = "out"
)

// LoadConfig reads configuration from the environment. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{
		HoldoutPeriods:    DefaultHoldoutPeriods,
		Horizon:           DefaultHorizon,
		YearlySeasonality: true,
		ConfidenceLevel:   DefaultConfidenceLevel,
		Engine:            DefaultEngine,
		OutputDir:         DefaultOutputDir,
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks option ranges before any pipeline work starts.
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("FORECAST_INPUT_FILE is required")
	}
	if c.FilterCity == "" || c.FilterCategory == "" {
		return fmt.Errorf("FORECAST_CITY and FORECAST_CATEGORY are required")
	}
	if c.HoldoutPeriods < 1 {
		return fmt.Errorf("holdout periods must be at least 1, got %d", c.HoldoutPeriods)
	}
	if c.Horizon < c.HoldoutPeriods {
		return fmt.Errorf("horizon %d must be at least the holdout length %d", c.Horizon, c.HoldoutPeriods)
	}
	if c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level must be in (0, 1), got %v", c.ConfidenceLevel)
	}
	if c.Engine != "additive" && c.Engine != "arima" {
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	return nil
}
