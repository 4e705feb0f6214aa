package config

import (
	"os"
	"strconv"

	"leadfunnel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Forecast ForecastConfig
	Logging  LoggingConfig
}

// InputConfig holds the lead export location
type InputConfig struct {
	CSVPath string
}

// OutputConfig holds artifact destinations
type OutputConfig struct {
	Dir          string
	ExcelEnabled bool
}

// ForecastConfig holds projection settings
type ForecastConfig struct {
	Horizon int
	Window  int
}

// LoggingConfig holds log verbosity settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Input: InputConfig{
			CSVPath: getEnvOrDefault("INPUT_CSV", "crm_leads.csv"),
		},
		Output: OutputConfig{
			Dir:          getEnvOrDefault("OUTPUT_DIR", "output"),
			ExcelEnabled: getEnvBoolOrDefault("EXCEL_EXPORT", true),
		},
		Forecast: ForecastConfig{
			Horizon: getEnvIntOrDefault("FORECAST_WEEKS", 4),
			Window:  getEnvIntOrDefault("FORECAST_WINDOW", 4),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Input.CSVPath == "" {
		return errors.ConfigInvalid("input CSV path is required")
	}
	if config.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Forecast.Horizon < 0 {
		return errors.ConfigInvalid("forecast horizon cannot be negative")
	}
	if config.Forecast.Window <= 0 {
		return errors.ConfigInvalid("forecast window must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
