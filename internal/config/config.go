package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string

	TwoWheelSpots  int
	FourWheelSpots int
	OversizeSpots  int
	RatePerHour    float64

	OTelServiceName string
	OTelEndpoint    string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "parking-lot-service"),
		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	var err error
	if cfg.TwoWheelSpots, err = getEnvInt("TWO_WHEEL_SPOTS", 5); err != nil {
		return nil, err
	}
	if cfg.FourWheelSpots, err = getEnvInt("FOUR_WHEEL_SPOTS", 5); err != nil {
		return nil, err
	}
	if cfg.OversizeSpots, err = getEnvInt("OVERSIZE_SPOTS", 2); err != nil {
		return nil, err
	}
	if cfg.RatePerHour, err = getEnvFloat("RATE_PER_HOUR", 10.0); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.TwoWheelSpots < 0 || c.FourWheelSpots < 0 || c.OversizeSpots < 0 {
		return fmt.Errorf("spot counts must not be negative")
	}
	if c.TwoWheelSpots+c.FourWheelSpots+c.OversizeSpots == 0 {
		return fmt.Errorf("at least one parking spot is required")
	}
	if math.IsNaN(c.RatePerHour) || math.IsInf(c.RatePerHour, 0) || c.RatePerHour <= 0 {
		return fmt.Errorf("RATE_PER_HOUR must be a positive finite number")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
