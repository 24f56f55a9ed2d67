package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds all runtime settings so they can be passed around as one unit.
type Config struct {
	SQLitePath         string
	LogLevel           string
	GatewayCeiling     float64
	GatewayFailureRate float64
	GatewayLatency     time.Duration
}

// Load reads a .env file if present, then the process environment. A missing
// .env is fine; settings all have defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ceiling, err := floatEnv("GATEWAY_CEILING", 1000)
	if err != nil {
		return nil, err
	}
	failureRate, err := floatEnv("GATEWAY_FAILURE_RATE", 0)
	if err != nil {
		return nil, err
	}
	if failureRate < 0 || failureRate > 1 {
		return nil, errors.Errorf("GATEWAY_FAILURE_RATE must be between 0 and 1, got %v", failureRate)
	}
	latency, err := durationEnv("GATEWAY_LATENCY", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		SQLitePath:         withDefault(os.Getenv("CIRCULATE_DB"), "data/library.db"),
		LogLevel:           withDefault(os.Getenv("LOG_LEVEL"), "info"),
		GatewayCeiling:     ceiling,
		GatewayFailureRate: failureRate,
		GatewayLatency:     latency,
	}, nil
}

func withDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func floatEnv(name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "%s is not a number", name)
	}
	return v, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s is not a duration", name)
	}
	return v, nil
}
