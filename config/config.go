package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Evaluation
	Path         string // "optimized" or "reference"
	StrategyFile string
	DataFile     string

	// Observability
	MetricsAddr string
	LogLevel    string

	// Parity harness
	ParityBars int
	ParitySeed int64
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Path:         getEnv("TA_PATH", "optimized"),
		StrategyFile: getEnv("TA_STRATEGY_FILE", ""),
		DataFile:     getEnv("TA_DATA_FILE", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		ParityBars: getEnvInt("TA_PARITY_BARS", 2048),
		ParitySeed: int64(getEnvInt("TA_PARITY_SEED", 42)),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
