package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds everything read from the environment at startup.
type AppConfig struct {
	// OpenWeatherAPIKey authenticates geocoding, current-conditions and
	// forecast calls. Required: the app fails fast without it.
	OpenWeatherAPIKey string

	// DatabaseDSN points at the MySQL record store. When empty, records are
	// kept in memory (local runs, tests).
	DatabaseDSN string

	// HTTPTimeout is the fixed per-call timeout on every outbound provider
	// request. A timed-out call surfaces as a fetch/resolution error; it is
	// never retried.
	HTTPTimeout time.Duration

	Port    string
	AppName string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file, if present, is loaded first.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is required")
	}

	cfg.DatabaseDSN = os.Getenv("DATABASE_DSN")

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppName = getenvDefault("APP_NAME", "weatherdesk")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
