package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the memory assistant.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	LogMode          string

	GemmaMode    string
	GemmaHTTPURL string
	GemmaTimeout time.Duration
	GemmaRetries int

	DatabaseURL    string
	MemoryFilePath string
	TuningPath     string

	SessionsDir        string
	SessionIdleTimeout time.Duration
	JanitorInterval    time.Duration
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:           envOrDefault("MUNES_BIND_ADDR", ":8080"),
		MetricsNamespace:   envOrDefault("MUNES_METRICS_NAMESPACE", "munes"),
		LogMode:            envOrDefault("MUNES_LOG_MODE", "production"),
		GemmaMode:          envOrDefault("MUNES_GEMMA_MODE", "auto"),
		GemmaHTTPURL:       stringsTrimSpace("MUNES_GEMMA_HTTP_URL"),
		DatabaseURL:        stringsTrimSpace("DATABASE_URL"),
		MemoryFilePath:     envOrDefault("MUNES_MEMORY_FILE", "data/memories/memory_database.json"),
		TuningPath:         stringsTrimSpace("MUNES_TUNING_FILE"),
		SessionsDir:        envOrDefault("MUNES_SESSIONS_DIR", "data/conversations"),
		ShutdownTimeout:    15 * time.Second,
		GemmaTimeout:       10 * time.Second,
		GemmaRetries:       1,
		SessionIdleTimeout: 30 * time.Minute,
		JanitorInterval:    time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("MUNES_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GemmaTimeout, err = durationFromEnv("MUNES_GEMMA_TIMEOUT", cfg.GemmaTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.GemmaRetries, err = intFromEnv("MUNES_GEMMA_RETRIES", cfg.GemmaRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionIdleTimeout, err = durationFromEnv("MUNES_SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.JanitorInterval, err = durationFromEnv("MUNES_JANITOR_INTERVAL", cfg.JanitorInterval)
	if err != nil {
		return Config{}, err
	}

	switch cfg.GemmaMode {
	case "auto", "http", "mock", "off":
	default:
		return Config{}, fmt.Errorf("MUNES_GEMMA_MODE must be one of auto, http, mock, off")
	}
	switch cfg.LogMode {
	case "production", "development":
	default:
		return Config{}, fmt.Errorf("MUNES_LOG_MODE must be production or development")
	}
	if cfg.GemmaMode == "http" && cfg.GemmaHTTPURL == "" {
		return Config{}, fmt.Errorf("MUNES_GEMMA_HTTP_URL is required when MUNES_GEMMA_MODE=http")
	}
	if cfg.GemmaRetries < 0 {
		return Config{}, fmt.Errorf("MUNES_GEMMA_RETRIES must be >= 0")
	}
	if cfg.SessionIdleTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("MUNES_SESSION_IDLE_TIMEOUT must be at least 5s")
	}
	if cfg.GemmaTimeout <= 0 {
		return Config{}, fmt.Errorf("MUNES_GEMMA_TIMEOUT must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
