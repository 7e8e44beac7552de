package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Ledger backend selectors.
const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
	LedgerRedis    = "redis"
)

type Config struct {
	Port          string
	WebhookSecret string

	LockID      string
	OpenSeconds int
	Simulation  bool

	TTClientID     string
	TTClientSecret string
	TTEmail        string
	TTPassword     string
	TTAPIBase      string

	MaxAttempts    int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	LedgerBackend string
	DatabaseURL   string
	RedisURL      string
}

func Load() (Config, error) {
	cfg := Config{
		Port:          getEnv("PORT", "5000"),
		WebhookSecret: os.Getenv("WEBHOOK_SECRET"),

		LockID:     getEnv("TT_LOCK_ID", ""),
		Simulation: getEnv("SIMULATION_MODE", "true") == "true",

		TTClientID:     os.Getenv("TT_CLIENT_ID"),
		TTClientSecret: os.Getenv("TT_CLIENT_SECRET"),
		TTEmail:        os.Getenv("TT_EMAIL"),
		TTPassword:     os.Getenv("TT_PASSWORD"),
		TTAPIBase:      getEnv("TT_API_BASE", "https://euapi.sciener.com"),

		LedgerBackend: getEnv("LEDGER_BACKEND", LedgerMemory),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
	}

	var err error
	if cfg.OpenSeconds, err = getEnvInt("OPEN_SECONDS", 8); err != nil {
		return Config{}, err
	}
	if cfg.MaxAttempts, err = getEnvInt("MAX_ATTEMPTS", 4); err != nil {
		return Config{}, err
	}
	if cfg.RetryBaseDelay, err = getEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RetryMaxDelay, err = getEnvDuration("RETRY_MAX_DELAY", 8*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.WebhookSecret == "" {
		return Config{}, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if cfg.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("MAX_ATTEMPTS must be at least 1")
	}
	switch cfg.LedgerBackend {
	case LedgerMemory, LedgerRedis:
	case LedgerPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required when LEDGER_BACKEND=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown LEDGER_BACKEND %q", cfg.LedgerBackend)
	}
	if !cfg.Simulation {
		if cfg.LockID == "" {
			return Config{}, fmt.Errorf("TT_LOCK_ID is required outside simulation mode")
		}
		if cfg.TTClientID == "" || cfg.TTClientSecret == "" || cfg.TTEmail == "" || cfg.TTPassword == "" {
			return Config{}, fmt.Errorf("TT_CLIENT_ID, TT_CLIENT_SECRET, TT_EMAIL and TT_PASSWORD are required outside simulation mode")
		}
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
