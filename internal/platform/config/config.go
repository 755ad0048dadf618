package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	LogLevel    string

	StoreDriver string
	PostgresDSN string
	SQLitePath  string
	RedisURL    string

	SubmitterLimit  int
	SubmitterWindow time.Duration
	UsedLookback    time.Duration
	ResubmitWindow  time.Duration
	RecentWindow    time.Duration

	EnableSwagger bool
	EnableMetrics bool
}

// Load reads an optional .env file from the working directory and then the
// process environment. Variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		ServiceName: envString("SERVICE_NAME", "songboard"),
		HTTPPort:    envString("HTTP_PORT", "8080"),
		LogLevel:    strings.ToLower(envString("LOG_LEVEL", "info")),

		StoreDriver: strings.ToLower(envString("STORE_DRIVER", StoreMemory)),
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		SQLitePath:  envString("SQLITE_PATH", "songboard.db"),
		RedisURL:    os.Getenv("REDIS_URL"),

		SubmitterLimit:  envInt("SUBMITTER_LIMIT", 0),
		SubmitterWindow: envDays("SUBMITTER_WINDOW_DAYS", 4),
		UsedLookback:    envDays("USED_LOOKBACK_DAYS", 10),
		ResubmitWindow:  envDays("RESUBMIT_WINDOW_DAYS", 3),
		RecentWindow:    envDays("RECENT_WINDOW_DAYS", 7),

		EnableSwagger: envBool("ENABLE_SWAGGER", true),
		EnableMetrics: envBool("ENABLE_METRICS", true),
	}

	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if cfg.PostgresDSN == "" {
			return Config{}, fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
	if cfg.SubmitterLimit < 0 {
		return Config{}, fmt.Errorf("SUBMITTER_LIMIT must not be negative, got %d", cfg.SubmitterLimit)
	}
	return cfg, nil
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envDays(name string, fallback int) time.Duration {
	days := envInt(name, fallback)
	if days <= 0 {
		days = fallback
	}
	return time.Duration(days) * 24 * time.Hour
}
