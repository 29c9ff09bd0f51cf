package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken   string
	AdminTelegramID int64
	NotifyChatID    int64 // Where reminders are delivered; defaults to the admin chat
	DatabaseDriver  string
	DatabaseURL     string
	Timezone        string
	Location        *time.Location
	TickSpec        string // Cron spec with a seconds field
	NotifyDedup     bool
	PublishTimeout  time.Duration
	LogLevel        string
	Environment     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.NotifyChatID = cfg.AdminTelegramID
	if chatIDStr := os.Getenv("NOTIFY_CHAT_ID"); chatIDStr != "" {
		cfg.NotifyChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}
	}

	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	switch cfg.DatabaseDriver {
	case "":
		cfg.DatabaseDriver = DriverPostgres
	case DriverPostgres, DriverSQLite:
	case "sqlite3":
		cfg.DatabaseDriver = DriverSQLite
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.Timezone = strings.TrimSpace(os.Getenv("TIMEZONE"))
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.TickSpec = strings.TrimSpace(os.Getenv("TICK_SPEC"))
	if cfg.TickSpec == "" {
		cfg.TickSpec = "* * * * * *" // Default: every second
	}

	if v := os.Getenv("NOTIFY_DEDUP"); v != "" {
		cfg.NotifyDedup, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_DEDUP: %w", err)
		}
	}

	cfg.PublishTimeout = 5 * time.Second
	if v := os.Getenv("PUBLISH_TIMEOUT"); v != "" {
		cfg.PublishTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PUBLISH_TIMEOUT: %w", err)
		}
		if cfg.PublishTimeout <= 0 {
			return nil, fmt.Errorf("PUBLISH_TIMEOUT must be positive, got %s", cfg.PublishTimeout)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}
