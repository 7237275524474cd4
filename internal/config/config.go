package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"telegram-mood-diary/internal/report"
	"telegram-mood-diary/internal/scheduler"
)

const (
	DBName     = "/root/data/mood.db"
	secretPath = "/run/secrets/telegram_bot_token"
)

type Config struct {
	DBName        string
	TelegramToken string
	HTTPAddr      string // keep-alive endpoint, "off" disables it
	UpdateTimeout int

	Location      *time.Location
	ReminderDelay time.Duration
	Windows       report.Windows

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		DBName:        getEnv("DB_PATH", DBName),
		TelegramToken: getBotToken(secretPath),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		UpdateTimeout: getEnvInt("UPDATE_TIMEOUT", 60),
		ReminderDelay: getEnvDuration("REMINDER_DELAY", scheduler.DefaultDelay),
		Windows: report.Windows{
			WeekDays:  getEnvInt("WEEK_DAYS", report.DefaultWindows().WeekDays),
			MonthDays: getEnvInt("MONTH_DAYS", report.DefaultWindows().MonthDays),
		},
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	tz := getEnv("TIMEZONE", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	if c.DBName == "" {
		return errors.New("DB_PATH cannot be empty")
	}
	if c.ReminderDelay <= 0 {
		return errors.New("REMINDER_DELAY must be > 0")
	}
	if c.Windows.WeekDays <= 0 || c.Windows.MonthDays <= 0 {
		return errors.New("WEEK_DAYS and MONTH_DAYS must be > 0")
	}
	if c.UpdateTimeout < 0 {
		return errors.New("UPDATE_TIMEOUT must be >= 0")
	}
	return nil
}

// ValidateBot additionally requires a bot token.
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return errors.New("токен не найден: отсутствует и Docker Secret, и TELEGRAM_BOT_TOKEN")
	}
	return nil
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func getBotToken(secret string) string {
	if data, err := os.ReadFile(secret); err == nil {
		if token := strings.TrimSpace(string(data)); token != "" {
			return token
		}
	}
	return strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("10m") or plain seconds ("600").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
