package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	// APP_TIMEZONE must resolve on images without a zoneinfo database.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	defaultDatabaseURL  = "couple_checklist.db"
	defaultTimezone     = "America/Bogota"
	defaultHTTPAddr     = ":8080"
	defaultSummaryTime  = "09:00"
	defaultLogLevel     = "info"
	defaultEnvFile      = ".env"
	envFileOverrideName = "ENV_FILE"
)

// Config keeps runtime settings for the app.
type Config struct {
	DatabaseURL      string
	Timezone         string
	Location         *time.Location
	HTTPAddr         string
	TelegramToken    string
	DailySummaryTime string
	ReminderInterval time.Duration
	LogLevel         zerolog.Level
	LogPretty        bool
}

// Load reads configuration from the environment, after merging an optional
// .env file, with sane defaults.
func Load() (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		DatabaseURL:      get("DATABASE_URL"),
		Timezone:         get("APP_TIMEZONE"),
		HTTPAddr:         get("HTTP_ADDR"),
		TelegramToken:    get("TELEGRAM_TOKEN"),
		DailySummaryTime: get("DAILY_SUMMARY_TIME"),
		ReminderInterval: parseInterval(get("REMINDER_INTERVAL_HOURS")),
		LogPretty:        parseBool(get("LOG_PRETTY")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.DailySummaryTime == "" {
		cfg.DailySummaryTime = defaultSummaryTime
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return cfg, fmt.Errorf("APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	rawLevel := get("LOG_LEVEL")
	if rawLevel == "" {
		rawLevel = defaultLogLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(rawLevel))
	if err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL %q: %w", rawLevel, err)
	}
	cfg.LogLevel = level

	if _, _, err := ParseClock(cfg.DailySummaryTime); err != nil {
		return cfg, fmt.Errorf("DAILY_SUMMARY_TIME: %w", err)
	}

	return cfg, nil
}

// TelegramEnabled reports whether the bot and notifier should be started.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// ParseClock parses an HH:MM string.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

func loadEnvFile() error {
	path := os.Getenv(envFileOverrideName)
	if path == "" {
		path = defaultEnvFile
	}
	// Values already present in the environment win over the file.
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
