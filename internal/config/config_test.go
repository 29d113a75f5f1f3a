package config_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-checklist/internal/config"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := config.FromEnv(envOf(map[string]string{"APP_TIMEZONE": "UTC"}))
	require.NoError(t, err)

	assert.Equal(t, "couple_checklist.db", cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "09:00", cfg.DailySummaryTime)
	assert.Equal(t, time.Duration(0), cfg.ReminderInterval)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.TelegramEnabled())
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := config.FromEnv(envOf(map[string]string{
		"DATABASE_URL":            " postgres://localhost/couple ",
		"APP_TIMEZONE":            "UTC",
		"HTTP_ADDR":               ":9090",
		"TELEGRAM_TOKEN":          "token",
		"DAILY_SUMMARY_TIME":      "07:30",
		"REMINDER_INTERVAL_HOURS": "3",
		"LOG_LEVEL":               "DEBUG",
		"LOG_PRETTY":              "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/couple", cfg.DatabaseURL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, "07:30", cfg.DailySummaryTime)
	assert.Equal(t, 3*time.Hour, cfg.ReminderInterval)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown timezone", env: map[string]string{"APP_TIMEZONE": "Mars/Olympus"}},
		{name: "bad log level", env: map[string]string{"APP_TIMEZONE": "UTC", "LOG_LEVEL": "loud"}},
		{name: "bad summary time", env: map[string]string{"APP_TIMEZONE": "UTC", "DAILY_SUMMARY_TIME": "25:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromEnv(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestNegativeReminderIntervalDisables(t *testing.T) {
	cfg, err := config.FromEnv(envOf(map[string]string{"APP_TIMEZONE": "UTC", "REMINDER_INTERVAL_HOURS": "-2"}))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.ReminderInterval)
}

func TestParseClock(t *testing.T) {
	hour, minute, err := config.ParseClock("21:45")
	require.NoError(t, err)
	assert.Equal(t, 21, hour)
	assert.Equal(t, 45, minute)

	for _, bad := range []string{"", "9", "24:00", "10:60", "aa:bb"} {
		_, _, err := config.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
