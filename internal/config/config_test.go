package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("BACKEND_BASE_URL", "http://backend.local:8000/")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "http://backend.local:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "Asia/Jakarta", cfg.Attendance.Timezone)
	assert.Equal(t, time.Minute, cfg.Attendance.DayRolloverInterval)
	assert.Equal(t, 50, cfg.Broadcast.BatchSize)
	assert.Equal(t, 2, cfg.Broadcast.WorkerCount)
	assert.Equal(t, 500, cfg.Broadcast.QueueSize)
	assert.Equal(t, 2*time.Second, cfg.Broadcast.FlushInterval)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("ATTENDANCE_TIMEZONE", "Asia/Makassar")
	t.Setenv("BROADCAST_WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "Asia/Makassar", cfg.Attendance.Timezone)
	assert.Equal(t, 4, cfg.Broadcast.WorkerCount)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port", "APP_PORT", "http"},
		{"timeout", "BACKEND_TIMEOUT", "soon"},
		{"timezone", "ATTENDANCE_TIMEZONE", "Mars/Olympus"},
		{"rollover", "DAY_ROLLOVER_INTERVAL", "-1m"},
		{"batch size", "BROADCAST_BATCH_SIZE", "many"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := &Config{
		Backend:    BackendConfig{BaseURL: "http://backend"},
		Attendance: AttendanceConfig{Timezone: "UTC", DayRolloverInterval: time.Minute},
	}
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET_KEY")

	cfg.JWT.Secret = "s"
	cfg.Backend.BaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "BACKEND_BASE_URL")

	cfg.Backend.BaseURL = "http://backend"
	assert.NoError(t, cfg.Validate())
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		cfg := &Config{App: AppConfig{LogLevel: in}}
		assert.Equal(t, want, cfg.SlogLevel(), in)
	}
}
