package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	JWT        JWTConfig
	Backend    BackendConfig
	Attendance AttendanceConfig
	Broadcast  BroadcastConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	Version     string
	LogLevel    string
	FrontendURL string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// BackendConfig holds the HR backend REST endpoint settings
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AttendanceConfig struct {
	Timezone            string
	DayRolloverInterval time.Duration
}

// BroadcastConfig tunes the admin broadcast workers
type BroadcastConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		Version:     getEnv("APP_VERSION", "v1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Backend configuration
	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	config.Backend = BackendConfig{
		BaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
		Timeout: backendTimeout,
	}

	// Attendance clock configuration
	rolloverInterval, err := time.ParseDuration(getEnv("DAY_ROLLOVER_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAY_ROLLOVER_INTERVAL: %w", err)
	}

	config.Attendance = AttendanceConfig{
		Timezone:            getEnv("ATTENDANCE_TIMEZONE", "Asia/Jakarta"),
		DayRolloverInterval: rolloverInterval,
	}

	// Broadcast worker configuration
	batchSize, err := strconv.Atoi(getEnv("BROADCAST_BATCH_SIZE", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_BATCH_SIZE: %w", err)
	}
	workerCount, err := strconv.Atoi(getEnv("BROADCAST_WORKERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_WORKERS: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("BROADCAST_QUEUE_SIZE", "500"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_QUEUE_SIZE: %w", err)
	}
	flushInterval, err := time.ParseDuration(getEnv("BROADCAST_FLUSH_INTERVAL", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BROADCAST_FLUSH_INTERVAL: %w", err)
	}

	config.Broadcast = BroadcastConfig{
		BatchSize:     batchSize,
		FlushInterval: flushInterval,
		WorkerCount:   workerCount,
		QueueSize:     queueSize,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	if c.Attendance.DayRolloverInterval <= 0 {
		return fmt.Errorf("DAY_ROLLOVER_INTERVAL must be positive")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog.Level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
