// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/talentnet/backend/internal/logger"
	"github.com/talentnet/backend/internal/presence"
)

// Config holds every setting the server reads at startup
type Config struct {
	Port        string
	Environment string
	FrontendURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	WebSocket WebSocketConfig

	Storage StorageConfig

	Telemetry TelemetryConfig

	LogLevel string
	LogFile  string
}

// WebSocketConfig controls the realtime gateway
type WebSocketConfig struct {
	RequireAuth    bool
	RateLimit      int
	RateBurst      int
	PresencePolicy presence.Policy
}

// StorageConfig points media uploads at an S3 bucket
type StorageConfig struct {
	Bucket  string
	Region  string
	BaseURL string
}

// TelemetryConfig controls OpenTelemetry tracing
type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SamplingRate float64
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "5000"),
		Environment:    getEnvOrDefault("ENVIRONMENT", "development"),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "postgres")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisHost:      os.Getenv("REDIS_HOST"),
		RedisPort:      getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:        getEnvOrDefault("LOG_FILE", "server.log"),
	}

	cfg.Storage = StorageConfig{
		Bucket:  os.Getenv("MEDIA_BUCKET"),
		Region:  getEnvOrDefault("AWS_REGION", "us-east-1"),
		BaseURL: os.Getenv("MEDIA_BASE_URL"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.WebSocket.RequireAuth, err = getBool("WS_REQUIRE_AUTH", true); err != nil {
		return nil, err
	}
	if cfg.WebSocket.RateLimit, err = getInt("WS_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.WebSocket.RateBurst, err = getInt("WS_RATE_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.WebSocket.PresencePolicy, err = presence.ParsePolicy(os.Getenv("PRESENCE_POLICY")); err != nil {
		return nil, err
	}

	if cfg.Telemetry.Enabled, err = getBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.Telemetry.OTLPEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	if cfg.Telemetry.SamplingRate, err = getFloat("OTEL_SAMPLING_RATE", 1.0); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings that make the server unable to start.
func (c *Config) Validate() error {
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "sqlite" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the sqlite driver")
	}
	if c.WebSocket.RateLimit <= 0 || c.WebSocket.RateBurst <= 0 {
		return fmt.Errorf("WS_RATE_LIMIT and WS_RATE_BURST must be positive")
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATE must be between 0 and 1")
	}
	return nil
}

// RedisEnabled reports whether the presence mirror should be started
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// StorageEnabled reports whether media uploads are configured
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != ""
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
