package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pratik-mahalle/wardroberec/internal/pkg/logger"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// Config holds all application configuration
type Config struct {
	Backend BackendConfig
	Logging LoggingConfig
	Sentry  SentryConfig
}

// BackendConfig describes how to reach the wardrobe server
type BackendConfig struct {
	BaseURL           string
	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RequestsPerSecond float64
	UserID            string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// SentryConfig controls failure reporting. An empty DSN disables it.
type SentryConfig struct {
	DSN         string
	Environment string
	SampleRate  float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Backend: BackendConfig{
			BaseURL:           getEnv("WARDROBE_SERVER", client.DefaultBaseURL),
			ConnectTimeout:    getEnvAsDuration("WARDROBE_CONNECT_TIMEOUT", 2*time.Minute),
			ReadTimeout:       getEnvAsDuration("WARDROBE_READ_TIMEOUT", 5*time.Minute),
			WriteTimeout:      getEnvAsDuration("WARDROBE_WRITE_TIMEOUT", 5*time.Minute),
			RequestsPerSecond: getEnvAsFloat("WARDROBE_REQUESTS_PER_SECOND", 0),
			UserID:            getEnv("WARDROBE_USER_ID", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "warn"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("ENVIRONMENT", "development"),
			SampleRate:  getEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server address: %q", c.Backend.BaseURL)
	}

	if c.Backend.ConnectTimeout <= 0 || c.Backend.ReadTimeout <= 0 || c.Backend.WriteTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests per second: %v", c.Backend.RequestsPerSecond)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("unsupported log format: %s", c.Logging.Format)
	}

	if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		return fmt.Errorf("sentry sample rate must be between 0 and 1")
	}

	return nil
}

// ClientConfig builds the API client configuration
func (c *Config) ClientConfig(log *logger.Logger) client.Config {
	return client.Config{
		BaseURL:           c.Backend.BaseURL,
		ConnectTimeout:    c.Backend.ConnectTimeout,
		ReadTimeout:       c.Backend.ReadTimeout,
		WriteTimeout:      c.Backend.WriteTimeout,
		RequestsPerSecond: c.Backend.RequestsPerSecond,
		Logger:            log,
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
