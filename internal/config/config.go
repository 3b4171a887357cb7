package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"cxc/internal/api"
	"cxc/internal/logger"
)

const defaultTimezone = "America/Mexico_City"

type Config struct {
	// Backend Configuration
	APIURL     string
	APIKey     string
	APITimeout time.Duration

	// Calendar used for aging ("today" and due dates)
	Timezone string
	location *time.Location

	// Google Sheets Configuration
	GoogleSheetURL        string
	GoogleCredentialsFile string
	GoogleCredentials     string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		APIURL:                getEnv("CXC_API_URL", ""),
		APIKey:                getEnv("CXC_API_KEY", ""),
		Timezone:              getEnv("CXC_TIMEZONE", defaultTimezone),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentials:     getEnv("GOOGLE_CREDENTIALS", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	timeout, err := time.ParseDuration(getEnv("CXC_API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: CXC_API_TIMEOUT: %w", err)
	}
	config.APITimeout = timeout

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.APITimeout <= 0 {
		return fmt.Errorf("CXC_API_TIMEOUT must be positive")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("CXC_TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	c.location = loc

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is invalid: %w", c.LogLevel, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// RequireAPI reports whether the backend connection is configured.
func (c *Config) RequireAPI() error {
	if c.APIURL == "" {
		return fmt.Errorf("CXC_API_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("CXC_API_KEY is required")
	}
	return nil
}

// APIConfig returns the backend client configuration
func (c *Config) APIConfig() api.Config {
	return api.Config{
		BaseURL: c.APIURL,
		APIKey:  c.APIKey,
		Timeout: c.APITimeout,
	}
}

// Location returns the configured time zone
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// SheetsCredentials returns the service account JSON, read from
// GOOGLE_APPLICATION_CREDENTIALS or taken inline from GOOGLE_CREDENTIALS.
func (c *Config) SheetsCredentials() ([]byte, error) {
	if c.GoogleSheetURL == "" {
		return nil, fmt.Errorf("GOOGLE_SHEET_URL is required")
	}
	if c.GoogleCredentialsFile != "" {
		creds, err := os.ReadFile(c.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	if c.GoogleCredentials != "" {
		return []byte(c.GoogleCredentials), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
