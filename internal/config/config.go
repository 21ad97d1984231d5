package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Realtime RealtimeConfig
	Logger   LoggerConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// BackendConfig holds the hosted backend's REST endpoint and credentials.
// The anon API key is not a secret; authorisation is enforced by the
// backend's own row-level policies.
type BackendConfig struct {
	URL    string
	APIKey string
}

// RealtimeConfig holds the connection settings for the backend's change feed.
type RealtimeConfig struct {
	DSN            string
	MaxConnections int
	MinConnections int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Backend: BackendConfig{
			URL:    getEnv("BACKEND_URL", ""),
			APIKey: getEnv("BACKEND_ANON_KEY", ""),
		},
		Realtime: RealtimeConfig{
			DSN:            getEnv("REALTIME_DSN", ""),
			MaxConnections: getEnvAsInt("REALTIME_MAX_CONNECTIONS", 4),
			MinConnections: getEnvAsInt("REALTIME_MIN_CONNECTIONS", 1),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Backend URL, key and DSN have no
// fallback values; a missing one fails startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL: %q", c.Backend.URL)
	}

	if c.Backend.APIKey == "" {
		return fmt.Errorf("BACKEND_ANON_KEY is required")
	}

	if c.Realtime.DSN == "" {
		return fmt.Errorf("REALTIME_DSN is required")
	}

	if c.Realtime.MaxConnections < 1 {
		return fmt.Errorf("realtime max connections must be at least 1")
	}

	if c.Realtime.MinConnections < 1 {
		return fmt.Errorf("realtime min connections must be at least 1")
	}

	if c.Realtime.MinConnections > c.Realtime.MaxConnections {
		return fmt.Errorf("realtime min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	return nil
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
