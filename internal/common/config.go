// Package common provides shared utilities for Tally
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Tally
type Config struct {
	Environment     string        `toml:"environment"`
	DisplayCurrency string        `toml:"display_currency"` // ISO code used for chart axes and CLI output (default "USD")
	Server          ServerConfig  `toml:"server"`
	Storage         StorageConfig `toml:"storage"`
	Logging         LoggingConfig `toml:"logging"`
	Auth            AuthConfig    `toml:"auth"`
	Growth          GrowthConfig  `toml:"growth"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string  `toml:"host"`
	Port            int     `toml:"port"`
	ImportRateLimit float64 `toml:"import_rate_limit"` // imports per second per server
	ImportBurst     int     `toml:"import_burst"`
	MaxUploadMB     int     `toml:"max_upload_mb"`
}

// StorageConfig selects and configures the persistence backend.
// Backend is one of "surrealdb", "sqlite", "postgres" or "memory".
type StorageConfig struct {
	Backend   string `toml:"backend"`
	Address   string `toml:"address"` // surrealdb websocket address
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	DSN       string `toml:"dsn"` // sqlite file path or postgres DSN
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// GrowthConfig holds defaults for growth series requests.
type GrowthConfig struct {
	DefaultRange string `toml:"default_range"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

const defaultJWTSecret = "dev-jwt-secret-change-in-production"

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:     "development",
		DisplayCurrency: "USD",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ImportRateLimit: 1,
			ImportBurst:     5,
			MaxUploadMB:     10,
		},
		Storage: StorageConfig{
			Backend:   "surrealdb",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "tally",
			Database:  "tally",
			Username:  "root",
			Password:  "root",
			DSN:       "data/tally.db",
		},
		Auth: AuthConfig{
			JWTSecret: defaultJWTSecret,
		},
		Growth: GrowthConfig{
			DefaultRange: "all",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "console",
			Outputs:  []string{"console"},
			FilePath: "./logs/tally.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment win.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies TALLY_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TALLY_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TALLY_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TALLY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TALLY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if dc := os.Getenv("TALLY_DISPLAY_CURRENCY"); dc != "" {
		config.DisplayCurrency = dc
	}

	// Storage overrides
	if v := os.Getenv("TALLY_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("TALLY_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("TALLY_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("TALLY_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}
	if v := os.Getenv("TALLY_STORAGE_DSN"); v != "" {
		config.Storage.DSN = v
	}

	if v := os.Getenv("TALLY_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

// Validate normalises enumerated values and rejects combinations the
// server cannot start with.
func (c *Config) Validate() error {
	c.DisplayCurrency = strings.ToUpper(strings.TrimSpace(c.DisplayCurrency))
	if c.DisplayCurrency == "" {
		c.DisplayCurrency = "USD"
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case "surrealdb", "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q (want surrealdb, sqlite, postgres or memory)", c.Storage.Backend)
	}

	if c.IsProduction() && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("auth.jwt_secret must be set in production")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ConfigPath returns the config file path from TALLY_CONFIG, falling back to
// the given default.
func ConfigPath(fallback string) string {
	if p := os.Getenv("TALLY_CONFIG"); p != "" {
		return p
	}
	return fallback
}
