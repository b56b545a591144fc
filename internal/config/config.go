// Package config defines the task tracker server configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Auth     AuthConfig     `json:"auth" yaml:"auth"`
	Tasks    TasksConfig    `json:"tasks" yaml:"tasks"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"` // listen address, e.g. ":8008"
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
	GinMode        string   `json:"gin_mode" yaml:"gin_mode"`
}

// DatabaseConfig selects the gorm dialector.
type DatabaseConfig struct {
	Driver   string `json:"driver" yaml:"driver"` // "sqlite", "postgres", "mysql"
	DSN      string `json:"dsn" yaml:"dsn"`
	LogLevel string `json:"log_level" yaml:"log_level"` // "silent", "error", "warn", "info"
}

// AuthConfig controls token issuing.
type AuthConfig struct {
	JWTSecret string        `json:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string        `json:"issuer" yaml:"issuer"`
	Audience  string        `json:"audience" yaml:"audience"`
	TokenTTL  time.Duration `json:"token_ttl" yaml:"token_ttl"`
}

// TasksConfig controls the task workflow.
type TasksConfig struct {
	TimeZone         string `json:"time_zone" yaml:"time_zone"`
	DescriptionLimit int    `json:"description_limit" yaml:"description_limit"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8008",
			AllowedOrigins: []string{"*"},
			GinMode:        "debug",
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "tasks-tracker.db",
			LogLevel: "warn",
		},
		Auth: AuthConfig{
			JWTSecret: "development-insecure-secret-change-me",
			Issuer:    "task-tracker-api",
			Audience:  "task-tracker-clients",
			TokenTTL:  24 * time.Hour,
		},
		Tasks: TasksConfig{
			TimeZone:         "Asia/Kolkata",
			DescriptionLimit: 300,
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv("TASKS_ADDR", c.Server.Addr)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Database.Driver = getEnv("TASKS_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("TASKS_DB_DSN", c.Database.DSN)
	c.Database.LogLevel = getEnv("TASKS_DB_LOG_LEVEL", c.Database.LogLevel)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("JWT_ISSUER", c.Auth.Issuer)
	c.Auth.Audience = getEnv("JWT_AUDIENCE", c.Auth.Audience)
	c.Tasks.TimeZone = getEnv("TASKS_TIMEZONE", c.Tasks.TimeZone)

	if v := os.Getenv("JWT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_TTL: %w", err)
		}
		c.Auth.TokenTTL = ttl
	}
	if v := os.Getenv("TASKS_DESCRIPTION_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TASKS_DESCRIPTION_LIMIT: %w", err)
		}
		c.Tasks.DescriptionLimit = n
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Tasks.DescriptionLimit <= 0 {
		return fmt.Errorf("tasks.description_limit must be positive")
	}
	if _, err := time.LoadLocation(c.Tasks.TimeZone); err != nil {
		return fmt.Errorf("tasks.time_zone: %w", err)
	}
	return nil
}

// Location resolves the audit time zone, falling back to UTC.
func (c TasksConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
