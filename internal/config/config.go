// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Catalog  CatalogConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds connection settings. Driver is "sqlite" or "postgres";
// a non-empty URL takes precedence over the host parts.
type DatabaseConfig struct {
	Driver   string
	URL      string
	Path     string // sqlite file
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev                bool
	Migrations         bool
	SessionIdleTimeout time.Duration
}

// CatalogConfig says where the price catalog comes from. Source is "file" or
// "db".
type CatalogConfig struct {
	Source     string
	Path       string
	Delimiter  rune
	HourlyRate decimal.Decimal
}

// AuthConfig holds the shared password gate. An empty Password and
// PasswordHash leave the gate open.
type AuthConfig struct {
	Password      string
	PasswordHash  string
	SessionSecret string
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			URL:      os.Getenv("DATABASE_URL"),
			Path:     getEnv("DB_PATH", "quotes.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "quotes"),
			Password: getEnv("DB_PASSWORD", "quotes"),
			DBName:   getEnv("DB_NAME", "quotes"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		App: AppConfig{
			Dev:                getEnvBool("DEV", true),
			Migrations:         getEnvBool("MIGRATIONS", false),
			SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		},
		Catalog: CatalogConfig{
			Source:     strings.ToLower(getEnv("CATALOG_SOURCE", "file")),
			Path:       getEnv("CATALOG_PATH", "products.csv"),
			Delimiter:  getEnvRune("CATALOG_DELIMITER", ','),
			HourlyRate: getEnvDecimal("HOURLY_RATE", decimal.RequireFromString("205.00")),
		},
		Auth: AuthConfig{
			Password:      os.Getenv("APP_PASSWORD"),
			PasswordHash:  os.Getenv("APP_PASSWORD_HASH"),
			SessionSecret: getEnv("SESSION_SECRET", "dev-secret-change-me"),
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Catalog.Source {
	case "file", "db":
	default:
		return fmt.Errorf("config: unsupported CATALOG_SOURCE %q", c.Catalog.Source)
	}
	if c.Catalog.HourlyRate.IsNegative() {
		return fmt.Errorf("config: HOURLY_RATE must not be negative")
	}
	if !c.App.Dev && (c.Auth.Password != "" || c.Auth.PasswordHash != "") && c.Auth.SessionSecret == "dev-secret-change-me" {
		return fmt.Errorf("config: SESSION_SECRET must be set outside dev mode")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvRune reads a single-character setting; "tab" and "\t" mean a tab.
func getEnvRune(key string, defaultValue rune) rune {
	value := os.Getenv(key)
	switch value {
	case "":
		return defaultValue
	case "tab", `\t`:
		return '\t'
	}
	r := []rune(value)
	if len(r) != 1 {
		return defaultValue
	}
	return r[0]
}
