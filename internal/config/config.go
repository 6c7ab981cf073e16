// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" env-default:"0.0.0.0"`
	Port     string `env:"APP_PORT" env-default:"5000"`
	Env      string `env:"APP_ENV" env-default:"development" env-description:"development, production or testing"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	SiteName string `env:"SITE_NAME" env-default:"My Blog"`

	// Document and uploads
	DataFile            string        `env:"DATA_FILE" env-default:"categories.json"`
	UploadDir           string        `env:"UPLOAD_DIR" env-default:"public/uploads"`
	UploadMaxBytes      int64         `env:"UPLOAD_MAX_BYTES" env-default:"20971520"`
	UploadRatePerMinute int           `env:"UPLOAD_RATE_PER_MINUTE" env-default:"30"`
	StorageTimeout      time.Duration `env:"STORAGE_TIMEOUT" env-default:"5s"`
	WatchDataFile       bool          `env:"WATCH_DATA_FILE" env-default:"true"`

	// Valkey (Redis-compatible cache); caching is off when the host is empty.
	ValkeyHost     string        `env:"VALKEY_HOST"`
	ValkeyPort     string        `env:"VALKEY_PORT" env-default:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	PageCacheTTL   time.Duration `env:"PAGE_CACHE_TTL" env-default:"5m"`

	// S3-compatible object storage for uploads; local disk when unset.
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3PublicURL string `env:"S3_PUBLIC_URL"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("APP_PORT must be a port number, got %q", c.Port)
	}
	switch c.Env {
	case "development", "production", "testing":
	default:
		return fmt.Errorf("APP_ENV must be development, production or testing, got %q", c.Env)
	}
	if c.DataFile == "" {
		return fmt.Errorf("DATA_FILE must not be empty")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.UploadRatePerMinute <= 0 {
		return fmt.Errorf("UPLOAD_RATE_PER_MINUTE must be positive, got %d", c.UploadRatePerMinute)
	}
	if c.StorageTimeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT must be positive, got %s", c.StorageTimeout)
	}

	if c.IsProduction() {
		// The working directory of a service is rarely where the data
		// should live.
		if !filepath.IsAbs(c.DataFile) {
			return fmt.Errorf("DATA_FILE must be an absolute path in production")
		}
	}
	if c.S3Endpoint != "" && c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET must be set when S3_ENDPOINT is set")
	}
	return nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CacheEnabled reports whether a Valkey host is configured.
func (c *Config) CacheEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether uploads go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
