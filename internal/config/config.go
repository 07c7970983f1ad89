package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidConfiguration reports configuration that cannot start a run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config represents the complete application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"retry" yaml:"retry"`

	// RequestTimeoutSeconds bounds each upstream HTTP request.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`

	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// APIConfig identifies the upstream availability endpoint.
type APIConfig struct {
	Key          string `mapstructure:"key" yaml:"key"`
	Host         string `mapstructure:"host" yaml:"host"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	EndpointPath string `mapstructure:"endpoint_path" yaml:"endpoint_path"`
}

// RateLimitConfig bounds the outgoing request rate.
type RateLimitConfig struct {
	PerMinute     int `mapstructure:"per_minute" yaml:"per_minute"`
	PeriodSeconds int `mapstructure:"period_seconds" yaml:"period_seconds"`
}

// Period returns the sliding window duration.
func (r RateLimitConfig) Period() time.Duration {
	return time.Duration(r.PeriodSeconds) * time.Second
}

// RetryConfig controls per-check retry behavior.
type RetryConfig struct {
	MaxRetries    int     `mapstructure:"max_retries" yaml:"max_retries"`
	BackoffFactor float64 `mapstructure:"backoff_factor" yaml:"backoff_factor"`
}

// StoreConfig contains database configuration for the libsql result cache.
type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"`
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url"`
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token,omitempty"`
}

// CacheConfig contains result cache TTL configuration.
type CacheConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	AvailableTTL time.Duration `mapstructure:"available_ttl" yaml:"available_ttl"`
	TakenTTL     time.Duration `mapstructure:"taken_ttl" yaml:"taken_ttl"`
	ErrorTTL     time.Duration `mapstructure:"error_ttl" yaml:"error_ttl"`
}

// ServerConfig contains HTTP server configuration for serve mode.
type ServerConfig struct {
	Host            string         `mapstructure:"host" yaml:"host"`
	Port            int            `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration  `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration  `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration  `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Throttle        ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
}

// ThrottleConfig bounds per-client request rates in serve mode.
type ThrottleConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Validate rejects configuration that cannot start a run. Missing
// credentials and non-positive rate limiter parameters are fatal before any
// checking begins.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return fmt.Errorf("%w: api key is required (set DOMAINSWEEP_API_KEY or RAPIDAPI_KEY)", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(c.API.Host) == "" {
		return fmt.Errorf("%w: api host is required (set DOMAINSWEEP_API_HOST or RAPIDAPI_HOST)", ErrInvalidConfiguration)
	}
	if c.RateLimit.PerMinute <= 0 {
		return fmt.Errorf("%w: rate limit per minute must be positive, got %d", ErrInvalidConfiguration, c.RateLimit.PerMinute)
	}
	if c.RateLimit.PeriodSeconds <= 0 {
		return fmt.Errorf("%w: rate limit period must be positive, got %d", ErrInvalidConfiguration, c.RateLimit.PeriodSeconds)
	}
	if c.Retry.MaxRetries <= 0 {
		return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidConfiguration, c.Retry.MaxRetries)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: request timeout must be positive, got %d", ErrInvalidConfiguration, c.RequestTimeoutSeconds)
	}

	return nil
}

// applyDerived fills in values that depend on other fields.
func (c *Config) applyDerived() {
	if strings.TrimSpace(c.API.BaseURL) == "" && strings.TrimSpace(c.API.Host) != "" {
		c.API.BaseURL = "https://" + strings.TrimSpace(c.API.Host)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	if strings.TrimSpace(c.Store.URL) == "" && strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = DefaultStorePath()
	}
}

// DefaultStorePath returns the default location of the cache database.
func DefaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "./domainsweep.db"
	}
	return filepath.Join(dir, "domainsweep", "domainsweep.db")
}
