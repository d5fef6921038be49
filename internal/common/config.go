// Package common provides shared utilities for Cardfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Cardfolio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Feed        FeedConfig    `toml:"feed"`
	Rates       RatesConfig   `toml:"rates"`
	Metrics     MetricsConfig `toml:"metrics"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// FeedConfig holds price snapshot feed configuration.
type FeedConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	RateLimit       int    `toml:"rate_limit"` // requests per second
	Timeout         string `toml:"timeout"`
	RefreshInterval string `toml:"refresh_interval"` // how often the scheduler re-collects prices
	LookbackDays    int    `toml:"lookback_days"`    // history requested for brand-new products
}

// GetTimeout parses and returns the timeout duration
func (c *FeedConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetRefreshInterval parses and returns the scheduler interval.
func (c *FeedConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// RatesConfig holds exchange-rate scraper configuration.
type RatesConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
}

// MetricsConfig holds analytics tuning values. The ranking weights live in
// code (analytics.DefaultWeightConfig); only operational knobs belong here.
type MetricsConfig struct {
	MinSeriesPoints int `toml:"min_series_points"` // products below this are excluded from set aggregates
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/cardfolio",
		},
		Feed: FeedConfig{
			BaseURL:         "https://mp-search-api.tcgplayer.com",
			RateLimit:       5,
			Timeout:         "30s",
			RefreshInterval: "24h",
			LookbackDays:    365,
		},
		Rates: RatesConfig{
			Enabled: true,
			URL:     "https://www.bankofcanada.ca/rates/exchange/daily-exchange-rates/",
		},
		Metrics: MetricsConfig{
			MinSeriesPoints: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CARDFOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CARDFOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CARDFOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CARDFOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("CARDFOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if key := os.Getenv("CARDFOLIO_FEED_API_KEY"); key != "" {
		config.Feed.APIKey = key
	}

	if url := os.Getenv("CARDFOLIO_FEED_BASE_URL"); url != "" {
		config.Feed.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
