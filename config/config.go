// Package config loads the cit configuration.
//
// Values come, in increasing priority, from the defaults, an optional TOML
// file, an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "cit.toml"

// Config holds all configuration for cit.
type Config struct {
	Database      string            `toml:"database"`
	QuoteCurrency string            `toml:"quote_currency"`
	Log           LogConfig         `toml:"log"`
	CoinPaprika   CoinPaprikaConfig `toml:"coinpaprika"`
	Assistant     AssistantConfig   `toml:"assistant"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// CoinPaprikaConfig holds the price service configuration.
type CoinPaprikaConfig struct {
	BaseURL           string `toml:"base_url"`
	CoinListLimit     int    `toml:"coin_list_limit"`
	CoinCacheDays     int    `toml:"coin_cache_days"`
	PriceCacheMinutes int    `toml:"price_cache_minutes"`
	RequestInterval   string `toml:"request_interval"`
	Timeout           string `toml:"timeout"`
}

// GetRequestInterval parses and returns the delay between two requests.
func (c *CoinPaprikaConfig) GetRequestInterval() time.Duration {
	d, err := time.ParseDuration(c.RequestInterval)
	if err != nil || d < 0 {
		return 120 * time.Millisecond
	}
	return d
}

// GetTimeout parses and returns the timeout duration.
func (c *CoinPaprikaConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// CoinTTL is how long the coin list stays fresh.
func (c *CoinPaprikaConfig) CoinTTL() time.Duration {
	return time.Duration(c.CoinCacheDays) * 24 * time.Hour
}

// PriceTTL is how long prices stay fresh.
func (c *CoinPaprikaConfig) PriceTTL() time.Duration {
	return time.Duration(c.PriceCacheMinutes) * time.Minute
}

// AssistantConfig holds the AI assistant configuration.
type AssistantConfig struct {
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database:      "cit.db",
		QuoteCurrency: "USD",
		Log: LogConfig{
			Level: "info",
		},
		CoinPaprika: CoinPaprikaConfig{
			BaseURL:           "https://api.coinpaprika.com/v1",
			CoinListLimit:     1000,
			CoinCacheDays:     7,
			PriceCacheMinutes: 15,
			RequestInterval:   "120ms",
			Timeout:           "30s",
		},
		Assistant: AssistantConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Load returns the configuration read from the TOML file at path, the .env
// file of the working directory and the environment.
//
// A missing file at path is not an error when path is DefaultPath.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// .env is optional, and never overrides the real environment.
	_ = godotenv.Load()

	applyEnvOverrides(config)
	config.QuoteCurrency = strings.ToUpper(config.QuoteCurrency)
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("CIT_DB"); v != "" {
		config.Database = v
	}
	if v := os.Getenv("CIT_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("CIT_QUOTE_CURRENCY"); v != "" {
		config.QuoteCurrency = v
	}
	if v := os.Getenv("CIT_API_BASE"); v != "" {
		config.CoinPaprika.BaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Assistant.APIKey = v
	}
}
