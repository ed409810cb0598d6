// Package common provides shared utilities for modeldesk.
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for modeldesk.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Cache       CacheConfig     `toml:"cache"`
	Fetch       FetchConfig     `toml:"fetch"`
	Chart       ChartConfig     `toml:"chart"`
	Logging     LoggingConfig   `toml:"logging"`
	Accounts    []AccountConfig `toml:"accounts"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Aster    AsterConfig    `toml:"aster"`
	Recorder RecorderConfig `toml:"recorder"`
}

// AsterConfig holds exchange API configuration.
type AsterConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AsterConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RecorderConfig holds balance-record API configuration.
type RecorderConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *RecorderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CacheConfig holds per-category TTLs as duration strings.
type CacheConfig struct {
	BalanceTTL   string `toml:"balance_ttl"`
	TradesTTL    string `toml:"trades_ttl"`
	PositionsTTL string `toml:"positions_ttl"`
}

func parseTTL(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetBalanceTTL returns the balance cache TTL (default 15s).
func (c *CacheConfig) GetBalanceTTL() time.Duration { return parseTTL(c.BalanceTTL, 15*time.Second) }

// GetTradesTTL returns the trades cache TTL (default 60s).
func (c *CacheConfig) GetTradesTTL() time.Duration { return parseTTL(c.TradesTTL, 60*time.Second) }

// GetPositionsTTL returns the positions cache TTL (default 20s).
func (c *CacheConfig) GetPositionsTTL() time.Duration {
	return parseTTL(c.PositionsTTL, 20*time.Second)
}

// FetchConfig controls fan-out behavior across accounts.
// MaxInFlight = 1 means strict sequential fetching in registry order,
// which is the rate-limit-friendly default for the upstream exchange.
type FetchConfig struct {
	MaxInFlight int `toml:"max_in_flight"`
}

// GetMaxInFlight returns the fan-out concurrency bound (minimum 1).
func (c *FetchConfig) GetMaxInFlight() int {
	if c.MaxInFlight < 1 {
		return 1
	}
	return c.MaxInFlight
}

// AxisTier maps a data-minimum threshold to a fixed axis floor.
// Tiers are deployment calibration, not domain law: they were tuned for
// accounts seeded with $10k initial capital.
type AxisTier struct {
	Above float64 `toml:"above"`
	Floor float64 `toml:"floor"`
}

// ChartConfig holds chart assembly configuration.
type ChartConfig struct {
	BenchmarkSymbol   string     `toml:"benchmark_symbol"`
	BenchmarkInterval string     `toml:"benchmark_interval"`
	HistoryStartMs    int64      `toml:"history_start_ms"`
	Timeline          string     `toml:"timeline"`
	AxisTiers         []AxisTier `toml:"axis_tiers"`
}

// GetAxisTiers returns the configured tier table, or the default calibration.
func (c *ChartConfig) GetAxisTiers() []AxisTier {
	if len(c.AxisTiers) > 0 {
		return c.AxisTiers
	}
	return []AxisTier{
		{Above: 9000, Floor: 8000},
		{Above: 8000, Floor: 7000},
		{Above: 7000, Floor: 6000},
	}
}

// AccountConfig is one trading-account entry in the registry.
type AccountConfig struct {
	ID             string  `toml:"id"`
	DisplayName    string  `toml:"display_name"`
	ColorTag       string  `toml:"color_tag"`
	IconRef        string  `toml:"icon_ref"`
	UID            string  `toml:"uid"`
	PublicAddress  string  `toml:"public_address"`
	SignerAddress  string  `toml:"signer_address"`
	Enabled        bool    `toml:"enabled"`
	InitialCapital float64 `toml:"initial_capital"`
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
		Clients: ClientsConfig{
			Aster: AsterConfig{
				BaseURL:   "https://fapi.asterdex.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Recorder: RecorderConfig{
				BaseURL: "https://testapi.rfgmeme.ai",
				Timeout: "30s",
			},
		},
		Cache: CacheConfig{
			BalanceTTL:   "15s",
			TradesTTL:    "60s",
			PositionsTTL: "20s",
		},
		Fetch: FetchConfig{
			MaxInFlight: 1,
		},
		Chart: ChartConfig{
			BenchmarkSymbol:   "BTCUSDT",
			BenchmarkInterval: "5m",
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
	if env := os.Getenv("MODELDESK_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("MODELDESK_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("MODELDESK_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("MODELDESK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("MODELDESK_ASTER_BASE_URL"); url != "" {
		config.Clients.Aster.BaseURL = url
	}

	if url := os.Getenv("MODELDESK_RECORDER_BASE_URL"); url != "" {
		config.Clients.Recorder.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
