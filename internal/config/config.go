package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/screener"
	"github.com/mohamedkhairy/stock-analytics/internal/signal"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in PROVIDER
const (
	ProviderTushare = "tushare"
	ProviderMock    = "mock"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Market Data
	MarketData MarketDataConfig

	// Services
	API      APIConfig
	Screener ScreenerConfig

	// Analysis parameters, overridable from IndicatorConfigFile
	IndicatorConfigFile string
	Windows             indicator.WindowSet
	Signals             signal.Config
	Screening           screener.Config
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	Provider     string // "tushare" or "mock"
	Token        string
	BaseURL      string
	Timeout      time.Duration
	RetryTimes   int
	RetryBackoff time.Duration
	// Mock provider universe and seed
	Symbols []string
	Seed    int64
}

// APIConfig holds REST API configuration
type APIConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// LookbackDays is the default analysis range when a request gives none
	LookbackDays int
}

// ScreenerConfig holds screening job configuration
type ScreenerConfig struct {
	Schedule  string // cron spec; empty runs once
	OutputDir string
}

// fileOverrides is the layout of the YAML file named by INDICATOR_CONFIG_FILE
type fileOverrides struct {
	Windows   indicator.WindowSet `yaml:"windows"`
	Signals   signal.Config       `yaml:"signals"`
	Screening screener.Config     `yaml:"screening"`
}

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		MarketData: MarketDataConfig{
			Provider:     getEnv("PROVIDER", ProviderTushare),
			Token:        getEnv("TUSHARE_TOKEN", ""),
			BaseURL:      getEnv("TUSHARE_BASE_URL", data.DefaultTushareURL),
			Timeout:      getEnvAsDuration("TUSHARE_TIMEOUT", 30*time.Second),
			RetryTimes:   getEnvAsInt("TUSHARE_RETRY_TIMES", 3),
			RetryBackoff: getEnvAsDuration("TUSHARE_RETRY_BACKOFF", 1*time.Second),
			Symbols:      getEnvAsStringSlice("MOCK_SYMBOLS", nil),
			Seed:         int64(getEnvAsInt("MOCK_SEED", 0)),
		},
		API: APIConfig{
			Port:         getEnvAsInt("API_PORT", 8090),
			ReadTimeout:  getEnvAsDuration("API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("API_WRITE_TIMEOUT", 60*time.Second),
			LookbackDays: getEnvAsInt("API_LOOKBACK_DAYS", 180),
		},
		Screener: ScreenerConfig{
			Schedule:  getEnv("SCREENER_SCHEDULE", ""),
			OutputDir: getEnv("OUTPUT_DIR", "output"),
		},
		IndicatorConfigFile: getEnv("INDICATOR_CONFIG_FILE", ""),
		Windows:             indicator.DefaultWindowSet(),
		Signals:             signal.DefaultConfig(),
		Screening:           screener.DefaultConfig(),
	}

	if cfg.IndicatorConfigFile != "" {
		if err := cfg.LoadFile(cfg.IndicatorConfigFile); err != nil {
			return nil, err
		}
	}

	// Environment wins over the file for the run-sizing knobs
	cfg.Screening.Workers = getEnvAsInt("SCREENER_WORKERS", cfg.Screening.Workers)
	cfg.Screening.TopN = getEnvAsInt("SCREENER_TOP_N", cfg.Screening.TopN)
	cfg.Screening.MaxCandidates = getEnvAsInt("SCREENER_MAX_CANDIDATES", cfg.Screening.MaxCandidates)
	cfg.Screening.LookbackDays = getEnvAsInt("SCREENER_LOOKBACK_DAYS", cfg.Screening.LookbackDays)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadFile applies the windows, signal levels and screening criteria found
// in a YAML file. Sections or fields the file omits keep their current values.
func (c *Config) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	overrides := fileOverrides{
		Windows:   c.Windows,
		Signals:   c.Signals,
		Screening: c.Screening,
	}
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.Windows = overrides.Windows
	c.Signals = overrides.Signals
	c.Screening = overrides.Screening
	return nil
}

// ProviderConfig converts the market data settings for the provider factory
func (c *Config) ProviderConfig() data.ProviderConfig {
	return data.ProviderConfig{
		Token:        c.MarketData.Token,
		BaseURL:      c.MarketData.BaseURL,
		Timeout:      c.MarketData.Timeout,
		RetryTimes:   c.MarketData.RetryTimes,
		RetryBackoff: c.MarketData.RetryBackoff,
		Symbols:      c.MarketData.Symbols,
		Seed:         c.MarketData.Seed,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.MarketData.Provider {
	case ProviderTushare:
		if c.MarketData.Token == "" {
			return errors.New("TUSHARE_TOKEN is required for the tushare provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("PROVIDER must be %q or %q, got %q", ProviderTushare, ProviderMock, c.MarketData.Provider)
	}
	if c.MarketData.RetryTimes < 1 {
		return fmt.Errorf("TUSHARE_RETRY_TIMES must be at least 1, got %d", c.MarketData.RetryTimes)
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", c.API.Port)
	}
	if c.API.LookbackDays <= 0 {
		return fmt.Errorf("API_LOOKBACK_DAYS must be positive, got %d", c.API.LookbackDays)
	}
	if c.Screener.Schedule != "" {
		if _, err := cron.ParseStandard(c.Screener.Schedule); err != nil {
			return fmt.Errorf("SCREENER_SCHEDULE: %w", err)
		}
	}
	if err := c.Windows.Validate(); err != nil {
		return fmt.Errorf("windows: %w", err)
	}
	if err := c.Signals.Validate(); err != nil {
		return fmt.Errorf("signals: %w", err)
	}
	if err := c.Screening.Validate(); err != nil {
		return fmt.Errorf("screening: %w", err)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
