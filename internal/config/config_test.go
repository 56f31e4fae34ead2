package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mohamedkhairy/stock-analytics/internal/data"
	"github.com/mohamedkhairy/stock-analytics/internal/screener"
	"github.com/mohamedkhairy/stock-analytics/internal/signal"
	"github.com/mohamedkhairy/stock-analytics/pkg/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PROVIDER", ProviderMock)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ProviderMock, cfg.MarketData.Provider)
	assert.Equal(t, data.DefaultTushareURL, cfg.MarketData.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 3, cfg.MarketData.RetryTimes)
	assert.Equal(t, 8090, cfg.API.Port)
	assert.Equal(t, "output", cfg.Screener.OutputDir)
	assert.Empty(t, cfg.Screener.Schedule)
	assert.Equal(t, indicator.DefaultWindowSet(), cfg.Windows)
	assert.Equal(t, signal.DefaultConfig(), cfg.Signals)
	assert.Equal(t, screener.DefaultConfig(), cfg.Screening)
}

func TestLoadRequiresTushareToken(t *testing.T) {
	t.Setenv("PROVIDER", ProviderTushare)
	t.Setenv("TUSHARE_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUSHARE_TOKEN")

	t.Setenv("TUSHARE_TOKEN", "secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.MarketData.Token)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PROVIDER", ProviderMock)
	t.Setenv("TUSHARE_TOKEN", "")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TUSHARE_TIMEOUT", "5s")
	t.Setenv("TUSHARE_RETRY_TIMES", "5")
	t.Setenv("TUSHARE_RETRY_BACKOFF", "250ms")
	t.Setenv("MOCK_SYMBOLS", "600519.SH, 000001.SZ,")
	t.Setenv("MOCK_SEED", "42")
	t.Setenv("API_PORT", "9000")
	t.Setenv("SCREENER_SCHEDULE", "30 15 * * 1-5")
	t.Setenv("SCREENER_WORKERS", "8")
	t.Setenv("SCREENER_TOP_N", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.Equal(t, "30 15 * * 1-5", cfg.Screener.Schedule)
	assert.Equal(t, 8, cfg.Screening.Workers)
	assert.Equal(t, 20, cfg.Screening.TopN, "unparsable values fall back to the default")

	assert.Equal(t, data.ProviderConfig{
		BaseURL:      data.DefaultTushareURL,
		Timeout:      5 * time.Second,
		RetryTimes:   5,
		RetryBackoff: 250 * time.Millisecond,
		Symbols:      []string{"600519.SH", "000001.SZ"},
		Seed:         42,
	}, cfg.ProviderConfig())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeFile(t, `
windows:
  ma: [5, 30]
  rsi: 10
signals:
  rsi_overbought: 80
screening:
  top_n: 5
  technical:
    rsi_max: 75
    ma_trend: any
`)
	t.Setenv("PROVIDER", ProviderMock)
	t.Setenv("INDICATOR_CONFIG_FILE", path)
	t.Setenv("SCREENER_MAX_CANDIDATES", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{5, 30}, cfg.Windows.MA)
	assert.Equal(t, 10, cfg.Windows.RSI)
	assert.Equal(t, 12, cfg.Windows.MACD.Fast, "fields the file omits keep defaults")

	assert.Equal(t, 80.0, cfg.Signals.RSIOverbought)
	assert.Equal(t, 30.0, cfg.Signals.RSIOversold)

	assert.Equal(t, 5, cfg.Screening.TopN)
	assert.Equal(t, 50, cfg.Screening.MaxCandidates)
	assert.Equal(t, 75.0, cfg.Screening.Technical.RSIMax)
	assert.Equal(t, screener.TrendAny, cfg.Screening.Technical.MATrend)
	assert.Equal(t, 3, cfg.Screening.Basic.MinYearsListed)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "unknown provider", env: map[string]string{"PROVIDER": "yahoo"}},
		{name: "bad schedule", env: map[string]string{"SCREENER_SCHEDULE": "every day"}},
		{name: "zero retries", env: map[string]string{"TUSHARE_RETRY_TIMES": "0"}},
		{name: "bad port", env: map[string]string{"API_PORT": "70000"}},
		{name: "missing file", env: map[string]string{"INDICATOR_CONFIG_FILE": filepath.Join(os.TempDir(), "does-not-exist.yaml")}},
		{name: "invalid window", file: "windows:\n  rsi: 0\n"},
		{name: "inverted RSI levels", file: "signals:\n  rsi_overbought: 20\n"},
		{name: "malformed yaml", file: "windows: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROVIDER", ProviderMock)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				t.Setenv("INDICATOR_CONFIG_FILE", writeFile(t, tt.file))
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
