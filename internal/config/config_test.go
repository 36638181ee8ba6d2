package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "techan", cfg.Indicators.Engine)
	assert.Equal(t, 20, cfg.Indicators.BBPeriod)
	assert.Equal(t, 26, cfg.Indicators.MACDSlow)
	assert.Equal(t, 10000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, "SPY", cfg.Backtest.Universe.RiskA)
	assert.Equal(t, 3, cfg.Backtest.Universe.TopK)
	assert.InDelta(t, 1.0, cfg.Backtest.GEMWeight+cfg.Backtest.TAAWeight+cfg.Backtest.SectorWeight, 1e-9)
	assert.Equal(t, 15, cfg.ORB.RangeMinutes)
	assert.True(t, cfg.ORB.TickBuffer > 0)
	assert.True(t, cfg.ORB.VWAPFilter)
	assert.Equal(t, 2.0, cfg.Screener.MinRVol)
	assert.NotEmpty(t, cfg.Pairs.Pairs)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: rest
  base_url: http://localhost:9000
indicators:
  engine: native
  rsi_period: 7
backtest:
  start_year: 2015
  initial_capital: 5000
  gem_weight: 1
  universe:
    risk_a: QQQ
    top_k: 2
pairs:
  pairs:
    - [GLD, GDX]
orb:
  symbols: [AAPL]
  range_minutes: 30
  vwap_filter: false
screener:
  candidates: [TSLA]
  min_rvol: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "rest", cfg.DataSource.Provider)
	assert.Equal(t, "native", cfg.Indicators.Engine)
	assert.Equal(t, 7, cfg.Indicators.RSIPeriod)
	assert.Equal(t, 20, cfg.Indicators.BBPeriod)
	assert.Equal(t, 2015, cfg.Backtest.StartYear)
	assert.Equal(t, 1.0, cfg.Backtest.GEMWeight)
	assert.Equal(t, 0.0, cfg.Backtest.TAAWeight)
	assert.Equal(t, "QQQ", cfg.Backtest.Universe.RiskA)
	assert.Equal(t, 2, cfg.Backtest.Universe.TopK)
	assert.Equal(t, [][]string{{"GLD", "GDX"}}, cfg.Pairs.Pairs)
	assert.Equal(t, []string{"AAPL"}, cfg.ORB.Symbols)
	assert.Equal(t, 30, cfg.ORB.RangeMinutes)
	assert.False(t, cfg.ORB.VWAPFilter)
	assert.Equal(t, 3.0, cfg.Screener.MinRVol)
	assert.Equal(t, 3.0, cfg.Screener.MinChangePct)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("SQLITE_PATH", "/tmp/q.db")
	t.Setenv("API_ADDR", ":9999")
	t.Setenv("BACKTEST_START_YEAR", "2018")
	t.Setenv("CRON_DAILY", "0 0 18 * * *")

	cfg, err := Load(writeConfig(t, "telegram:\n  bot_token: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "/tmp/q.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":9999", cfg.API.Addr)
	assert.Equal(t, 2018, cfg.Backtest.StartYear)
	assert.Equal(t, "0 0 18 * * *", cfg.Schedule.DailyCron)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "backtest: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "ftp" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = "rest"; c.DataSource.BaseURL = "" }},
		{"influx without bucket", func(c *Config) { c.DataSource.Provider = "influx"; c.Influx.URL = "http://influx:8086" }},
		{"unknown engine", func(c *Config) { c.Indicators.Engine = "talib" }},
		{"negative capital", func(c *Config) { c.Backtest.InitialCapital = -1 }},
		{"negative weight", func(c *Config) { c.Backtest.TAAWeight = -0.2 }},
		{"macd order", func(c *Config) { c.Indicators.MACDSlow = 5 }},
		{"pair arity", func(c *Config) { c.Pairs.Pairs = [][]string{{"KO"}} }},
		{"range too long", func(c *Config) { c.ORB.RangeMinutes = 500 }},
		{"bad proxy", func(c *Config) { c.Proxy = "not a url" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRequireTelegram(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireTelegram())
	cfg.Telegram.BotToken = "x"
	assert.Error(t, cfg.RequireTelegram())
	cfg.Telegram.ChatID = "1"
	assert.NoError(t, cfg.RequireTelegram())
}
