package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"QuantSentinel/internal/model"
	"QuantSentinel/internal/orb"
)

// Config holds all application configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	DataSource DataSourceConfig `yaml:"data_source"`
	Influx     InfluxConfig     `yaml:"influx"`
	Indicators IndicatorConfig  `yaml:"indicators"`
	Backtest   BacktestConfig   `yaml:"backtest"`
	Pairs      PairsConfig      `yaml:"pairs"`
	Confluence ConfluenceConfig `yaml:"confluence"`
	ORB        ORBConfig        `yaml:"orb"`
	Screener   ScreenerConfig   `yaml:"screener"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Database   struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	API struct {
		Addr string `yaml:"addr" validate:"required"`
	} `yaml:"api"`
	Alert struct {
		StateFile string `yaml:"state_file" validate:"required"`
	} `yaml:"alert"`
	Proxy string `yaml:"proxy" validate:"omitempty,url"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// DataSourceConfig selects where candles and quotes come from.
type DataSourceConfig struct {
	Provider          string  `yaml:"provider" validate:"oneof=yahoo rest influx mock"`
	BaseURL           string  `yaml:"base_url" validate:"omitempty,url"`
	APIKey            string  `yaml:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

type InfluxConfig struct {
	URL         string `yaml:"url" validate:"omitempty,url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

type IndicatorConfig struct {
	Engine                string `yaml:"engine" validate:"oneof=techan native"`
	model.IndicatorParams `yaml:",inline"`
}

type BacktestConfig struct {
	model.BacktestConfig `yaml:",inline"`
	// Months of monthly candles requested per symbol.
	LookbackMonths int  `yaml:"lookback_months" validate:"gte=13"`
	CalendarAlign  bool `yaml:"calendar_align"`
}

type PairsConfig struct {
	Pairs        [][]string `yaml:"pairs" validate:"dive,len=2,dive,required"`
	LookbackDays int        `yaml:"lookback_days" validate:"gte=30"`
}

type ConfluenceConfig struct {
	Symbols  []string `yaml:"symbols" validate:"dive,required"`
	Interval string   `yaml:"interval" validate:"required"`
	Lookback int      `yaml:"lookback" validate:"gte=22"`
}

type ORBConfig struct {
	Symbols            []string `yaml:"symbols" validate:"dive,required"`
	Interval           string   `yaml:"interval" validate:"required"`
	RangeMinutes       int      `yaml:"range_minutes" validate:"gt=0,lte=120"`
	Lookback           int      `yaml:"lookback" validate:"gt=0"`
	orb.BreakoutConfig `yaml:",inline"`
}

type ScreenerConfig struct {
	Candidates         []string `yaml:"candidates" validate:"dive,required"`
	orb.ScreenerConfig `yaml:",inline"`
}

// ScheduleConfig holds cron specs with a seconds field; a CRON_TZ= prefix is allowed.
type ScheduleConfig struct {
	PremarketCron string `yaml:"premarket_cron"`
	ORBCron       string `yaml:"orb_cron"`
	DailyCron     string `yaml:"daily_cron"`
	MonthlyCron   string `yaml:"monthly_cron"`
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Booleans whose default is true are set before decoding.
	cfg.ORB.VWAPFilter = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	str := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &cfg.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &cfg.Telegram.ChatID,
		"DATA_PROVIDER":      &cfg.DataSource.Provider,
		"DATA_BASE_URL":      &cfg.DataSource.BaseURL,
		"DATA_API_KEY":       &cfg.DataSource.APIKey,
		"INFLUX_URL":         &cfg.Influx.URL,
		"INFLUX_TOKEN":       &cfg.Influx.Token,
		"INFLUX_ORG":         &cfg.Influx.Org,
		"INFLUX_BUCKET":      &cfg.Influx.Bucket,
		"HTTPS_PROXY":        &cfg.Proxy,
		"SQLITE_PATH":        &cfg.Database.SQLitePath,
		"API_ADDR":           &cfg.API.Addr,
		"ALERT_STATE_FILE":   &cfg.Alert.StateFile,
		"CRON_PREMARKET":     &cfg.Schedule.PremarketCron,
		"CRON_ORB":           &cfg.Schedule.ORBCron,
		"CRON_DAILY":         &cfg.Schedule.DailyCron,
		"CRON_MONTHLY":       &cfg.Schedule.MonthlyCron,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("BACKTEST_INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialCapital = f
		}
	}
	if v := os.Getenv("BACKTEST_START_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backtest.StartYear = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.RequestsPerSecond == 0 {
		cfg.DataSource.RequestsPerSecond = 2
	}
	if cfg.Influx.Measurement == "" {
		cfg.Influx.Measurement = "stock_prices"
	}

	if cfg.Indicators.Engine == "" {
		cfg.Indicators.Engine = "techan"
	}
	def := model.DefaultIndicatorParams()
	p := &cfg.Indicators.IndicatorParams
	setInt(&p.BBPeriod, def.BBPeriod)
	setFloat(&p.BBStdDev, def.BBStdDev)
	setInt(&p.MACDFast, def.MACDFast)
	setInt(&p.MACDSlow, def.MACDSlow)
	setInt(&p.MACDSignal, def.MACDSignal)
	setInt(&p.RSIPeriod, def.RSIPeriod)

	bt := &cfg.Backtest
	setInt(&bt.StartYear, 2010)
	setFloat(&bt.InitialCapital, 10000)
	if bt.GEMWeight == 0 && bt.TAAWeight == 0 && bt.SectorWeight == 0 {
		bt.GEMWeight, bt.TAAWeight, bt.SectorWeight = 0.4, 0.3, 0.3
	}
	du := model.DefaultUniverse()
	if bt.Universe.RiskA == "" {
		bt.Universe.RiskA, bt.Universe.RiskB, bt.Universe.Safety = du.RiskA, du.RiskB, du.Safety
	}
	if len(bt.Universe.TAA) == 0 {
		bt.Universe.TAA = du.TAA
	}
	if len(bt.Universe.Sectors) == 0 {
		bt.Universe.Sectors = du.Sectors
	}
	setInt(&bt.Universe.TopK, du.TopK)
	setInt(&bt.LookbackMonths, 240)

	if len(cfg.Pairs.Pairs) == 0 {
		cfg.Pairs.Pairs = [][]string{{"KO", "PEP"}, {"XOM", "CVX"}, {"V", "MA"}}
	}
	setInt(&cfg.Pairs.LookbackDays, 252)

	if len(cfg.Confluence.Symbols) == 0 {
		cfg.Confluence.Symbols = []string{"SPY", "QQQ", "IWM"}
	}
	setString(&cfg.Confluence.Interval, "1d")
	setInt(&cfg.Confluence.Lookback, 200)

	if len(cfg.ORB.Symbols) == 0 {
		cfg.ORB.Symbols = []string{"SPY", "QQQ"}
	}
	setString(&cfg.ORB.Interval, "5m")
	setInt(&cfg.ORB.RangeMinutes, 15)
	setInt(&cfg.ORB.Lookback, 156)
	setFloat(&cfg.ORB.TickBuffer, orb.DefaultTickBuffer)

	sd := orb.DefaultScreenerConfig()
	sc := &cfg.Screener.ScreenerConfig
	setFloat(&sc.MinRVol, sd.MinRVol)
	setFloat(&sc.MinChangePct, sd.MinChangePct)
	setFloat(&sc.PremarketFraction, sd.PremarketFraction)
	setFloat(&sc.CatalystChangePct, sd.CatalystChangePct)
	if len(cfg.Screener.Candidates) == 0 {
		cfg.Screener.Candidates = []string{"AAPL", "MSFT", "NVDA", "AMZN", "META", "TSLA", "AMD", "GOOGL"}
	}

	setString(&cfg.Schedule.PremarketCron, "CRON_TZ=America/New_York 0 0 9 * * 1-5")
	setString(&cfg.Schedule.ORBCron, "CRON_TZ=America/New_York 0 */5 9-11 * * 1-5")
	setString(&cfg.Schedule.DailyCron, "CRON_TZ=America/New_York 0 30 16 * * 1-5")
	setString(&cfg.Schedule.MonthlyCron, "CRON_TZ=America/New_York 0 0 9 1 * *")

	setString(&cfg.Database.SQLitePath, "data/quant_sentinel.db")
	setString(&cfg.API.Addr, ":8080")
	setString(&cfg.Alert.StateFile, "data/alert_state.json")
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules of the backtest.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	bt := c.Backtest
	if bt.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive")
	}
	if bt.GEMWeight < 0 || bt.TAAWeight < 0 || bt.SectorWeight < 0 {
		return fmt.Errorf("backtest weights must not be negative")
	}
	if bt.Universe.TopK <= 0 {
		return fmt.Errorf("backtest.top_k must be positive")
	}
	if c.Indicators.MACDSlow <= c.Indicators.MACDFast {
		return fmt.Errorf("indicators.macd_slow must exceed macd_fast")
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if c.DataSource.Provider == "influx" && (c.Influx.URL == "" || c.Influx.Bucket == "") {
		return fmt.Errorf("influx.url and influx.bucket are required for the influx provider")
	}
	return nil
}

// RequireTelegram checks the settings the notifier needs.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}
