// Package app wires configuration into the collectors, engine and storage
// shared by the bot daemon and the CLI.
package app

import (
	"context"
	"fmt"

	"QuantSentinel/internal/collector"
	"QuantSentinel/internal/config"
	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/engine/engineobs"
	"QuantSentinel/internal/indicator"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/recorder"
)

// App holds the long-lived components built from one configuration.
type App struct {
	Config   *config.Config
	Engine   engine.Service
	Recorder recorder.Recorder
	// SQLite is set when run history is stored.
	SQLite *recorder.SQLiteRecorder

	closers []func() error
}

// New builds the App. withRecorder opens SQLite when a path is configured.
func New(ctx context.Context, cfg *config.Config, withRecorder bool) (*App, error) {
	a := &App{Config: cfg}

	fetcher, quotes, closeFetcher := NewSources(cfg)
	if closeFetcher != nil {
		a.closers = append(a.closers, closeFetcher)
	}
	logger.Info(ctx, "data source selected", "provider", fetcher.Name())

	ind, err := indicator.New(cfg.Indicators.Engine)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("indicator engine: %w", err)
	}
	col := collector.NewCollector(fetcher, quotes, cfg.DataSource.RequestsPerSecond)
	a.Engine = engineobs.Wrap(engine.New(col, ind, engine.OptionsFromConfig(cfg)))

	a.Recorder = recorder.NewNoopRecorder()
	if withRecorder && cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn(ctx, "init sqlite recorder failed, using noop", "error", err)
		} else {
			a.Recorder = sr
			a.SQLite = sr
			a.closers = append(a.closers, sr.Close)
		}
	}
	return a, nil
}

// NewSources picks the candle and quote sources for the configured provider.
// The returned close func may be nil.
func NewSources(cfg *config.Config) (collector.Fetcher, collector.QuoteFetcher, func() error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "rest":
		f := collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy)
		return f, f, nil
	case "influx":
		f := collector.NewInfluxFetcher(collector.InfluxConfig{
			URL:         cfg.Influx.URL,
			Token:       cfg.Influx.Token,
			Org:         cfg.Influx.Org,
			Bucket:      cfg.Influx.Bucket,
			Measurement: cfg.Influx.Measurement,
		})
		return f, collector.NewYahooFetcher(cfg.Proxy), func() error { f.Close(); return nil }
	case "mock":
		m := &collector.MockFetcher{Price: 100}
		return m, m, nil
	default:
		f := collector.NewYahooFetcher(cfg.Proxy)
		return f, f, nil
	}
}

// Close releases storage and data source clients.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}
