package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"QuantSentinel/internal/alert"
	"QuantSentinel/internal/api"
	"QuantSentinel/internal/app"
	"QuantSentinel/internal/config"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/notifier"
	"QuantSentinel/internal/scheduler"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		logger.ErrorWithErr(context.Background(), "init logger", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "QuantSentinel exited", err)
		_ = logger.Shutdown(context.Background())
		os.Exit(1)
	}
	_ = logger.Shutdown(context.Background())
}

func run(ctx context.Context) error {
	logger.Info(ctx, "QuantSentinel starting")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	alerts, err := alert.NewTracker(cfg.Alert.StateFile)
	if err != nil {
		return err
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	watch := scheduler.WatchlistsFromConfig(cfg)

	sched := scheduler.NewScheduler(ctx, a.Engine, tn, a.Recorder, alerts, cfg.Backtest.BacktestConfig, watch)
	if err := sched.RegisterAll(cfg.Schedule); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info(ctx, "telegram polling started")

	if task := os.Getenv("RUN_ON_START"); task != "" {
		logger.Info(ctx, "RUN_ON_START enabled, executing task now", "task", task)
		go func() {
			if err := sched.RunNow(task); err != nil {
				logger.Warn(ctx, "run on start", "error", err)
			}
		}()
	}

	var runs api.RunLister
	if a.SQLite != nil {
		runs = a.SQLite
	}
	router := api.NewRouter(api.NewHandlers(a.Engine, cfg.Backtest.BacktestConfig, watch, runs))

	logger.Info(ctx, "QuantSentinel is running", "api_addr", cfg.API.Addr)
	err = api.Serve(ctx, cfg.API.Addr, router)
	logger.Info(ctx, "shutdown signal received, stopping")
	return err
}
