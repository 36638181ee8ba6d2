// Package scheduler runs the periodic scans and answers chat commands.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"QuantSentinel/internal/alert"
	"QuantSentinel/internal/config"
	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/logger"
	"QuantSentinel/internal/model"
	"QuantSentinel/internal/notifier"
	"QuantSentinel/internal/recorder"
)

const sendRetries = 3

// Watchlists are the symbols each scheduled job scans.
type Watchlists struct {
	Pairs      [][]string
	Confluence []string
	ORB        []string
	Premarket  []string
}

// WatchlistsFromConfig maps the configured symbol lists.
func WatchlistsFromConfig(cfg *config.Config) Watchlists {
	return Watchlists{
		Pairs:      cfg.Pairs.Pairs,
		Confluence: cfg.Confluence.Symbols,
		ORB:        cfg.ORB.Symbols,
		Premarket:  cfg.Screener.Candidates,
	}
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Engine   engine.Service
	Notifier notifier.Notifier
	Recorder recorder.Recorder
	Alerts   *alert.Tracker
	Backtest model.BacktestConfig
	Watch    Watchlists
	Ctx      context.Context

	// premarket holds the latest screen so the ORB job can follow its movers.
	mu        sync.Mutex
	premarket []string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, eng engine.Service, n notifier.Notifier, rec recorder.Recorder, alerts *alert.Tracker, bt model.BacktestConfig, watch Watchlists) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Engine:   eng,
		Notifier: n,
		Recorder: rec,
		Alerts:   alerts,
		Backtest: bt,
		Watch:    watch,
		Ctx:      ctx,
	}
}

// RegisterAll registers the premarket, ORB, daily and monthly tasks.
func (s *Scheduler) RegisterAll(sc config.ScheduleConfig) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"premarket", sc.PremarketCron, s.premarketTask},
		{"orb", sc.ORBCron, s.orbTask},
		{"daily", sc.DailyCron, s.dailyTask},
		{"monthly", sc.MonthlyCron, s.monthlyTask},
	}
	for _, j := range jobs {
		if j.spec == "" {
			continue
		}
		if _, err := s.Cron.AddFunc(j.spec, j.fn); err != nil {
			return fmt.Errorf("register %s task: %w", j.name, err)
		}
	}
	if s.Alerts == nil {
		return nil
	}
	// Alert keys older than a week are no longer needed.
	if _, err := s.Cron.AddFunc("0 0 0 * * *", func() {
		if err := s.Alerts.Prune(7); err != nil {
			logger.ErrorWithErr(s.Ctx, "prune alert state", err)
		}
	}); err != nil {
		return fmt.Errorf("register prune task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info(s.Ctx, "scheduler started", "jobs", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info(s.Ctx, "scheduler stopped")
}

// RunNow executes a task by name immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow(name string) error {
	switch name {
	case "premarket":
		s.premarketTask()
	case "orb":
		s.orbTask()
	case "daily":
		s.dailyTask()
	case "monthly":
		s.monthlyTask()
	default:
		return fmt.Errorf("unknown task %q", name)
	}
	return nil
}

func (s *Scheduler) premarketTask() {
	logger.Info(s.Ctx, "running premarket task")
	stocks, err := s.Engine.ScreenPremarket(s.Ctx, s.Watch.Premarket)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "premarket screen", err)
		s.trySend(fmt.Sprintf("❌ Premarket screen failed: %v", err))
		return
	}

	s.mu.Lock()
	s.premarket = s.premarket[:0]
	for _, st := range stocks {
		s.premarket = append(s.premarket, st.Symbol)
	}
	s.mu.Unlock()

	if _, err := s.Recorder.RecordScreen(s.Ctx, stocks); err != nil {
		logger.ErrorWithErr(s.Ctx, "record premarket screen", err)
	}
	s.trySend(notifier.FormatPremarket(stocks))
}

// orbSymbols is the configured ORB list plus today's premarket movers.
func (s *Scheduler) orbSymbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{s.Watch.ORB, s.premarket} {
		for _, sym := range list {
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	return out
}

func (s *Scheduler) orbTask() {
	symbols := s.orbSymbols()
	if len(symbols) == 0 {
		return
	}
	reports, err := s.Engine.DetectORB(s.Ctx, symbols)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "orb scan", err)
		return
	}
	for _, r := range reports {
		if r.Signal == nil || !s.firstTime(alert.ORBKey(r.Signal)) {
			continue
		}
		if err := s.Recorder.RecordORB(s.Ctx, r.Signal); err != nil {
			logger.ErrorWithErr(s.Ctx, "record orb signal", err, "symbol", r.Symbol)
		}
		s.trySend(notifier.FormatORB(r.Signal))
	}
}

func (s *Scheduler) dailyTask() {
	logger.Info(s.Ctx, "running daily task")
	s.confluenceScan()
	s.pairScan()
}

func (s *Scheduler) confluenceScan() {
	reports, err := s.Engine.ScanConfluence(s.Ctx, s.Watch.Confluence)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "confluence scan", err)
		return
	}
	for _, r := range reports {
		sig := r.Latest()
		if sig == nil {
			continue
		}
		if err := s.Recorder.RecordConfluence(s.Ctx, r.Symbol, r.Interval, *sig); err != nil {
			logger.ErrorWithErr(s.Ctx, "record confluence signal", err, "symbol", r.Symbol)
		}
		if s.firstTime(alert.ConfluenceKey(r.Symbol, *sig)) {
			s.trySend(notifier.FormatConfluence(r.Symbol, *sig))
		}
	}
}

func (s *Scheduler) pairScan() {
	reports, err := s.Engine.AnalyzePairs(s.Ctx, s.Watch.Pairs)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "pair scan", err)
		return
	}
	for _, r := range reports {
		if r.Result == nil {
			continue
		}
		if err := s.Recorder.RecordPair(s.Ctx, r.Result); err != nil {
			logger.ErrorWithErr(s.Ctx, "record pair", err, "pair_a", r.PairA, "pair_b", r.PairB)
		}
		if r.Result.Signal != model.PairSignalNone && s.firstTime(alert.PairKey(r.Result)) {
			s.trySend(notifier.FormatPair(r.Result))
		}
	}
}

func (s *Scheduler) monthlyTask() {
	logger.Info(s.Ctx, "running monthly backtest")
	report, err := s.Engine.Backtest(s.Ctx, s.Backtest)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "monthly backtest", err)
		s.trySend(fmt.Sprintf("❌ Monthly backtest failed: %v", err))
		return
	}
	id, err := s.Recorder.RecordBacktest(s.Ctx, report)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "record backtest", err)
	}
	s.trySend(notifier.FormatBacktest(report, id))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "/backtest":
		cfg := s.Backtest
		if len(args) > 0 {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Sprintf("invalid start year %q", args[0])
			}
			cfg.StartYear = year
		}
		report, err := s.Engine.Backtest(ctx, cfg)
		if err != nil {
			return fmt.Sprintf("❌ backtest failed: %v", err)
		}
		return notifier.FormatBacktest(report, "")
	case "/pair":
		if len(args) != 2 {
			return "usage: /pair SYMBOL_A SYMBOL_B"
		}
		res, err := s.Engine.AnalyzePair(ctx, strings.ToUpper(args[0]), strings.ToUpper(args[1]))
		if err != nil {
			return fmt.Sprintf("❌ pair analysis failed: %v", err)
		}
		return notifier.FormatPair(res)
	case "/pairs":
		reports, err := s.Engine.AnalyzePairs(ctx, s.Watch.Pairs)
		if err != nil {
			return fmt.Sprintf("❌ pair scan failed: %v", err)
		}
		return notifier.FormatPairBatch(reports)
	case "/signals":
		reports, err := s.Engine.ScanConfluence(ctx, symbolsOr(args, s.Watch.Confluence))
		if err != nil {
			return fmt.Sprintf("❌ confluence scan failed: %v", err)
		}
		return notifier.FormatConfluenceScan(reports)
	case "/orb":
		syms := args
		if len(syms) == 0 {
			syms = s.orbSymbols()
		}
		reports, err := s.Engine.DetectORB(ctx, symbolsOr(syms, nil))
		if err != nil {
			return fmt.Sprintf("❌ orb scan failed: %v", err)
		}
		return notifier.FormatORBScan(reports)
	case "/premarket":
		stocks, err := s.Engine.ScreenPremarket(ctx, symbolsOr(args, s.Watch.Premarket))
		if err != nil {
			return fmt.Sprintf("❌ premarket screen failed: %v", err)
		}
		return notifier.FormatPremarket(stocks)
	default:
		return notifier.HelpText
	}
}

func symbolsOr(args, fallback []string) []string {
	if len(args) == 0 {
		return fallback
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ToUpper(a)
	}
	return out
}

// firstTime reports whether key was not notified today. Tracker failures
// fall back to sending.
func (s *Scheduler) firstTime(key string) bool {
	if s.Alerts == nil {
		return true
	}
	ok, err := s.Alerts.ShouldSend(key)
	if err != nil {
		logger.ErrorWithErr(s.Ctx, "save alert state", err, "key", key)
		return true
	}
	return ok
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		logger.ErrorWithErr(s.Ctx, "send notification", err)
	}
}
