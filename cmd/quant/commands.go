package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"QuantSentinel/internal/api"
	"QuantSentinel/internal/app"
	"QuantSentinel/internal/config"
	"QuantSentinel/internal/notifier"
	"QuantSentinel/internal/scheduler"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	provider   string
	jsonOut    bool

	cfg *config.Config
	app *app.App
}

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "", "<code>", "", "</code>", "")

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "quant",
		Short:        "Rotation backtests, pair analysis and intraday signal scans",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if c.app != nil {
				c.app.Close()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "configs/config.yaml", "path to the YAML config")
	root.PersistentFlags().StringVar(&c.provider, "provider", "", "override data_source.provider (yahoo|rest|influx|mock)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		c.backtestCmd(),
		c.pairCmd(),
		c.pairsCmd(),
		c.signalsCmd(),
		c.orbCmd(),
		c.premarketCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.provider != "" {
		cfg.DataSource.Provider = c.provider
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.app, err = app.New(cmd.Context(), cfg, cmd.Name() == "serve" || recordFlag(cmd))
	return err
}

func recordFlag(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("record")
	return f != nil && f.Value.String() == "true"
}

// print writes v as JSON, or text otherwise.
func (c *cli) print(w io.Writer, v any, text string) error {
	if c.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, htmlTags.Replace(text))
	return err
}

func (c *cli) backtestCmd() *cobra.Command {
	var startYear int
	var capital float64
	var record bool
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run the GEM / TAA / sector rotation backtest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.cfg.Backtest.BacktestConfig
			if startYear != 0 {
				cfg.StartYear = startYear
			}
			if capital != 0 {
				cfg.InitialCapital = capital
			}
			report, err := c.app.Engine.Backtest(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			id := ""
			if record {
				if id, err = c.app.Recorder.RecordBacktest(cmd.Context(), report); err != nil {
					return err
				}
			}
			return c.print(cmd.OutOrStdout(), report, notifier.FormatBacktest(report, id))
		},
	}
	cmd.Flags().IntVar(&startYear, "start-year", 0, "first year of the backtest")
	cmd.Flags().Float64Var(&capital, "capital", 0, "initial capital")
	cmd.Flags().BoolVar(&record, "record", false, "store the run in SQLite")
	return cmd
}

func (c *cli) pairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair SYMBOL_A SYMBOL_B",
		Short: "Test two symbols for cointegration and report the spread signal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.Engine.AnalyzePair(cmd.Context(), strings.ToUpper(args[0]), strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), res, notifier.FormatPair(res))
		},
	}
}

func (c *cli) pairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "Analyze every configured pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reports, err := c.app.Engine.AnalyzePairs(cmd.Context(), c.cfg.Pairs.Pairs)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), reports, notifier.FormatPairBatch(reports))
		},
	}
}

func (c *cli) signalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signals [SYMBOL...]",
		Short: "Scan symbols for Bollinger / MACD / RSI confluence signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := c.app.Engine.ScanConfluence(cmd.Context(), upperOr(args, c.cfg.Confluence.Symbols))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), reports, notifier.FormatConfluenceScan(reports))
		},
	}
}

func (c *cli) orbCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orb [SYMBOL...]",
		Short: "Detect the opening range and breakout of the latest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := c.app.Engine.DetectORB(cmd.Context(), upperOr(args, c.cfg.ORB.Symbols))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), reports, notifier.FormatORBScan(reports))
		},
	}
}

func (c *cli) premarketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "premarket [SYMBOL...]",
		Short: "Screen premarket movers by relative volume and gap",
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks, err := c.app.Engine.ScreenPremarket(cmd.Context(), upperOr(args, c.cfg.Screener.Candidates))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), stocks, notifier.FormatPremarket(stocks))
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over HTTP without scheduling or chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.API.Addr
			}
			var runs api.RunLister
			if c.app.SQLite != nil {
				runs = c.app.SQLite
			}
			h := api.NewHandlers(c.app.Engine, c.cfg.Backtest.BacktestConfig, scheduler.WatchlistsFromConfig(c.cfg), runs)
			return api.Serve(cmd.Context(), addr, api.NewRouter(h))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default api.addr)")
	return cmd
}

func upperOr(args, fallback []string) []string {
	if len(args) == 0 {
		return fallback
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ToUpper(a)
	}
	return out
}
