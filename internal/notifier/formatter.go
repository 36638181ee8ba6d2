package notifier

import (
	"fmt"
	"math"
	"strings"
	"time"

	"QuantSentinel/internal/engine"
	"QuantSentinel/internal/model"
)

// FormatBacktest formats a backtest run into a Telegram message.
func FormatBacktest(report *engine.BacktestReport, runID string) string {
	var b strings.Builder
	res := report.Result
	cfg := report.Config

	b.WriteString(fmt.Sprintf("📊 <b>Rotation backtest</b> | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Since %d · weights GEM %.0f%% / TAA %.0f%% / Sector %.0f%%\n",
		cfg.StartYear, cfg.GEMWeight*100, cfg.TAAWeight*100, cfg.SectorWeight*100))
	if res.Months == 0 {
		b.WriteString("\nNot enough history for this start year.\n")
		return b.String()
	}

	final := cfg.InitialCapital
	if n := len(res.EquityCurve); n > 0 {
		final = res.EquityCurve[n-1].Value
	}
	b.WriteString(fmt.Sprintf("Equity: %.0f → %.0f (%+.1f%%) over %d months\n\n",
		cfg.InitialCapital, final, res.TotalReturn*100, res.Months))

	b.WriteString("📈 <b>Metrics:</b>\n")
	b.WriteString(fmt.Sprintf("  CAGR: %+.2f%%\n", res.CAGR*100))
	b.WriteString(fmt.Sprintf("  Sharpe: %.2f | Vol: %.1f%%\n", res.Sharpe, res.Volatility*100))
	b.WriteString(fmt.Sprintf("  Max drawdown: %.1f%% | Calmar: %.2f\n", res.MaxDrawdown*100, res.Calmar))
	b.WriteString(fmt.Sprintf("  Win rate: %.0f%% | Best %+.1f%% / Worst %+.1f%%\n",
		res.WinRate*100, res.BestMonth*100, res.WorstMonth*100))

	if a := res.CurrentAllocation; a != nil {
		b.WriteString("\n💼 <b>Current allocation:</b>\n")
		b.WriteString(fmt.Sprintf("  GEM: %s\n", orDash(a.GEM)))
		b.WriteString(fmt.Sprintf("  TAA: %s\n", joinOrDash(a.TAA)))
		b.WriteString(fmt.Sprintf("  Sectors: %s\n", joinOrDash(a.Sectors)))
	}
	if len(report.Missing) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ Missing data: %s\n", strings.Join(report.Missing, ", ")))
	}
	if runID != "" {
		b.WriteString(fmt.Sprintf("\nrun <code>%s</code>", runID))
	}
	return b.String()
}

// FormatPair formats one pair analysis.
func FormatPair(res *model.PairResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔗 <b>%s / %s</b> %s\n", res.PairA, res.PairB, pairIcon(res.Signal)))
	b.WriteString(fmt.Sprintf("  β=%.3f α=%.2f corr=%.2f\n", res.Beta, res.Alpha, res.Correlation))
	coint := "no"
	if res.IsCointegrated {
		coint = "yes"
	}
	b.WriteString(fmt.Sprintf("  ADF %.2f (p %s) cointegrated: %s\n", res.ADFStatistic, res.PValue, coint))
	b.WriteString(fmt.Sprintf("  half-life: %s | window %d\n", formatHalfLife(res.HalfLife), res.ZWindow))
	b.WriteString(fmt.Sprintf("  z=%+.2f → <b>%s</b>\n", res.CurrentZScore, res.Signal))
	return b.String()
}

// FormatPairBatch formats a batch of pair reports.
func FormatPairBatch(reports []engine.PairReport) string {
	var b strings.Builder
	b.WriteString("🔗 <b>Pair scan</b>\n\n")
	for _, r := range reports {
		if r.Err != "" {
			b.WriteString(fmt.Sprintf("❌ %s / %s: %s\n", r.PairA, r.PairB, r.Err))
			continue
		}
		b.WriteString(FormatPair(r.Result))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatConfluence formats a single confluence signal.
func FormatConfluence(symbol string, sig model.ConfluenceSignal) string {
	var b strings.Builder
	icon := "🟢"
	if sig.Side == model.SideSell {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> (%s) @ %.2f\n", icon, symbol, sig.Side, sig.Confidence, sig.Price))
	b.WriteString(fmt.Sprintf("  %s | RSI %.0f | band %.2f\n",
		time.Unix(sig.Time, 0).UTC().Format("2006-01-02 15:04"), sig.RSI, sig.Band))
	for _, c := range sig.Conditions {
		b.WriteString(fmt.Sprintf("  • %s: %s\n", c.Name, c.Commentary))
	}
	return b.String()
}

// FormatConfluenceScan reports the latest signal per symbol.
func FormatConfluenceScan(reports []engine.ConfluenceReport) string {
	var b strings.Builder
	b.WriteString("🎯 <b>Confluence scan</b>\n\n")
	for _, r := range reports {
		switch s := r.Latest(); {
		case r.Err != "":
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", r.Symbol, r.Err))
		case s == nil:
			b.WriteString(fmt.Sprintf("⚪ %s: no signal in %d candles\n", r.Symbol, r.Candles))
		default:
			b.WriteString(FormatConfluence(r.Symbol, *s))
		}
	}
	return b.String()
}

// FormatORB formats a breakout trade plan.
func FormatORB(sig *model.ORBSignal) string {
	var b strings.Builder
	icon := "🚀"
	if sig.Direction == model.DirectionShort {
		icon = "🔻"
	}
	b.WriteString(fmt.Sprintf("%s <b>ORB %s %s</b> @ %.2f\n", icon, sig.Symbol, strings.ToUpper(string(sig.Direction)), sig.Entry))
	b.WriteString(fmt.Sprintf("  range %.2f – %.2f | VWAP %.2f\n", sig.RangeLow, sig.RangeHigh, sig.VWAP))
	b.WriteString(fmt.Sprintf("  T1 %.2f | T2 %.2f | stop %.2f\n", sig.Target1, sig.Target2, sig.Stop))
	return b.String()
}

// FormatORBScan reports the range and breakout state of every symbol.
func FormatORBScan(reports []engine.ORBReport) string {
	var b strings.Builder
	b.WriteString("⏱ <b>Opening range</b>\n\n")
	for _, r := range reports {
		switch {
		case r.Err != "":
			b.WriteString(fmt.Sprintf("❌ %s: %s\n", r.Symbol, r.Err))
		case r.Range == nil:
			b.WriteString(fmt.Sprintf("⚪ %s: no range yet\n", r.Symbol))
		case r.Signal == nil:
			b.WriteString(fmt.Sprintf("⏳ %s: range %.2f – %.2f, no breakout\n", r.Symbol, r.Range.Low, r.Range.High))
		default:
			b.WriteString(FormatORB(r.Signal))
		}
	}
	return b.String()
}

// FormatPremarket formats the screened premarket candidates.
func FormatPremarket(stocks []model.PremarketStock) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌅 <b>Premarket movers</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(stocks) == 0 {
		b.WriteString("No candidates passed the filters.")
		return b.String()
	}
	for i, s := range stocks {
		catalyst := ""
		if s.HasCatalyst {
			catalyst = " 📰"
		}
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> %.2f (%+.1f%%) rVol %.1f%s\n",
			i+1, s.Symbol, s.PrePrice, s.PreChangePct, s.RVol, catalyst))
	}
	return b.String()
}

// HelpText lists the chat commands.
const HelpText = `Available commands:
• /backtest [start_year]
• /pair SYMBOL_A SYMBOL_B
• /pairs
• /signals [SYMBOL...]
• /orb [SYMBOL...]
• /premarket`

func pairIcon(s model.PairSignal) string {
	switch s {
	case model.PairSignalLong:
		return "🟢"
	case model.PairSignalShort:
		return "🔴"
	case model.PairSignalClose:
		return "✅"
	case model.PairSignalStoploss:
		return "🛑"
	default:
		return "⚪"
	}
}

func formatHalfLife(hl float64) string {
	if math.IsInf(hl, 0) || math.IsNaN(hl) {
		return "∞"
	}
	return fmt.Sprintf("%.1f d", hl)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
