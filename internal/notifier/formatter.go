package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockScreener/internal/model"
)

var signalEmoji = map[model.Signal]string{
	model.Bullish: "🟢",
	model.Bearish: "🔴",
	model.Neutral: "⚪",
}

func signalLine(name string, signal model.Signal, confidence int) string {
	return fmt.Sprintf("%s %s: <b>%s</b> (%d%%)\n", signalEmoji[signal], name, signal, confidence)
}

// FormatBundle formats one ticker's analyses into a Telegram message.
func FormatBundle(b *model.Bundle) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(b.Ticker), time.Now().Format("2006-01-02")))

	if t := b.Technicals; t != nil && t.Error == "" {
		sb.WriteString(signalLine("Technicals", t.Signal, t.Confidence))
		if s := t.StrategySignals; s != nil {
			sb.WriteString(fmt.Sprintf("   trend %s · mean-rev %s · momentum %s · vol %s\n",
				s.TrendFollowing.Signal, s.MeanReversion.Signal, s.Momentum.Signal, s.Volatility.Signal))
		}
	}
	if f := b.Fundamentals; f != nil {
		sb.WriteString(signalLine("Fundamentals", f.Signal, f.Confidence))
		if r, ok := f.Reasoning.(model.FundamentalReasoning); ok {
			for _, d := range []model.ScoreDetail{r.Profitability, r.Growth, r.FinancialHealth, r.PriceRatios} {
				if d.Details != "" {
					sb.WriteString("   " + html.EscapeString(d.Details) + "\n")
				}
			}
		}
	}
	if s := b.Sentiment; s != nil {
		sb.WriteString(signalLine("Sentiment", s.Signal, s.Confidence))
	}
	if v := b.Valuation; v != nil {
		sb.WriteString(signalLine("Valuation", v.Signal, v.Confidence))
		sb.WriteString(fmt.Sprintf("   DCF $%s · Owner earnings $%s\n",
			humanize.Comma(int64(v.DCFValue)), humanize.Comma(int64(v.OwnerEarningsValue))))
	}

	if len(b.Errors) > 0 {
		sb.WriteString("\n⚠️ <b>Unavailable:</b>\n")
		for _, name := range sortedKeys(b.Errors) {
			sb.WriteString(fmt.Sprintf("   %s: %s\n", name, html.EscapeString(b.Errors[name])))
		}
	}
	return sb.String()
}

// RunSummary is the digest of a finished screening or watchlist run.
type RunSummary struct {
	Kind      string
	RunID     string
	Started   time.Time
	Processed int
	Failed    int
	Companies []*model.CompanyMetrics
	Bundles   []*model.Bundle
}

// FormatRunSummary formats a run digest: counts, the strongest bullish
// tickers, and the screened company ratios.
func FormatRunSummary(s *RunSummary) string {
	var sb strings.Builder
	title := "Screening run"
	if s.Kind == "watchlist" {
		title = "Watchlist"
	}
	sb.WriteString(fmt.Sprintf("📅 <b>%s</b> | %s\n", title, s.Started.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Processed %d tickers, %d failed (took %s)\n",
		s.Processed, s.Failed, strings.TrimSpace(humanize.RelTime(s.Started, time.Now(), "", ""))))

	var rows []string
	for _, b := range s.Bundles {
		if b == nil || b.Failed() {
			continue
		}
		bull, bear := tally(b)
		rows = append(rows, fmt.Sprintf("%s %s: %d↑ %d↓", scoreEmoji(bull, bear), html.EscapeString(b.Ticker), bull, bear))
	}
	if len(rows) > 0 {
		sb.WriteString("\n<b>Signals</b>\n")
		sb.WriteString(strings.Join(rows, "\n"))
		sb.WriteString("\n")
	}

	if len(s.Companies) > 0 {
		sb.WriteString("\n<b>Company metrics</b>\n")
		for _, c := range s.Companies {
			sb.WriteString(FormatCompanyMetrics(c))
		}
	}
	return sb.String()
}

// FormatCompanyMetrics formats one derived company record on a single line.
func FormatCompanyMetrics(c *model.CompanyMetrics) string {
	return fmt.Sprintf("%s: rev %+.1f%% · earn %+.1f%% · FCF $%s · ROIC %.1f%% · D/E %.0f%%\n",
		html.EscapeString(c.Ticker), c.RevenueGrowthPct, c.EarningsGrowthPct,
		humanize.Comma(int64(c.FreeCashFlow)), c.ROIC, c.DebtToEquity)
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "🤖 <b>Commands</b>\n" +
		"/analyze TICKER - run all analyses for a ticker\n" +
		"/compare A;B[;C] - compare 2 to 5 tickers\n" +
		"/watchlist - analyze the configured watchlist now\n" +
		"/help - this message"
}

// tally counts bullish and bearish verdicts across a bundle's analyses.
func tally(b *model.Bundle) (bull, bear int) {
	var signals []model.Signal
	if b.Technicals != nil && b.Technicals.Error == "" {
		signals = append(signals, b.Technicals.Signal)
	}
	if b.Fundamentals != nil {
		signals = append(signals, b.Fundamentals.Signal)
	}
	if b.Sentiment != nil {
		signals = append(signals, b.Sentiment.Signal)
	}
	if b.Valuation != nil {
		signals = append(signals, b.Valuation.Signal)
	}
	for _, s := range signals {
		switch s {
		case model.Bullish:
			bull++
		case model.Bearish:
			bear++
		}
	}
	return bull, bear
}

func scoreEmoji(bull, bear int) string {
	switch {
	case bull > bear:
		return signalEmoji[model.Bullish]
	case bear > bull:
		return signalEmoji[model.Bearish]
	default:
		return signalEmoji[model.Neutral]
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// splitMessage splits text into chunks of at most limit bytes, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var parts []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				parts = append(parts, cur.String())
				cur.Reset()
			}
			parts = append(parts, line[:limit])
			line = line[limit:]
		}
		if cur.Len()+len(line) > limit {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}
