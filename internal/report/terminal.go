package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"StockScreener/internal/model"
)

var (
	tickerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2).
			Width(80)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Width(14)

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			PaddingLeft(14)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	signalStyles = map[model.Signal]lipgloss.Style{
		model.Bullish: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		model.Bearish: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		model.Neutral: lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
	}
)

func signalRow(label string, signal model.Signal, confidence int) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render(label),
		signalStyles[signal].Render(fmt.Sprintf("%-8s", signal)),
		fmt.Sprintf(" %3d%%", confidence),
	)
}

// RenderBundle renders a bundle as a bordered terminal panel.
func RenderBundle(b *model.Bundle) string {
	var rows []string

	if t := b.Technicals; t != nil && t.Error == "" {
		rows = append(rows, signalRow("Technicals", t.Signal, t.Confidence))
		if s := t.StrategySignals; s != nil {
			for _, sub := range []struct {
				name string
				sig  model.StrategySignal
			}{
				{"trend", s.TrendFollowing},
				{"mean rev.", s.MeanReversion},
				{"momentum", s.Momentum},
				{"volatility", s.Volatility},
			} {
				rows = append(rows, detailStyle.Render(fmt.Sprintf("%-10s %-8s %3d%%  %s",
					sub.name, sub.sig.Signal, sub.sig.Confidence, formatMetrics(sub.sig.Metrics))))
			}
		}
	}
	if f := b.Fundamentals; f != nil {
		rows = append(rows, signalRow("Fundamentals", f.Signal, f.Confidence))
		if r, ok := f.Reasoning.(model.FundamentalReasoning); ok {
			for _, d := range []model.ScoreDetail{r.Profitability, r.Growth, r.FinancialHealth, r.PriceRatios} {
				if d.Details != "" {
					rows = append(rows, detailStyle.Render(d.Details))
				}
			}
		}
	}
	if s := b.Sentiment; s != nil {
		rows = append(rows, signalRow("Sentiment", s.Signal, s.Confidence))
		if text, ok := s.Reasoning.(string); ok {
			rows = append(rows, detailStyle.Render(text))
		}
	}
	if v := b.Valuation; v != nil {
		rows = append(rows, signalRow("Valuation", v.Signal, v.Confidence))
		rows = append(rows,
			detailStyle.Render("DCF: "+v.Reasoning.DCFAnalysis.Details),
			detailStyle.Render("Owner earnings: "+v.Reasoning.OwnerEarningsAnalysis.Details),
		)
	}

	names := make([]string, 0, len(b.Errors))
	for name := range b.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, errorStyle.Render(fmt.Sprintf("%-14s%s", name, b.Errors[name])))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return lipgloss.JoinVertical(lipgloss.Left, tickerStyle.Render(b.Ticker), boxStyle.Render(body))
}

// RenderCompany renders derived company metrics as a compact panel.
func RenderCompany(m *model.CompanyMetrics) string {
	rows := []string{
		labelStyle.Render("Period") + m.ReportPeriod,
		labelStyle.Render("Revenue") + fmt.Sprintf("%+.2f%%", m.RevenueGrowthPct),
		labelStyle.Render("Earnings") + fmt.Sprintf("%+.2f%%", m.EarningsGrowthPct),
		labelStyle.Render("FCF") + "$" + humanize.Comma(int64(m.FreeCashFlow)),
		labelStyle.Render("FCF/Earnings") + fmt.Sprintf("%.2f%%", m.FCFEarningsRatio),
		labelStyle.Render("ROIC") + fmt.Sprintf("%.2f%%", m.ROIC),
		labelStyle.Render("NetDebt/FCF") + fmt.Sprintf("%.2f", m.NetDebtToFCF),
		labelStyle.Render("Debt/Equity") + fmt.Sprintf("%.2f%%", m.DebtToEquity),
	}
	return lipgloss.JoinVertical(lipgloss.Left, tickerStyle.Render(m.Ticker), boxStyle.Render(strings.Join(rows, "\n")))
}

func formatMetrics(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%.2f", k, m[k]))
	}
	return strings.Join(parts, " ")
}
