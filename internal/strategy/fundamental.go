package strategy

import (
	"errors"
	"fmt"
	"strings"

	"StockScreener/internal/model"
)

var (
	// ErrNoMetrics is returned when no financial metrics snapshot exists.
	ErrNoMetrics = errors.New("no financial metrics found")
	// ErrInsufficientLineItems is returned when fewer than two line-item
	// periods are available.
	ErrInsufficientLineItems = errors.New("not enough financial data")
)

// criterion is one threshold check of a fundamental scorer. An absent
// metric never passes.
type criterion struct {
	pass   bool
	detail string
}

// gt reports whether v is present and greater than threshold.
func gt(v *float64, threshold float64) bool { return v != nil && *v > threshold }

// lt reports whether v is present and less than threshold.
func lt(v *float64, threshold float64) bool { return v != nil && *v < threshold }

// present reports whether v is set and non-zero.
func present(v *float64) bool { return v != nil && *v != 0 }

func pctDetail(label string, v *float64) string {
	if !present(v) {
		return ""
	}
	return fmt.Sprintf("%s: %.2f%%", label, *v*100)
}

func ratioDetail(label string, v *float64) string {
	if !present(v) {
		return ""
	}
	return fmt.Sprintf("%s: %.2f", label, *v)
}

// score counts passing criteria: two or more is bullish, none is bearish.
func score(criteria []criterion, details ...string) model.ScoreDetail {
	passed := 0
	for _, c := range criteria {
		if c.pass {
			passed++
		}
	}
	signal := model.Neutral
	switch {
	case passed >= 2:
		signal = model.Bullish
	case passed == 0:
		signal = model.Bearish
	}

	shown := make([]string, 0, len(details))
	for _, d := range details {
		if d != "" {
			shown = append(shown, d)
		}
	}
	return model.ScoreDetail{Signal: signal, Details: strings.Join(shown, ", ")}
}

func scoreProfitability(m *model.FinancialMetrics) model.ScoreDetail {
	return score([]criterion{
		{pass: gt(m.ReturnOnEquity, 0.15)},
		{pass: gt(m.NetMargin, 0.20)},
		{pass: gt(m.OperatingMargin, 0.15)},
	},
		pctDetail("ROE", m.ReturnOnEquity),
		pctDetail("Net Margin", m.NetMargin),
		pctDetail("Op Margin", m.OperatingMargin),
	)
}

func scoreGrowth(m *model.FinancialMetrics) model.ScoreDetail {
	return score([]criterion{
		{pass: gt(m.RevenueGrowth, 0.10)},
		{pass: gt(m.EarningsGrowth, 0.10)},
		{pass: gt(m.BookValueGrowth, 0.10)},
	},
		pctDetail("Revenue Growth", m.RevenueGrowth),
		pctDetail("Earnings Growth", m.EarningsGrowth),
	)
}

func scoreFinancialHealth(m *model.FinancialMetrics) model.ScoreDetail {
	cashBacked := present(m.FreeCashFlowPerShare) && present(m.EarningsPerShare) &&
		*m.FreeCashFlowPerShare > *m.EarningsPerShare*0.8
	return score([]criterion{
		{pass: gt(m.CurrentRatio, 1.5)},
		{pass: lt(m.DebtToEquity, 0.5)},
		{pass: cashBacked},
	},
		ratioDetail("Current Ratio", m.CurrentRatio),
		ratioDetail("D/E", m.DebtToEquity),
	)
}

// scorePriceRatios counts rich multiples. Two or more high multiples
// report bullish, matching the other scorers' count rule.
func scorePriceRatios(m *model.FinancialMetrics) model.ScoreDetail {
	return score([]criterion{
		{pass: gt(m.PriceToEarningsRatio, 25)},
		{pass: gt(m.PriceToBookRatio, 3)},
		{pass: gt(m.PriceToSalesRatio, 5)},
	},
		ratioDetail("P/E", m.PriceToEarningsRatio),
		ratioDetail("P/B", m.PriceToBookRatio),
		ratioDetail("P/S", m.PriceToSalesRatio),
	)
}

// AnalyzeFundamentals scores profitability, growth, financial health and
// price ratios of a single snapshot and takes the majority verdict.
func AnalyzeFundamentals(m *model.FinancialMetrics) (*model.AnalysisResult, error) {
	if m == nil {
		return nil, ErrNoMetrics
	}

	reasoning := model.FundamentalReasoning{
		Profitability:   scoreProfitability(m),
		Growth:          scoreGrowth(m),
		FinancialHealth: scoreFinancialHealth(m),
		PriceRatios:     scorePriceRatios(m),
	}
	signals := []model.Signal{
		reasoning.Profitability.Signal,
		reasoning.Growth.Signal,
		reasoning.FinancialHealth.Signal,
		reasoning.PriceRatios.Signal,
	}

	signal, bull, bear := MajorityVote(signals)
	return &model.AnalysisResult{
		Signal:     signal,
		Confidence: percent(float64(max(bull, bear)) / float64(len(signals))),
		Reasoning:  reasoning,
	}, nil
}
