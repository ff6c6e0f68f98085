package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func f(v float64) *float64 { return model.Float(v) }

func healthySnapshot() *model.FinancialMetrics {
	return &model.FinancialMetrics{
		Ticker:               "ACME",
		ReturnOnEquity:       f(0.20),
		NetMargin:            f(0.25),
		OperatingMargin:      f(0.20),
		RevenueGrowth:        f(0.15),
		EarningsGrowth:       f(0.15),
		BookValueGrowth:      f(0.15),
		CurrentRatio:         f(2),
		DebtToEquity:         f(0.3),
		FreeCashFlowPerShare: f(5),
		EarningsPerShare:     f(5),
		PriceToEarningsRatio: f(10),
		PriceToBookRatio:     f(1),
		PriceToSalesRatio:    f(1),
	}
}

func TestAnalyzeFundamentals_CheapQualityCompany(t *testing.T) {
	res, err := AnalyzeFundamentals(healthySnapshot())
	require.NoError(t, err)
	assert.Equal(t, model.Bullish, res.Signal)
	assert.Equal(t, 75, res.Confidence)

	r, ok := res.Reasoning.(model.FundamentalReasoning)
	require.True(t, ok)
	// no rich multiples: the inverted price-ratio scorer reads bearish
	assert.Equal(t, model.Bearish, r.PriceRatios.Signal)
	assert.Equal(t, "ROE: 20.00%, Net Margin: 25.00%, Op Margin: 20.00%", r.Profitability.Details)
}

func TestAnalyzeFundamentals_AllPass(t *testing.T) {
	m := healthySnapshot()
	m.PriceToEarningsRatio = f(30)
	m.PriceToBookRatio = f(4)
	m.PriceToSalesRatio = f(6)

	res, err := AnalyzeFundamentals(m)
	require.NoError(t, err)
	assert.Equal(t, model.Bullish, res.Signal)
	assert.Equal(t, 100, res.Confidence)
}

func TestAnalyzeFundamentals_AllFail(t *testing.T) {
	m := &model.FinancialMetrics{
		ReturnOnEquity:       f(0.05),
		NetMargin:            f(0.05),
		OperatingMargin:      f(0.05),
		RevenueGrowth:        f(-0.1),
		EarningsGrowth:       f(0.01),
		BookValueGrowth:      f(0.02),
		CurrentRatio:         f(0.9),
		DebtToEquity:         f(2),
		FreeCashFlowPerShare: f(1),
		EarningsPerShare:     f(5),
		PriceToEarningsRatio: f(12),
		PriceToBookRatio:     f(1.5),
		PriceToSalesRatio:    f(2),
	}
	res, err := AnalyzeFundamentals(m)
	require.NoError(t, err)
	assert.Equal(t, model.Bearish, res.Signal)
	assert.Equal(t, 100, res.Confidence)
}

func TestAnalyzeFundamentals_Split(t *testing.T) {
	m := healthySnapshot()
	// growth and health fail entirely, profitability stays bullish, price ratios bullish
	m.RevenueGrowth, m.EarningsGrowth, m.BookValueGrowth = nil, nil, nil
	m.CurrentRatio, m.DebtToEquity, m.FreeCashFlowPerShare = f(1), f(1), nil
	m.PriceToEarningsRatio, m.PriceToBookRatio = f(30), f(4)

	res, err := AnalyzeFundamentals(m)
	require.NoError(t, err)
	assert.Equal(t, model.Neutral, res.Signal)
	assert.Equal(t, 50, res.Confidence)
}

func TestAnalyzeFundamentals_AbsentMetricsOmittedFromDetails(t *testing.T) {
	m := &model.FinancialMetrics{
		ReturnOnEquity: f(0.3),
		NetMargin:      f(0.3),
		DebtToEquity:   f(0),
		CurrentRatio:   f(2),
	}
	res, err := AnalyzeFundamentals(m)
	require.NoError(t, err)
	r := res.Reasoning.(model.FundamentalReasoning)

	assert.Equal(t, "ROE: 30.00%, Net Margin: 30.00%", r.Profitability.Details)
	assert.Equal(t, model.Bullish, r.Profitability.Signal)
	// a zero D/E still passes the < 0.5 check but is not shown
	assert.Equal(t, model.Bullish, r.FinancialHealth.Signal)
	assert.NotContains(t, r.FinancialHealth.Details, "D/E")
	assert.Empty(t, r.Growth.Details)
}

func TestAnalyzeFundamentals_NoSnapshot(t *testing.T) {
	_, err := AnalyzeFundamentals(nil)
	assert.ErrorIs(t, err, ErrNoMetrics)
}
