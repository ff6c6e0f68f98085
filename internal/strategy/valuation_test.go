package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func TestOwnerEarningsValue_NonPositive(t *testing.T) {
	assert.Equal(t, 0.0, OwnerEarningsValue(100, 10, 200, 0, 0.05), "negative owner earnings")
	assert.Equal(t, 0.0, OwnerEarningsValue(100, 0, 50, 50, 0.05), "zero owner earnings")
}

func TestOwnerEarningsValue(t *testing.T) {
	assert.InDelta(t, 392.712175, OwnerEarningsValue(100, 20, 30, 10, 0.05), 1e-4)
}

func TestDCFValue(t *testing.T) {
	assert.InDelta(t, 1292.720052, DCFValue(100, 0), 1e-4)
}

func TestValuation_PositiveInputs(t *testing.T) {
	for _, g := range []float64{0, 0.02, 0.05, 0.08} {
		assert.Greater(t, DCFValue(50, g), 0.0, "growth %.2f", g)
		assert.Greater(t, OwnerEarningsValue(80, 10, 5, 1, g), 0.0, "growth %.2f", g)
	}
}

func TestAnalyzeValuation(t *testing.T) {
	m := &model.FinancialMetrics{MarketCap: f(1000), EarningsGrowth: f(0)}
	items := []model.LineItem{
		{FreeCashFlow: 100, NetIncome: 100, WorkingCapital: 0},
		{WorkingCapital: 0},
	}
	res, err := AnalyzeValuationItems(m, items)
	require.NoError(t, err)

	// dcf gap +29.3%, owner earnings gap -62.5%, average -16.6%
	assert.Equal(t, model.Bearish, res.Signal)
	assert.Equal(t, 17, res.Confidence)
	assert.Equal(t, model.Bullish, res.Reasoning.DCFAnalysis.Signal)
	assert.Equal(t, model.Bearish, res.Reasoning.OwnerEarningsAnalysis.Signal)
	assert.Regexp(t, `^Intrinsic Value: \$1,292\.72, Market Cap: \$1,000, Gap: 29\.3%`, res.Reasoning.DCFAnalysis.Details)
	assert.Regexp(t, `Gap: -62\.5%$`, res.Reasoning.OwnerEarningsAnalysis.Details)
}

func TestAnalyzeValuation_DefaultGrowth(t *testing.T) {
	m := &model.FinancialMetrics{MarketCap: f(1000)}
	res, err := AnalyzeValuationItems(m, []model.LineItem{{FreeCashFlow: 100}, {}})
	require.NoError(t, err)
	assert.Equal(t, DCFValue(100, 0.05), res.DCFValue)
}

func TestAnalyzeValuation_WorkingCapitalChange(t *testing.T) {
	m := &model.FinancialMetrics{MarketCap: f(1000), EarningsGrowth: f(0.05)}
	current := &model.LineItem{NetIncome: 100, DepreciationAndAmortization: 20, CapitalExpenditure: 30, WorkingCapital: 60}
	previous := &model.LineItem{WorkingCapital: 50}
	res, err := AnalyzeValuation(m, current, previous)
	require.NoError(t, err)
	assert.InDelta(t, 392.712175, res.OwnerEarningsValue, 1e-4)
}

func TestAnalyzeValuation_MissingData(t *testing.T) {
	_, err := AnalyzeValuationItems(nil, make([]model.LineItem, 2))
	assert.ErrorIs(t, err, ErrNoMetrics)

	_, err = AnalyzeValuationItems(&model.FinancialMetrics{MarketCap: f(1000)}, make([]model.LineItem, 1))
	assert.ErrorIs(t, err, ErrInsufficientLineItems)
}

func TestAnalyzeValuation_ZeroMarketCap(t *testing.T) {
	res, err := AnalyzeValuationItems(&model.FinancialMetrics{}, []model.LineItem{{FreeCashFlow: 10}, {}})
	require.NoError(t, err)
	assert.Equal(t, model.Neutral, res.Signal)
	assert.Equal(t, 0, res.Confidence)
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "$1,292.72", currency(1292.720052))
	assert.Equal(t, "$1,000", currency(1000))
	// two fraction digits at most
	assert.Equal(t, "$0.12", currency(0.1234))
}
