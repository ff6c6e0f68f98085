package strategy

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"StockScreener/internal/model"
)

const (
	valuationYears     = 5
	requiredReturn     = 0.15
	marginOfSafety     = 0.25
	maxTerminalGrowth  = 0.03
	dcfDiscountRate    = 0.10
	dcfTerminalGrowth  = 0.03
	defaultGrowthRate  = 0.05
	valuationThreshold = 0.15
)

// ValuationLineItems are the line items AnalyzeValuation needs.
var ValuationLineItems = []string{
	"free_cash_flow",
	"net_income",
	"depreciation_and_amortization",
	"capital_expenditure",
	"working_capital",
}

// OwnerEarningsValue values a company on Buffett's owner earnings
// (net income + D&A - capex - change in working capital). Non-positive owner
// earnings are worth 0.
func OwnerEarningsValue(netIncome, depreciation, capex, workingCapitalChange, growthRate float64) float64 {
	ownerEarnings := netIncome + depreciation - capex - workingCapitalChange
	if ownerEarnings <= 0 {
		return 0
	}

	total := 0.0
	last := 0.0
	for year := 1; year <= valuationYears; year++ {
		future := ownerEarnings * math.Pow(1+growthRate, float64(year))
		last = future / math.Pow(1+requiredReturn, float64(year))
		total += last
	}

	terminalGrowth := math.Min(growthRate, maxTerminalGrowth)
	terminal := last * (1 + terminalGrowth) / (requiredReturn - terminalGrowth)
	total += terminal / math.Pow(1+requiredReturn, valuationYears)

	return total * (1 - marginOfSafety)
}

// DCFValue discounts five years of free cash flow growing at growthRate plus
// a Gordon-growth terminal value.
func DCFValue(freeCashFlow, growthRate float64) float64 {
	total := 0.0
	last := 0.0
	for i := 0; i < valuationYears; i++ {
		last = freeCashFlow * math.Pow(1+growthRate, float64(i))
		total += last / math.Pow(1+dcfDiscountRate, float64(i+1))
	}
	terminal := last * (1 + dcfTerminalGrowth) / (dcfDiscountRate - dcfTerminalGrowth)
	return total + terminal/math.Pow(1+dcfDiscountRate, valuationYears)
}

// AnalyzeValuation compares DCF and owner-earnings intrinsic values with the
// market cap. current and previous are the two most recent line items.
func AnalyzeValuation(m *model.FinancialMetrics, current, previous *model.LineItem) (*model.ValuationResult, error) {
	if m == nil {
		return nil, ErrNoMetrics
	}
	if current == nil || previous == nil {
		return nil, ErrInsufficientLineItems
	}

	growth := defaultGrowthRate
	if m.EarningsGrowth != nil {
		growth = *m.EarningsGrowth
	}
	marketCap := 0.0
	if m.MarketCap != nil {
		marketCap = *m.MarketCap
	}

	ownerValue := OwnerEarningsValue(
		current.NetIncome,
		current.DepreciationAndAmortization,
		current.CapitalExpenditure,
		current.WorkingCapital-previous.WorkingCapital,
		growth,
	)
	dcfValue := DCFValue(current.FreeCashFlow, growth)

	dcfGap := relativeGap(dcfValue, marketCap)
	ownerGap := relativeGap(ownerValue, marketCap)
	gap := (dcfGap + ownerGap) / 2

	return &model.ValuationResult{
		Signal:     GapSignal(gap, valuationThreshold),
		Confidence: percent(gap),
		Reasoning: model.ValuationReasoning{
			DCFAnalysis: model.ScoreDetail{
				Signal: GapSignal(dcfGap, valuationThreshold),
				Details: fmt.Sprintf("Intrinsic Value: %s, Market Cap: %s, Gap: %.1f%%",
					currency(dcfValue), currency(marketCap), dcfGap*100),
			},
			OwnerEarningsAnalysis: model.ScoreDetail{
				Signal: GapSignal(ownerGap, valuationThreshold),
				Details: fmt.Sprintf("Owner Earnings Value: %s, Market Cap: %s, Gap: %.1f%%",
					currency(ownerValue), currency(marketCap), ownerGap*100),
			},
		},
		DCFValue:           finite(dcfValue),
		OwnerEarningsValue: finite(ownerValue),
	}, nil
}

// AnalyzeValuationItems runs AnalyzeValuation on line items sorted most
// recent first.
func AnalyzeValuationItems(m *model.FinancialMetrics, items []model.LineItem) (*model.ValuationResult, error) {
	if m == nil {
		return nil, ErrNoMetrics
	}
	if len(items) < 2 {
		return nil, ErrInsufficientLineItems
	}
	return AnalyzeValuation(m, &items[0], &items[1])
}

func relativeGap(value, marketCap float64) float64 {
	if marketCap == 0 {
		return 0
	}
	return (value - marketCap) / marketCap
}

func currency(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}
