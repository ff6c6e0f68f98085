package calculator

import (
	"time"

	"github.com/shopspring/decimal"

	"StockScreener/internal/model"
)

// CompanyMetrics derives the yearly growth, cash-flow and leverage ratios of
// a company from its two most recent annual line items. Any ratio whose
// denominator is zero is reported as 0.
func CompanyMetrics(current, previous model.LineItem) *model.CompanyMetrics {
	fcf := current.NetCashFlowFromOperations - current.CapitalExpenditure
	nopat := current.EBIT - current.IncomeTaxExpense
	investedCapital := current.TotalDebt + current.ShareholdersEquity
	netDebt := current.TotalDebt - current.CashAndEquivalents

	return &model.CompanyMetrics{
		Ticker:            current.Ticker,
		ReportPeriod:      current.ReportPeriod,
		RevenueGrowthPct:  round2(growthPct(current.Revenue, previous.Revenue)),
		EarningsGrowthPct: round2(growthPct(current.NetIncome, previous.NetIncome)),
		FreeCashFlow:      fcf,
		FCFEarningsRatio:  round2(safeDiv(fcf, current.NetIncome) * 100),
		ROIC:              round2(safeDiv(nopat, investedCapital) * 100),
		NetDebtToFCF:      round2(safeDiv(netDebt, fcf)),
		DebtToEquity:      round2(safeDiv(current.TotalDebt, current.ShareholdersEquity) * 100),
		ComputedAt:        time.Now(),
	}
}

func growthPct(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur/prev - 1) * 100
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
