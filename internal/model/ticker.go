package model

import "time"

// CompanyMetrics is the derived yearly record persisted for a ticker.
// Percentages are expressed as 0..100, not fractions.
type CompanyMetrics struct {
	Ticker            string
	Name              string
	Exchange          string
	ReportPeriod      string
	RevenueGrowthPct  float64
	EarningsGrowthPct float64
	FreeCashFlow      float64
	FCFEarningsRatio  float64
	ROIC              float64
	NetDebtToFCF      float64
	DebtToEquity      float64
	ComputedAt        time.Time
}

// Listing is an exchange-listed security from the symbol directory.
type Listing struct {
	Symbol   string
	Name     string
	Exchange string
}
