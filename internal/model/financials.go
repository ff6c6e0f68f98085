package model

// Period selects the reporting period of financial data.
type Period string

const (
	PeriodAnnual    Period = "annual"
	PeriodQuarterly Period = "quarterly"
	PeriodTTM       Period = "ttm"
)

// FinancialMetrics is one reporting period's snapshot of ratios for a ticker.
// A nil field means the upstream did not report the metric.
type FinancialMetrics struct {
	Ticker       string `json:"ticker"`
	ReportPeriod string `json:"report_period,omitempty"`
	Period       Period `json:"period,omitempty"`
	Currency     string `json:"currency,omitempty"`

	MarketCap                     *float64 `json:"market_cap"`
	EnterpriseValue               *float64 `json:"enterprise_value"`
	PriceToEarningsRatio          *float64 `json:"price_to_earnings_ratio"`
	PriceToBookRatio              *float64 `json:"price_to_book_ratio"`
	PriceToSalesRatio             *float64 `json:"price_to_sales_ratio"`
	EnterpriseValueToEBITDARatio  *float64 `json:"enterprise_value_to_ebitda_ratio"`
	EnterpriseValueToRevenueRatio *float64 `json:"enterprise_value_to_revenue_ratio"`
	FreeCashFlowYield             *float64 `json:"free_cash_flow_yield"`
	PEGRatio                      *float64 `json:"peg_ratio"`

	GrossMargin              *float64 `json:"gross_margin"`
	OperatingMargin          *float64 `json:"operating_margin"`
	NetMargin                *float64 `json:"net_margin"`
	ReturnOnEquity           *float64 `json:"return_on_equity"`
	ReturnOnAssets           *float64 `json:"return_on_assets"`
	ReturnOnInvestedCapital  *float64 `json:"return_on_invested_capital"`
	AssetTurnover            *float64 `json:"asset_turnover"`
	InventoryTurnover        *float64 `json:"inventory_turnover"`
	ReceivablesTurnover      *float64 `json:"receivables_turnover"`
	DaysSalesOutstanding     *float64 `json:"days_sales_outstanding"`
	OperatingCycle           *float64 `json:"operating_cycle"`
	WorkingCapitalTurnover   *float64 `json:"working_capital_turnover"`
	CurrentRatio             *float64 `json:"current_ratio"`
	QuickRatio               *float64 `json:"quick_ratio"`
	CashRatio                *float64 `json:"cash_ratio"`
	OperatingCashFlowRatio   *float64 `json:"operating_cash_flow_ratio"`
	DebtToEquity             *float64 `json:"debt_to_equity"`
	DebtToAssets             *float64 `json:"debt_to_assets"`
	InterestCoverage         *float64 `json:"interest_coverage"`
	RevenueGrowth            *float64 `json:"revenue_growth"`
	EarningsGrowth           *float64 `json:"earnings_growth"`
	BookValueGrowth          *float64 `json:"book_value_growth"`
	EarningsPerShareGrowth   *float64 `json:"earnings_per_share_growth"`
	FreeCashFlowGrowth       *float64 `json:"free_cash_flow_growth"`
	OperatingIncomeGrowth    *float64 `json:"operating_income_growth"`
	EBITDAGrowth             *float64 `json:"ebitda_growth"`
	PayoutRatio              *float64 `json:"payout_ratio"`
	EarningsPerShare         *float64 `json:"earnings_per_share"`
	BookValuePerShare        *float64 `json:"book_value_per_share"`
	FreeCashFlowPerShare     *float64 `json:"free_cash_flow_per_share"`
}

// LineItem is one reporting period of financial-statement fields for a ticker.
// Fields the upstream did not return decode as zero.
type LineItem struct {
	Ticker       string `json:"ticker"`
	ReportPeriod string `json:"report_period"`
	Period       Period `json:"period"`
	Currency     string `json:"currency"`

	Revenue                     float64 `json:"revenue"`
	NetIncome                   float64 `json:"net_income"`
	OperatingIncome             float64 `json:"operating_income"`
	EBIT                        float64 `json:"ebit"`
	IncomeTaxExpense            float64 `json:"income_tax_expense"`
	FreeCashFlow                float64 `json:"free_cash_flow"`
	NetCashFlowFromOperations   float64 `json:"net_cash_flow_from_operations"`
	CapitalExpenditure          float64 `json:"capital_expenditure"`
	DepreciationAndAmortization float64 `json:"depreciation_and_amortization"`
	WorkingCapital              float64 `json:"working_capital"`
	TotalDebt                   float64 `json:"total_debt"`
	CashAndEquivalents          float64 `json:"cash_and_equivalents"`
	ShareholdersEquity          float64 `json:"shareholders_equity"`
}

// InsiderTrade is a reported insider transaction.
type InsiderTrade struct {
	Ticker                   string   `json:"ticker"`
	Issuer                   string   `json:"issuer,omitempty"`
	Name                     string   `json:"name,omitempty"`
	Title                    string   `json:"title,omitempty"`
	IsBoardDirector          bool     `json:"is_board_director,omitempty"`
	TransactionDate          string   `json:"transaction_date,omitempty"`
	TransactionShares        *float64 `json:"transaction_shares"`
	TransactionPricePerShare float64  `json:"transaction_price_per_share,omitempty"`
	TransactionValue         float64  `json:"transaction_value,omitempty"`
	SecurityTitle            string   `json:"security_title,omitempty"`
	FilingDate               string   `json:"filing_date,omitempty"`
}

// NewsSentiment is the upstream's classification of an article.
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is a company news article with pre-classified sentiment.
type NewsItem struct {
	Ticker    string        `json:"ticker"`
	Title     string        `json:"title,omitempty"`
	Author    string        `json:"author,omitempty"`
	Source    string        `json:"source,omitempty"`
	Date      string        `json:"date,omitempty"`
	URL       string        `json:"url,omitempty"`
	Sentiment NewsSentiment `json:"sentiment"`
}

// Float returns a pointer to v, for building metric snapshots.
func Float(v float64) *float64 { return &v }
