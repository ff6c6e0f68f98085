package model

// Signal is the categorical verdict of an analysis.
type Signal string

const (
	Bullish Signal = "bullish"
	Bearish Signal = "bearish"
	Neutral Signal = "neutral"
)

// Value returns the numeric encoding used when combining signals.
func (s Signal) Value() float64 {
	switch s {
	case Bullish:
		return 1
	case Bearish:
		return -1
	default:
		return 0
	}
}

// AnalysisResult is the generic analyzer output.
type AnalysisResult struct {
	Signal     Signal `json:"signal"`
	Confidence int    `json:"confidence"`
	Reasoning  any    `json:"reasoning"`
}

// ScoreDetail is one scorer's verdict inside a structured reasoning block.
type ScoreDetail struct {
	Signal  Signal `json:"signal"`
	Details string `json:"details"`
}

// FundamentalReasoning explains a fundamental analysis.
type FundamentalReasoning struct {
	Profitability   ScoreDetail `json:"profitability_signal"`
	Growth          ScoreDetail `json:"growth_signal"`
	FinancialHealth ScoreDetail `json:"financial_health_signal"`
	PriceRatios     ScoreDetail `json:"price_ratios_signal"`
}

// StrategySignal is one technical sub-strategy's verdict.
type StrategySignal struct {
	Signal     Signal             `json:"signal"`
	Confidence int                `json:"confidence"`
	Metrics    map[string]float64 `json:"metrics"`
}

// StrategySignals groups the four technical sub-strategies.
type StrategySignals struct {
	TrendFollowing StrategySignal `json:"trendFollowing"`
	MeanReversion  StrategySignal `json:"meanReversion"`
	Momentum       StrategySignal `json:"momentum"`
	Volatility     StrategySignal `json:"volatility"`
}

// TechnicalResult is the technical analyzer output. When Error is set the
// other fields are zero.
type TechnicalResult struct {
	Signal          Signal           `json:"signal,omitempty"`
	Confidence      int              `json:"confidence"`
	StrategySignals *StrategySignals `json:"strategySignals,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// ValuationReasoning explains a valuation analysis.
type ValuationReasoning struct {
	DCFAnalysis           ScoreDetail `json:"dcfAnalysis"`
	OwnerEarningsAnalysis ScoreDetail `json:"ownerEarningsAnalysis"`
}

// ValuationResult is the valuation analyzer output.
type ValuationResult struct {
	Signal             Signal             `json:"signal"`
	Confidence         int                `json:"confidence"`
	Reasoning          ValuationReasoning `json:"reasoning"`
	DCFValue           float64            `json:"dcfValue"`
	OwnerEarningsValue float64            `json:"ownerEarningsValue"`
}

// Analyzer names used as bundle error keys and metric labels.
const (
	AnalyzerTechnical   = "technicals"
	AnalyzerFundamental = "fundamentals"
	AnalyzerSentiment   = "sentiment"
	AnalyzerValuation   = "valuation"
)

// Bundle is the per-ticker collection of all four analyses. A nil analysis
// has its failure recorded in Errors under the analyzer name.
type Bundle struct {
	Ticker       string            `json:"ticker"`
	Technicals   *TechnicalResult  `json:"technicals"`
	Fundamentals *AnalysisResult   `json:"fundamentals"`
	Sentiment    *AnalysisResult   `json:"sentiment"`
	Valuation    *ValuationResult  `json:"valuation"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// Failed reports whether every analyzer failed for the ticker.
func (b *Bundle) Failed() bool {
	noTechnicals := b.Technicals == nil || b.Technicals.Error != ""
	return noTechnicals && b.Fundamentals == nil && b.Sentiment == nil && b.Valuation == nil
}
