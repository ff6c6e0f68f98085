package strategy

import (
	"math"

	"StockScreener/internal/model"
)

// WeightedSignal is one strategy's contribution to a combined verdict.
type WeightedSignal struct {
	Name       string
	Signal     model.Signal
	Weight     float64
	Confidence float64
}

// TechnicalWeights are the combination weights of the technical
// sub-strategies. They sum to 0.85 and are not renormalised.
var TechnicalWeights = map[string]float64{
	"trend":         0.25,
	"meanReversion": 0.20,
	"momentum":      0.25,
	"volatility":    0.15,
}

// CombineSignals returns the combined signal and its score in [-1, 1]:
// the sum of value*weight*confidence divided by the sum of
// weight*confidence, or 0 when every contribution has zero weight.
func CombineSignals(parts []WeightedSignal) (model.Signal, float64) {
	var weightedSum, totalConfidence float64
	for _, p := range parts {
		weightedSum += p.Signal.Value() * p.Weight * p.Confidence
		totalConfidence += p.Weight * p.Confidence
	}

	score := 0.0
	if totalConfidence > 0 {
		score = weightedSum / totalConfidence
	}

	switch {
	case score > 0.2:
		return model.Bullish, score
	case score < -0.2:
		return model.Bearish, score
	default:
		return model.Neutral, score
	}
}

// MajorityVote returns bullish or bearish when one strictly outnumbers the
// other, otherwise neutral, along with both counts.
func MajorityVote(signals []model.Signal) (model.Signal, int, int) {
	var bull, bear int
	for _, s := range signals {
		switch s {
		case model.Bullish:
			bull++
		case model.Bearish:
			bear++
		}
	}
	switch {
	case bull > bear:
		return model.Bullish, bull, bear
	case bear > bull:
		return model.Bearish, bull, bear
	default:
		return model.Neutral, bull, bear
	}
}

// GapSignal classifies a relative gap against a symmetric threshold.
func GapSignal(gap, threshold float64) model.Signal {
	switch {
	case gap > threshold:
		return model.Bullish
	case gap < -threshold:
		return model.Bearish
	default:
		return model.Neutral
	}
}

// percent converts a [0,1] confidence to a rounded 0..100 integer.
func percent(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(math.Abs(v) * 100))
}

// finite replaces NaN and infinities with 0 for reporting.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
