package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StockScreener/internal/model"
)

func TestCombineSignals(t *testing.T) {
	tests := []struct {
		name   string
		parts  []WeightedSignal
		signal model.Signal
		score  float64
	}{
		{
			name: "all neutral",
			parts: []WeightedSignal{
				{Signal: model.Neutral, Weight: 0.25, Confidence: 0.5},
				{Signal: model.Neutral, Weight: 0.20, Confidence: 0.5},
			},
			signal: model.Neutral,
			score:  0,
		},
		{
			name: "single bullish dominates neutrals",
			parts: []WeightedSignal{
				{Signal: model.Bullish, Weight: 0.25, Confidence: 1},
				{Signal: model.Neutral, Weight: 0.25, Confidence: 0.5},
			},
			signal: model.Bullish,
			score:  0.25 / 0.375,
		},
		{
			name: "opposing signals cancel",
			parts: []WeightedSignal{
				{Signal: model.Bullish, Weight: 0.25, Confidence: 0.8},
				{Signal: model.Bearish, Weight: 0.25, Confidence: 0.8},
			},
			signal: model.Neutral,
			score:  0,
		},
		{
			name: "zero confidence everywhere",
			parts: []WeightedSignal{
				{Signal: model.Bearish, Weight: 0.25, Confidence: 0},
			},
			signal: model.Neutral,
			score:  0,
		},
		{
			name: "bearish",
			parts: []WeightedSignal{
				{Signal: model.Bearish, Weight: 0.15, Confidence: 0.9},
			},
			signal: model.Bearish,
			score:  -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal, score := CombineSignals(tt.parts)
			assert.Equal(t, tt.signal, signal)
			assert.InDelta(t, tt.score, score, 1e-9)
		})
	}
}

func TestTechnicalWeights_NotNormalised(t *testing.T) {
	sum := 0.0
	for _, w := range TechnicalWeights {
		sum += w
	}
	assert.InDelta(t, 0.85, sum, 1e-9)
}

func TestMajorityVote(t *testing.T) {
	tests := []struct {
		signals []model.Signal
		want    model.Signal
	}{
		{[]model.Signal{model.Bullish, model.Bullish, model.Bearish, model.Neutral}, model.Bullish},
		{[]model.Signal{model.Bearish, model.Neutral, model.Neutral, model.Neutral}, model.Bearish},
		{[]model.Signal{model.Bullish, model.Bullish, model.Bearish, model.Bearish}, model.Neutral},
		{nil, model.Neutral},
	}
	for _, tt := range tests {
		got, _, _ := MajorityVote(tt.signals)
		assert.Equal(t, tt.want, got, "%v", tt.signals)
	}
}

func TestGapSignal_Boundaries(t *testing.T) {
	tests := []struct {
		gap  float64
		want model.Signal
	}{
		{0.16, model.Bullish},
		{0.15, model.Neutral},
		{0, model.Neutral},
		{-0.15, model.Neutral},
		{-0.16, model.Bearish},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GapSignal(tt.gap, 0.15), "gap %.2f", tt.gap)
	}
}
