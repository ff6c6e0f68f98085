package strategy

import (
	"fmt"

	"StockScreener/internal/model"
)

const (
	insiderWeight = 0.3
	newsWeight    = 0.7
)

// AnalyzeSentiment tallies insider trades (sells bearish, buys bullish) and
// pre-classified news, weighting news above insider activity. Trades without
// a share count are ignored.
func AnalyzeSentiment(trades []model.InsiderTrade, news []model.NewsItem) *model.AnalysisResult {
	var insiderBull, insiderBear, insiderTotal int
	for _, t := range trades {
		if t.TransactionShares == nil {
			continue
		}
		insiderTotal++
		if *t.TransactionShares < 0 {
			insiderBear++
		} else {
			insiderBull++
		}
	}

	var newsBull, newsBear int
	for _, n := range news {
		switch n.Sentiment {
		case model.NewsPositive:
			newsBull++
		case model.NewsNegative:
			newsBear++
		}
	}

	bullish := float64(insiderBull)*insiderWeight + float64(newsBull)*newsWeight
	bearish := float64(insiderBear)*insiderWeight + float64(newsBear)*newsWeight
	total := float64(insiderTotal)*insiderWeight + float64(len(news))*newsWeight

	signal := model.Neutral
	switch {
	case bullish > bearish:
		signal = model.Bullish
	case bearish > bullish:
		signal = model.Bearish
	}

	confidence := 0
	if total > 0 {
		confidence = percent(max(bullish, bearish) / total)
	}

	return &model.AnalysisResult{
		Signal:     signal,
		Confidence: confidence,
		Reasoning:  fmt.Sprintf("Weighted Bullish signals: %.1f, Weighted Bearish signals: %.1f", bullish, bearish),
	}
}
