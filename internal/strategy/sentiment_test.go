package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StockScreener/internal/model"
)

func news(sentiments ...model.NewsSentiment) []model.NewsItem {
	items := make([]model.NewsItem, len(sentiments))
	for i, s := range sentiments {
		items[i] = model.NewsItem{Ticker: "ACME", Sentiment: s}
	}
	return items
}

func TestAnalyzeSentiment_Empty(t *testing.T) {
	res := AnalyzeSentiment(nil, nil)
	assert.Equal(t, model.Neutral, res.Signal)
	assert.Equal(t, 0, res.Confidence)
}

func TestAnalyzeSentiment_AllPositiveNews(t *testing.T) {
	items := make([]model.NewsSentiment, 10)
	for i := range items {
		items[i] = model.NewsPositive
	}
	res := AnalyzeSentiment(nil, news(items...))
	assert.Equal(t, model.Bullish, res.Signal)
	assert.Equal(t, 100, res.Confidence)
	assert.Equal(t, "Weighted Bullish signals: 7.0, Weighted Bearish signals: 0.0", res.Reasoning)
}

func TestAnalyzeSentiment_InsiderTrades(t *testing.T) {
	trades := []model.InsiderTrade{
		{TransactionShares: f(-500)},
		{TransactionShares: f(-100)},
		{TransactionShares: f(200)},
		{TransactionShares: nil},
	}
	res := AnalyzeSentiment(trades, nil)
	assert.Equal(t, model.Bearish, res.Signal)
	// 0.6 bearish of 0.9 total; the trade without shares is ignored
	assert.Equal(t, 67, res.Confidence)
}

func TestAnalyzeSentiment_NeutralNewsDilutes(t *testing.T) {
	res := AnalyzeSentiment(nil, news(model.NewsPositive, model.NewsNeutral))
	assert.Equal(t, model.Bullish, res.Signal)
	assert.Equal(t, 50, res.Confidence)
}

func TestAnalyzeSentiment_Tie(t *testing.T) {
	res := AnalyzeSentiment(nil, news(model.NewsPositive, model.NewsNegative))
	assert.Equal(t, model.Neutral, res.Signal)
}
