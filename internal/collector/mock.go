package collector

import (
	"context"
	"fmt"
	"time"

	"StockScreener/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
// Any Err* field makes the corresponding call fail.
type MockSource struct {
	Price        float64
	Bars         []model.PriceBar
	Metrics      []model.FinancialMetrics
	Trades       []model.InsiderTrade
	News         []model.NewsItem
	LineItems    []model.LineItem
	Tickers      []string
	ErrPrices    error
	ErrMetrics   error
	ErrTrades    error
	ErrNews      error
	ErrLineItems error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Prices(_ context.Context, _ string, start, end time.Time) ([]model.PriceBar, error) {
	if m.ErrPrices != nil {
		return nil, m.ErrPrices
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	days := int(end.Sub(start).Hours()/24) + 1
	return generateMockBars(m.Price, max(days, 0), end), nil
}

func (m *MockSource) FinancialMetrics(_ context.Context, _ string, _ model.Period, limit int) ([]model.FinancialMetrics, error) {
	if m.ErrMetrics != nil {
		return nil, m.ErrMetrics
	}
	return head(m.Metrics, limit), nil
}

func (m *MockSource) InsiderTrades(_ context.Context, _ string, limit int) ([]model.InsiderTrade, error) {
	if m.ErrTrades != nil {
		return nil, m.ErrTrades
	}
	return head(m.Trades, limit), nil
}

func (m *MockSource) CompanyNews(_ context.Context, _ string, limit int) ([]model.NewsItem, error) {
	if m.ErrNews != nil {
		return nil, m.ErrNews
	}
	return head(m.News, limit), nil
}

func (m *MockSource) SearchLineItems(_ context.Context, tickers, _ []string, _ model.Period, limit int) ([]model.LineItem, error) {
	if m.ErrLineItems != nil {
		return nil, m.ErrLineItems
	}
	if len(m.LineItems) == 0 && len(tickers) > 0 {
		return nil, fmt.Errorf("line items for %s: %w", tickers[0], ErrNotFound)
	}
	return head(m.LineItems, limit), nil
}

func (m *MockSource) AvailableTickers(context.Context) ([]string, error) {
	return m.Tickers, nil
}

// head returns a copy of at most limit items so callers may sort freely.
func head[T any](items []T, limit int) []T {
	if items == nil {
		return nil
	}
	n := len(items)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]T, n)
	copy(out, items)
	return out
}

// generateMockBars builds a gently rising daily series ending at end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PriceBar{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
