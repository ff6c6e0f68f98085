package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockScreener/internal/model"
)

// ErrNotFound is returned when the upstream has no data for a ticker.
var ErrNotFound = errors.New("not found")

// DataSource supplies already-parsed market and financial data per ticker.
type DataSource interface {
	// Prices returns daily bars in chronological order.
	Prices(ctx context.Context, ticker string, start, end time.Time) ([]model.PriceBar, error)
	// FinancialMetrics returns snapshots, most recent first.
	FinancialMetrics(ctx context.Context, ticker string, period model.Period, limit int) ([]model.FinancialMetrics, error)
	InsiderTrades(ctx context.Context, ticker string, limit int) ([]model.InsiderTrade, error)
	CompanyNews(ctx context.Context, ticker string, limit int) ([]model.NewsItem, error)
	// SearchLineItems returns the requested statement fields for up to limit
	// periods per ticker.
	SearchLineItems(ctx context.Context, tickers, items []string, period model.Period, limit int) ([]model.LineItem, error)
	// AvailableTickers lists tickers the source has financial data for.
	AvailableTickers(ctx context.Context) ([]string, error)
	Name() string
}

// APIError is a non-2xx response from an upstream API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
