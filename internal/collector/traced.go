package collector

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"StockScreener/internal/logger"
	"StockScreener/internal/model"
)

// TracedSource wraps a DataSource with a span and a timed log line per call.
type TracedSource struct {
	Inner DataSource
}

// NewTracedSource wraps inner.
func NewTracedSource(inner DataSource) *TracedSource {
	return &TracedSource{Inner: inner}
}

func (t *TracedSource) Name() string { return t.Inner.Name() }

func (t *TracedSource) Prices(ctx context.Context, ticker string, start, end time.Time) ([]model.PriceBar, error) {
	ctx, op := t.start(ctx, "prices", ticker)
	bars, err := t.Inner.Prices(ctx, ticker, start, end)
	finish(op, err, "bars", len(bars))
	return bars, err
}

func (t *TracedSource) FinancialMetrics(ctx context.Context, ticker string, period model.Period, limit int) ([]model.FinancialMetrics, error) {
	ctx, op := t.start(ctx, "financial_metrics", ticker)
	out, err := t.Inner.FinancialMetrics(ctx, ticker, period, limit)
	finish(op, err, "count", len(out))
	return out, err
}

func (t *TracedSource) InsiderTrades(ctx context.Context, ticker string, limit int) ([]model.InsiderTrade, error) {
	ctx, op := t.start(ctx, "insider_trades", ticker)
	out, err := t.Inner.InsiderTrades(ctx, ticker, limit)
	finish(op, err, "count", len(out))
	return out, err
}

func (t *TracedSource) CompanyNews(ctx context.Context, ticker string, limit int) ([]model.NewsItem, error) {
	ctx, op := t.start(ctx, "company_news", ticker)
	out, err := t.Inner.CompanyNews(ctx, ticker, limit)
	finish(op, err, "count", len(out))
	return out, err
}

func (t *TracedSource) SearchLineItems(ctx context.Context, tickers, items []string, period model.Period, limit int) ([]model.LineItem, error) {
	ticker := ""
	if len(tickers) > 0 {
		ticker = tickers[0]
	}
	ctx, op := t.start(ctx, "line_items", ticker)
	out, err := t.Inner.SearchLineItems(ctx, tickers, items, period, limit)
	finish(op, err, "count", len(out))
	return out, err
}

func (t *TracedSource) AvailableTickers(ctx context.Context) ([]string, error) {
	ctx, op := t.start(ctx, "available_tickers", "")
	out, err := t.Inner.AvailableTickers(ctx)
	finish(op, err, "count", len(out))
	return out, err
}

func (t *TracedSource) start(ctx context.Context, call, ticker string) (context.Context, *logger.OperationTimer) {
	return logger.StartOperation(ctx, "datasource."+call,
		attribute.String("source", t.Inner.Name()),
		attribute.String("ticker", ticker),
	)
}

func finish(op *logger.OperationTimer, err error, kv ...any) {
	op.EndWithError(err, kv...)
}
