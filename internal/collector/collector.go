package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"StockScreener/internal/calculator"
	"StockScreener/internal/logger"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

const (
	insiderTradeLimit = 1000
	newsLimit         = 100
)

// CompanyLineItems are the annual statement fields ProcessCompany needs.
var CompanyLineItems = []string{
	"revenue",
	"net_income",
	"net_cash_flow_from_operations",
	"capital_expenditure",
	"ebit",
	"income_tax_expense",
	"total_debt",
	"cash_and_equivalents",
	"shareholders_equity",
}

// Collector orchestrates data fetching and runs the analyzers per ticker.
type Collector struct {
	Source         DataSource
	LookbackMonths int
	Concurrency    int
	Metrics        *metrics.Metrics
	now            func() time.Time
}

// NewCollector creates a Collector with the default 3-month price window and
// a fan-out of 4 tickers.
func NewCollector(source DataSource, m *metrics.Metrics) *Collector {
	return &Collector{
		Source:         source,
		LookbackMonths: 3,
		Concurrency:    4,
		Metrics:        m,
		now:            time.Now,
	}
}

// Analyze fetches the inputs for ticker and runs the four analyzers
// concurrently. A failing analyzer records its error and leaves its slot nil,
// except the technical analyzer whose soft error result is kept. The others
// still complete.
func (c *Collector) Analyze(ctx context.Context, ticker string) *model.Bundle {
	ctx, op := logger.StartOperation(ctx, "collector.analyze")
	defer op.End("ticker", ticker)

	bundle := &model.Bundle{Ticker: ticker}
	var mu sync.Mutex
	fail := func(analyzer string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if bundle.Errors == nil {
			bundle.Errors = make(map[string]string)
		}
		bundle.Errors[analyzer] = err.Error()
		logger.Warn(ctx, "analyzer failed", "ticker", ticker, "analyzer", analyzer, "error", err)
	}

	var wg sync.WaitGroup
	run := func(analyzer string, fn func() (model.Signal, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			signal, err := fn()
			c.Metrics.ObserveAnalysis(analyzer, string(signal), time.Since(start), err)
			if err != nil {
				fail(analyzer, err)
			}
		}()
	}

	run(model.AnalyzerTechnical, func() (model.Signal, error) {
		res, err := c.technicals(ctx, ticker)
		if res != nil {
			bundle.Technicals = res
		}
		if err != nil {
			return "", err
		}
		return res.Signal, nil
	})
	run(model.AnalyzerFundamental, func() (model.Signal, error) {
		res, err := c.fundamentals(ctx, ticker)
		if err != nil {
			return "", err
		}
		bundle.Fundamentals = res
		return res.Signal, nil
	})
	run(model.AnalyzerSentiment, func() (model.Signal, error) {
		res, err := c.sentiment(ctx, ticker)
		if err != nil {
			return "", err
		}
		bundle.Sentiment = res
		return res.Signal, nil
	})
	run(model.AnalyzerValuation, func() (model.Signal, error) {
		res, err := c.valuation(ctx, ticker)
		if err != nil {
			return "", err
		}
		bundle.Valuation = res
		return res.Signal, nil
	})

	wg.Wait()
	return bundle
}

// AnalyzeAll analyzes tickers with at most Concurrency in flight. Results
// keep the input order.
func (c *Collector) AnalyzeAll(ctx context.Context, tickers []string) []*model.Bundle {
	out := make([]*model.Bundle, len(tickers))
	sem := make(chan struct{}, max(c.Concurrency, 1))
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				out[i] = &model.Bundle{Ticker: ticker, Errors: cancelled(ctx.Err())}
				return
			}
			defer func() { <-sem }()
			out[i] = c.Analyze(ctx, ticker)
		}()
	}
	wg.Wait()
	return out
}

func cancelled(err error) map[string]string {
	return map[string]string{
		model.AnalyzerTechnical:   err.Error(),
		model.AnalyzerFundamental: err.Error(),
		model.AnalyzerSentiment:   err.Error(),
		model.AnalyzerValuation:   err.Error(),
	}
}

// ProcessCompany derives the yearly company metrics from the two most recent
// annual statements and returns them with the statements, most recent first.
func (c *Collector) ProcessCompany(ctx context.Context, ticker string) (*model.CompanyMetrics, []model.LineItem, error) {
	items, err := c.Source.SearchLineItems(ctx, []string{ticker}, CompanyLineItems, model.PeriodAnnual, 2)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch line items for %s: %w", ticker, err)
	}
	if len(items) < 2 {
		return nil, nil, fmt.Errorf("%s: %w", ticker, strategy.ErrInsufficientLineItems)
	}
	sortLineItems(items)
	m := calculator.CompanyMetrics(items[0], items[1])
	m.Ticker = ticker
	return m, items, nil
}

func (c *Collector) technicals(ctx context.Context, ticker string) (*model.TechnicalResult, error) {
	end := c.now()
	start := end.AddDate(0, -c.LookbackMonths, 0)
	bars, err := c.Source.Prices(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	res := strategy.AnalyzeTechnicals(bars)
	if res.Error != "" {
		return res, errors.New(res.Error)
	}
	return res, nil
}

func (c *Collector) latestMetrics(ctx context.Context, ticker string) (*model.FinancialMetrics, error) {
	snapshots, err := c.Source.FinancialMetrics(ctx, ticker, model.PeriodTTM, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch financial metrics: %w", err)
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return &snapshots[0], nil
}

func (c *Collector) fundamentals(ctx context.Context, ticker string) (*model.AnalysisResult, error) {
	m, err := c.latestMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	return strategy.AnalyzeFundamentals(m)
}

func (c *Collector) sentiment(ctx context.Context, ticker string) (*model.AnalysisResult, error) {
	trades, err := c.Source.InsiderTrades(ctx, ticker, insiderTradeLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch insider trades: %w", err)
	}
	news, err := c.Source.CompanyNews(ctx, ticker, newsLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch company news: %w", err)
	}
	return strategy.AnalyzeSentiment(trades, news), nil
}

func (c *Collector) valuation(ctx context.Context, ticker string) (*model.ValuationResult, error) {
	m, err := c.latestMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	items, err := c.Source.SearchLineItems(ctx, []string{ticker}, strategy.ValuationLineItems, model.PeriodTTM, 2)
	if err != nil {
		return nil, fmt.Errorf("fetch line items: %w", err)
	}
	sortLineItems(items)
	return strategy.AnalyzeValuationItems(m, items)
}

// sortLineItems orders line items most recent report period first.
func sortLineItems(items []model.LineItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].ReportPeriod > items[j].ReportPeriod })
}
