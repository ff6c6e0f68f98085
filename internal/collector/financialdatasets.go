package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"StockScreener/internal/logger"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
)

// DefaultFinancialDatasetsURL is the public financialdatasets.ai endpoint.
const DefaultFinancialDatasetsURL = "https://api.financialdatasets.ai"

// FinancialDatasets implements DataSource on the financialdatasets.ai REST API.
type FinancialDatasets struct {
	http     *resty.Client
	cache    Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
}

// Option configures a FinancialDatasets client.
type Option func(*FinancialDatasets)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *FinancialDatasets) { c.http.SetBaseURL(u) }
}

// WithProxy routes requests through an HTTP proxy.
func WithProxy(proxyURL string) Option {
	return func(c *FinancialDatasets) {
		if proxyURL != "" {
			c.http.SetProxy(proxyURL)
		}
	}
}

// WithCache caches raw responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *FinancialDatasets) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *FinancialDatasets) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

// WithRetry retries transport errors, 429 and 5xx responses.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *FinancialDatasets) {
		c.http.SetRetryCount(count).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(30 * time.Second)
	}
}

// WithMetrics records request and cache metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *FinancialDatasets) { c.metrics = m }
}

// NewFinancialDatasets creates a client authenticated with apiKey.
func NewFinancialDatasets(apiKey string, opts ...Option) *FinancialDatasets {
	client := resty.New().
		SetBaseURL(DefaultFinancialDatasetsURL).
		SetTimeout(30*time.Second).
		SetHeader("X-API-KEY", apiKey).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	c := &FinancialDatasets{http: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FinancialDatasets) Name() string { return "financialdatasets" }

// wirePrice is the upstream price shape; time is an ISO string.
type wirePrice struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
	Time   string  `json:"time"`
}

func (c *FinancialDatasets) Prices(ctx context.Context, ticker string, start, end time.Time) ([]model.PriceBar, error) {
	var resp struct {
		Prices []wirePrice `json:"prices"`
	}
	params := map[string]string{
		"ticker":              ticker,
		"interval":            "day",
		"interval_multiplier": "1",
		"start_date":          start.Format(time.DateOnly),
		"end_date":            end.Format(time.DateOnly),
	}
	if err := c.get(ctx, "/prices", params, &resp); err != nil {
		return nil, err
	}

	bars := make([]model.PriceBar, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		t, err := parseTime(p.Time)
		if err != nil {
			return nil, fmt.Errorf("parse price time %q: %w", p.Time, err)
		}
		bars = append(bars, model.PriceBar{Time: t, Open: p.Open, High: p.High, Low: p.Low, Close: p.Close, Volume: p.Volume})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (c *FinancialDatasets) FinancialMetrics(ctx context.Context, ticker string, period model.Period, limit int) ([]model.FinancialMetrics, error) {
	var resp struct {
		FinancialMetrics []model.FinancialMetrics `json:"financial_metrics"`
	}
	params := map[string]string{"ticker": ticker, "period": string(period)}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if err := c.get(ctx, "/financial-metrics", params, &resp); err != nil {
		return nil, err
	}
	return resp.FinancialMetrics, nil
}

func (c *FinancialDatasets) InsiderTrades(ctx context.Context, ticker string, limit int) ([]model.InsiderTrade, error) {
	var resp struct {
		InsiderTrades []model.InsiderTrade `json:"insider_trades"`
	}
	params := map[string]string{"ticker": ticker}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if err := c.get(ctx, "/insider-trades", params, &resp); err != nil {
		return nil, err
	}
	return resp.InsiderTrades, nil
}

func (c *FinancialDatasets) CompanyNews(ctx context.Context, ticker string, limit int) ([]model.NewsItem, error) {
	var resp struct {
		News []model.NewsItem `json:"news"`
	}
	params := map[string]string{"ticker": ticker}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if err := c.get(ctx, "/news", params, &resp); err != nil {
		return nil, err
	}
	return resp.News, nil
}

func (c *FinancialDatasets) SearchLineItems(ctx context.Context, tickers, items []string, period model.Period, limit int) ([]model.LineItem, error) {
	var resp struct {
		SearchResults []model.LineItem `json:"search_results"`
	}
	body := map[string]any{
		"tickers":    tickers,
		"line_items": items,
		"period":     string(period),
	}
	if limit > 0 {
		body["limit"] = limit
	}
	if err := c.post(ctx, "/financials/search/line-items", body, &resp); err != nil {
		return nil, err
	}
	return resp.SearchResults, nil
}

func (c *FinancialDatasets) AvailableTickers(ctx context.Context) ([]string, error) {
	var resp struct {
		Tickers []string `json:"tickers"`
	}
	if err := c.get(ctx, "/financials/tickers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tickers, nil
}

func (c *FinancialDatasets) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	keyParams := make(map[string]any, len(params))
	for k, v := range params {
		keyParams[k] = v
	}
	return c.do(ctx, http.MethodGet, endpoint, CacheKey(endpoint, keyParams), func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(params).Get(endpoint)
	}, out)
}

func (c *FinancialDatasets) post(ctx context.Context, endpoint string, body map[string]any, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, CacheKey(endpoint, body), func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post(endpoint)
	}, out)
}

// do serves from cache when possible, otherwise performs the request under
// the rate limiter and caches the raw body.
func (c *FinancialDatasets) do(ctx context.Context, method, endpoint, key string, send func(*resty.Request) (*resty.Response, error), out any) error {
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logger.Warn(ctx, "cache read failed", "endpoint", endpoint, "error", err)
		}
		c.metrics.ObserveCache(ok)
		if ok {
			return decode(endpoint, data, out)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s %s: rate limit: %w", method, endpoint, err)
		}
	}

	start := time.Now()
	resp, err := send(c.http.R().SetContext(ctx))
	if err != nil {
		c.metrics.ObserveUpstream(endpoint, "error", time.Since(start))
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	c.metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode()), time.Since(start))
	if resp.IsError() {
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	data := resp.Body()
	if err := decode(endpoint, data, out); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, data, c.cacheTTL); err != nil {
			logger.Warn(ctx, "cache write failed", "endpoint", endpoint, "error", err)
		}
	}
	return nil
}

func decode(endpoint string, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", time.DateOnly}

func parseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
