package collector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPrices_QueryAndOrdering(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "AAPL", q.Get("ticker"))
		assert.Equal(t, "day", q.Get("interval"))
		assert.Equal(t, "1", q.Get("interval_multiplier"))
		assert.Equal(t, "2025-01-01", q.Get("start_date"))
		assert.Equal(t, "2025-03-31", q.Get("end_date"))
		io.WriteString(w, `{"prices":[
			{"open":2,"high":3,"low":1,"close":2.5,"volume":200,"time":"2025-01-03T05:00:00Z"},
			{"open":1,"high":2,"low":0.5,"close":1.5,"volume":100,"time":"2025-01-02T05:00:00Z"}
		]}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL))
	bars, err := client.Prices(context.Background(), "AAPL",
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, 2.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestSearchLineItems_PostBody(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/financials/search/line-items", r.URL.Path)
		var body struct {
			Tickers   []string `json:"tickers"`
			LineItems []string `json:"line_items"`
			Period    string   `json:"period"`
			Limit     int      `json:"limit"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"AAPL"}, body.Tickers)
		assert.Equal(t, []string{"free_cash_flow"}, body.LineItems)
		assert.Equal(t, "ttm", body.Period)
		assert.Equal(t, 2, body.Limit)
		io.WriteString(w, `{"search_results":[{"ticker":"AAPL","report_period":"2024-12-31","free_cash_flow":100}]}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL))
	items, err := client.SearchLineItems(context.Background(), []string{"AAPL"}, []string{"free_cash_flow"}, model.PeriodTTM, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 100.0, items[0].FreeCashFlow)
}

func TestFinancialMetrics_Decode(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ttm", r.URL.Query().Get("period"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		io.WriteString(w, `{"financial_metrics":[{"ticker":"AAPL","market_cap":1000,"return_on_equity":0.2,"debt_to_equity":null}]}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL))
	got, err := client.FinancialMetrics(context.Background(), "AAPL", model.PeriodTTM, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].MarketCap)
	assert.Equal(t, 1000.0, *got[0].MarketCap)
	assert.Nil(t, got[0].DebtToEquity)
}

func TestAPIError(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"ticker not found"}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL))
	_, err := client.CompanyNews(context.Background(), "NOPE", 10)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/news", apiErr.Endpoint)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCache_ServesRepeatRequests(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"tickers":["AAPL","MSFT"]}`)
	})

	m := metrics.New(prometheus.NewRegistry())
	client := NewFinancialDatasets("secret",
		WithBaseURL(srv.URL),
		WithCache(NewMemoryCache(), time.Hour),
		WithMetrics(m),
	)

	for i := 0; i < 3; i++ {
		got, err := client.AvailableTickers(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("/financials/tickers", "200")))
}

func TestErrorsAreNotCached(t *testing.T) {
	srv, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL), WithCache(NewMemoryCache(), time.Hour))
	_, err := client.InsiderTrades(context.Background(), "AAPL", 10)
	require.Error(t, err)
	_, err = client.InsiderTrades(context.Background(), "AAPL", 10)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestRetryOnServerError(t *testing.T) {
	var n int32
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&n, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"news":[{"ticker":"AAPL","sentiment":"positive"}]}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL), WithRetry(3, time.Millisecond))
	news, err := client.CompanyNews(context.Background(), "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, model.NewsPositive, news[0].Sentiment)
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"tickers":[]}`)
	})

	client := NewFinancialDatasets("secret", WithBaseURL(srv.URL), WithRateLimit(0.001, 1))
	_, err := client.AvailableTickers(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.AvailableTickers(ctx)
	require.Error(t, err)
}
