package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func TestSend(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "").WithAPIBase(srv.URL)
	require.NoError(t, tn.Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "").WithAPIBase(srv.URL)
	err := tn.Send(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	tn := NewTelegramNotifier("TOKEN", "42", "").WithAPIBase(srv.URL)
	err := tn.SendWithRetry(ctx, "x", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartPolling_HandlesOwnChatOnly(t *testing.T) {
	var mu sync.Mutex
	var replies []string
	polled := 0
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			mu.Lock()
			polled++
			first := polled == 1
			mu.Unlock()
			if !first {
				cancel()
				io.WriteString(w, `{"ok":true,"result":[]}`)
				return
			}
			io.WriteString(w, `{"ok":true,"result":[
				{"update_id":1,"message":{"text":"/help","chat":{"id":42}}},
				{"update_id":2,"message":{"text":"/help","chat":{"id":7}}}
			]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			mu.Lock()
			replies = append(replies, body["text"].(string))
			mu.Unlock()
			io.WriteString(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "").WithAPIBase(srv.URL)
	var handled []string
	tn.StartPolling(ctx, func(_ context.Context, cmd string) string {
		handled = append(handled, cmd)
		return "pong"
	})

	assert.Equal(t, []string{"/help"}, handled)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"pong"}, replies)
}

func TestFormatBundle(t *testing.T) {
	b := &model.Bundle{
		Ticker: "AAPL",
		Fundamentals: &model.AnalysisResult{
			Signal:     model.Bullish,
			Confidence: 75,
			Reasoning: model.FundamentalReasoning{
				Profitability: model.ScoreDetail{Signal: model.Bullish, Details: "ROE: 25.00%"},
			},
		},
		Valuation: &model.ValuationResult{Signal: model.Bearish, Confidence: 17, DCFValue: 1292.72, OwnerEarningsValue: 375},
		Errors:    map[string]string{model.AnalyzerSentiment: "timeout <5s>"},
	}

	out := FormatBundle(b)
	assert.Contains(t, out, "<b>AAPL</b>")
	assert.Contains(t, out, "Fundamentals: <b>bullish</b> (75%)")
	assert.Contains(t, out, "ROE: 25.00%")
	assert.Contains(t, out, "DCF $1,292")
	assert.Contains(t, out, "sentiment: timeout &lt;5s&gt;")
	assert.NotContains(t, out, "Technicals")
}

func TestFormatRunSummary(t *testing.T) {
	s := &RunSummary{
		Kind:      "screening",
		Started:   time.Now().Add(-2 * time.Minute),
		Processed: 2,
		Failed:    1,
		Companies: []*model.CompanyMetrics{{Ticker: "MSFT", RevenueGrowthPct: 15.2, FreeCashFlow: 70_000_000_000, ROIC: 28.1, DebtToEquity: 40}},
		Bundles: []*model.Bundle{
			{Ticker: "MSFT", Sentiment: &model.AnalysisResult{Signal: model.Bullish}, Valuation: &model.ValuationResult{Signal: model.Bullish}},
			{Ticker: "FAIL", Errors: map[string]string{"technicals": "x"}},
		},
	}
	out := FormatRunSummary(s)
	assert.Contains(t, out, "Processed 2 tickers, 1 failed")
	assert.Contains(t, out, "MSFT: 2↑ 0↓")
	assert.NotContains(t, out, "FAIL")
	assert.Contains(t, out, "FCF $70,000,000,000")
	assert.Contains(t, out, "rev +15.2%")
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("line of text\n", 10)
	parts := splitMessage(text, 30)
	assert.Equal(t, text, strings.Join(parts, ""))
	for _, p := range parts {
		assert.LessOrEqual(t, len(p), 30)
	}
	assert.Equal(t, []string{"short"}, splitMessage("short", 30))
}
