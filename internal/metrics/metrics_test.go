package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveAnalysis("technicals", "bullish", 10*time.Millisecond, nil)
	m.ObserveAnalysis("valuation", "", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("technicals", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("valuation", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsTotal.WithLabelValues("technicals", "bullish")))
}

func TestObserveRun(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRun(10, 0)
	m.ObserveRun(10, 3)
	m.ObserveRun(2, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScreeningRuns.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScreeningRuns.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScreeningRuns.WithLabelValues("failed")))
	assert.Equal(t, 22.0, testutil.ToFloat64(m.TickersProcessed))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("technicals", "bullish", time.Second, nil)
	m.ObserveUpstream("/prices", "200", time.Second)
	m.ObserveCache(true)
	m.ObserveRun(1, 0)
}

func TestHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveCache(true)
	m.ObserveCache(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "screener_cache_hits_total 1"))
	assert.True(t, strings.Contains(body, "screener_cache_misses_total 1"))
}
