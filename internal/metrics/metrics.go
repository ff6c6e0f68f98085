package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockScreener/internal/logger"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec   // labels: analyzer, outcome
	AnalysisDuration *prometheus.HistogramVec // labels: analyzer
	SignalsTotal     *prometheus.CounterVec   // labels: analyzer, signal
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint, status
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ScreeningRuns    *prometheus.CounterVec // labels: outcome
	TickersProcessed prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_analyses_total",
			Help: "Analyzer invocations by outcome",
		}, []string{"analyzer", "outcome"}),
		AnalysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_analysis_duration_seconds",
			Help:    "Fetch plus analysis latency per analyzer",
			Buckets: prometheus.DefBuckets,
		}, []string{"analyzer"}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_signals_total",
			Help: "Signals produced by analyzer",
		}, []string{"analyzer", "signal"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_upstream_requests_total",
			Help: "Financial data API requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "screener_upstream_request_duration_seconds",
			Help:    "Financial data API latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_cache_hits_total",
			Help: "Upstream responses served from cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_cache_misses_total",
			Help: "Upstream responses fetched fresh",
		}),
		ScreeningRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_runs_total",
			Help: "Scheduled screening runs by outcome",
		}, []string{"outcome"}),
		TickersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_tickers_processed_total",
			Help: "Tickers processed by screening runs",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.SignalsTotal,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheHits,
		m.CacheMisses,
		m.ScreeningRuns,
		m.TickersProcessed,
	)
	return m
}

// ObserveAnalysis records one analyzer run. signal is empty on failure.
func (m *Metrics) ObserveAnalysis(analyzer, signal string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AnalysesTotal.WithLabelValues(analyzer, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(analyzer).Observe(d.Seconds())
	if signal != "" {
		m.SignalsTotal.WithLabelValues(analyzer, signal).Inc()
	}
}

// ObserveUpstream records one upstream request.
func (m *Metrics) ObserveUpstream(endpoint, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, status).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveRun records a finished screening run.
func (m *Metrics) ObserveRun(processed, failed int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed > 0 {
		outcome = "partial"
	}
	if processed > 0 && failed == processed {
		outcome = "failed"
	}
	m.ScreeningRuns.WithLabelValues(outcome).Inc()
	m.TickersProcessed.Add(float64(processed))
}

// Handler serves the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info(ctx, "metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
