package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/logger"
	"StockScreener/internal/metrics"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	source     collector.DataSource
	collector  *collector.Collector
	listings   *collector.ListingFetcher
	summarizer report.Summarizer
	closers    []io.Closer
}

func loadApp(ctx context.Context, requireTelegram bool) (*app, error) {
	path := cfgPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(requireTelegram); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if err := logger.Init(logger.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		TracingEnabled: logger.ConfigFromEnv().TracingEnabled,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{cfg: cfg, metrics: metrics.New(prometheus.NewRegistry())}

	opts := []collector.Option{
		collector.WithBaseURL(cfg.DataSource.BaseURL),
		collector.WithProxy(cfg.Proxy),
		collector.WithRateLimit(cfg.DataSource.RateLimit, cfg.DataSource.RateBurst),
		collector.WithRetry(cfg.DataSource.Retries, cfg.DataSource.RetryWait),
		collector.WithMetrics(a.metrics),
	}
	var cache collector.Cache = collector.NewMemoryCache()
	if cfg.Cache.RedisAddr != "" {
		rc, err := collector.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPass, cfg.Cache.RedisDB)
		if err != nil {
			logger.Warn(ctx, "redis cache unavailable, using in-memory cache", "error", err)
		} else {
			cache = rc
			a.closers = append(a.closers, rc)
		}
	}
	opts = append(opts, collector.WithCache(cache, cfg.Cache.TTL))

	a.source = collector.NewTracedSource(collector.NewFinancialDatasets(cfg.DataSource.APIKey, opts...))
	logger.Info(ctx, "data source ready", "source", a.source.Name())

	a.collector = collector.NewCollector(a.source, a.metrics)
	a.collector.LookbackMonths = cfg.Analysis.PriceLookbackMonths
	a.collector.Concurrency = cfg.Analysis.Concurrency

	a.listings = collector.NewListingFetcher(cfg.DataSource.ListingURL)

	if cfg.Anthropic.APIKey != "" {
		a.summarizer = report.NewClaudeSummarizer(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
	}
	return a, nil
}

// openRecorder falls back to the no-op recorder when SQLite cannot be opened.
func (a *app) openRecorder(ctx context.Context) recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath)
	if err != nil {
		logger.Warn(ctx, "init sqlite recorder failed, using noop", "error", err)
		return recorder.NewNoopRecorder()
	}
	a.closers = append(a.closers, sr)
	return sr
}

func (a *app) discover(ctx context.Context) ([]string, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return collector.Discover(ctx, a.listings, a.source, a.cfg.Discovery.SampleSize, rng)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}
