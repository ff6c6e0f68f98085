package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"StockScreener/internal/collector"
	"StockScreener/internal/logger"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
)

const (
	runScreening = "screening"
	runWatchlist = "watchlist"
	sendRetries  = 3
)

// Sender delivers notification text.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// DiscoverFunc returns the tickers a screening run should process.
type DiscoverFunc func(ctx context.Context) ([]string, error)

// Scheduler manages all cron tasks and bot commands.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Notifier   Sender
	Recorder   recorder.Recorder
	Metrics    *metrics.Metrics
	Summarizer report.Summarizer
	Discover   DiscoverFunc
	Watchlist  []string
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler. Summarizer and Metrics may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, tn Sender, rec recorder.Recorder, discover DiscoverFunc) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  tn,
		Recorder:  rec,
		Discover:  discover,
		Ctx:       ctx,
	}
}

// RegisterAll registers the screening and watchlist tasks. An empty
// watchlist cron disables the watchlist task.
func (s *Scheduler) RegisterAll(screeningCron, watchlistCron string) error {
	if _, err := s.Cron.AddFunc(screeningCron, s.screeningTask); err != nil {
		return fmt.Errorf("register screening task: %w", err)
	}
	if watchlistCron != "" {
		if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
			return fmt.Errorf("register watchlist task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info(s.Ctx, "scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info(s.Ctx, "scheduler stopped")
}

// RunScreeningNow executes the screening task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunScreeningNow() {
	s.screeningTask()
}

func (s *Scheduler) screeningTask() {
	ctx, op := logger.StartOperation(s.Ctx, "scheduler.screening")
	tickers, err := s.Discover(ctx)
	if err != nil {
		op.EndWithError(err)
		s.trySend(fmt.Sprintf("❌ Screening discovery failed: %s", html.EscapeString(err.Error())))
		return
	}
	summary := s.run(ctx, runScreening, tickers, true)
	op.End("tickers", len(tickers), "failed", summary.Failed)
}

func (s *Scheduler) watchlistTask() {
	if len(s.Watchlist) == 0 {
		logger.Info(s.Ctx, "watchlist empty, skipping")
		return
	}
	ctx, op := logger.StartOperation(s.Ctx, "scheduler.watchlist")
	summary := s.run(ctx, runWatchlist, s.Watchlist, false)
	op.End("tickers", len(s.Watchlist), "failed", summary.Failed)
}

// run analyzes tickers, records everything under a new run id and sends
// the digest. Company metrics are only derived for screening runs.
func (s *Scheduler) run(ctx context.Context, kind string, tickers []string, companies bool) *notifier.RunSummary {
	summary := &notifier.RunSummary{
		Kind:    kind,
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
	if err := s.Recorder.StartRun(&recorder.Run{ID: summary.RunID, Kind: kind, StartedAt: summary.Started, Tickers: len(tickers)}); err != nil {
		logger.ErrorWithErr(ctx, "record run start failed", err, "run_id", summary.RunID)
	}

	failed := make(map[string]bool)
	if companies {
		for _, ticker := range tickers {
			if ctx.Err() != nil {
				break
			}
			m, items, err := s.Collector.ProcessCompany(ctx, ticker)
			if err != nil {
				logger.Warn(ctx, "company metrics failed", "ticker", ticker, "error", err)
				failed[ticker] = true
				continue
			}
			summary.Companies = append(summary.Companies, m)
			if err := s.Recorder.RecordCompany(m, items); err != nil {
				logger.ErrorWithErr(ctx, "record company failed", err, "ticker", ticker)
			}
		}
	}

	summary.Bundles = s.Collector.AnalyzeAll(ctx, tickers)
	for _, b := range summary.Bundles {
		if b.Failed() {
			failed[b.Ticker] = true
		}
		if err := s.Recorder.RecordAnalysis(summary.RunID, b); err != nil {
			logger.ErrorWithErr(ctx, "record analysis failed", err, "ticker", b.Ticker)
		}
	}

	summary.Processed = len(tickers)
	summary.Failed = len(failed)
	s.Metrics.ObserveRun(summary.Processed, summary.Failed)
	if err := s.Recorder.FinishRun(summary.RunID, &recorder.RunResult{Processed: summary.Processed, Failed: summary.Failed}); err != nil {
		logger.ErrorWithErr(ctx, "record run finish failed", err, "run_id", summary.RunID)
	}

	s.trySend(notifier.FormatRunSummary(summary))
	return summary
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	name, args, _ := strings.Cut(strings.TrimSpace(command), " ")
	name, _, _ = strings.Cut(name, "@")
	args = strings.TrimSpace(args)

	switch strings.ToLower(name) {
	case "/analyze":
		if args == "" {
			return "Usage: /analyze TICKER"
		}
		b := s.Collector.Analyze(ctx, strings.ToUpper(args))
		s.recordAdHoc(ctx, b)
		return notifier.FormatBundle(b)
	case "/compare":
		return s.compare(ctx, args)
	case "/watchlist":
		s.watchlistTask()
		return ""
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) compare(ctx context.Context, args string) string {
	tickers, err := report.ParseCompareTickers(args)
	if err != nil {
		return "❌ " + err.Error()
	}
	bundles := s.Collector.AnalyzeAll(ctx, tickers)
	for _, b := range bundles {
		s.recordAdHoc(ctx, b)
	}
	if s.Summarizer != nil {
		text, err := s.Summarizer.Compare(ctx, bundles)
		if err == nil {
			return html.EscapeString(text)
		}
		logger.ErrorWithErr(ctx, "compare summary failed", err)
	}
	parts := make([]string, 0, len(bundles))
	for _, b := range bundles {
		parts = append(parts, notifier.FormatBundle(b))
	}
	return strings.Join(parts, "\n")
}

func (s *Scheduler) recordAdHoc(ctx context.Context, b *model.Bundle) {
	if err := s.Recorder.RecordAnalysis("", b); err != nil {
		logger.ErrorWithErr(ctx, "record analysis failed", err, "ticker", b.Ticker)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		logger.ErrorWithErr(s.Ctx, "send notification failed", err)
	}
}
