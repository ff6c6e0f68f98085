package recorder

import (
	"time"

	"StockScreener/internal/model"
)

// Run is one screening or watchlist run.
type Run struct {
	ID        string
	Kind      string // "screening" or "watchlist"
	StartedAt time.Time
	Tickers   int
}

// RunResult summarises a finished run.
type RunResult struct {
	Processed int
	Failed    int
	Note      string
}

// Recorder persists company metrics, analyses and run history.
type Recorder interface {
	RecordCompany(m *model.CompanyMetrics, items []model.LineItem) error
	RecordAnalysis(runID string, b *model.Bundle) error
	StartRun(run *Run) error
	FinishRun(runID string, res *RunResult) error
	Close() error
}
