package recorder

import "StockScreener/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCompany(_ *model.CompanyMetrics, _ []model.LineItem) error { return nil }
func (n *NoopRecorder) RecordAnalysis(_ string, _ *model.Bundle) error                  { return nil }
func (n *NoopRecorder) StartRun(_ *Run) error                                           { return nil }
func (n *NoopRecorder) FinishRun(_ string, _ *RunResult) error                          { return nil }
func (n *NoopRecorder) Close() error                                                    { return nil }
