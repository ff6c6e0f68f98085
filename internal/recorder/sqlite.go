package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockScreener/internal/logger"
	"StockScreener/internal/model"
)

// SQLiteRecorder persists history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the screener writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info(context.Background(), "sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickers (
			symbol                     TEXT PRIMARY KEY,
			name                       TEXT NOT NULL DEFAULT '',
			exchange                   TEXT NOT NULL DEFAULT '',
			report_period              TEXT,
			revenue_growth_percentage  REAL,
			earnings_growth_percentage REAL,
			free_cash_flow             REAL,
			fcf_earnings_ratio         REAL,
			roic                       REAL,
			net_debt_to_fcf            REAL,
			debt_to_equity             REAL,
			created_at                 INTEGER NOT NULL,
			updated_at                 INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS ticker_metric_data (
			ticker_id                     TEXT NOT NULL REFERENCES tickers(symbol),
			report_period                 TEXT NOT NULL,
			period                        TEXT NOT NULL,
			currency                      TEXT NOT NULL DEFAULT '',
			revenue                       REAL,
			net_income                    REAL,
			net_cash_flow_from_operations REAL,
			capital_expenditure           REAL,
			ebit                          REAL,
			income_tax_expense            REAL,
			total_debt                    REAL,
			cash_and_equivalents          REAL,
			shareholders_equity           REAL,
			created_at                    INTEGER NOT NULL,
			updated_at                    INTEGER,
			PRIMARY KEY (ticker_id, report_period)
		)`,

		`CREATE TABLE IF NOT EXISTS screening_runs (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			tickers     INTEGER,
			processed   INTEGER,
			failed      INTEGER,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON screening_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ticker_analyses (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               TEXT,
			symbol               TEXT NOT NULL,
			timestamp            INTEGER NOT NULL,
			technical_signal     TEXT,
			technical_confidence INTEGER,
			fundamental_signal   TEXT,
			fundamental_confidence INTEGER,
			sentiment_signal     TEXT,
			sentiment_confidence INTEGER,
			valuation_signal     TEXT,
			valuation_confidence INTEGER,
			errors               INTEGER,
			bundle               TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON ticker_analyses(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCompany upserts the ticker row and its per-period statement data.
func (r *SQLiteRecorder) RecordCompany(m *model.CompanyMetrics, items []model.LineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO tickers
		(symbol, name, exchange, report_period,
		 revenue_growth_percentage, earnings_growth_percentage, free_cash_flow,
		 fcf_earnings_ratio, roic, net_debt_to_fcf, debt_to_equity, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE tickers.name END,
			exchange = CASE WHEN excluded.exchange != '' THEN excluded.exchange ELSE tickers.exchange END,
			report_period = excluded.report_period,
			revenue_growth_percentage = excluded.revenue_growth_percentage,
			earnings_growth_percentage = excluded.earnings_growth_percentage,
			free_cash_flow = excluded.free_cash_flow,
			fcf_earnings_ratio = excluded.fcf_earnings_ratio,
			roic = excluded.roic,
			net_debt_to_fcf = excluded.net_debt_to_fcf,
			debt_to_equity = excluded.debt_to_equity,
			updated_at = ?`,
		m.Ticker, m.Name, m.Exchange, m.ReportPeriod,
		m.RevenueGrowthPct, m.EarningsGrowthPct, m.FreeCashFlow,
		m.FCFEarningsRatio, m.ROIC, m.NetDebtToFCF, m.DebtToEquity, now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert ticker %s: %w", m.Ticker, err)
	}

	for _, it := range items {
		_, err := tx.Exec(`INSERT INTO ticker_metric_data
			(ticker_id, report_period, period, currency, revenue, net_income,
			 net_cash_flow_from_operations, capital_expenditure, ebit, income_tax_expense,
			 total_debt, cash_and_equivalents, shareholders_equity, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT(ticker_id, report_period) DO UPDATE SET
				revenue = excluded.revenue,
				net_income = excluded.net_income,
				net_cash_flow_from_operations = excluded.net_cash_flow_from_operations,
				capital_expenditure = excluded.capital_expenditure,
				ebit = excluded.ebit,
				income_tax_expense = excluded.income_tax_expense,
				total_debt = excluded.total_debt,
				cash_and_equivalents = excluded.cash_and_equivalents,
				shareholders_equity = excluded.shareholders_equity,
				updated_at = ?`,
			m.Ticker, it.ReportPeriod, string(it.Period), it.Currency, it.Revenue, it.NetIncome,
			it.NetCashFlowFromOperations, it.CapitalExpenditure, it.EBIT, it.IncomeTaxExpense,
			it.TotalDebt, it.CashAndEquivalents, it.ShareholdersEquity, now,
			now,
		)
		if err != nil {
			return fmt.Errorf("upsert %s %s: %w", m.Ticker, it.ReportPeriod, err)
		}
	}
	return tx.Commit()
}

// RecordAnalysis stores the signals of a bundle plus the full bundle as JSON.
func (r *SQLiteRecorder) RecordAnalysis(runID string, b *model.Bundle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	var techSignal, fundSignal, sentSignal, valSignal sql.NullString
	var techConf, fundConf, sentConf, valConf sql.NullInt64
	if b.Technicals != nil && b.Technicals.Error == "" {
		techSignal = nullString(string(b.Technicals.Signal))
		techConf = nullInt(b.Technicals.Confidence)
	}
	if b.Fundamentals != nil {
		fundSignal = nullString(string(b.Fundamentals.Signal))
		fundConf = nullInt(b.Fundamentals.Confidence)
	}
	if b.Sentiment != nil {
		sentSignal = nullString(string(b.Sentiment.Signal))
		sentConf = nullInt(b.Sentiment.Confidence)
	}
	if b.Valuation != nil {
		valSignal = nullString(string(b.Valuation.Signal))
		valConf = nullInt(b.Valuation.Confidence)
	}

	_, err = r.db.Exec(`INSERT INTO ticker_analyses
		(run_id, symbol, timestamp,
		 technical_signal, technical_confidence, fundamental_signal, fundamental_confidence,
		 sentiment_signal, sentiment_confidence, valuation_signal, valuation_confidence,
		 errors, bundle)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		nullString(runID), b.Ticker, time.Now().Unix(),
		techSignal, techConf, fundSignal, fundConf,
		sentSignal, sentConf, valSignal, valConf,
		len(b.Errors), string(data),
	)
	return err
}

func (r *SQLiteRecorder) StartRun(run *Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO screening_runs (id, kind, started_at, tickers) VALUES (?,?,?,?)`,
		run.ID, run.Kind, run.StartedAt.Unix(), run.Tickers,
	)
	return err
}

func (r *SQLiteRecorder) FinishRun(runID string, res *RunResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.Exec(`UPDATE screening_runs
		SET finished_at = ?, processed = ?, failed = ?, note = ?
		WHERE id = ?`,
		time.Now().Unix(), res.Processed, res.Failed, res.Note, runID,
	)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, sql.ErrNoRows)
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	logger.Info(context.Background(), "closing sqlite recorder")
	return r.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
