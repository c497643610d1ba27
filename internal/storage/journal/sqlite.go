// Package journal records backtest runs and their trades in SQLite.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/newthinker/tradando/internal/backtest"
	"github.com/newthinker/tradando/internal/core"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Run is a journaled run summary
type Run struct {
	RunID               string         `json:"run_id"`
	RecordedAt          time.Time      `json:"recorded_at"`
	Strategy            string         `json:"strategy"`
	Symbol              string         `json:"symbol,omitempty"`
	Description         string         `json:"description,omitempty"`
	Params              map[string]any `json:"params"`
	Lookback            int            `json:"lookback"`
	BarsSimulated       int            `json:"bars_simulated"`
	InsufficientHistory bool           `json:"insufficient_history"`
	InitialValue        float64        `json:"initial_value"`
	FinalValue          float64        `json:"final_value"`
	ReturnPct           float64        `json:"return_pct"`
	PriceChangePct      float64        `json:"price_change_pct"`
	NTrades             int            `json:"n_trades"`
	WinRate             float64        `json:"win_rate"`
	MaxDrawdownPct      float64        `json:"max_drawdown_pct"`
	SharpeRatio         float64        `json:"sharpe_ratio"`
}

// SQLite is a run journal backed by a SQLite file
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal at path and applies the schema
func Open(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("creating journal dir: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	// one writer at a time; batch workers share the handle
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000", Schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("initializing journal: %w", err))
		}
	}

	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the underlying database
func (j *SQLite) Close() error {
	return j.db.Close()
}

// RecordRun stores report and its trades under runID in one transaction
func (j *SQLite) RecordRun(ctx context.Context, runID string, report *backtest.Report) error {
	if runID == "" || report == nil {
		return core.WrapError(core.ErrStorageFailed, errors.New("run id and report required"))
	}

	params, err := json.Marshal(report.Params)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("encoding params: %w", err))
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, recorded_at, strategy, symbol, description, params, lookback, bars_simulated,
		 insufficient_history, initial_value, final_value, return_pct, price_change_pct,
		 n_trades, win_rate, max_drawdown_pct, sharpe_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, formatTime(j.now()), report.Strategy, report.Symbol, report.Description, string(params),
		report.Lookback, report.BarsSimulated, report.InsufficientHistory,
		report.InitialValue, report.FinalValue, report.ReturnPct, report.PriceChangePct,
		report.NTrades, report.Performance.WinRate, report.Performance.MaxDrawdownPct,
		report.Performance.SharpeRatio,
	)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, fmt.Errorf("inserting run %s: %w", runID, err))
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
		(run_id, seq, side, reason, price, time, amount, shares, pnl_pct, pnl_amount, entry_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	defer stmt.Close()

	for i, t := range report.Trades {
		_, err := stmt.ExecContext(ctx,
			runID, i, string(t.Side), string(t.Reason), t.Price, formatTime(t.Time),
			t.Amount, t.Shares, nullFloat(t.PnLPct), nullFloat(t.PnLAmount), nullFloat(t.EntryPrice),
		)
		if err != nil {
			return core.WrapError(core.ErrStorageFailed, fmt.Errorf("inserting trade %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, recorded_at, strategy, symbol, description, params, lookback, bars_simulated,
		       insufficient_history, initial_value, final_value, return_pct, price_change_pct,
		       n_trades, win_rate, max_drawdown_pct, sharpe_ratio
		FROM runs
		ORDER BY recorded_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r          Run
			recordedAt string
			params     string
		)
		err := rows.Scan(&r.RunID, &recordedAt, &r.Strategy, &r.Symbol, &r.Description, &params,
			&r.Lookback, &r.BarsSimulated, &r.InsufficientHistory, &r.InitialValue, &r.FinalValue,
			&r.ReturnPct, &r.PriceChangePct, &r.NTrades, &r.WinRate, &r.MaxDrawdownPct, &r.SharpeRatio)
		if err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		if r.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, fmt.Errorf("decoding params of %s: %w", r.RunID, err))
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return runs, nil
}

// Trades returns the fills of runID in execution order. Unknown runs fail
// with core.ErrNotFound.
func (j *SQLite) Trades(ctx context.Context, runID string) ([]core.Trade, error) {
	var exists bool
	err := j.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM runs WHERE run_id = ?)`, runID).Scan(&exists)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	if !exists {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("run %s", runID))
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT side, reason, price, time, amount, shares, pnl_pct, pnl_amount, entry_price
		FROM trades WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	defer rows.Close()

	trades := []core.Trade{}
	for rows.Next() {
		var (
			t                          core.Trade
			side, reason, at           string
			pnlPct, pnlAmount, entryPx sql.NullFloat64
		)
		if err := rows.Scan(&side, &reason, &t.Price, &at, &t.Amount, &t.Shares, &pnlPct, &pnlAmount, &entryPx); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		t.Side = core.Side(side)
		t.Reason = core.Reason(reason)
		if t.Time, err = parseTime(at); err != nil {
			return nil, core.WrapError(core.ErrStorageFailed, err)
		}
		t.PnLPct = floatPtr(pnlPct)
		t.PnLAmount = floatPtr(pnlAmount)
		t.EntryPrice = floatPtr(entryPx)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return trades, nil
}

// fixed-width so recorded_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
