package journal

// Schema creates the journal tables. Times are RFC 3339 text.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id               TEXT PRIMARY KEY,
	recorded_at          TEXT NOT NULL,
	strategy             TEXT NOT NULL,
	symbol               TEXT NOT NULL DEFAULT '',
	description          TEXT NOT NULL DEFAULT '',
	params               TEXT NOT NULL DEFAULT '{}',
	lookback             INTEGER NOT NULL,
	bars_simulated       INTEGER NOT NULL,
	insufficient_history INTEGER NOT NULL DEFAULT 0,
	initial_value        REAL NOT NULL,
	final_value          REAL NOT NULL,
	return_pct           REAL NOT NULL,
	price_change_pct     REAL NOT NULL,
	n_trades             INTEGER NOT NULL,
	win_rate             REAL NOT NULL,
	max_drawdown_pct     REAL NOT NULL,
	sharpe_ratio         REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_recorded_at ON runs(recorded_at);

CREATE TABLE IF NOT EXISTS trades (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	seq         INTEGER NOT NULL,
	side        TEXT NOT NULL,
	reason      TEXT NOT NULL,
	price       REAL NOT NULL,
	time        TEXT NOT NULL,
	amount      REAL NOT NULL,
	shares      REAL NOT NULL,
	pnl_pct     REAL,
	pnl_amount  REAL,
	entry_price REAL,
	PRIMARY KEY (run_id, seq)
);
`
