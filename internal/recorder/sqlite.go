package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"MarketMovers/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER,
			days        INTEGER,
			top_n       INTEGER,
			range_label TEXT,
			analyzed    INTEGER,
			skipped     INTEGER,
			status      TEXT,
			error       TEXT,
			output_dir  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS ranked_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			side        TEXT NOT NULL,
			position    INTEGER NOT NULL,
			ticker      TEXT NOT NULL,
			name        TEXT,
			start_price REAL,
			end_price   REAL,
			growth_pct  REAL,
			volatility  REAL,
			range_label TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ranked_run ON ranked_records(run_id)`,

		`CREATE TABLE IF NOT EXISTS skipped_symbols (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			ticker TEXT NOT NULL,
			reason TEXT,
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skipped_run ON skipped_symbols(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun inserts a run, or replaces it when the same ID was recorded before.
func (r *SQLiteRecorder) RecordRun(run *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished int64
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.Unix()
	}
	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(id, started_at, finished_at, days, top_n, range_label, analyzed, skipped, status, error, output_dir)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.Unix(), finished, run.Days, run.TopN, run.RangeLabel,
		run.Analyzed, run.Skipped, run.Status, run.Error, run.OutputDir,
	)
	return err
}

func (r *SQLiteRecorder) RecordRanked(runID string, side model.Side, rows model.RankedSlice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for i, row := range rows {
		if _, err := tx.Exec(`INSERT INTO ranked_records
			(run_id, side, position, ticker, name, start_price, end_price, growth_pct, volatility, range_label)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			runID, string(side), i+1, row.Ticker, row.Name,
			row.StartPrice, row.EndPrice, row.GrowthPct, row.Volatility, row.RangeLabel,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", row.Ticker, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) RecordSkips(runID string, skips []model.Skip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, s := range skips {
		if _, err := tx.Exec(`INSERT INTO skipped_symbols (run_id, ticker, reason, detail) VALUES (?,?,?,?)`,
			runID, s.Symbol.Ticker, string(s.Reason), s.Detail,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert skip %s: %w", s.Symbol.Ticker, err)
		}
	}
	return tx.Commit()
}

// LastRun returns the most recently started run.
func (r *SQLiteRecorder) LastRun() (*RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		run      RunRecord
		started  int64
		finished int64
	)
	err := r.db.QueryRow(`SELECT id, started_at, finished_at, days, top_n, range_label,
		analyzed, skipped, status, error, output_dir
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).Scan(
		&run.ID, &started, &finished, &run.Days, &run.TopN, &run.RangeLabel,
		&run.Analyzed, &run.Skipped, &run.Status, &run.Error, &run.OutputDir,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(started, 0)
	if finished > 0 {
		run.FinishedAt = time.Unix(finished, 0)
	}
	return &run, nil
}

// RankedFor returns the stored ranked rows of a run side, in rank order.
func (r *SQLiteRecorder) RankedFor(runID string, side model.Side) (model.RankedSlice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ticker, name, start_price, end_price, growth_pct, volatility, range_label
		FROM ranked_records WHERE run_id = ? AND side = ? ORDER BY position`, runID, string(side))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out model.RankedSlice
	for rows.Next() {
		var p model.PerformanceRecord
		if err := rows.Scan(&p.Ticker, &p.Name, &p.StartPrice, &p.EndPrice, &p.GrowthPct, &p.Volatility, &p.RangeLabel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
