package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"smacross/internal/backtest"
	"smacross/internal/journal"
	"smacross/internal/series"
)

// SQLiteStorage persists to a local SQLite file. No server required, which
// suits a one-shot offline tool.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite database and runs migrations.
func NewSQLite(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_closes (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol           TEXT NOT NULL,
			short_window     INTEGER NOT NULL,
			long_window      INTEGER NOT NULL,
			initial_capital  REAL NOT NULL,
			final_value      REAL NOT NULL,
			total_return_pct REAL NOT NULL,
			benchmark_value  REAL NOT NULL,
			benchmark_pct    REAL NOT NULL,
			created_at       TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES backtest_runs(id),
			date   TEXT NOT NULL,
			action TEXT NOT NULL,
			price  REAL NOT NULL,
			shares INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id)`,

		`CREATE TABLE IF NOT EXISTS events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			time        TEXT NOT NULL,
			type        TEXT NOT NULL,
			description TEXT,
			data        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_time ON events(type, time)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStorage) SaveDailyCloses(ctx context.Context, symbol string, points []series.PricePoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_closes (symbol, date, close) VALUES (?, ?, ?)
		 ON CONFLICT (symbol, date) DO UPDATE SET close = excluded.close`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, p.Date.UTC().Format(dateLayout), p.Close); err != nil {
			return fmt.Errorf("save close %s: %w", p.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, close FROM daily_closes
		 WHERE symbol = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		symbol, from.UTC().Format(dateLayout), to.UTC().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query closes: %w", err)
	}
	defer rows.Close()

	var points []series.PricePoint
	for rows.Next() {
		var dateStr string
		var p series.PricePoint
		if err := rows.Scan(&dateStr, &p.Close); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		p.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLiteStorage) SaveRun(ctx context.Context, run Run, trades []backtest.Trade) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO backtest_runs
		 (symbol, short_window, long_window, initial_capital, final_value, total_return_pct, benchmark_value, benchmark_pct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Symbol, run.ShortWindow, run.LongWindow, run.InitialCapital,
		run.FinalValue, run.TotalReturnPct, run.BenchmarkValue, run.BenchmarkPct,
		run.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	for _, t := range trades {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO backtest_trades (run_id, date, action, price, shares) VALUES (?, ?, ?, ?, ?)`,
			runID, t.Date.UTC().Format(dateLayout), string(t.Action), t.Price, t.Shares); err != nil {
			return 0, fmt.Errorf("insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func (s *SQLiteStorage) GetRuns(ctx context.Context, symbol string) ([]Run, error) {
	query := `SELECT id, symbol, short_window, long_window, initial_capital, final_value, total_return_pct, benchmark_value, benchmark_pct, created_at
		 FROM backtest_runs`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Symbol, &r.ShortWindow, &r.LongWindow, &r.InitialCapital,
			&r.FinalValue, &r.TotalReturnPct, &r.BenchmarkValue, &r.BenchmarkPct, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) GetTrades(ctx context.Context, runID int64) ([]backtest.Trade, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, action, price, shares FROM backtest_trades WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []backtest.Trade
	for rows.Next() {
		var t backtest.Trade
		var dateStr, action string
		if err := rows.Scan(&dateStr, &action, &t.Price, &t.Shares); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", dateStr, err)
		}
		t.Action = backtest.Action(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (s *SQLiteStorage) LogEvent(ctx context.Context, event journal.Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (time, type, description, data) VALUES (?, ?, ?, ?)`,
		event.Time.UTC().Format(time.RFC3339Nano), event.Type, event.Description, string(data))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, type, description, data FROM events
		 WHERE (? = '' OR type = ?) AND time >= ? AND time <= ?
		 ORDER BY id ASC`,
		eventType, eventType,
		start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var e journal.Event
		var ts, data string
		if err := rows.Scan(&ts, &e.Type, &e.Description, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse time %q: %w", ts, err)
		}
		if data != "" && data != "null" {
			if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
				return nil, fmt.Errorf("unmarshal event data: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }
