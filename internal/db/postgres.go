package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"smacross/internal/backtest"
	"smacross/internal/journal"
	"smacross/internal/series"
)

// PostgresStorage persists to a PostgreSQL database. Suited for keeping a
// shared price cache and run history across many invocations.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgres connects, verifies the connection and runs migrations.
func NewPostgres(connStr string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p := &PostgresStorage{db: db}
	if err := p.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return p, nil
}

func (p *PostgresStorage) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_closes (
			symbol TEXT NOT NULL,
			date   DATE NOT NULL,
			close  DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,

		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id               BIGSERIAL PRIMARY KEY,
			symbol           TEXT NOT NULL,
			short_window     INT NOT NULL,
			long_window      INT NOT NULL,
			initial_capital  DOUBLE PRECISION NOT NULL,
			final_value      DOUBLE PRECISION NOT NULL,
			total_return_pct DOUBLE PRECISION NOT NULL,
			benchmark_value  DOUBLE PRECISION NOT NULL,
			benchmark_pct    DOUBLE PRECISION NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id     BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES backtest_runs(id),
			date   DATE NOT NULL,
			action TEXT NOT NULL,
			price  DOUBLE PRECISION NOT NULL,
			shares BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id)`,

		`CREATE TABLE IF NOT EXISTS events (
			id          BIGSERIAL PRIMARY KEY,
			time        TIMESTAMPTZ NOT NULL,
			type        TEXT NOT NULL,
			description TEXT,
			data        JSONB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type_time ON events(type, time)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (p *PostgresStorage) SaveDailyCloses(ctx context.Context, symbol string, points []series.PricePoint) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO daily_closes (symbol, date, close) VALUES ($1, $2, $3)
		 ON CONFLICT (symbol, date) DO UPDATE SET close = EXCLUDED.close`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, pt := range points {
		if _, err := stmt.ExecContext(ctx, symbol, pt.Date.UTC(), pt.Close); err != nil {
			return fmt.Errorf("save close %s: %w", pt.Date.Format(dateLayout), err)
		}
	}
	return tx.Commit()
}

func (p *PostgresStorage) GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT date, close FROM daily_closes
		 WHERE symbol = $1 AND date >= $2 AND date <= $3
		 ORDER BY date ASC`,
		symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query closes: %w", err)
	}
	defer rows.Close()

	var points []series.PricePoint
	for rows.Next() {
		var pt series.PricePoint
		if err := rows.Scan(&pt.Date, &pt.Close); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		pt.Date = pt.Date.UTC()
		points = append(points, pt)
	}
	return points, rows.Err()
}

func (p *PostgresStorage) SaveRun(ctx context.Context, run Run, trades []backtest.Trade) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	var runID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO backtest_runs
		 (symbol, short_window, long_window, initial_capital, final_value, total_return_pct, benchmark_value, benchmark_pct, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		run.Symbol, run.ShortWindow, run.LongWindow, run.InitialCapital,
		run.FinalValue, run.TotalReturnPct, run.BenchmarkValue, run.BenchmarkPct,
		run.CreatedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}

	for _, t := range trades {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO backtest_trades (run_id, date, action, price, shares) VALUES ($1, $2, $3, $4, $5)`,
			runID, t.Date.UTC(), string(t.Action), t.Price, t.Shares); err != nil {
			return 0, fmt.Errorf("insert trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

func (p *PostgresStorage) GetRuns(ctx context.Context, symbol string) ([]Run, error) {
	query := `SELECT id, symbol, short_window, long_window, initial_capital, final_value, total_return_pct, benchmark_value, benchmark_pct, created_at
		 FROM backtest_runs`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = $1`
		args = append(args, symbol)
	}
	query += ` ORDER BY id ASC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Symbol, &r.ShortWindow, &r.LongWindow, &r.InitialCapital,
			&r.FinalValue, &r.TotalReturnPct, &r.BenchmarkValue, &r.BenchmarkPct, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (p *PostgresStorage) GetTrades(ctx context.Context, runID int64) ([]backtest.Trade, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT date, action, price, shares FROM backtest_trades WHERE run_id = $1 ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []backtest.Trade
	for rows.Next() {
		var t backtest.Trade
		var action string
		if err := rows.Scan(&t.Date, &action, &t.Price, &t.Shares); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Date = t.Date.UTC()
		t.Action = backtest.Action(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (p *PostgresStorage) LogEvent(ctx context.Context, event journal.Event) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO events (time, type, description, data) VALUES ($1, $2, $3, $4)`,
		event.Time.UTC(), event.Type, event.Description, data)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT time, type, description, data FROM events
		 WHERE ($1 = '' OR type = $1) AND time >= $2 AND time <= $3
		 ORDER BY id ASC`,
		eventType, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []journal.Event
	for rows.Next() {
		var e journal.Event
		var data []byte
		if err := rows.Scan(&e.Time, &e.Type, &e.Description, &data); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Time = e.Time.UTC()
		if len(data) > 0 && string(data) != "null" {
			if err := json.Unmarshal(data, &e.Data); err != nil {
				return nil, fmt.Errorf("unmarshal event data: %w", err)
			}
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (p *PostgresStorage) Close() error { return p.db.Close() }
