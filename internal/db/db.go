// Package db
package db

import (
	"context"
	"fmt"
	"time"

	"smacross/internal/backtest"
	"smacross/internal/journal"
	"smacross/internal/series"
)

// Run is a persisted summary of one simulation run.
type Run struct {
	ID             int64
	Symbol         string
	ShortWindow    int
	LongWindow     int
	InitialCapital float64
	FinalValue     float64
	TotalReturnPct float64
	BenchmarkValue float64
	BenchmarkPct   float64
	CreatedAt      time.Time
}

// Storage is the interface for all persistent storage.
type Storage interface {
	// Daily close cache used by the pricefeed loader.
	SaveDailyCloses(ctx context.Context, symbol string, points []series.PricePoint) error
	GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error)

	// Run history with the full trade audit log.
	SaveRun(ctx context.Context, run Run, trades []backtest.Trade) (int64, error)
	GetRuns(ctx context.Context, symbol string) ([]Run, error)
	GetTrades(ctx context.Context, runID int64) ([]backtest.Trade, error)

	journal.Journaler

	Close() error
}

// New opens a storage backend by driver name.
func New(driver, dsn string) (Storage, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(dsn)
	case "postgres":
		return NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

const dateLayout = "2006-01-02"
