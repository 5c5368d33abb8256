package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"smacross/internal/backtest"
	"smacross/internal/journal"
	"smacross/internal/series"
)

// MemoryStorage keeps everything in process memory. Useful for tests and
// for runs that read prices straight from a file.
type MemoryStorage struct {
	mu sync.RWMutex

	// Closes keyed by symbol|date.
	closes map[string]series.PricePoint

	runs   []Run
	trades map[int64][]backtest.Trade
	nextID int64

	// Events (append-only).
	events []journal.Event
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		closes: make(map[string]series.PricePoint),
		trades: make(map[int64][]backtest.Trade),
		events: make([]journal.Event, 0, 64),
		nextID: 1,
	}
}

func closeKey(symbol string, date time.Time) string {
	return strings.ToUpper(symbol) + "|" + date.UTC().Format(dateLayout)
}

func (m *MemoryStorage) SaveDailyCloses(_ context.Context, symbol string, points []series.PricePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		m.closes[closeKey(symbol, p.Date)] = p
	}
	return nil
}

func (m *MemoryStorage) GetDailyCloses(_ context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := strings.ToUpper(symbol) + "|"
	var points []series.PricePoint
	for key, p := range m.closes {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if p.Date.Before(from) || p.Date.After(to) {
			continue
		}
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points, nil
}

func (m *MemoryStorage) SaveRun(_ context.Context, run Run, trades []backtest.Trade) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run.ID = m.nextID
	m.nextID++
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	m.runs = append(m.runs, run)
	m.trades[run.ID] = append([]backtest.Trade(nil), trades...)
	return run.ID, nil
}

func (m *MemoryStorage) GetRuns(_ context.Context, symbol string) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []Run
	for _, r := range m.runs {
		if symbol == "" || strings.EqualFold(r.Symbol, symbol) {
			runs = append(runs, r)
		}
	}
	return runs, nil
}

func (m *MemoryStorage) GetTrades(_ context.Context, runID int64) ([]backtest.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]backtest.Trade(nil), m.trades[runID]...), nil
}

func (m *MemoryStorage) LogEvent(_ context.Context, event journal.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryStorage) GetEvents(_ context.Context, eventType string, start, end time.Time) ([]journal.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var events []journal.Event
	for _, e := range m.events {
		if eventType != "" && e.Type != eventType {
			continue
		}
		if e.Time.Before(start) || e.Time.After(end) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (m *MemoryStorage) Close() error { return nil }
