package pricefeed

import (
	"context"
	"fmt"
	"log"
	"time"

	"smacross/internal/series"
)

// Store is the slice of the storage layer the loader needs.
type Store interface {
	SaveDailyCloses(ctx context.Context, symbol string, points []series.PricePoint) error
	GetDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error)
}

// Loader reads a price series from storage first and falls back to the
// provider on a cache miss, persisting what was fetched for next time.
type Loader struct {
	store    Store
	provider Provider
}

func NewLoader(store Store, provider Provider) *Loader {
	return &Loader{store: store, provider: provider}
}

// Load returns a validated, date-ordered series for the symbol and range.
func (l *Loader) Load(ctx context.Context, symbol string, from, to time.Time) (series.Series, error) {
	points, err := l.store.GetDailyCloses(ctx, symbol, from, to)
	if err != nil {
		return series.Series{}, fmt.Errorf("Loader | reading closes from storage: %w", err)
	}

	if len(points) == 0 {
		if l.provider == nil {
			return series.Series{}, fmt.Errorf("Loader | no cached closes for %s and no provider configured", symbol)
		}
		log.Printf("Loader | No cached closes for %s, fetching from %s", symbol, l.provider.Name())

		points, err = l.provider.FetchDailyCloses(ctx, symbol, from, to)
		if err != nil {
			return series.Series{}, fmt.Errorf("Loader | fetching closes: %w", err)
		}
		if len(points) > 0 {
			if err := l.store.SaveDailyCloses(ctx, symbol, points); err != nil {
				return series.Series{}, fmt.Errorf("Loader | caching closes: %w", err)
			}
			log.Printf("Loader | Cached %d closes for %s", len(points), symbol)
		}
	}

	s := series.Series{Symbol: symbol, Points: points}
	s.Sort()
	if err := s.Validate(); err != nil {
		return series.Series{}, fmt.Errorf("Loader | invalid series for %s: %w", symbol, err)
	}
	return s, nil
}
