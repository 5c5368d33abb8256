// Package pricefeed supplies daily closing prices for a symbol over a date
// range. The simulation core consumes the result as an in-memory series and
// does not care where it came from.
package pricefeed

import (
	"context"
	"time"

	"smacross/internal/series"
)

// Provider fetches daily closes from some origin (remote API, file).
type Provider interface {
	Name() string
	FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error)
}
