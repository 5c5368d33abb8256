// Package series
package series

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrEmptySeries is returned when a price series contains no points.
var ErrEmptySeries = errors.New("price series is empty")

// PricePoint is one daily closing price.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Series is an ordered sequence of daily closes for a single symbol.
// Dates are strictly increasing; absent trading days are simply absent.
type Series struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of price points.
func (s Series) Len() int { return len(s.Points) }

// Closes returns the closing prices in date order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Sort orders the points by date ascending.
func (s *Series) Sort() {
	sort.Slice(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
}

// Validate checks the series invariants: at least one point, positive
// closes, strictly increasing dates.
func (s Series) Validate() error {
	if len(s.Points) == 0 {
		return ErrEmptySeries
	}
	for i, p := range s.Points {
		if p.Date.IsZero() {
			return fmt.Errorf("point %d: date is zero", i)
		}
		if p.Close <= 0 {
			return fmt.Errorf("point %d (%s): close must be positive, got %v",
				i, p.Date.Format("2006-01-02"), p.Close)
		}
		if i > 0 && !s.Points[i-1].Date.Before(p.Date) {
			return fmt.Errorf("point %d (%s): dates must be strictly increasing",
				i, p.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Truncate returns a copy of the series containing only points up to and
// including index k.
func (s Series) Truncate(k int) Series {
	if k >= len(s.Points)-1 {
		return s
	}
	out := Series{Symbol: s.Symbol, Points: make([]PricePoint, k+1)}
	copy(out.Points, s.Points[:k+1])
	return out
}
