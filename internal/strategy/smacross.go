package strategy

import (
	"fmt"
	"math"

	"smacross/internal/indicator"
)

// SMACross is the simple moving average crossover strategy: go long when
// the short-window SMA rises above the long-window SMA, go flat when it
// falls below.
type SMACross struct {
	ShortWindow int
	LongWindow  int
}

// NewSMACross creates an SMACross after validating the window sizes.
func NewSMACross(short, long int) (*SMACross, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("sma windows must be positive, got short=%d long=%d", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("short window must be smaller than long window, got short=%d long=%d", short, long)
	}
	return &SMACross{ShortWindow: short, LongWindow: long}, nil
}

// Name returns the strategy name.
func (s *SMACross) Name() string { return "SMA Crossover" }

// Signals computes the per-index signal level and the crossover events for
// a closing-price sequence. The slice of signals has the same length as
// closes; indices where either SMA is undefined are Flat.
func (s *SMACross) Signals(closes []float64) ([]Signal, []Cross, error) {
	shortSMA, err := indicator.SMA(closes, s.ShortWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("short sma: %w", err)
	}
	longSMA, err := indicator.SMA(closes, s.LongWindow)
	if err != nil {
		return nil, nil, fmt.Errorf("long sma: %w", err)
	}
	signals, crosses := Crossings(shortSMA, longSMA)
	return signals, crosses, nil
}

// Crossings derives signal levels and transition events from two aligned
// SMA sequences. A cross is emitted only where the relative order of the
// SMAs changes versus the previous defined index; the first defined index
// establishes the level without emitting an event.
func Crossings(shortSMA, longSMA []float64) ([]Signal, []Cross) {
	signals := make([]Signal, len(shortSMA))
	var crosses []Cross

	prev := Flat
	prevDefined := false
	for i := range shortSMA {
		if math.IsNaN(shortSMA[i]) || math.IsNaN(longSMA[i]) {
			signals[i] = Flat
			continue
		}

		level := Flat
		if shortSMA[i] > longSMA[i] {
			level = Long
		}
		signals[i] = level

		if prevDefined && level != prev {
			if level == Long {
				crosses = append(crosses, Cross{Index: i, Type: GoldenCross})
			} else {
				crosses = append(crosses, Cross{Index: i, Type: DeathCross})
			}
		}
		prev = level
		prevDefined = true
	}
	return signals, crosses
}
