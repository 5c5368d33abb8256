// Package indicator
package indicator

import (
	"fmt"
	"math"
)

// SMA computes the simple moving average of values over a trailing window.
// The result has the same length as the input; entries before index
// window-1 are NaN because the window is not yet full. Partial windows are
// never averaged.
func SMA(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, fmt.Errorf("sma: window must be positive, got %d", window)
	}
	if len(values) < window {
		return nil, fmt.Errorf("sma: need at least %d values, got %d", window, len(values))
	}

	out := make([]float64, len(values))
	for i := 0; i < window-1; i++ {
		out[i] = math.NaN()
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out, nil
}
