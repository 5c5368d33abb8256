package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		window   int
		expected []float64
	}{
		{
			name:   "window 2",
			values: []float64{10, 10, 10, 10, 10, 12, 14, 16, 9, 8},
			window: 2,
			expected: []float64{
				math.NaN(),
				10, 10, 10, 10, 11, 13, 15, 12.5, 8.5,
			},
		},
		{
			name:   "window 4",
			values: []float64{10, 10, 10, 10, 10, 12, 14, 16, 9, 8},
			window: 4,
			expected: []float64{
				math.NaN(), math.NaN(), math.NaN(),
				10, 10, 10.5, 11.5, 13, 12.75, 11.75,
			},
		},
		{
			name:     "window 1 is identity",
			values:   []float64{3, 1, 4, 1, 5},
			window:   1,
			expected: []float64{3, 1, 4, 1, 5},
		},
		{
			name:     "window equals length",
			values:   []float64{2, 4, 6},
			window:   3,
			expected: []float64{math.NaN(), math.NaN(), 4},
		},
		{
			name:     "flat values",
			values:   []float64{7, 7, 7, 7},
			window:   3,
			expected: []float64{math.NaN(), math.NaN(), 7, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := SMA(tt.values, tt.window)
			assert.NoError(t, err)
			assert.Equal(t, len(tt.expected), len(result))
			for i := range tt.expected {
				if math.IsNaN(tt.expected[i]) {
					assert.True(t, math.IsNaN(result[i]), "index %d should be NaN", i)
				} else {
					assert.InDelta(t, tt.expected[i], result[i], 1e-9, "index %d", i)
				}
			}
		})
	}
}

func TestSMAErrors(t *testing.T) {
	_, err := SMA([]float64{1, 2, 3}, 0)
	assert.ErrorContains(t, err, "window must be positive")

	_, err = SMA([]float64{1, 2, 3}, -2)
	assert.ErrorContains(t, err, "window must be positive")

	_, err = SMA([]float64{1, 2, 3}, 4)
	assert.ErrorContains(t, err, "need at least 4 values")
}

// Two windows computed over the same slice must not affect each other.
func TestSMAIndependentWindows(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10, 12, 14, 16, 9, 8}

	short1, err := SMA(values, 2)
	assert.NoError(t, err)
	long, err := SMA(values, 4)
	assert.NoError(t, err)
	short2, err := SMA(values, 2)
	assert.NoError(t, err)

	for i := range short1 {
		if math.IsNaN(short1[i]) {
			assert.True(t, math.IsNaN(short2[i]))
			continue
		}
		assert.Equal(t, short1[i], short2[i], "index %d", i)
	}
	assert.InDelta(t, 11.5, long[6], 1e-9)
}
