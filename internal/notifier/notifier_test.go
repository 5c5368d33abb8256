package notifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smacross/internal/backtest"
)

type fakeNotifier struct {
	failures int
	calls    int
}

func (f *fakeNotifier) Send(_ string) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("temporarily unavailable")
	}
	return nil
}

func TestSendWithRetry(t *testing.T) {
	n := &fakeNotifier{failures: 2}
	err := SendWithRetry(n, "hello", 3, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, n.calls)

	n = &fakeNotifier{failures: 5}
	err = SendWithRetry(n, "hello", 2, time.Millisecond)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Equal(t, 2, n.calls)
}

func TestFormatSummary(t *testing.T) {
	msg := FormatSummary(&backtest.Summary{
		Symbol: "TSLA",
		Params: backtest.Params{ShortWindow: 50, LongWindow: 200, InitialCapital: 100000},
		Strategy: backtest.Result{
			FinalValue:     123456.78,
			TotalReturnPct: 23.46,
			Trades:         make([]backtest.Trade, 4),
		},
		Benchmark: backtest.Benchmark{FinalValue: 110000, TotalReturnPct: 10},
	})

	assert.Contains(t, msg, "SMA Crossover (50/200) on TSLA")
	assert.Contains(t, msg, "123456.78 (+23.46%)")
	assert.Contains(t, msg, "4 trades")
	assert.Contains(t, msg, "110000.00 (+10.00%)")
}
