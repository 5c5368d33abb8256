package notifier

import (
	"fmt"
	"log"
	"time"

	"smacross/internal/backtest"
)

// Notifier delivers a plain-text message to an external channel.
type Notifier interface {
	Send(message string) error
}

// SendWithRetry attempts delivery up to attempts times, waiting delay
// between tries.
func SendWithRetry(n Notifier, message string, attempts int, delay time.Duration) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = n.Send(message); err == nil {
			return nil
		}
		log.Printf("Notifier | send attempt %d/%d failed: %v", i, attempts, err)
		if i < attempts {
			time.Sleep(delay)
		}
	}
	return fmt.Errorf("notification failed after %d attempts: %w", attempts, err)
}

// FormatSummary renders a run summary as a short notification message.
func FormatSummary(sum *backtest.Summary) string {
	return fmt.Sprintf(
		"SMA Crossover (%d/%d) on %s\nStrategy: %.2f (%+.2f%%), %d trades\nBuy & Hold: %.2f (%+.2f%%)",
		sum.Params.ShortWindow, sum.Params.LongWindow, sum.Symbol,
		sum.Strategy.FinalValue, sum.Strategy.TotalReturnPct, len(sum.Strategy.Trades),
		sum.Benchmark.FinalValue, sum.Benchmark.TotalReturnPct,
	)
}
