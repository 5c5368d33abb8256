package pricefeed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	wallex "github.com/wallexchange/wallex-go"

	"smacross/internal/series"
)

// Wallex daily candle resolution.
const wallexDailyResolution = "1D"

// WallexProvider fetches daily candles from the Wallex public API and keeps
// only the closes.
type WallexProvider struct {
	client *wallex.Client
}

func NewWallexProvider(apiKey string) *WallexProvider {
	return &WallexProvider{
		client: wallex.New(wallex.ClientOptions{APIKey: apiKey}),
	}
}

func (w *WallexProvider) Name() string { return "wallex" }

// retry wraps a function with retry logic for transient errors, using
// exponential backoff and error logging.
func retry(attempts int, delay time.Duration, fn func() error) error {
	backoff := delay
	for i := 1; i <= attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		log.Printf("Pricefeed | wallex retry attempt %d/%d failed: %v. Backing off for %v", i, attempts, err, backoff)
		time.Sleep(backoff)
		if backoff < time.Minute {
			backoff *= 2
		}
	}
	return errors.New("all retry attempts failed")
}

func (w *WallexProvider) FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]series.PricePoint, error) {
	var candles []*wallex.Candle

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		err := retry(3, 2*time.Second, func() error {
			var err error
			candles, err = w.client.Candles(NormalizeSymbol(symbol), wallexDailyResolution, from, to)
			if err != nil {
				return fmt.Errorf("fetching candles: %w", err)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("FetchDailyCloses failed: %w", err)
		}
	}

	var points []series.PricePoint
	for _, c := range candles {
		close, err := strconv.ParseFloat(string(c.Close), 64)
		if err != nil || close <= 0 {
			// Skip unusable candles rather than poisoning the series.
			continue
		}
		points = append(points, series.PricePoint{
			Date:  c.Timestamp.UTC().Truncate(24 * time.Hour),
			Close: close,
		})
	}
	return points, nil
}

// NormalizeSymbol converts e.g. btc-usdt to BTCUSDT for the Wallex API.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", "/", "").Replace(symbol))
}
