package pricefeed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "closes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVProvider(t *testing.T) {
	path := writeCSV(t, "date,close\n2023-01-02,10\n2023-01-03,10.5\n2023-01-04,11\n")
	p := NewCSVProvider(path)

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	points, err := p.FetchDailyCloses(context.Background(), "TSLA", from, to)
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), points[0].Date)
	assert.Equal(t, 10.0, points[0].Close)
	assert.Equal(t, 11.0, points[2].Close)
}

func TestCSVProviderNoHeader(t *testing.T) {
	path := writeCSV(t, "2023-01-02,10\n2023-01-03,10.5\n")
	p := NewCSVProvider(path)

	points, err := p.FetchDailyCloses(context.Background(), "TSLA",
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestCSVProviderRangeFilter(t *testing.T) {
	path := writeCSV(t, "2023-01-02,10\n2023-01-03,10.5\n2023-01-04,11\n")
	p := NewCSVProvider(path)

	points, err := p.FetchDailyCloses(context.Background(), "TSLA",
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 10.5, points[0].Close)
}

func TestCSVProviderErrors(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	_, err := NewCSVProvider(filepath.Join(t.TempDir(), "missing.csv")).FetchDailyCloses(ctx, "TSLA", from, to)
	assert.Error(t, err)

	_, err = NewCSVProvider(writeCSV(t, "2023-13-45,10\n")).FetchDailyCloses(ctx, "TSLA", from, to)
	assert.ErrorContains(t, err, "bad date")

	_, err = NewCSVProvider(writeCSV(t, "2023-01-02,ten\n")).FetchDailyCloses(ctx, "TSLA", from, to)
	assert.ErrorContains(t, err, "bad close")
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSDT", NormalizeSymbol("btc-usdt"))
	assert.Equal(t, "ETHIRT", NormalizeSymbol("ETH/IRT"))
	assert.Equal(t, "TSLA", NormalizeSymbol("tsla"))
}
