package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smacross/internal/backtest"
)

func sampleSummary() *backtest.Summary {
	base := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	return &backtest.Summary{
		Symbol: "TSLA",
		Params: backtest.Params{ShortWindow: 2, LongWindow: 4, InitialCapital: 100},
		Strategy: backtest.Result{
			FinalValue:     76,
			TotalReturnPct: -24,
			Trades: []backtest.Trade{
				{Date: base.AddDate(0, 0, 5), Action: backtest.ActionBuy, Price: 12, Shares: 8},
				{Date: base.AddDate(0, 0, 8), Action: backtest.ActionSell, Price: 9, Shares: 8},
			},
			EquityCurve: []backtest.EquityPoint{
				{Date: base, Value: 100},
				{Date: base.AddDate(0, 0, 1), Value: 116},
				{Date: base.AddDate(0, 0, 2), Value: 76},
			},
		},
		Benchmark: backtest.Benchmark{FinalValue: 80, TotalReturnPct: -20},
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, t.TempDir()).PrintSummary(sampleSummary())

	out := buf.String()
	assert.Contains(t, out, "SMA Crossover (2/4) on TSLA")
	assert.Contains(t, out, "76.00")
	assert.Contains(t, out, "-24.00%")
	assert.Contains(t, out, "80.00")
	assert.Contains(t, out, "-20.00%")
	assert.Contains(t, out, "Buy & Hold")
}

func TestPrintTrades(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, t.TempDir())

	r.PrintTrades(sampleSummary().Strategy.Trades)
	out := buf.String()
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "2023-01-07")
	assert.Contains(t, out, "12.00")

	buf.Reset()
	r.PrintTrades(nil)
	assert.Contains(t, buf.String(), "No trades executed.")
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	paths, err := New(&buf, dir).ExportCSV(sampleSummary())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	f, err := os.Open(paths[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 equity points
	assert.Equal(t, []string{"date", "portfolio_value"}, rows[0])
	assert.Equal(t, []string{"2023-01-02", "100.00"}, rows[1])

	f2, err := os.Open(paths[1])
	require.NoError(t, err)
	defer f2.Close()
	rows, err = csv.NewReader(f2).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 trades
	assert.Equal(t, []string{"2023-01-07", "BUY", "12.00", "8"}, rows[1])
}
