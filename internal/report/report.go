// Package report renders the simulation output: console tables for the
// strategy-versus-benchmark summary and the trade log, plus CSV exports of
// the equity curve and trades for external charting.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"

	"smacross/internal/backtest"
)

// Reporter writes human-readable output to out and CSV files to outDir.
type Reporter struct {
	out    io.Writer
	outDir string
}

func New(out io.Writer, outDir string) *Reporter {
	return &Reporter{out: out, outDir: outDir}
}

// PrintSummary renders the performance comparison table.
func (r *Reporter) PrintSummary(sum *backtest.Summary) {
	fmt.Fprintf(r.out, "\nSMA Crossover (%d/%d) on %s, initial capital %.2f\n",
		sum.Params.ShortWindow, sum.Params.LongWindow, sum.Symbol, sum.Params.InitialCapital)

	table := tablewriter.NewWriter(r.out)
	table.Header("", "Final Value", "Total Return", "Trades")
	table.Append(
		"Strategy",
		fmt.Sprintf("%.2f", sum.Strategy.FinalValue),
		fmt.Sprintf("%+.2f%%", sum.Strategy.TotalReturnPct),
		fmt.Sprintf("%d", len(sum.Strategy.Trades)),
	)
	table.Append(
		"Buy & Hold",
		fmt.Sprintf("%.2f", sum.Benchmark.FinalValue),
		fmt.Sprintf("%+.2f%%", sum.Benchmark.TotalReturnPct),
		"1",
	)
	table.Render()
}

// PrintTrades renders the trade audit log.
func (r *Reporter) PrintTrades(trades []backtest.Trade) {
	if len(trades) == 0 {
		fmt.Fprintln(r.out, "No trades executed.")
		return
	}

	table := tablewriter.NewWriter(r.out)
	table.Header("#", "Date", "Action", "Price", "Shares")
	for i, t := range trades {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Date.Format("2006-01-02"),
			string(t.Action),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%d", t.Shares),
		)
	}
	table.Render()
}

// ExportCSV writes the equity curve and trade log as CSV files and returns
// their paths.
func (r *Reporter) ExportCSV(sum *backtest.Summary) ([]string, error) {
	equityRows := [][]string{{"date", "portfolio_value"}}
	for _, pt := range sum.Strategy.EquityCurve {
		equityRows = append(equityRows, []string{
			pt.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", pt.Value),
		})
	}

	tradeRows := [][]string{{"date", "action", "price", "shares"}}
	for _, t := range sum.Strategy.Trades {
		tradeRows = append(tradeRows, []string{
			t.Date.Format("2006-01-02"),
			string(t.Action),
			fmt.Sprintf("%.2f", t.Price),
			fmt.Sprintf("%d", t.Shares),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	equityPath := filepath.Join(r.outDir, fmt.Sprintf("%s_%s_equity.csv", sum.Symbol, stamp))
	tradesPath := filepath.Join(r.outDir, fmt.Sprintf("%s_%s_trades.csv", sum.Symbol, stamp))

	if err := saveCSV(equityPath, equityRows); err != nil {
		return nil, err
	}
	if err := saveCSV(tradesPath, tradeRows); err != nil {
		return nil, err
	}
	return []string{equityPath, tradesPath}, nil
}

// saveCSV saves data to a CSV file.
func saveCSV(filename string, rows [][]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", filename, err)
		}
	}

	log.Printf("Report | Saved %s", filename)
	return nil
}
