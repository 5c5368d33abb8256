package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smacross/internal/backtest"
	"smacross/internal/config"
	"smacross/internal/db"
	"smacross/internal/journal"
	"smacross/internal/notifier"
	"smacross/internal/pricefeed"
	"smacross/internal/report"
)

func main() {
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.DBConnStr
	if cfg.DBDriver == "sqlite" {
		dsn = cfg.DBPath
	}
	storage, err := db.New(cfg.DBDriver, dsn)
	if err != nil {
		log.Fatalf("main | Failed to open storage: %v", err)
	}
	defer storage.Close()

	var provider pricefeed.Provider
	switch cfg.Source {
	case "csv":
		provider = pricefeed.NewCSVProvider(cfg.CSVPath)
	case "wallex":
		provider = pricefeed.NewWallexProvider(cfg.WallexAPIKey)
	}

	// All blocking I/O happens before the simulation starts.
	fetchCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	series, err := pricefeed.NewLoader(storage, provider).Load(fetchCtx, cfg.Symbol, cfg.From, cfg.To)
	cancel()
	if err != nil {
		log.Fatalf("main | Failed to load price series: %v", err)
	}
	log.Printf("main | Loaded %d daily closes for %s [%s - %s]",
		series.Len(), cfg.Symbol, cfg.From.Format("2006-01-02"), cfg.To.Format("2006-01-02"))

	params := backtest.Params{
		ShortWindow:    cfg.ShortWindow,
		LongWindow:     cfg.LongWindow,
		InitialCapital: cfg.InitialCapital,
	}

	logEvent(ctx, storage, journal.Event{
		Type:        journal.TypeRunStarted,
		Description: cfg.Symbol,
		Data: map[string]any{
			"short_window":    params.ShortWindow,
			"long_window":     params.LongWindow,
			"initial_capital": params.InitialCapital,
		},
	})

	result, err := backtest.Run(series, params)
	if err != nil {
		logEvent(ctx, storage, journal.Event{Type: journal.TypeError, Description: err.Error()})
		log.Fatalf("main | Backtest failed: %v", err)
	}
	benchmark, err := backtest.BuyAndHold(series, cfg.InitialCapital)
	if err != nil {
		log.Fatalf("main | Benchmark failed: %v", err)
	}

	sum := &backtest.Summary{
		Symbol:    cfg.Symbol,
		Params:    params,
		Strategy:  *result,
		Benchmark: *benchmark,
	}

	for _, t := range result.Trades {
		logEvent(ctx, storage, journal.Event{
			Time:        t.Date,
			Type:        journal.TypeTrade,
			Description: string(t.Action),
			Data:        map[string]any{"price": t.Price, "shares": t.Shares},
		})
	}
	logEvent(ctx, storage, journal.Event{
		Type:        journal.TypeRunFinished,
		Description: cfg.Symbol,
		Data: map[string]any{
			"final_value":      result.FinalValue,
			"total_return_pct": result.TotalReturnPct,
		},
	})

	runID, err := storage.SaveRun(ctx, db.Run{
		Symbol:         cfg.Symbol,
		ShortWindow:    params.ShortWindow,
		LongWindow:     params.LongWindow,
		InitialCapital: params.InitialCapital,
		FinalValue:     result.FinalValue,
		TotalReturnPct: result.TotalReturnPct,
		BenchmarkValue: benchmark.FinalValue,
		BenchmarkPct:   benchmark.TotalReturnPct,
	}, result.Trades)
	if err != nil {
		log.Printf("main | Failed to persist run: %v", err)
	} else {
		log.Printf("main | Saved run %d", runID)
	}

	reporter := report.New(os.Stdout, cfg.OutDir)
	reporter.PrintSummary(sum)
	reporter.PrintTrades(result.Trades)
	if _, err := reporter.ExportCSV(sum); err != nil {
		log.Printf("main | CSV export failed: %v", err)
	}

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		tg := notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err := notifier.SendWithRetry(tg, notifier.FormatSummary(sum), cfg.NotificationRetries, cfg.NotificationDelay); err != nil {
			log.Printf("main | %v", err)
		}
	}
}

func logEvent(ctx context.Context, j journal.Journaler, e journal.Event) {
	if err := j.LogEvent(ctx, e); err != nil {
		log.Printf("main | Failed to journal event %q: %v", e.Type, err)
	}
}
