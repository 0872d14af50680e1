package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/ingestion"
	"strategy-validation-lab/internal/observability"
	"strategy-validation-lab/internal/reporting"
	"strategy-validation-lab/internal/storage"
	chstore "strategy-validation-lab/internal/storage/clickhouse"
	pgstore "strategy-validation-lab/internal/storage/postgres"
	"strategy-validation-lab/internal/strategy"
	"strategy-validation-lab/internal/validation"
)

func main() {
	// Data source
	csvPath := flag.String("csv", "", "Candle CSV file (timestamp_ms,open,high,low,close,volume)")
	referenceCSV := flag.String("reference-csv", "", "Reference series CSV for regime gating (default: the instrument itself)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (candle history)")
	instrument := flag.String("instrument", "", "Instrument identifier (required)")
	referenceInstrument := flag.String("reference-instrument", "", "Reference instrument in ClickHouse for regime gating")

	// Strategy
	strategyType := flag.String("strategy", "", "Strategy: MOMENTUM, BREAKOUT (required)")
	fastPeriod := flag.Int("fast-period", 20, "Fast MA period for MOMENTUM")
	slowPeriod := flag.Int("slow-period", 50, "Slow MA period for MOMENTUM")
	lookback := flag.Int("lookback", 55, "Lookback window for BREAKOUT")

	// Validation parameters
	testWindow := flag.Duration("test-window", 90*24*time.Hour, "Out-of-sample window per fold")
	step := flag.Duration("step", 90*24*time.Hour, "Fold start spacing")
	simulations := flag.Int("simulations", 1000, "Monte Carlo iterations")
	mode := flag.String("mode", "bootstrap", "Resample mode: shuffle, bootstrap")
	seed := flag.Int64("seed", 1, "RNG seed")
	initialCapital := flag.Float64("initial-capital", 10_000, "Starting equity")
	feeBps := flag.Float64("fee-bps", 10, "Per-side fee in basis points")
	slippageBps := flag.Float64("slippage-bps", 5, "Per-side slippage in basis points")
	timing := flag.String("timing", "next_open", "Execution timing: next_open, same_close")
	regimeFast := flag.Int("regime-fast-ma", 20, "Regime fast MA period")
	regimeSlow := flag.Int("regime-slow-ma", 50, "Regime slow MA period")
	regimeBuffer := flag.Float64("regime-buffer-pct", 0.02, "Regime hysteresis clearance")

	// Output
	outputDir := flag.String("output-dir", "docs", "Output directory for report files")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for persisting results")
	persist := flag.Bool("persist", false, "Persist run summary and out-of-sample trades to PostgreSQL")

	flag.Parse()

	logger := log.New(os.Stderr, "[validate] ", log.LstdFlags)

	if *instrument == "" {
		logger.Fatal("--instrument is required")
	}
	if *strategyType == "" {
		logger.Fatal("--strategy is required")
	}
	if *csvPath == "" && *clickhouseDSN == "" {
		logger.Fatal("one of --csv or --clickhouse-dsn is required")
	}
	if *persist && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required with --persist")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	cfg := domain.DefaultValidationConfig()
	cfg.TestWindow = *testWindow
	cfg.Step = *step
	cfg.Simulations = *simulations
	cfg.Mode = domain.ResampleMode(strings.ToLower(*mode))
	cfg.Seed = *seed
	cfg.InitialCapital = *initialCapital
	cfg.FeeBps = *feeBps
	cfg.SlippageBps = *slippageBps
	cfg.Timing = domain.ExecutionTiming(strings.ToLower(*timing))
	cfg.RegimeFastMA = *regimeFast
	cfg.RegimeSlowMA = *regimeSlow
	cfg.RegimeBufferPct = *regimeBuffer

	strat, err := strategy.FromConfig(strategy.Config{
		StrategyType: strings.ToUpper(*strategyType),
		FastPeriod:   fastPeriod,
		SlowPeriod:   slowPeriod,
		Lookback:     lookback,
	})
	if err != nil {
		logger.Fatalf("Invalid strategy config: %v", err)
	}

	series, reference, err := loadSeries(ctx, logger,
		*csvPath, *referenceCSV, *clickhouseDSN, *instrument, *referenceInstrument)
	if err != nil {
		logger.Fatalf("Load series: %v", err)
	}
	logger.Printf("Loaded %d bars for %s", series.Len(), series.Instrument)

	harness, err := validation.NewHarness(cfg, strat)
	if err != nil {
		logger.Fatalf("Invalid validation config: %v", err)
	}

	started := time.Now()
	result, err := harness.Run(ctx, series, reference)
	if err != nil {
		logger.Fatalf("Validation run: %v", err)
	}
	elapsed := time.Since(started)

	observability.RecordRunDuration(strat.ID(), elapsed.Seconds())
	observability.RecordFoldsEvaluated(result.Run.FoldCount)
	observability.RecordTradesSimulated(result.Run.TradeCount)
	observability.RecordMonteCarlo(string(cfg.Mode), result.MonteCarlo.Simulations,
		result.MonteCarlo.Excluded, elapsed.Seconds())
	if result.WalkForward.LowConfidence {
		observability.RecordLowConfidence("folds")
	}
	if result.MonteCarlo.LowConfidence {
		observability.RecordLowConfidence("trades")
	}

	logger.Printf("Run %s: %d folds, %d OOS trades, terminal mean %.4f [P5 %.4f, P95 %.4f] in %s",
		result.Run.RunID, result.Run.FoldCount, result.Run.TradeCount,
		result.Run.TerminalMean, result.Run.TerminalP5, result.Run.TerminalP95, elapsed)
	if result.WalkForward.LowConfidence {
		logger.Printf("WARNING: only %d folds (floor %d), fold statistics are low confidence",
			result.Run.FoldCount, cfg.MinFoldsFloor)
	}
	if result.MonteCarlo.LowConfidence {
		logger.Printf("WARNING: only %d out-of-sample trades (floor %d), resampled statistics are low confidence",
			result.Run.TradeCount, cfg.MinTradesFloor)
	}

	if err := writeReports(*outputDir, result); err != nil {
		logger.Fatalf("Write reports: %v", err)
	}
	observability.RecordReportGenerated()
	logger.Printf("Reports written to %s: VALIDATION_REPORT.md, FOLDS.csv, SIMULATIONS.csv", *outputDir)

	if *persist {
		if err := persistResult(ctx, *postgresDSN, result); err != nil {
			logger.Fatalf("Persist results: %v", err)
		}
		logger.Printf("Persisted run %s and %d trades", result.Run.RunID, len(result.WalkForward.OOSTrades))
	}
}

// loadSeries reads the instrument series and the regime reference
// series from CSV files or ClickHouse. A nil reference means the
// harness gates on the instrument itself.
func loadSeries(ctx context.Context, logger *log.Logger,
	csvPath, referenceCSV, clickhouseDSN, instrument, referenceInstrument string,
) (*domain.Series, *domain.Series, error) {
	if csvPath != "" {
		series, err := ingestion.LoadCandlesCSV(csvPath, instrument)
		if err != nil {
			return nil, nil, err
		}
		var reference *domain.Series
		if referenceCSV != "" {
			reference, err = ingestion.LoadCandlesCSV(referenceCSV, "REFERENCE")
			if err != nil {
				return nil, nil, err
			}
		}
		return series, reference, nil
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Printf("Close clickhouse: %v", err)
		}
	}()

	candleStore := chstore.NewCandleStore(conn)
	series, err := candleStore.GetSeries(ctx, instrument)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", instrument, err)
	}
	var reference *domain.Series
	if referenceInstrument != "" {
		reference, err = candleStore.GetSeries(ctx, referenceInstrument)
		if err != nil {
			return nil, nil, fmt.Errorf("load reference %s: %w", referenceInstrument, err)
		}
	}
	return series, reference, nil
}

// writeReports renders the Markdown report plus the per-fold and
// per-simulation CSV dumps.
func writeReports(outputDir string, result *validation.Report) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	gen := reporting.NewGenerator(nil)
	report := gen.BuildRunReport(result)

	files := map[string]string{
		"VALIDATION_REPORT.md": reporting.RenderMarkdown(report),
		"FOLDS.csv":            reporting.RenderFoldsCSV(report.Folds),
		"SIMULATIONS.csv":      reporting.RenderSimulationsCSV(report.MonteCarlo.Terminals),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outputDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// persistResult stores the run summary and its out-of-sample trades.
func persistResult(ctx context.Context, postgresDSN string, result *validation.Report) error {
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	var runStore storage.ValidationRunStore = pgstore.NewRunStore(pool)
	if err := runStore.Insert(ctx, &result.Run); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	var tradeStore storage.TradeStore = pgstore.NewTradeStore(pool)
	if len(result.WalkForward.OOSTrades) > 0 {
		if err := tradeStore.InsertBulk(ctx, result.WalkForward.OOSTrades); err != nil {
			return fmt.Errorf("insert trades: %w", err)
		}
	}
	return nil
}
