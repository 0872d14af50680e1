package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/ingestion"
	"strategy-validation-lab/internal/observability"
	"strategy-validation-lab/internal/regime"
	"strategy-validation-lab/internal/simulation"
	chstore "strategy-validation-lab/internal/storage/clickhouse"
	pgstore "strategy-validation-lab/internal/storage/postgres"
	"strategy-validation-lab/internal/strategy"
)

func main() {
	// Data source
	csvPath := flag.String("csv", "", "Candle CSV file (timestamp_ms,open,high,low,close,volume)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (candle history)")
	instrument := flag.String("instrument", "", "Instrument identifier (required)")

	// Strategy
	strategyType := flag.String("strategy", "", "Strategy: MOMENTUM, BREAKOUT (required)")
	fastPeriod := flag.Int("fast-period", 20, "Fast MA period for MOMENTUM")
	slowPeriod := flag.Int("slow-period", 50, "Slow MA period for MOMENTUM")
	lookback := flag.Int("lookback", 55, "Lookback window for BREAKOUT")

	// Simulation parameters
	initialCapital := flag.Float64("initial-capital", 10_000, "Starting equity")
	feeBps := flag.Float64("fee-bps", 10, "Per-side fee in basis points")
	slippageBps := flag.Float64("slippage-bps", 5, "Per-side slippage in basis points")
	timing := flag.String("timing", "next_open", "Execution timing: next_open, same_close")

	// Regime gating
	gated := flag.Bool("regime-gating", false, "Scale entries by the instrument's own regime")
	regimeFast := flag.Int("regime-fast-ma", 20, "Regime fast MA period")
	regimeSlow := flag.Int("regime-slow-ma", 50, "Regime slow MA period")
	regimeBuffer := flag.Float64("regime-buffer-pct", 0.02, "Regime hysteresis clearance")

	// Output
	outputJSON := flag.Bool("json", false, "Output trade ledger as JSON")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for persisting trades")
	persist := flag.Bool("persist", false, "Persist the trade ledger to PostgreSQL")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

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
	cfg.InitialCapital = *initialCapital
	cfg.FeeBps = *feeBps
	cfg.SlippageBps = *slippageBps
	cfg.Timing = domain.ExecutionTiming(strings.ToLower(*timing))
	cfg.RegimeFastMA = *regimeFast
	cfg.RegimeSlowMA = *regimeSlow
	cfg.RegimeBufferPct = *regimeBuffer
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	strat, err := strategy.FromConfig(strategy.Config{
		StrategyType: strings.ToUpper(*strategyType),
		FastPeriod:   fastPeriod,
		SlowPeriod:   slowPeriod,
		Lookback:     lookback,
	})
	if err != nil {
		logger.Fatalf("Invalid strategy config: %v", err)
	}

	series, err := loadSeries(ctx, logger, *csvPath, *clickhouseDSN, *instrument)
	if err != nil {
		logger.Fatalf("Load series: %v", err)
	}
	logger.Printf("Loaded %d bars for %s", series.Len(), series.Instrument)

	var regimes []domain.Regime
	if *gated {
		regimes, err = regime.ClassifySeries(regime.Config{
			FastPeriod: cfg.RegimeFastMA,
			SlowPeriod: cfg.RegimeSlowMA,
			BufferPct:  cfg.RegimeBufferPct,
		}, series)
		if err != nil {
			logger.Fatalf("Classify regimes: %v", err)
		}
	}

	sim := simulation.NewSimulator(cfg, strat, regimes)
	result, err := sim.Run(ctx, series, 0, series.Len())
	if err != nil {
		logger.Fatalf("Simulation: %v", err)
	}
	observability.RecordTradesSimulated(len(result.Trades))

	terminal := cfg.InitialCapital
	if n := len(result.Equity.Points); n > 0 {
		terminal = result.Equity.Points[n-1].Equity
	}
	logger.Printf("Simulated %d bars: %d trades, terminal equity %.2f (%.4fx)",
		result.BarCount, len(result.Trades), terminal, terminal/cfg.InitialCapital)

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Trades); err != nil {
			logger.Fatalf("Encode trades: %v", err)
		}
	} else {
		for _, t := range result.Trades {
			fmt.Printf("%s %d -> %d entry %.4f exit %.4f size %.6f pnl %.4f (%.4f%%) %s\n",
				t.Instrument, t.EntryTime, t.ExitTime,
				t.EntryPrice, t.ExitPrice, t.Size, t.PnL, t.ReturnPct*100, t.ExitReason)
		}
	}

	if *persist && len(result.Trades) > 0 {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("Connect to postgres: %v", err)
		}
		defer pool.Close()

		if err := pgstore.NewTradeStore(pool).InsertBulk(ctx, result.Trades); err != nil {
			logger.Fatalf("Persist trades: %v", err)
		}
		logger.Printf("Persisted %d trades", len(result.Trades))
	}
}

func loadSeries(ctx context.Context, logger *log.Logger, csvPath, clickhouseDSN, instrument string) (*domain.Series, error) {
	if csvPath != "" {
		return ingestion.LoadCandlesCSV(csvPath, instrument)
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Printf("Close clickhouse: %v", err)
		}
	}()

	return chstore.NewCandleStore(conn).GetSeries(ctx, instrument)
}
