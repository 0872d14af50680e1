package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/ingestion"
	"strategy-validation-lab/internal/observability"
	"strategy-validation-lab/internal/storage"
	chstore "strategy-validation-lab/internal/storage/clickhouse"
	"strategy-validation-lab/internal/storage/migrations"
)

func main() {
	mode := flag.String("mode", "csv", "Ingestion mode: csv or live")
	csvPath := flag.String("csv", "", "Candle CSV file for csv mode")
	instrument := flag.String("instrument", "", "Instrument identifier (required for csv mode)")
	wsEndpoint := flag.String("ws-endpoint", "", "Kline WebSocket endpoint for live mode")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	batchSize := flag.Int("batch-size", 1000, "Candles per insert batch in csv mode")
	migrate := flag.Bool("migrate", false, "Run ClickHouse migrations before ingesting")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
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

	var conn *chstore.Conn
	var err error
	if *migrate {
		// The migration runner bootstraps the database and hands back a
		// connection bound to it.
		conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Run migrations: %v", err)
		}
		logger.Println("ClickHouse migrations applied")
	} else {
		conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("Connect to clickhouse: %v", err)
		}
	}
	defer conn.Close()

	store := chstore.NewCandleStore(conn)

	switch *mode {
	case "csv":
		if *csvPath == "" || *instrument == "" {
			logger.Fatal("--csv and --instrument are required in csv mode")
		}
		if err := runCSV(ctx, logger, store, *csvPath, *instrument, *batchSize); err != nil {
			logger.Fatalf("CSV ingestion: %v", err)
		}
	case "live":
		if *wsEndpoint == "" {
			logger.Fatal("--ws-endpoint is required in live mode")
		}
		if err := runLive(ctx, logger, store, *wsEndpoint); err != nil {
			logger.Fatalf("Live ingestion: %v", err)
		}
	default:
		logger.Fatalf("Unknown mode %q. Must be csv or live", *mode)
	}
}

// runCSV loads one CSV file and writes it in batches.
func runCSV(ctx context.Context, logger *log.Logger, store storage.CandleStore,
	path, instrument string, batchSize int,
) error {
	series, err := ingestion.LoadCandlesCSV(path, instrument)
	if err != nil {
		return err
	}
	logger.Printf("Loaded %d candles for %s from %s", series.Len(), instrument, path)

	written, err := ingestion.IngestSeries(ctx, store, series, batchSize)
	observability.RecordCandlesIngested(instrument, "csv", written)
	if err != nil {
		return err
	}
	logger.Printf("Wrote %d candles", written)
	return nil
}

// runLive consumes the kline feed until the context is cancelled,
// writing each closed bar as it arrives.
func runLive(ctx context.Context, logger *log.Logger, store storage.CandleStore, endpoint string) error {
	client, err := ingestion.NewFeedClient(ctx, endpoint, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Printf("Consuming kline feed %s", endpoint)
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, open := <-client.Candles():
			if !open {
				return nil
			}
			if err := store.InsertBulk(ctx, []*domain.Candle{&c}); err != nil {
				// Duplicates happen on reconnect replays; drop and move on.
				logger.Printf("Insert %s@%d: %v", c.Instrument, c.TimestampMs, err)
				observability.RecordCandleRejected(c.Instrument, "insert_error")
				continue
			}
			observability.RecordCandlesIngested(c.Instrument, "ws", 1)
			observability.DefaultMetrics.FeedLastCandleMs.Set(float64(c.TimestampMs))
		}
	}
}
