package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"strategy-validation-lab/internal/observability"
	"strategy-validation-lab/internal/reporting"
	"strategy-validation-lab/internal/storage/migrations"
	pgstore "strategy-validation-lab/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	migrate := flag.Bool("migrate", false, "Run PostgreSQL migrations before reading")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Run migrations: %v", err)
		}
		logger.Println("PostgreSQL migrations applied")
	}

	gen := reporting.NewGenerator(pgstore.NewRunStore(pool))
	report, err := gen.Generate(ctx)
	if err != nil {
		logger.Fatalf("Generate report: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("Create output dir: %v", err)
	}

	files := map[string]string{
		"RUNS_SUMMARY.md": reporting.RenderSummaryMarkdown(report),
		"RUNS.csv":        reporting.RenderRunsCSV(report.Runs),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(*outputDir, name), []byte(content), 0o644); err != nil {
			logger.Fatalf("Write %s: %v", name, err)
		}
	}
	observability.RecordReportGenerated()

	fmt.Printf("Report generated for %d runs:\n", report.RunCount)
	fmt.Printf("  - %s/RUNS_SUMMARY.md\n", *outputDir)
	fmt.Printf("  - %s/RUNS.csv\n", *outputDir)
}
