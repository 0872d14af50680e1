package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage/memory"
	"strategy-validation-lab/internal/validation"
)

func testValidationReport() *validation.Report {
	return &validation.Report{
		Run: domain.ValidationRun{
			RunID:      "abc123",
			Instrument: "BTCUSDT",
			StrategyID: "MOMENTUM_20_50",
			Mode:       "bootstrap",
			CreatedAt:  1700000000000,
		},
		WalkForward: &validation.WalkForwardReport{
			Folds: []validation.FoldResult{
				{
					Fold:        domain.Fold{Number: 1, TrainStart: 0, TrainEnd: 90, TestStart: 90, TestEnd: 180},
					Return:      0.05,
					MaxDrawdown: 0.02,
					Trades:      12,
					WinRate:     0.5833,
				},
				{
					Fold:        domain.Fold{Number: 2, TrainStart: 0, TrainEnd: 180, TestStart: 180, TestEnd: 270},
					Return:      -0.01,
					MaxDrawdown: 0.04,
					Trades:      9,
					WinRate:     0.4444,
				},
			},
			Mean:          0.02,
			Median:        0.02,
			Stddev:        0.0424,
			FoldWinRate:   0.5,
			TradeCount:    21,
			LowConfidence: true,
		},
		MonteCarlo: &validation.MonteCarloResult{
			Simulations:   1000,
			Included:      998,
			Excluded:      2,
			Mean:          1.04,
			Median:        1.03,
			Stddev:        0.11,
			P5:            0.88,
			P25:           0.97,
			P50:           1.03,
			P75:           1.11,
			P95:           1.23,
			ProbProfit:    0.61,
			RiskOfRuin:    0.03,
			Terminals:     []float64{1.04, 0.98, 1.12},
			LowConfidence: true,
		},
	}
}

func TestBuildRunReport(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(nil).WithClock(func() time.Time { return fixed })

	r := gen.BuildRunReport(testValidationReport())

	if !r.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", r.GeneratedAt, fixed)
	}
	if r.RunID != "abc123" || r.Instrument != "BTCUSDT" || r.StrategyID != "MOMENTUM_20_50" {
		t.Errorf("identity fields not carried: %+v", r)
	}
	if len(r.Folds) != 2 {
		t.Fatalf("len(Folds) = %d, want 2", len(r.Folds))
	}
	if r.Folds[0].TrainBars != 90 || r.Folds[1].TrainBars != 180 {
		t.Errorf("TrainBars = %d, %d; want 90, 180", r.Folds[0].TrainBars, r.Folds[1].TrainBars)
	}
	if !r.FoldsLowConf || !r.MonteCarlo.TradesLowConf {
		t.Error("low-confidence flags not carried")
	}
	if len(r.MonteCarlo.Terminals) != 3 {
		t.Errorf("len(Terminals) = %d, want 3", len(r.MonteCarlo.Terminals))
	}
}

func TestRenderMarkdownRun(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(nil).WithClock(func() time.Time { return fixed })
	md := RenderMarkdown(gen.BuildRunReport(testValidationReport()))

	for _, want := range []string{
		"# Validation Report",
		"2025-06-01T12:00:00Z",
		"| Run ID | abc123 |",
		"| Instrument | BTCUSDT |",
		"| 1 | 90 | [90, 180) |",
		"(n=2 folds)",
		"included 998, excluded 2 degenerate",
		"| P95 | 1.2300 |",
		"Probability of profit: 0.6100 (n=998 included)",
		"Risk of ruin: 0.0300",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	// Both floors tripped in the fixture, both warnings must surface.
	if !strings.Contains(md, "LOW CONFIDENCE: only 2 folds") {
		t.Error("fold low-confidence warning missing")
	}
	if !strings.Contains(md, "LOW CONFIDENCE: only 21 out-of-sample trades") {
		t.Error("trade low-confidence warning missing")
	}
}

func TestRenderCSV(t *testing.T) {
	gen := NewGenerator(nil)
	r := gen.BuildRunReport(testValidationReport())

	folds := RenderFoldsCSV(r.Folds)
	lines := strings.Split(strings.TrimSpace(folds), "\n")
	if len(lines) != 3 {
		t.Fatalf("folds CSV has %d lines, want 3", len(lines))
	}
	if lines[0] != "fold,train_bars,test_start,test_end,return,max_drawdown,trades,win_rate" {
		t.Errorf("unexpected folds header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,90,90,180,0.050000,") {
		t.Errorf("unexpected fold row: %s", lines[1])
	}

	sims := RenderSimulationsCSV(r.MonteCarlo.Terminals)
	simLines := strings.Split(strings.TrimSpace(sims), "\n")
	if len(simLines) != 4 {
		t.Fatalf("simulations CSV has %d lines, want 4", len(simLines))
	}
	if simLines[1] != "0,1.040000" {
		t.Errorf("unexpected simulation row: %s", simLines[1])
	}
}

func TestGenerateSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRunStore()

	runs := []*domain.ValidationRun{
		{RunID: "r2", Instrument: "ETHUSDT", StrategyID: "BREAKOUT_55", Mode: "shuffle", CreatedAt: 2000,
			FoldCount: 12, TradeCount: 80, TerminalMean: 1.1, TerminalP5: 0.9, TerminalP95: 1.3},
		{RunID: "r1", Instrument: "BTCUSDT", StrategyID: "MOMENTUM_20_50", Mode: "bootstrap", CreatedAt: 1000,
			FoldCount: 4, TradeCount: 10, FoldsLowConf: true, TradesLowConf: true},
		{RunID: "r3", Instrument: "BTCUSDT", StrategyID: "MOMENTUM_20_50", Mode: "bootstrap", CreatedAt: 500,
			FoldCount: 11, TradeCount: 60},
	}
	for _, r := range runs {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGenerator(store).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if report.RunCount != 3 {
		t.Fatalf("RunCount = %d, want 3", report.RunCount)
	}
	// Sorted by instrument, then strategy, then created_at.
	gotOrder := []string{report.Runs[0].RunID, report.Runs[1].RunID, report.Runs[2].RunID}
	wantOrder := []string{"r3", "r1", "r2"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("run order = %v, want %v", gotOrder, wantOrder)
		}
	}
	if !report.Runs[1].LowConfidence {
		t.Error("r1 should be flagged low confidence")
	}
	if report.Runs[0].LowConfidence || report.Runs[2].LowConfidence {
		t.Error("r3 and r2 should not be flagged")
	}

	md := RenderSummaryMarkdown(report)
	if !strings.Contains(md, "Runs: 3") {
		t.Error("summary markdown missing run count")
	}
	if !strings.Contains(md, "| LOW |") {
		t.Error("summary markdown missing LOW confidence marker")
	}

	csvOut := RenderRunsCSV(report.Runs)
	csvLines := strings.Split(strings.TrimSpace(csvOut), "\n")
	if len(csvLines) != 4 {
		t.Fatalf("runs CSV has %d lines, want 4", len(csvLines))
	}
	if !strings.HasPrefix(csvLines[1], "r3,BTCUSDT,") {
		t.Errorf("unexpected first run row: %s", csvLines[1])
	}
}
