package validation

import (
	"context"
	"testing"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/strategy"
)

func TestHarness_EndToEnd(t *testing.T) {
	cfg := testConfig()
	strat := strategy.NewMomentumStrategy(5, 15)
	h, err := NewHarness(cfg, strat)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}

	series := dailySeries(trendingCloses(3 * 365))
	report, err := h.Run(context.Background(), series, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	run := report.Run
	if len(run.RunID) != 64 {
		t.Errorf("expected 64-char run ID, got %q", run.RunID)
	}
	if run.Instrument != "BTC-USD" || run.StrategyID != "MOMENTUM_5_15" {
		t.Errorf("identity fields wrong: %s %s", run.Instrument, run.StrategyID)
	}
	if run.FoldCount != len(report.WalkForward.Folds) {
		t.Errorf("fold count mismatch: %d vs %d", run.FoldCount, len(report.WalkForward.Folds))
	}
	if run.Included+run.Excluded != run.Simulations {
		t.Errorf("exclusion accounting broken: %d + %d != %d", run.Included, run.Excluded, run.Simulations)
	}
	if run.ProbProfit < 0 || run.ProbProfit > 1 {
		t.Errorf("prob of profit out of range: %f", run.ProbProfit)
	}
	if run.TerminalP5 > run.TerminalP95 {
		t.Errorf("percentiles inverted: p5=%f p95=%f", run.TerminalP5, run.TerminalP95)
	}
}

func TestHarness_MisalignedReference(t *testing.T) {
	cfg := testConfig()
	h, err := NewHarness(cfg, strategy.NewMomentumStrategy(5, 15))
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}

	series := dailySeries(trendingCloses(3 * 365))
	ref := dailySeries(trendingCloses(100))
	if _, err := h.Run(context.Background(), series, ref); err == nil {
		t.Error("expected error for misaligned reference series")
	}
}

func TestHarness_RejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = domain.ResampleMode("jackknife")
	if _, err := NewHarness(cfg, strategy.NewMomentumStrategy(5, 15)); err == nil {
		t.Error("expected error for unknown resample mode")
	}
}
