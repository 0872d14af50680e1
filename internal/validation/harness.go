// Package validation is the walk-forward and Monte Carlo harness. It
// consumes a candle series and a strategy, replays the strategy over
// expanding-train folds, resamples the out-of-sample trades, and emits a
// report whose every point estimate carries its dispersion and sample
// size.
package validation

import (
	"context"
	"fmt"
	"time"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/idhash"
	"strategy-validation-lab/internal/regime"
	"strategy-validation-lab/internal/simulation"
	"strategy-validation-lab/internal/strategy"
)

// Report is one full harness execution.
type Report struct {
	Run         domain.ValidationRun
	WalkForward *WalkForwardReport
	MonteCarlo  *MonteCarloResult
}

// Harness wires the regime classifier, simulator, walk-forward
// evaluator, and Monte Carlo resampler into one run.
type Harness struct {
	cfg   domain.ValidationConfig
	strat strategy.Strategy
}

func NewHarness(cfg domain.ValidationConfig, strat strategy.Strategy) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Harness{cfg: cfg, strat: strat}, nil
}

// Run validates the strategy on series, gating allocation by the regime
// of reference. Passing series itself as the reference is the common
// single-instrument case; a broad market proxy (BTC, an index) is the
// multi-instrument one. The two must be bar-aligned.
func (h *Harness) Run(ctx context.Context, series, reference *domain.Series) (*Report, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if reference == nil {
		reference = series
	}
	if reference.Len() != series.Len() {
		return nil, fmt.Errorf("validation: reference series (%d bars) not aligned to %s (%d bars)",
			reference.Len(), series.Instrument, series.Len())
	}

	regimes, err := regime.ClassifySeries(regime.Config{
		FastPeriod: h.cfg.RegimeFastMA,
		SlowPeriod: h.cfg.RegimeSlowMA,
		BufferPct:  h.cfg.RegimeBufferPct,
	}, reference)
	if err != nil {
		return nil, err
	}

	sim := simulation.NewSimulator(h.cfg, h.strat, regimes)

	wf, err := EvaluateWalkForward(ctx, h.cfg, sim, series)
	if err != nil {
		return nil, err
	}

	mc, err := RunMonteCarlo(h.cfg, wf.OOSTrades)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	run := domain.ValidationRun{
		RunID:      idhash.ComputeRunID(series.Instrument, h.strat.ID(), string(h.cfg.Mode), h.cfg.Seed, now),
		Instrument: series.Instrument,
		StrategyID: h.strat.ID(),
		Mode:       string(h.cfg.Mode),
		CreatedAt:  now,

		FoldCount:    len(wf.Folds),
		FoldMean:     wf.Mean,
		FoldMedian:   wf.Median,
		FoldStddev:   wf.Stddev,
		FoldWinRate:  wf.FoldWinRate,
		FoldsLowConf: wf.LowConfidence,
		TradeCount:   wf.TradeCount,

		Simulations:   mc.Simulations,
		Included:      mc.Included,
		Excluded:      mc.Excluded,
		TerminalMean:  mc.Mean,
		TerminalP5:    mc.P5,
		TerminalP95:   mc.P95,
		ProbProfit:    mc.ProbProfit,
		RiskOfRuin:    mc.RiskOfRuin,
		TradesLowConf: mc.LowConfidence,
	}

	return &Report{Run: run, WalkForward: wf, MonteCarlo: mc}, nil
}
