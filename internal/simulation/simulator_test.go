package simulation

import (
	"context"
	"testing"

	"strategy-validation-lab/internal/asof"
	"strategy-validation-lab/internal/domain"
)

// thresholdStrategy goes long while the last visible close is above a
// fixed level. Deterministic and warmup-free, for exercising the
// replay loop.
type thresholdStrategy struct {
	level float64
}

func (s *thresholdStrategy) ID() string  { return "THRESHOLD" }
func (s *thresholdStrategy) Warmup() int { return 1 }

func (s *thresholdStrategy) WantLong(cur *asof.Cursor) (bool, error) {
	last, err := cur.Last()
	if err != nil {
		return false, nil
	}
	return last.Close > s.level, nil
}

func seriesFromCloses(closes []float64) *domain.Series {
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = domain.Candle{
			Instrument:  "TEST-USD",
			TimestampMs: int64(i+1) * 86_400_000,
			Open:        c,
			High:        c + 1,
			Low:         c - 1,
			Close:       c,
			Volume:      1,
		}
	}
	return &domain.Series{Instrument: "TEST-USD", Candles: candles}
}

func frictionlessConfig() domain.ValidationConfig {
	cfg := domain.DefaultValidationConfig()
	cfg.FeeBps = 0
	cfg.SlippageBps = 0
	cfg.InitialCapital = 1000
	return cfg
}

func TestRun_RoundTrip(t *testing.T) {
	// Below level, above for three bars, below again: one trade.
	closes := []float64{90, 110, 120, 130, 90, 90}
	sim := NewSimulator(frictionlessConfig(), &thresholdStrategy{level: 100}, nil)

	res, err := sim.Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}

	tr := res.Trades[0]
	if err := tr.Validate(); err != nil {
		t.Errorf("trade invalid: %v", err)
	}
	// Signal on bar 1's close (110), next-open fill at bar 2 (120).
	if tr.EntryPrice != 120 {
		t.Errorf("expected entry at next open 120, got %f", tr.EntryPrice)
	}
	// Exit signal after bar 4 closes at 90, fill at bar 5's open.
	if tr.ExitPrice != 90 {
		t.Errorf("expected exit at 90, got %f", tr.ExitPrice)
	}
	if tr.ExitReason != domain.ExitReasonSignal {
		t.Errorf("expected SIGNAL exit, got %s", tr.ExitReason)
	}
	if tr.PnL >= 0 {
		t.Errorf("entry 120 exit 90 should lose money, got pnl %f", tr.PnL)
	}
}

func TestRun_EndOfWindowMarkToMarket(t *testing.T) {
	// Stays above level through the end: position force-closed.
	closes := []float64{90, 110, 120, 130, 140}
	sim := NewSimulator(frictionlessConfig(), &thresholdStrategy{level: 100}, nil)

	res, err := sim.Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 forced trade, got %d", len(res.Trades))
	}
	if res.Trades[0].ExitReason != domain.ExitReasonEndOfWindow {
		t.Errorf("expected END_OF_WINDOW, got %s", res.Trades[0].ExitReason)
	}
	if res.Trades[0].ExitPrice != 140 {
		t.Errorf("expected mark at final close 140, got %f", res.Trades[0].ExitPrice)
	}
}

func TestRun_EquityMonotonicTimestamps(t *testing.T) {
	closes := []float64{90, 110, 120, 95, 130, 88, 140, 150}
	sim := NewSimulator(frictionlessConfig(), &thresholdStrategy{level: 100}, nil)

	res, err := sim.Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := res.Equity.Validate(); err != nil {
		t.Errorf("equity curve invalid: %v", err)
	}
	if len(res.Equity.Points) != len(closes) {
		t.Errorf("expected one equity point per bar, got %d", len(res.Equity.Points))
	}
}

func TestRun_RegimeBearForcesExit(t *testing.T) {
	closes := []float64{90, 110, 120, 130, 140, 150}
	regimes := []domain.Regime{
		domain.RegimeStrongBull, domain.RegimeStrongBull, domain.RegimeStrongBull,
		domain.RegimeBear, domain.RegimeBear, domain.RegimeBear,
	}
	sim := NewSimulator(frictionlessConfig(), &thresholdStrategy{level: 100}, regimes)

	res, err := sim.Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	if res.Trades[0].ExitReason != domain.ExitReasonRegimeBear {
		t.Errorf("expected REGIME_BEAR exit, got %s", res.Trades[0].ExitReason)
	}
	// Exit fill at bar 3's open under next-open timing.
	if res.Trades[0].ExitPrice != 130 {
		t.Errorf("expected exit at 130, got %f", res.Trades[0].ExitPrice)
	}
}

func TestRun_WeakBullHalvesSize(t *testing.T) {
	closes := []float64{90, 110, 120, 130, 90, 90}
	strong := make([]domain.Regime, len(closes))
	weak := make([]domain.Regime, len(closes))
	for i := range closes {
		strong[i] = domain.RegimeStrongBull
		weak[i] = domain.RegimeWeakBull
	}

	cfg := frictionlessConfig()
	strongRes, err := NewSimulator(cfg, &thresholdStrategy{level: 100}, strong).
		Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run strong: %v", err)
	}
	weakRes, err := NewSimulator(cfg, &thresholdStrategy{level: 100}, weak).
		Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run weak: %v", err)
	}

	if len(strongRes.Trades) != 1 || len(weakRes.Trades) != 1 {
		t.Fatalf("expected 1 trade each, got %d and %d", len(strongRes.Trades), len(weakRes.Trades))
	}
	ratio := weakRes.Trades[0].Size / strongRes.Trades[0].Size
	if ratio < 0.499 || ratio > 0.501 {
		t.Errorf("weak-bull size should be half of strong-bull, ratio %f", ratio)
	}
}

func TestRun_FeesReduceProfit(t *testing.T) {
	closes := []float64{90, 110, 120, 130, 90, 90}

	free := frictionlessConfig()
	costly := frictionlessConfig()
	costly.FeeBps = 10
	costly.SlippageBps = 5

	freeRes, err := NewSimulator(free, &thresholdStrategy{level: 100}, nil).
		Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	costlyRes, err := NewSimulator(costly, &thresholdStrategy{level: 100}, nil).
		Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if costlyRes.Trades[0].PnL >= freeRes.Trades[0].PnL {
		t.Errorf("fees and slippage should reduce pnl: %f vs %f",
			costlyRes.Trades[0].PnL, freeRes.Trades[0].PnL)
	}
	if costlyRes.Trades[0].Fees <= 0 {
		t.Errorf("expected positive fees, got %f", costlyRes.Trades[0].Fees)
	}
}

func TestRun_SameCloseTiming(t *testing.T) {
	closes := []float64{90, 110, 120, 130, 90, 90}
	cfg := frictionlessConfig()
	cfg.Timing = domain.TimingSameClose

	res, err := NewSimulator(cfg, &thresholdStrategy{level: 100}, nil).
		Run(context.Background(), seriesFromCloses(closes), 0, len(closes))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(res.Trades))
	}
	// Signal on bar 1 (close 110), same-close fill at 110.
	if res.Trades[0].EntryPrice != 110 {
		t.Errorf("expected same-close entry at 110, got %f", res.Trades[0].EntryPrice)
	}
}

func TestRun_BadRange(t *testing.T) {
	sim := NewSimulator(frictionlessConfig(), &thresholdStrategy{level: 100}, nil)
	if _, err := sim.Run(context.Background(), seriesFromCloses([]float64{100, 101}), 0, 5); err == nil {
		t.Error("expected error for range past end")
	}
	if _, err := sim.Run(context.Background(), seriesFromCloses([]float64{100, 101}), 1, 1); err == nil {
		t.Error("expected error for empty range")
	}
}
