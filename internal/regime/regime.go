// Package regime classifies a reference price series into market states
// used to gate strategy allocation. Classification is a pure function of
// the series through the previous bar and the prior state; nothing here
// holds mutable state between calls.
package regime

import (
	"fmt"
	"math"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/indicators"
)

// Config controls the moving-average classifier.
type Config struct {
	// FastPeriod and SlowPeriod are the moving-average lengths over the
	// reference close series. FastPeriod must be shorter.
	FastPeriod int
	SlowPeriod int
	// BufferPct is the hysteresis band around each threshold. A
	// transition fires only when the signal clears the threshold by
	// this fraction, and the opposite transition needs the opposite
	// clearance. 0.02 means 2 percent.
	BufferPct float64
}

func (c Config) Validate() error {
	if c.FastPeriod <= 0 || c.SlowPeriod <= 0 {
		return fmt.Errorf("regime: periods must be positive, got fast=%d slow=%d", c.FastPeriod, c.SlowPeriod)
	}
	if c.FastPeriod >= c.SlowPeriod {
		return fmt.Errorf("regime: fast period %d must be shorter than slow period %d", c.FastPeriod, c.SlowPeriod)
	}
	if c.BufferPct < 0 || c.BufferPct >= 1 {
		return fmt.Errorf("regime: buffer pct %f out of range [0,1)", c.BufferPct)
	}
	return nil
}

// Classify computes the next state from one bar's signals and the prior
// state. price is the reference close, fast and slow are the
// moving-average values for the same bar. The caller is responsible for
// feeding signals computed through the previous bar only.
//
// Two Schmitt triggers stack: price against the slow MA decides bull vs
// bear, and the fast MA against the slow MA decides strong vs weak
// within a bull. Signals inside either hysteresis band leave that
// trigger's side of the state unchanged.
func Classify(cfg Config, price, fast, slow float64, prior domain.Regime) domain.Regime {
	if math.IsNaN(price) || math.IsNaN(fast) || math.IsNaN(slow) {
		return prior
	}

	upper := slow * (1 + cfg.BufferPct)
	lower := slow * (1 - cfg.BufferPct)

	bullish := prior.Bullish()
	switch {
	case price > upper:
		bullish = true
	case price < lower:
		bullish = false
	}
	if !bullish {
		return domain.RegimeBear
	}

	strong := prior == domain.RegimeStrongBull
	switch {
	case fast > upper:
		strong = true
	case fast < lower:
		strong = false
	}
	if strong {
		return domain.RegimeStrongBull
	}
	return domain.RegimeWeakBull
}

// ClassifySeries labels every bar of the series. The regime at bar i is
// computed from closes through bar i-1 only, so the first labeled bar
// and the moving-average warmup both report the initial bear state.
func ClassifySeries(cfg Config, series *domain.Series) ([]domain.Regime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	closes := series.Closes()
	fast := indicators.SMA(closes, cfg.FastPeriod)
	slow := indicators.SMA(closes, cfg.SlowPeriod)

	out := make([]domain.Regime, len(closes))
	state := domain.RegimeBear
	for i := range closes {
		if i > 0 {
			state = Classify(cfg, closes[i-1], fast[i-1], slow[i-1], state)
		}
		out[i] = state
	}
	return out, nil
}
