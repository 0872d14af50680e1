package strategy

import (
	"fmt"
	"math"

	"strategy-validation-lab/internal/asof"
	"strategy-validation-lab/internal/indicators"
)

// MomentumStrategy holds a long position while the fast moving average
// of closes sits above the slow one.
type MomentumStrategy struct {
	FastPeriod int
	SlowPeriod int
}

// NewMomentumStrategy creates a new MomentumStrategy.
func NewMomentumStrategy(fastPeriod, slowPeriod int) *MomentumStrategy {
	return &MomentumStrategy{
		FastPeriod: fastPeriod,
		SlowPeriod: slowPeriod,
	}
}

// ID returns the strategy identifier including parameters.
func (s *MomentumStrategy) ID() string {
	return fmt.Sprintf("MOMENTUM_%d_%d", s.FastPeriod, s.SlowPeriod)
}

// Warmup returns the slow period; no signal fires before the slow
// average has real values.
func (s *MomentumStrategy) Warmup() int {
	return s.SlowPeriod
}

// WantLong reports a long when the fast average of the visible closes is
// above the slow one. During moving-average warmup it reports flat.
func (s *MomentumStrategy) WantLong(cur *asof.Cursor) (bool, error) {
	closes := cur.VisibleCloses()
	if len(closes) < s.SlowPeriod {
		return false, nil
	}
	fast := indicators.SMA(closes, s.FastPeriod)
	slow := indicators.SMA(closes, s.SlowPeriod)
	f := fast[len(fast)-1]
	sl := slow[len(slow)-1]
	if math.IsNaN(f) || math.IsNaN(sl) {
		return false, nil
	}
	return f > sl, nil
}

// Ensure MomentumStrategy implements Strategy
var _ Strategy = (*MomentumStrategy)(nil)
