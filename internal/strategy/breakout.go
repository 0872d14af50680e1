package strategy

import (
	"fmt"
	"math"

	"strategy-validation-lab/internal/asof"
	"strategy-validation-lab/internal/indicators"
)

// BreakoutStrategy goes long while the latest visible close prints above
// the highest close of the preceding lookback window.
type BreakoutStrategy struct {
	Lookback int
}

// NewBreakoutStrategy creates a new BreakoutStrategy.
func NewBreakoutStrategy(lookback int) *BreakoutStrategy {
	return &BreakoutStrategy{Lookback: lookback}
}

// ID returns the strategy identifier including parameters.
func (s *BreakoutStrategy) ID() string {
	return fmt.Sprintf("BREAKOUT_%d", s.Lookback)
}

// Warmup returns lookback plus the breakout bar itself.
func (s *BreakoutStrategy) Warmup() int {
	return s.Lookback + 1
}

// WantLong reports a long while the latest visible close is above the
// prior window's high.
func (s *BreakoutStrategy) WantLong(cur *asof.Cursor) (bool, error) {
	closes := cur.VisibleCloses()
	if len(closes) < s.Lookback+1 {
		return false, nil
	}
	last := closes[len(closes)-1]
	window := closes[:len(closes)-1]
	highs := indicators.RollingMax(window, s.Lookback)
	h := highs[len(highs)-1]
	if math.IsNaN(h) {
		return false, nil
	}
	return last > h, nil
}

// Ensure BreakoutStrategy implements Strategy
var _ Strategy = (*BreakoutStrategy)(nil)
