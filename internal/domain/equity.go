package domain

import (
	"errors"
	"fmt"
)

// EquityPoint is one sample of account equity at a bar close.
type EquityPoint struct {
	TimestampMs int64
	Equity      float64
}

// EquityCurve is the per-bar equity history of a simulation run.
// It is derived once from sequential trade P&L applied to starting capital
// and never mutated afterwards.
type EquityCurve struct {
	Points []EquityPoint
}

// ErrUnorderedEquity indicates non-increasing equity timestamps.
var ErrUnorderedEquity = errors.New("equity timestamps not strictly increasing")

// Validate checks that timestamps are strictly increasing.
func (c *EquityCurve) Validate() error {
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].TimestampMs <= c.Points[i-1].TimestampMs {
			return fmt.Errorf("%w: index %d", ErrUnorderedEquity, i)
		}
	}
	return nil
}

// Terminal returns the last equity value, or initial if the curve is empty.
func (c *EquityCurve) Terminal(initial float64) float64 {
	if len(c.Points) == 0 {
		return initial
	}
	return c.Points[len(c.Points)-1].Equity
}

// MaxDrawdown returns the worst peak-to-trough decline as a fraction of peak.
func (c *EquityCurve) MaxDrawdown() float64 {
	if len(c.Points) == 0 {
		return 0
	}
	peak := c.Points[0].Equity
	maxDD := 0.0
	for _, p := range c.Points {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
