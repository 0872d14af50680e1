// Package asof provides a cursor over a candle series that only exposes
// bars strictly before the current decision index. Simulation and regime
// code read history through it so that future bars are unreachable by
// construction rather than by convention.
package asof

import (
	"fmt"

	"strategy-validation-lab/internal/domain"
)

// ErrLookAhead is returned when a caller requests a bar at or after the
// cursor's decision index. It is treated as fatal by the validation
// harness: a triggered look-ahead invalidates the whole run.
var ErrLookAhead = fmt.Errorf("asof: look-ahead violation")

// Cursor walks a series bar by bar. At position i the strategy is making
// a decision for bar i, so the visible history is [0, i).
type Cursor struct {
	series *domain.Series
	pos    int
}

func NewCursor(series *domain.Series) *Cursor {
	return &Cursor{series: series}
}

// Pos returns the current decision index.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total number of bars in the underlying series.
func (c *Cursor) Len() int { return c.series.Len() }

// Advance moves the decision index forward by one bar. It reports false
// when the cursor has passed the final bar.
func (c *Cursor) Advance() bool {
	if c.pos >= c.series.Len() {
		return false
	}
	c.pos++
	return c.pos <= c.series.Len()
}

// Seek positions the cursor at decision index i.
func (c *Cursor) Seek(i int) error {
	if i < 0 || i > c.series.Len() {
		return fmt.Errorf("asof: seek index %d out of range [0,%d]", i, c.series.Len())
	}
	c.pos = i
	return nil
}

// At returns the candle at index i, which must be strictly before the
// decision index. Requests at or past the decision index return
// ErrLookAhead.
func (c *Cursor) At(i int) (domain.Candle, error) {
	if i < 0 {
		return domain.Candle{}, fmt.Errorf("asof: negative index %d", i)
	}
	if i >= c.pos {
		return domain.Candle{}, fmt.Errorf("%w: index %d at decision index %d", ErrLookAhead, i, c.pos)
	}
	return c.series.Candles[i], nil
}

// Last returns the most recent visible candle, the bar just before the
// decision index. It returns ErrLookAhead-free errors only for an empty
// history.
func (c *Cursor) Last() (domain.Candle, error) {
	if c.pos == 0 {
		return domain.Candle{}, fmt.Errorf("asof: no history before index 0")
	}
	return c.series.Candles[c.pos-1], nil
}

// History returns the visible prefix [0, pos) as a slice. The slice
// aliases the underlying series and must not be mutated.
func (c *Cursor) History() []domain.Candle {
	return c.series.Candles[:c.pos]
}

// VisibleCloses returns the close prices of the visible prefix.
func (c *Cursor) VisibleCloses() []float64 {
	out := make([]float64, c.pos)
	for i := 0; i < c.pos; i++ {
		out[i] = c.series.Candles[i].Close
	}
	return out
}
