package domain

import (
	"errors"
	"fmt"
)

// Candle represents one OHLC bar for an instrument.
// Corresponds to the candles table in ClickHouse.
type Candle struct {
	Instrument  string  // instrument identifier (e.g. "BTCUSDT")
	TimestampMs int64   // bar close timestamp, Unix ms
	Open        float64 // first traded price in the bar
	High        float64 // highest traded price in the bar
	Low         float64 // lowest traded price in the bar
	Close       float64 // last traded price in the bar
	Volume      float64 // base-asset volume in the bar
}

// Series is an ordered candle history for a single instrument.
// Timestamps are strictly increasing; Validate enforces this before
// any component consumes the series.
type Series struct {
	Instrument string
	Candles    []Candle
}

// Series validation errors.
var (
	ErrEmptySeries     = errors.New("empty candle series")
	ErrUnorderedSeries = errors.New("candle timestamps not strictly increasing")
)

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.Candles)
}

// Validate checks timestamp ordering and price sanity.
// Returns ErrEmptySeries or ErrUnorderedSeries wrapped with position details.
func (s *Series) Validate() error {
	if len(s.Candles) == 0 {
		return ErrEmptySeries
	}
	for i := 1; i < len(s.Candles); i++ {
		if s.Candles[i].TimestampMs <= s.Candles[i-1].TimestampMs {
			return fmt.Errorf("%w: index %d (%d <= %d)",
				ErrUnorderedSeries, i, s.Candles[i].TimestampMs, s.Candles[i-1].TimestampMs)
		}
	}
	for i, c := range s.Candles {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("non-positive price at index %d", i)
		}
		if c.High < c.Low {
			return fmt.Errorf("high < low at index %d", i)
		}
	}
	return nil
}

// IndexAtOrAfter returns the first index i where Candles[i].TimestampMs >= ms.
// Standard lower-bound binary search; used for half-open interval boundaries
// (inclusive starts, exclusive ends).
func (s *Series) IndexAtOrAfter(ms int64) int {
	lo, hi := 0, len(s.Candles)
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Candles[mid].TimestampMs < ms {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Slice returns a sub-series over [i0, i1) with bounds clamped.
func (s *Series) Slice(i0, i1 int) *Series {
	if i0 < 0 {
		i0 = 0
	}
	if i1 > len(s.Candles) {
		i1 = len(s.Candles)
	}
	if i0 >= i1 {
		return &Series{Instrument: s.Instrument}
	}
	return &Series{Instrument: s.Instrument, Candles: s.Candles[i0:i1]}
}

// Closes extracts the close prices as a flat slice.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}
