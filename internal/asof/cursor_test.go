package asof

import (
	"errors"
	"testing"

	"strategy-validation-lab/internal/domain"
)

func testSeries(n int) *domain.Series {
	candles := make([]domain.Candle, n)
	for i := 0; i < n; i++ {
		px := 100.0 + float64(i)
		candles[i] = domain.Candle{
			Instrument:  "TEST-USD",
			TimestampMs: int64(i) * 60_000,
			Open:        px,
			High:        px + 1,
			Low:         px - 1,
			Close:       px + 0.5,
			Volume:      1000,
		}
	}
	return &domain.Series{Instrument: "TEST-USD", Candles: candles}
}

func TestCursor_LookAheadBlocked(t *testing.T) {
	c := NewCursor(testSeries(10))
	if err := c.Seek(5); err != nil {
		t.Fatalf("seek: %v", err)
	}

	if _, err := c.At(4); err != nil {
		t.Errorf("index 4 should be visible at decision index 5: %v", err)
	}
	if _, err := c.At(5); !errors.Is(err, ErrLookAhead) {
		t.Errorf("index 5 at decision index 5 should be a look-ahead violation, got %v", err)
	}
	if _, err := c.At(9); !errors.Is(err, ErrLookAhead) {
		t.Errorf("future index should be a look-ahead violation, got %v", err)
	}
}

func TestCursor_EmptyHistory(t *testing.T) {
	c := NewCursor(testSeries(10))
	if _, err := c.Last(); err == nil {
		t.Error("expected error for Last at index 0")
	}
	if got := len(c.History()); got != 0 {
		t.Errorf("expected empty history, got %d bars", got)
	}
}

func TestCursor_AdvanceWalksWholeSeries(t *testing.T) {
	s := testSeries(5)
	c := NewCursor(s)

	steps := 0
	for c.Advance() {
		steps++
		last, err := c.Last()
		if err != nil {
			t.Fatalf("Last at pos %d: %v", c.Pos(), err)
		}
		if last.TimestampMs != s.Candles[c.Pos()-1].TimestampMs {
			t.Fatalf("Last at pos %d returned wrong bar", c.Pos())
		}
	}
	if steps != 5 {
		t.Errorf("expected 5 steps, got %d", steps)
	}
}

func TestCursor_VisibleCloses(t *testing.T) {
	c := NewCursor(testSeries(10))
	if err := c.Seek(3); err != nil {
		t.Fatalf("seek: %v", err)
	}
	closes := c.VisibleCloses()
	if len(closes) != 3 {
		t.Fatalf("expected 3 closes, got %d", len(closes))
	}
	if closes[2] != 102.5 {
		t.Errorf("expected 102.5, got %f", closes[2])
	}
}

func TestCursor_SeekOutOfRange(t *testing.T) {
	c := NewCursor(testSeries(3))
	if err := c.Seek(4); err == nil {
		t.Error("expected error seeking past end")
	}
	if err := c.Seek(-1); err == nil {
		t.Error("expected error seeking negative")
	}
}
