// Package memory holds in-memory store implementations. They back unit
// tests and small offline runs where spinning up databases buys nothing.
package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Candle // keyed by instrument
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string][]domain.Candle),
	}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate
// (instrument, timestamp_ms).
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		instrument  string
		timestampMs int64
	}
	batchKeys := make(map[key]struct{}, len(candles))

	for _, c := range candles {
		if c == nil || c.Instrument == "" {
			return storage.ErrInvalidInput
		}
		k := key{c.Instrument, c.TimestampMs}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}

		for _, existing := range s.data[c.Instrument] {
			if existing.TimestampMs == c.TimestampMs {
				return storage.ErrDuplicateKey
			}
		}
	}

	for _, c := range candles {
		s.data[c.Instrument] = append(s.data[c.Instrument], *c)
	}
	for instrument := range s.data {
		sort.Slice(s.data[instrument], func(i, j int) bool {
			return s.data[instrument][i].TimestampMs < s.data[instrument][j].TimestampMs
		})
	}

	return nil
}

// GetSeries retrieves the full series for an instrument, ordered by timestamp ASC.
func (s *CandleStore) GetSeries(_ context.Context, instrument string) (*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candles, exists := s.data[instrument]
	if !exists || len(candles) == 0 {
		return nil, storage.ErrNotFound
	}

	out := make([]domain.Candle, len(candles))
	copy(out, candles)
	return &domain.Series{Instrument: instrument, Candles: out}, nil
}

// GetSeriesRange retrieves candles within [start, end] (inclusive).
func (s *CandleStore) GetSeriesRange(_ context.Context, instrument string, start, end int64) (*domain.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candles, exists := s.data[instrument]
	if !exists {
		return nil, storage.ErrNotFound
	}

	var out []domain.Candle
	for _, c := range candles {
		if c.TimestampMs >= start && c.TimestampMs <= end {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, storage.ErrNotFound
	}
	return &domain.Series{Instrument: instrument, Candles: out}, nil
}

// Instruments lists distinct instruments with stored candles.
func (s *CandleStore) Instruments(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for instrument, candles := range s.data {
		if len(candles) > 0 {
			out = append(out, instrument)
		}
	}
	sort.Strings(out)
	return out, nil
}
