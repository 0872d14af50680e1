package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds multiple candles. Fails entire batch on duplicate
// (instrument, timestamp_ms). MergeTree does not enforce uniqueness, so
// duplicates are detected with explicit checks before the batch is sent.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	type key struct {
		instrument  string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(candles))
	for _, c := range candles {
		if c == nil || c.Instrument == "" {
			return storage.ErrInvalidInput
		}
		k := key{c.Instrument, c.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, c := range candles {
		exists, err := s.exists(ctx, c.Instrument, c.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candles (
			instrument, timestamp_ms, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			c.Instrument, uint64(c.TimestampMs),
			c.Open, c.High, c.Low, c.Close, c.Volume,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetSeries retrieves the full series for an instrument, ordered by timestamp ASC.
func (s *CandleStore) GetSeries(ctx context.Context, instrument string) (*domain.Series, error) {
	query := `
		SELECT instrument, timestamp_ms, open, high, low, close, volume
		FROM candles
		WHERE instrument = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, instrument)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	return scanSeries(rows, instrument)
}

// GetSeriesRange retrieves candles within [start, end] (inclusive).
func (s *CandleStore) GetSeriesRange(ctx context.Context, instrument string, start, end int64) (*domain.Series, error) {
	query := `
		SELECT instrument, timestamp_ms, open, high, low, close, volume
		FROM candles
		WHERE instrument = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, instrument, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query series range: %w", err)
	}
	defer rows.Close()

	return scanSeries(rows, instrument)
}

// Instruments lists distinct instruments with stored candles.
func (s *CandleStore) Instruments(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT instrument FROM candles ORDER BY instrument ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query instruments: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var instrument string
		if err := rows.Scan(&instrument); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, instrument)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instruments: %w", err)
	}
	return out, nil
}

func (s *CandleStore) exists(ctx context.Context, instrument string, timestampMs int64) (bool, error) {
	query := `
		SELECT count() FROM candles
		WHERE instrument = ? AND timestamp_ms = ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, instrument, uint64(timestampMs)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanSeries(rows driver.Rows, instrument string) (*domain.Series, error) {
	var candles []domain.Candle
	for rows.Next() {
		var (
			c           domain.Candle
			timestampMs uint64
		)
		err := rows.Scan(&c.Instrument, &timestampMs, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume)
		if err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.TimestampMs = int64(timestampMs)
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, storage.ErrNotFound
	}

	return &domain.Series{Instrument: instrument, Candles: candles}, nil
}
