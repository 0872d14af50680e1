package storage

import (
	"context"

	"strategy-validation-lab/internal/domain"
)

// CandleStore provides access to candle time-series storage.
type CandleStore interface {
	// InsertBulk adds multiple candles. Fails entire batch on duplicate
	// (instrument, timestamp_ms).
	InsertBulk(ctx context.Context, candles []*domain.Candle) error

	// GetSeries retrieves the full series for an instrument, ordered by
	// timestamp ASC. Returns ErrNotFound when no candles exist.
	GetSeries(ctx context.Context, instrument string) (*domain.Series, error)

	// GetSeriesRange retrieves candles within [start, end] (inclusive),
	// ordered by timestamp ASC. Returns ErrNotFound when no candles match.
	GetSeriesRange(ctx context.Context, instrument string, start, end int64) (*domain.Series, error)

	// Instruments lists distinct instruments with stored candles.
	Instruments(ctx context.Context) ([]string, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetByStrategy retrieves all trades for an instrument/strategy
	// pair, ordered by entry_time ASC.
	GetByStrategy(ctx context.Context, instrument, strategyID string) ([]*domain.Trade, error)
}

// ValidationRunStore provides access to validation_runs storage.
type ValidationRunStore interface {
	// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.ValidationRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.ValidationRun, error)

	// GetByInstrument retrieves all runs for an instrument, ordered by
	// created_at ASC.
	GetByInstrument(ctx context.Context, instrument string) ([]*domain.ValidationRun, error)

	// GetAll retrieves every stored run, ordered by created_at ASC.
	GetAll(ctx context.Context) ([]*domain.ValidationRun, error)
}
