package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO trades (
		trade_id, instrument, strategy_id,
		entry_time, exit_time, entry_price, exit_price, size,
		pnl, fees, return_pct, exit_reason
	) VALUES (
		$1, $2, $3,
		$4, $5, $6, $7, $8,
		$9, $10, $11, $12
	)
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	_, err := s.pool.Exec(ctx, insertTradeQuery,
		t.TradeID, t.Instrument, t.StrategyID,
		t.EntryTime, t.ExitTime, t.EntryPrice, t.ExitPrice, t.Size,
		t.PnL, t.Fees, t.ReturnPct, t.ExitReason,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		_, err := tx.Exec(ctx, insertTradeQuery,
			t.TradeID, t.Instrument, t.StrategyID,
			t.EntryTime, t.ExitTime, t.EntryPrice, t.ExitPrice, t.Size,
			t.PnL, t.Fees, t.ReturnPct, t.ExitReason,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const selectTradeColumns = `
	trade_id, instrument, strategy_id,
	entry_time, exit_time, entry_price, exit_price, size,
	pnl, fees, return_pct, exit_reason
`

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	query := `SELECT ` + selectTradeColumns + ` FROM trades WHERE trade_id = $1`

	row := s.pool.QueryRow(ctx, query, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetByStrategy retrieves all trades for an instrument/strategy pair,
// ordered by entry_time ASC.
func (s *TradeStore) GetByStrategy(ctx context.Context, instrument, strategyID string) ([]*domain.Trade, error) {
	query := `
		SELECT ` + selectTradeColumns + `
		FROM trades
		WHERE instrument = $1 AND strategy_id = $2
		ORDER BY entry_time ASC
	`

	rows, err := s.pool.Query(ctx, query, instrument, strategyID)
	if err != nil {
		return nil, fmt.Errorf("query trades by strategy: %w", err)
	}
	defer rows.Close()

	var out []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return out, nil
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.TradeID, &t.Instrument, &t.StrategyID,
		&t.EntryTime, &t.ExitTime, &t.EntryPrice, &t.ExitPrice, &t.Size,
		&t.PnL, &t.Fees, &t.ReturnPct, &t.ExitReason,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
