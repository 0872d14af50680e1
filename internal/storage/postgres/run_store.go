package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// RunStore implements storage.ValidationRunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ValidationRunStore = (*RunStore)(nil)

// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.ValidationRun) error {
	query := `
		INSERT INTO validation_runs (
			run_id, instrument, strategy_id, mode, created_at,
			fold_count, fold_mean, fold_median, fold_stddev, fold_win_rate, folds_low_conf, trade_count,
			simulations, included, excluded,
			terminal_mean, terminal_p5, terminal_p95, prob_profit, risk_of_ruin, trades_low_conf
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20, $21
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.Instrument, r.StrategyID, r.Mode, r.CreatedAt,
		r.FoldCount, r.FoldMean, r.FoldMedian, r.FoldStddev, r.FoldWinRate, r.FoldsLowConf, r.TradeCount,
		r.Simulations, r.Included, r.Excluded,
		r.TerminalMean, r.TerminalP5, r.TerminalP95, r.ProbProfit, r.RiskOfRuin, r.TradesLowConf,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert validation run: %w", err)
	}
	return nil
}

const selectRunColumns = `
	run_id, instrument, strategy_id, mode, created_at,
	fold_count, fold_mean, fold_median, fold_stddev, fold_win_rate, folds_low_conf, trade_count,
	simulations, included, excluded,
	terminal_mean, terminal_p5, terminal_p95, prob_profit, risk_of_ruin, trades_low_conf
`

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.ValidationRun, error) {
	query := `SELECT ` + selectRunColumns + ` FROM validation_runs WHERE run_id = $1`

	row := s.pool.QueryRow(ctx, query, runID)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return r, nil
}

// GetByInstrument retrieves all runs for an instrument, ordered by created_at ASC.
func (s *RunStore) GetByInstrument(ctx context.Context, instrument string) ([]*domain.ValidationRun, error) {
	query := `
		SELECT ` + selectRunColumns + `
		FROM validation_runs
		WHERE instrument = $1
		ORDER BY created_at ASC
	`
	rows, err := s.pool.Query(ctx, query, instrument)
	if err != nil {
		return nil, fmt.Errorf("query runs by instrument: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// GetAll retrieves every stored run, ordered by created_at ASC.
func (s *RunStore) GetAll(ctx context.Context) ([]*domain.ValidationRun, error) {
	query := `SELECT ` + selectRunColumns + ` FROM validation_runs ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

func collectRuns(rows pgx.Rows) ([]*domain.ValidationRun, error) {
	var out []*domain.ValidationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func scanRun(row pgx.Row) (*domain.ValidationRun, error) {
	var r domain.ValidationRun
	err := row.Scan(
		&r.RunID, &r.Instrument, &r.StrategyID, &r.Mode, &r.CreatedAt,
		&r.FoldCount, &r.FoldMean, &r.FoldMedian, &r.FoldStddev, &r.FoldWinRate, &r.FoldsLowConf, &r.TradeCount,
		&r.Simulations, &r.Included, &r.Excluded,
		&r.TerminalMean, &r.TerminalP5, &r.TerminalP95, &r.ProbProfit, &r.RiskOfRuin, &r.TradesLowConf,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
