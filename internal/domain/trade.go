package domain

import (
	"errors"
	"fmt"
)

// Trade represents one closed round-trip position.
// PnL is computed once at close and never mutated; open positions are
// marked-to-market by the simulator before they reach validation, so
// every trade that enters the harness is closed.
type Trade struct {
	TradeID    string // deterministic hash
	Instrument string // instrument identifier
	StrategyID string // strategy identifier

	EntryTime  int64   // entry fill timestamp (ms)
	ExitTime   int64   // exit fill timestamp (ms)
	EntryPrice float64 // entry fill price (slippage applied)
	ExitPrice  float64 // exit fill price (slippage applied)
	Size       float64 // signed quantity; > 0 long, < 0 short

	PnL       float64 // realized profit/loss in account currency, net of fees
	Fees      float64 // total round-trip transaction cost, >= 0
	ReturnPct float64 // fractional return on position value, net of fees

	ExitReason string // reason code
}

// Exit reason codes.
const (
	ExitReasonSignal      = "SIGNAL"
	ExitReasonRegimeBear  = "REGIME_BEAR"
	ExitReasonEndOfWindow = "END_OF_WINDOW"
)

// Trade validation errors.
var (
	ErrInvalidTradeTimes = errors.New("trade exit_time must be after entry_time")
	ErrInvalidTradePrice = errors.New("trade prices must be positive")
	ErrNegativeFees      = errors.New("trade fees must be non-negative")
)

// Validate checks the trade invariants.
func (t *Trade) Validate() error {
	if t.ExitTime <= t.EntryTime {
		return fmt.Errorf("%w: entry=%d exit=%d", ErrInvalidTradeTimes, t.EntryTime, t.ExitTime)
	}
	if t.EntryPrice <= 0 || t.ExitPrice <= 0 {
		return fmt.Errorf("%w: entry=%f exit=%f", ErrInvalidTradePrice, t.EntryPrice, t.ExitPrice)
	}
	if t.Fees < 0 {
		return fmt.Errorf("%w: %f", ErrNegativeFees, t.Fees)
	}
	return nil
}

// Returns extracts the fractional returns of a trade slice, preserving order.
func Returns(trades []*Trade) []float64 {
	out := make([]float64, len(trades))
	for i, t := range trades {
		out[i] = t.ReturnPct
	}
	return out
}
