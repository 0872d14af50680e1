// Package simulation replays a strategy's decisions against a candle
// series and produces the closed-trade ledger and equity curve the
// validation harness consumes. Decisions at bar t only see data through
// bar t-1; the fill convention for bar t is configurable.
package simulation

import (
	"context"
	"fmt"

	"strategy-validation-lab/internal/asof"
	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/idhash"
	"strategy-validation-lab/internal/strategy"
)

// Result holds one simulation window's output.
type Result struct {
	Instrument string
	StrategyID string
	Trades     []*domain.Trade
	Equity     domain.EquityCurve
	BarCount   int
}

// Simulator replays one strategy over candle windows with regime-gated
// allocation. The regimes slice must be aligned to the series, one label
// per bar, computed from data through the previous bar.
type Simulator struct {
	cfg     domain.ValidationConfig
	strat   strategy.Strategy
	regimes []domain.Regime
}

// NewSimulator creates a Simulator. regimes may be nil, in which case no
// gating is applied and every signal trades at full weight.
func NewSimulator(cfg domain.ValidationConfig, strat strategy.Strategy, regimes []domain.Regime) *Simulator {
	return &Simulator{cfg: cfg, strat: strat, regimes: regimes}
}

// Run replays the half-open bar range [start, end) of the series. Open
// positions at the end of the range are marked to market at the final
// visible close and recorded with an END_OF_WINDOW exit.
func (s *Simulator) Run(ctx context.Context, series *domain.Series, start, end int) (*Result, error) {
	if start < 0 || end > series.Len() || start >= end {
		return nil, fmt.Errorf("simulation: bad bar range [%d, %d) over %d bars", start, end, series.Len())
	}
	if s.regimes != nil && len(s.regimes) != series.Len() {
		return nil, fmt.Errorf("simulation: regime labels (%d) not aligned to series (%d)",
			len(s.regimes), series.Len())
	}

	res := &Result{
		Instrument: series.Instrument,
		StrategyID: s.strat.ID(),
		BarCount:   end - start,
	}

	cur := asof.NewCursor(series)

	var open *openPosition
	equity := s.cfg.InitialCapital

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := cur.Seek(i); err != nil {
			return nil, err
		}

		want, err := s.strat.WantLong(cur)
		if err != nil {
			return nil, fmt.Errorf("simulation: strategy %s at bar %d: %w", s.strat.ID(), i, err)
		}

		weight := 1.0
		exitReason := domain.ExitReasonSignal
		if s.regimes != nil {
			weight = s.regimes[i].AllocationScale()
			if !s.regimes[i].Bullish() {
				exitReason = domain.ExitReasonRegimeBear
			}
		}
		want = want && weight > 0

		bar := series.Candles[i]
		fillTime, fillPrice, err := s.fill(series, i)
		if err != nil {
			return nil, err
		}

		switch {
		// No entries on the final bar: a position opened there would be
		// force-closed at the same timestamp.
		case want && open == nil && i < end-1:
			open = s.enter(fillTime, fillPrice, weight, equity)
		case !want && open != nil:
			trade := s.exit(series.Instrument, open, fillTime, fillPrice, exitReason)
			equity += trade.PnL
			res.Trades = append(res.Trades, trade)
			open = nil
		}

		res.Equity.Points = append(res.Equity.Points, domain.EquityPoint{
			TimestampMs: bar.TimestampMs,
			Equity:      markToMarket(equity, open, bar.Close),
		})
	}

	if open != nil {
		last := series.Candles[end-1]
		trade := s.exit(series.Instrument, open, last.TimestampMs, last.Close, domain.ExitReasonEndOfWindow)
		equity += trade.PnL
		res.Trades = append(res.Trades, trade)
		res.Equity.Points[len(res.Equity.Points)-1].Equity = equity
	}

	return res, nil
}

type openPosition struct {
	entryTime  int64
	entryPrice float64
	size       float64
	entryFee   float64
}

// fill resolves the execution price for the decision at bar i.
func (s *Simulator) fill(series *domain.Series, i int) (int64, float64, error) {
	switch s.cfg.Timing {
	case domain.TimingNextOpen:
		bar := series.Candles[i]
		return bar.TimestampMs, bar.Open, nil
	case domain.TimingSameClose:
		if i == 0 {
			bar := series.Candles[i]
			return bar.TimestampMs, bar.Open, nil
		}
		bar := series.Candles[i-1]
		return bar.TimestampMs, bar.Close, nil
	default:
		return 0, 0, fmt.Errorf("simulation: %w", domain.ErrInvalidTiming)
	}
}

func (s *Simulator) enter(fillTime int64, fillPrice, weight, equity float64) *openPosition {
	px := fillPrice * (1 + s.cfg.SlippageBps/10_000)
	notional := equity * weight
	size := notional / px
	fee := notional * s.cfg.FeeBps / 10_000
	return &openPosition{
		entryTime:  fillTime,
		entryPrice: px,
		size:       size,
		entryFee:   fee,
	}
}

func (s *Simulator) exit(instrument string, pos *openPosition, fillTime int64, fillPrice float64, reason string) *domain.Trade {
	px := fillPrice * (1 - s.cfg.SlippageBps/10_000)
	exitFee := px * pos.size * s.cfg.FeeBps / 10_000
	fees := pos.entryFee + exitFee

	gross := (px - pos.entryPrice) * pos.size
	pnl := gross - fees
	cost := pos.entryPrice * pos.size

	return &domain.Trade{
		TradeID:    idhash.ComputeTradeID(instrument, s.strat.ID(), pos.entryTime, fillTime),
		Instrument: instrument,
		StrategyID: s.strat.ID(),
		EntryTime:  pos.entryTime,
		ExitTime:   fillTime,
		EntryPrice: pos.entryPrice,
		ExitPrice:  px,
		Size:       pos.size,
		PnL:        pnl,
		Fees:       fees,
		ReturnPct:  pnl / cost,
		ExitReason: reason,
	}
}

func markToMarket(realized float64, pos *openPosition, close float64) float64 {
	if pos == nil {
		return realized
	}
	return realized + (close-pos.entryPrice)*pos.size - pos.entryFee
}
