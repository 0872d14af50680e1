package strategy

import (
	"errors"
)

// Strategy type names accepted by the factory.
const (
	TypeMomentum = "MOMENTUM"
	TypeBreakout = "BREAKOUT"
)

// Factory errors
var (
	ErrUnknownStrategyType = errors.New("unknown strategy type")
	ErrMissingFastPeriod   = errors.New("MOMENTUM requires FastPeriod")
	ErrMissingSlowPeriod   = errors.New("MOMENTUM requires SlowPeriod")
	ErrBadPeriodOrder      = errors.New("MOMENTUM requires FastPeriod < SlowPeriod")
	ErrMissingLookback     = errors.New("BREAKOUT requires Lookback")
)

// Config enumerates every recognized strategy parameter. Pointer fields
// distinguish "not provided" from zero.
type Config struct {
	StrategyType string
	FastPeriod   *int
	SlowPeriod   *int
	Lookback     *int
}

// FromConfig creates a Strategy from Config. Validates required
// parameters per strategy type and returns clear errors for
// missing/invalid params.
func FromConfig(cfg Config) (Strategy, error) {
	switch cfg.StrategyType {
	case TypeMomentum:
		return fromMomentumConfig(cfg)
	case TypeBreakout:
		return fromBreakoutConfig(cfg)
	default:
		return nil, ErrUnknownStrategyType
	}
}

func fromMomentumConfig(cfg Config) (*MomentumStrategy, error) {
	if cfg.FastPeriod == nil {
		return nil, ErrMissingFastPeriod
	}
	if cfg.SlowPeriod == nil {
		return nil, ErrMissingSlowPeriod
	}
	if *cfg.FastPeriod <= 0 || *cfg.FastPeriod >= *cfg.SlowPeriod {
		return nil, ErrBadPeriodOrder
	}
	return NewMomentumStrategy(*cfg.FastPeriod, *cfg.SlowPeriod), nil
}

func fromBreakoutConfig(cfg Config) (*BreakoutStrategy, error) {
	if cfg.Lookback == nil || *cfg.Lookback <= 0 {
		return nil, ErrMissingLookback
	}
	return NewBreakoutStrategy(*cfg.Lookback), nil
}
