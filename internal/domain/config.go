package domain

import (
	"errors"
	"fmt"
	"time"
)

// ResampleMode selects the Monte Carlo draw scheme.
type ResampleMode string

// Resample modes. Shuffle permutes the original trade multiset (order
// sensitivity check); Bootstrap draws with replacement (composition
// sensitivity, the meaningful distributional test).
const (
	ModeShuffle   ResampleMode = "shuffle"
	ModeBootstrap ResampleMode = "bootstrap"
)

// ExecutionTiming fixes the signal-to-fill convention. The source research
// was ambiguous here, so the convention is an explicit parameter rather
// than an implicit assumption.
type ExecutionTiming string

const (
	// TimingNextOpen evaluates signals on bar t-1 data and fills at the
	// open of bar t. This is the default, strict shift-by-one convention.
	TimingNextOpen ExecutionTiming = "next_open"
	// TimingSameClose fills at the close of the signal bar.
	TimingSameClose ExecutionTiming = "same_close"
)

// ValidationConfig enumerates every recognized validation parameter with
// its default. Unknown or misspelled options cannot exist: there is no
// dynamic key space to misspell into.
type ValidationConfig struct {
	// Walk-forward
	TestWindow    time.Duration // out-of-sample window per fold
	Step          time.Duration // fold start spacing
	MinFoldsFloor int           // below this, fold statistics carry a low-confidence flag

	// Monte Carlo
	Simulations         int          // N resampling iterations
	Mode                ResampleMode // shuffle | bootstrap
	MinTradesFloor      int          // below this, percentile statistics carry a low-confidence flag
	DegenerateThreshold float64      // terminal multiple above this is excluded as degenerate
	RuinThreshold       float64      // drawdown fraction counted as ruin (e.g. 0.20)
	Seed                int64        // RNG seed; fixed seed gives reproducible runs

	// Regime
	RegimeBufferPct float64 // hysteresis clearance, e.g. 0.02
	RegimeFastMA    int     // fast moving-average period (bars)
	RegimeSlowMA    int     // slow moving-average period (bars)

	// Simulation
	InitialCapital float64
	FeeBps         float64 // per-side fee, basis points
	SlippageBps    float64 // per-side slippage, basis points
	Timing         ExecutionTiming
}

// DefaultValidationConfig returns the documented defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		TestWindow:          90 * 24 * time.Hour,
		Step:                90 * 24 * time.Hour,
		MinFoldsFloor:       10,
		Simulations:         1000,
		Mode:                ModeBootstrap,
		MinTradesFloor:      30,
		DegenerateThreshold: 1e6,
		RuinThreshold:       0.20,
		Seed:                1,
		RegimeBufferPct:     0.02,
		RegimeFastMA:        20,
		RegimeSlowMA:        50,
		InitialCapital:      10_000,
		FeeBps:              10,
		SlippageBps:         5,
		Timing:              TimingNextOpen,
	}
}

// Config validation errors.
var (
	ErrInvalidWindow = errors.New("test window and step must be positive")
	ErrInvalidMode   = errors.New("resample mode must be shuffle or bootstrap")
	ErrInvalidTiming = errors.New("execution timing must be next_open or same_close")
)

// Validate rejects configurations the harness cannot run safely.
func (c ValidationConfig) Validate() error {
	if c.TestWindow <= 0 || c.Step <= 0 {
		return fmt.Errorf("%w: test_window=%v step=%v", ErrInvalidWindow, c.TestWindow, c.Step)
	}
	if c.Mode != ModeShuffle && c.Mode != ModeBootstrap {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if c.Timing != TimingNextOpen && c.Timing != TimingSameClose {
		return fmt.Errorf("%w: %q", ErrInvalidTiming, c.Timing)
	}
	if c.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive, got %d", c.Simulations)
	}
	if c.DegenerateThreshold <= 1 {
		return fmt.Errorf("degenerate threshold must exceed 1, got %f", c.DegenerateThreshold)
	}
	if c.RuinThreshold <= 0 || c.RuinThreshold >= 1 {
		return fmt.Errorf("ruin threshold must be in (0, 1), got %f", c.RuinThreshold)
	}
	if c.RegimeBufferPct < 0 || c.RegimeBufferPct >= 1 {
		return fmt.Errorf("regime buffer must be in [0, 1), got %f", c.RegimeBufferPct)
	}
	if c.RegimeFastMA <= 0 || c.RegimeSlowMA <= c.RegimeFastMA {
		return fmt.Errorf("regime MA periods must satisfy 0 < fast < slow, got fast=%d slow=%d",
			c.RegimeFastMA, c.RegimeSlowMA)
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %f", c.InitialCapital)
	}
	return nil
}
