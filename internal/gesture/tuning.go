// Package gesture turns per-frame hand landmarks into debounced pointer
// actions.
//
// The package is synchronous and does no I/O: callers feed one frame (or
// its absence) per tick into a Machine and forward the returned Action, if
// any, to whatever executes input events.
package gesture

import (
	"fmt"
	"time"
)

// Default tuning values.
const (
	DefaultPinchThreshold = 0.04
	DefaultSwipeThreshold = 0.15
	DefaultClickDebounce  = 500 * time.Millisecond
	DefaultScrollInterval = 50 * time.Millisecond
	DefaultSwipeDebounce  = 500 * time.Millisecond
	DefaultSmoothing      = 0.85
	DefaultMinMovement    = 2
	DefaultScrollSpeed    = 10
)

// Tuning holds the thresholds and timers of the gesture machine. Values are
// fixed for the lifetime of a Machine.
type Tuning struct {
	// PinchThreshold is the thumb-to-index distance, in normalized units,
	// below which the hand counts as pinching.
	PinchThreshold float64
	// SwipeThreshold is how far right, in normalized units, the index tip
	// must travel from the scroll anchor to trigger a swipe.
	SwipeThreshold float64
	ClickDebounce  time.Duration
	ScrollInterval time.Duration
	SwipeDebounce  time.Duration
	// Smoothing is the weight given to the previous cursor position (0-1).
	Smoothing float64
	// MinMovement is the per-axis pixel delta at or below which cursor
	// motion is treated as jitter.
	MinMovement int
	ScrollSpeed int
}

// DefaultTuning returns the stock tuning.
func DefaultTuning() Tuning {
	return Tuning{
		PinchThreshold: DefaultPinchThreshold,
		SwipeThreshold: DefaultSwipeThreshold,
		ClickDebounce:  DefaultClickDebounce,
		ScrollInterval: DefaultScrollInterval,
		SwipeDebounce:  DefaultSwipeDebounce,
		Smoothing:      DefaultSmoothing,
		MinMovement:    DefaultMinMovement,
		ScrollSpeed:    DefaultScrollSpeed,
	}
}

// Validate reports the first out-of-range value.
func (t Tuning) Validate() error {
	switch {
	case t.PinchThreshold <= 0 || t.PinchThreshold >= 1:
		return fmt.Errorf("pinch threshold %v out of range (0,1)", t.PinchThreshold)
	case t.SwipeThreshold <= 0 || t.SwipeThreshold >= 1:
		return fmt.Errorf("swipe threshold %v out of range (0,1)", t.SwipeThreshold)
	case t.ClickDebounce < 0, t.ScrollInterval < 0, t.SwipeDebounce < 0:
		return fmt.Errorf("debounce intervals must not be negative")
	case t.Smoothing < 0 || t.Smoothing >= 1:
		return fmt.Errorf("smoothing %v out of range [0,1)", t.Smoothing)
	case t.MinMovement < 0:
		return fmt.Errorf("min movement %d must not be negative", t.MinMovement)
	case t.ScrollSpeed <= 0:
		return fmt.Errorf("scroll speed %d must be positive", t.ScrollSpeed)
	}
	return nil
}
