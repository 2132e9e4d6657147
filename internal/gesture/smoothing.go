package gesture

import "math"

// Smoother is an exponential low-pass filter over cursor positions with a
// jitter gate. The zero value is not usable; create one with NewSmoother.
type Smoother struct {
	factor      float64
	minMovement int
	last        *ScreenPoint
}

// NewSmoother creates a Smoother. factor is the weight kept from the
// previous position; minMovement is the per-axis jitter gate in pixels.
func NewSmoother(factor float64, minMovement int) *Smoother {
	return &Smoother{
		factor:      factor,
		minMovement: minMovement,
	}
}

// Smooth feeds a new target and returns where the cursor should go.
// The second result is false when the move is suppressed as jitter.
//
// The first target after a Reset is returned unchanged. A suppressed move
// leaves the stored position untouched so small drifts cannot accumulate.
func (s *Smoother) Smooth(target ScreenPoint) (ScreenPoint, bool) {
	if s.last == nil {
		p := target
		s.last = &p
		return p, true
	}

	dx := target.X - s.last.X
	dy := target.Y - s.last.Y
	if abs(dx) <= s.minMovement && abs(dy) <= s.minMovement {
		return ScreenPoint{}, false
	}

	next := ScreenPoint{
		X: blend(s.last.X, target.X, s.factor),
		Y: blend(s.last.Y, target.Y, s.factor),
	}
	s.last = &next
	return next, true
}

// Reset forgets the stored position so the next Smooth call snaps.
func (s *Smoother) Reset() {
	s.last = nil
}

// Last returns the stored position, if any.
func (s *Smoother) Last() (ScreenPoint, bool) {
	if s.last == nil {
		return ScreenPoint{}, false
	}
	return *s.last, true
}

// roundingSlack absorbs float error so an exact integer step is not pushed
// to the next pixel.
const roundingSlack = 1e-9

// blend computes factor*prev + (1-factor)*target as prev plus a step, and
// rounds the step away from prev, so a fixed target is always approached
// until it falls inside the jitter gate. The result never passes target.
// Plain truncation of the blend would land 1px lower on upward fractional
// steps (500 toward 610 gives 516, not 517) and stalls short of a held
// target.
func blend(prev, target int, factor float64) int {
	step := (1 - factor) * float64(target-prev)
	switch {
	case step > 0:
		return prev + int(math.Ceil(step-roundingSlack))
	case step < 0:
		return prev + int(math.Floor(step+roundingSlack))
	}
	return prev
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
