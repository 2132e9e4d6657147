package capture

import "time"

// RateGovernor switches the capture rate between an idle and an active
// frame rate. Motion switches to active immediately; the governor drops back
// to idle once no motion has been seen for the idle timeout.
type RateGovernor struct {
	idleFPS     int
	activeFPS   int
	idleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewRateGovernor creates a governor that starts idle.
func NewRateGovernor(idleFPS, activeFPS int, idleTimeout time.Duration) *RateGovernor {
	return &RateGovernor{
		idleFPS:     idleFPS,
		activeFPS:   activeFPS,
		idleTimeout: idleTimeout,
	}
}

// Observe records whether the frame at now showed motion. It returns true
// when the mode changed; the new rate is then available from FPS.
func (g *RateGovernor) Observe(motion bool, now time.Time) bool {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return true
		}
		return false
	}

	if g.active && now.Sub(g.lastMotion) > g.idleTimeout {
		g.active = false
		return true
	}
	return false
}

// Active reports whether the governor is in active mode.
func (g *RateGovernor) Active() bool {
	return g.active
}

// FPS returns the frame rate for the current mode.
func (g *RateGovernor) FPS() int {
	if g.active {
		return g.activeFPS
	}
	return g.idleFPS
}

// Interval returns the frame period for the current mode.
func (g *RateGovernor) Interval() time.Duration {
	return time.Second / time.Duration(g.FPS())
}

// Idle forces idle mode.
func (g *RateGovernor) Idle() {
	g.active = false
}
