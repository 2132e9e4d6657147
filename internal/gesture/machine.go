package gesture

import (
	"time"

	"github.com/ayusman/mudra/internal/detector"
)

// Session holds the debounce timers and the swipe anchor. A zero time
// means the action has never fired.
type Session struct {
	LastClick  time.Time
	LastScroll time.Time
	LastSwipe  time.Time
	// ScrollAnchorX is the index-tip x recorded when the scroll pose began
	// or when the last swipe fired. nil outside the scroll pose.
	ScrollAnchorX *float64
}

// Machine decides, frame by frame, which gesture is active and which action
// to emit. It is not safe for concurrent use; one goroutine owns it.
//
// Rules, first match wins:
//
//  1. no hand, or the wrong hand: nothing
//  2. index and middle up: swipe right emits BrowserBack, otherwise ScrollDown
//  3. pinch with index up: Click
//  4. index up alone: MoveCursor to the smoothed fingertip position
//  5. anything else: nothing
//
// Leaving the move pose resets the smoother; leaving the scroll pose clears
// the swipe anchor.
type Machine struct {
	tuning   Tuning
	screen   Screen
	hand     detector.Handedness
	smoother *Smoother
	session  Session
	pose     Pose
}

// NewMachine creates a Machine that reacts only to the given hand and maps
// the fingertip onto screen.
func NewMachine(tuning Tuning, screen Screen, hand detector.Handedness) *Machine {
	return &Machine{
		tuning:   tuning,
		screen:   screen,
		hand:     hand,
		smoother: NewSmoother(tuning.Smoothing, tuning.MinMovement),
		pose:     PoseAbsent,
	}
}

// Step processes one tick. frame is nil when no hand was detected. now must
// come from a monotonic clock and never go backwards between calls.
func (m *Machine) Step(frame *detector.HandFrame, now time.Time) Decision {
	var d Decision

	switch {
	case frame == nil:
		d.Pose = PoseAbsent
	case frame.Handedness != m.hand:
		d.Pose = PoseWrongHand
	default:
		d.Predicates = Classify(frame, m.tuning.PinchThreshold)
		d.Pose = resolve(d.Predicates)
	}

	switch d.Pose {
	case PoseScroll:
		d.Action = m.scroll(frame.Points[detector.IndexTip].X, now)
	case PosePinch:
		d.Action = m.click(now)
	case PoseMove:
		d.Action = m.move(frame.Points[detector.IndexTip])
	}

	m.applyResets(d.Pose)
	m.pose = d.Pose
	return d
}

// applyResets clears the tracking state owned by every pose other than p.
func (m *Machine) applyResets(p Pose) {
	if p != PoseMove {
		m.smoother.Reset()
	}
	if p != PoseScroll {
		m.session.ScrollAnchorX = nil
	}
}

func (m *Machine) scroll(indexX float64, now time.Time) *Action {
	if m.session.ScrollAnchorX == nil {
		m.session.ScrollAnchorX = &indexX
	}

	if indexX-*m.session.ScrollAnchorX > m.tuning.SwipeThreshold {
		if !elapsed(m.session.LastSwipe, now, m.tuning.SwipeDebounce) {
			return nil
		}
		m.session.LastSwipe = now
		m.session.ScrollAnchorX = &indexX
		a := BrowserBack()
		return &a
	}

	if !elapsed(m.session.LastScroll, now, m.tuning.ScrollInterval) {
		return nil
	}
	m.session.LastScroll = now
	a := ScrollDown(m.tuning.ScrollSpeed)
	return &a
}

func (m *Machine) click(now time.Time) *Action {
	if !elapsed(m.session.LastClick, now, m.tuning.ClickDebounce) {
		return nil
	}
	m.session.LastClick = now
	a := Click()
	return &a
}

func (m *Machine) move(tip detector.NormalizedPoint) *Action {
	pos, ok := m.smoother.Smooth(m.screen.Map(tip))
	if !ok {
		return nil
	}
	a := MoveCursor(pos)
	return &a
}

// Pose returns the pose chosen on the most recent step.
func (m *Machine) Pose() Pose {
	return m.pose
}

// Session returns a copy of the timers and anchor.
func (m *Machine) Session() Session {
	s := m.session
	if s.ScrollAnchorX != nil {
		x := *s.ScrollAnchorX
		s.ScrollAnchorX = &x
	}
	return s
}

// Tuning returns the machine's tuning.
func (m *Machine) Tuning() Tuning {
	return m.tuning
}

// Screen returns the screen the machine maps onto.
func (m *Machine) Screen() Screen {
	return m.screen
}

// RequiredHand returns the hand the machine reacts to.
func (m *Machine) RequiredHand() detector.Handedness {
	return m.hand
}

// elapsed reports whether at least interval has passed since last.
// A zero last means never, which always counts as elapsed.
func elapsed(last, now time.Time, interval time.Duration) bool {
	return last.IsZero() || now.Sub(last) >= interval
}
