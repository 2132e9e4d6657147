package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned one per Detect call; once the queue is empty
// the fixed hands set with SetHands are returned.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandFrame
	queue  [][]HandFrame
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends per-call results; nil entries mean "no hand".
func (m *MockDetector) Enqueue(results ...[]HandFrame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next queued result, the fixed hands, or the configured error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandFrame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls reports how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// baseHand returns a right hand, palm facing the camera, with every finger
// curled. Fixtures below extend individual fingers from here.
func baseHand() HandFrame {
	hand := HandFrame{
		Handedness: Right,
		Score:      0.95,
	}

	hand.Points[Wrist] = NormalizedPoint{X: 0.50, Y: 0.80}

	hand.Points[ThumbCMC] = NormalizedPoint{X: 0.55, Y: 0.76}
	hand.Points[ThumbMCP] = NormalizedPoint{X: 0.60, Y: 0.72}
	hand.Points[ThumbIP] = NormalizedPoint{X: 0.63, Y: 0.69}
	hand.Points[ThumbTip] = NormalizedPoint{X: 0.66, Y: 0.66}

	// Curled: tip sits below its PIP joint.
	hand.Points[IndexMCP] = NormalizedPoint{X: 0.55, Y: 0.66}
	hand.Points[IndexPIP] = NormalizedPoint{X: 0.55, Y: 0.62, Z: -0.05}
	hand.Points[IndexDIP] = NormalizedPoint{X: 0.54, Y: 0.66, Z: -0.04}
	hand.Points[IndexTip] = NormalizedPoint{X: 0.54, Y: 0.69, Z: -0.02}

	hand.Points[MiddleMCP] = NormalizedPoint{X: 0.50, Y: 0.65}
	hand.Points[MiddlePIP] = NormalizedPoint{X: 0.50, Y: 0.61, Z: -0.05}
	hand.Points[MiddleDIP] = NormalizedPoint{X: 0.49, Y: 0.65, Z: -0.04}
	hand.Points[MiddleTip] = NormalizedPoint{X: 0.49, Y: 0.68, Z: -0.02}

	hand.Points[RingMCP] = NormalizedPoint{X: 0.45, Y: 0.66}
	hand.Points[RingPIP] = NormalizedPoint{X: 0.45, Y: 0.62, Z: -0.05}
	hand.Points[RingDIP] = NormalizedPoint{X: 0.44, Y: 0.66, Z: -0.04}
	hand.Points[RingTip] = NormalizedPoint{X: 0.44, Y: 0.69, Z: -0.02}

	hand.Points[PinkyMCP] = NormalizedPoint{X: 0.41, Y: 0.68}
	hand.Points[PinkyPIP] = NormalizedPoint{X: 0.41, Y: 0.65, Z: -0.05}
	hand.Points[PinkyDIP] = NormalizedPoint{X: 0.40, Y: 0.68, Z: -0.04}
	hand.Points[PinkyTip] = NormalizedPoint{X: 0.40, Y: 0.70, Z: -0.02}

	return hand
}

// extendIndex straightens the index finger so its tip lands at (x, y).
// The PIP and DIP joints are placed below the tip on the same column.
func extendIndex(hand *HandFrame, x, y float64) {
	hand.Points[IndexPIP] = NormalizedPoint{X: x, Y: y + 0.12}
	hand.Points[IndexDIP] = NormalizedPoint{X: x, Y: y + 0.06}
	hand.Points[IndexTip] = NormalizedPoint{X: x, Y: y}
}

// extendMiddle straightens the middle finger beside the index tip at (x, y).
func extendMiddle(hand *HandFrame, x, y float64) {
	mx := x - 0.04
	hand.Points[MiddlePIP] = NormalizedPoint{X: mx, Y: y + 0.12}
	hand.Points[MiddleDIP] = NormalizedPoint{X: mx, Y: y + 0.06}
	hand.Points[MiddleTip] = NormalizedPoint{X: mx, Y: y - 0.01}
}

// FistFrame returns a right hand with every finger curled.
func FistFrame() HandFrame {
	return baseHand()
}

// PointingFrame returns a right hand with only the index finger extended,
// its tip at (x, y).
func PointingFrame(x, y float64) HandFrame {
	hand := baseHand()
	extendIndex(&hand, x, y)
	// Thumb relaxed well clear of the index tip.
	hand.Points[ThumbIP] = NormalizedPoint{X: x + 0.08, Y: y + 0.19}
	hand.Points[ThumbTip] = NormalizedPoint{X: x + 0.10, Y: y + 0.16}
	return hand
}

// ScrollFrame returns a right hand with index and middle fingers extended,
// the index tip at (x, y).
func ScrollFrame(x, y float64) HandFrame {
	hand := PointingFrame(x, y)
	extendMiddle(&hand, x, y)
	return hand
}

// PinchFrame returns a right hand with the index finger extended to (x, y)
// and the thumb tip touching it.
func PinchFrame(x, y float64) HandFrame {
	hand := PointingFrame(x, y)
	hand.Points[ThumbIP] = NormalizedPoint{X: x + 0.04, Y: y + 0.06}
	hand.Points[ThumbTip] = NormalizedPoint{X: x + 0.01, Y: y + 0.01}
	return hand
}

// OpenPalmFrame returns a right hand with all fingers extended upward.
func OpenPalmFrame() HandFrame {
	hand := ScrollFrame(0.58, 0.35)

	hand.Points[RingPIP] = NormalizedPoint{X: 0.43, Y: 0.55}
	hand.Points[RingDIP] = NormalizedPoint{X: 0.42, Y: 0.45}
	hand.Points[RingTip] = NormalizedPoint{X: 0.42, Y: 0.35}

	hand.Points[PinkyPIP] = NormalizedPoint{X: 0.37, Y: 0.60}
	hand.Points[PinkyDIP] = NormalizedPoint{X: 0.35, Y: 0.50}
	hand.Points[PinkyTip] = NormalizedPoint{X: 0.34, Y: 0.42}

	return hand
}

// WithHandedness returns a copy of hand labelled h.
func WithHandedness(hand HandFrame, h Handedness) HandFrame {
	hand.Handedness = h
	return hand
}
