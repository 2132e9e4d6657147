// Package detector defines the hand-landmark boundary between the external
// tracker and the gesture core.
package detector

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrLandmarkCount is returned when a tracker reports a hand with a landmark
// count other than NumLandmarks.
var ErrLandmarkCount = errors.New("unexpected landmark count")

// Handedness labels which hand the tracker believes it is looking at.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// ParseHandedness accepts "left"/"right" in any case.
func ParseHandedness(s string) (Handedness, error) {
	switch s {
	case "Left", "left", "LEFT":
		return Left, nil
	case "Right", "right", "RIGHT":
		return Right, nil
	}
	return "", fmt.Errorf("invalid handedness %q", s)
}

// NormalizedPoint is a landmark position expressed as a fraction of the
// frame width (X) and height (Y). The origin is the top-left corner.
// Z is relative depth as reported by the tracker.
type NormalizedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance2D returns the planar Euclidean distance between a and b.
// Depth is ignored.
func Distance2D(a, b NormalizedPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HandFrame is one hand's landmarks for one camera frame.
type HandFrame struct {
	Points     [NumLandmarks]NormalizedPoint `json:"points"`
	Handedness Handedness                    `json:"handedness"`
	Score      float64                       `json:"score"`
	Timestamp  time.Time                     `json:"timestamp"`
}

// NewHandFrame builds a HandFrame from a variable-length point list.
// A list that does not hold exactly NumLandmarks points is a tracker bug and
// is rejected with ErrLandmarkCount.
func NewHandFrame(points []NormalizedPoint, handedness Handedness, score float64, ts time.Time) (HandFrame, error) {
	if len(points) != NumLandmarks {
		return HandFrame{}, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}

	f := HandFrame{
		Handedness: handedness,
		Score:      score,
		Timestamp:  ts,
	}
	copy(f.Points[:], points)
	return f, nil
}

// SelectHand returns the hand the gesture core should see this tick, or nil
// when none was detected. Only the first reported hand is used.
func SelectHand(hands []HandFrame) *HandFrame {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}
