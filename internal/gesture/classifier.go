package gesture

import "github.com/ayusman/mudra/internal/detector"

// Predicates are per-frame facts about the hand shape.
type Predicates struct {
	IndexUp  bool `json:"index_up"`
	MiddleUp bool `json:"middle_up"`
	Pinch    bool `json:"pinch"`
}

// ScrollPose reports whether both index and middle fingers are raised.
func (p Predicates) ScrollPose() bool {
	return p.IndexUp && p.MiddleUp
}

// Classify derives the predicates for one hand. Pinch distance is measured
// in normalized coordinates so the threshold is resolution independent.
func Classify(frame *detector.HandFrame, pinchThreshold float64) Predicates {
	return Predicates{
		IndexUp:  fingerUp(frame, detector.IndexTip, detector.IndexPIP),
		MiddleUp: fingerUp(frame, detector.MiddleTip, detector.MiddlePIP),
		Pinch:    detector.Distance2D(frame.Points[detector.ThumbTip], frame.Points[detector.IndexTip]) < pinchThreshold,
	}
}

// fingerUp is true when the tip is above the PIP joint. Y grows downward.
func fingerUp(frame *detector.HandFrame, tip, pip int) bool {
	return frame.Points[tip].Y < frame.Points[pip].Y
}

// resolve picks the pose for a present, correctly-handed hand.
// Order matters: scroll beats pinch, pinch beats move.
func resolve(p Predicates) Pose {
	switch {
	case p.ScrollPose():
		return PoseScroll
	case p.Pinch && p.IndexUp:
		return PosePinch
	case p.IndexUp && !p.MiddleUp:
		return PoseMove
	default:
		return PoseIdle
	}
}
