package gesture

import (
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// ScreenPoint is an absolute pointer position in pixels.
type ScreenPoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Screen is the pixel size of the display the pointer moves on.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Map converts a normalized landmark position to screen pixels.
func (s Screen) Map(p detector.NormalizedPoint) ScreenPoint {
	return ScreenPoint{
		X: int(p.X * float64(s.Width)),
		Y: int(p.Y * float64(s.Height)),
	}
}

// ActionKind identifies what an Action asks the sink to do.
type ActionKind int

const (
	ActionMoveCursor ActionKind = iota + 1
	ActionClick
	ActionScrollDown
	ActionBrowserBack
)

var actionKindNames = map[ActionKind]string{
	ActionMoveCursor:  "move_cursor",
	ActionClick:       "click",
	ActionScrollDown:  "scroll_down",
	ActionBrowserBack: "browser_back",
}

// ActionKinds lists every kind in declaration order.
func ActionKinds() []ActionKind {
	return []ActionKind{ActionMoveCursor, ActionClick, ActionScrollDown, ActionBrowserBack}
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// ParseActionKind is the inverse of ActionKind.String.
func ParseActionKind(s string) (ActionKind, error) {
	for k, name := range actionKindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", s)
}

// Action is one intended input event. Only the fields relevant to Kind are
// set: X and Y for ActionMoveCursor, Amount for ActionScrollDown.
type Action struct {
	Kind   ActionKind
	X, Y   int
	Amount int
}

// MoveCursor returns an action that warps the pointer to p.
func MoveCursor(p ScreenPoint) Action {
	return Action{Kind: ActionMoveCursor, X: p.X, Y: p.Y}
}

// Click returns a primary-button click action.
func Click() Action {
	return Action{Kind: ActionClick}
}

// ScrollDown returns a scroll action of the given magnitude.
func ScrollDown(amount int) Action {
	return Action{Kind: ActionScrollDown, Amount: amount}
}

// BrowserBack returns a history-back navigation action.
func BrowserBack() Action {
	return Action{Kind: ActionBrowserBack}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionMoveCursor:
		return fmt.Sprintf("%s(%d,%d)", a.Kind, a.X, a.Y)
	case ActionScrollDown:
		return fmt.Sprintf("%s(%d)", a.Kind, a.Amount)
	}
	return a.Kind.String()
}

// Pose is the gesture class chosen for one frame.
type Pose int

const (
	// PoseAbsent means no hand was observed.
	PoseAbsent Pose = iota
	// PoseWrongHand means a hand was observed but not the required one.
	PoseWrongHand
	// PoseIdle means the hand matched no gesture.
	PoseIdle
	// PoseMove is index finger up alone: the cursor follows the fingertip.
	PoseMove
	// PosePinch is thumb touching a raised index finger: click.
	PosePinch
	// PoseScroll is index and middle fingers up: scroll, or swipe to go back.
	PoseScroll
)

var poseNames = [...]string{
	PoseAbsent:    "absent",
	PoseWrongHand: "wrong_hand",
	PoseIdle:      "idle",
	PoseMove:      "move",
	PosePinch:     "pinch",
	PoseScroll:    "scroll",
}

func (p Pose) String() string {
	if p >= 0 && int(p) < len(poseNames) {
		return poseNames[p]
	}
	return fmt.Sprintf("Pose(%d)", int(p))
}

// Decision is the outcome of one Machine step.
type Decision struct {
	Pose       Pose
	Predicates Predicates
	// Action is nil when nothing should be executed this frame.
	Action *Action
}
