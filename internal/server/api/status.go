package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
)

// Controller is the part of the app the status endpoint reads and toggles.
type Controller interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

// StatusHandler serves GET and PUT /api/status.
type StatusHandler struct {
	ctrl Controller
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(ctrl Controller) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

type actionResponse struct {
	Kind   string `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Amount int    `json:"amount"`
	At     string `json:"at,omitempty"`
}

type tuningResponse struct {
	PinchThreshold   float64 `json:"pinch_threshold"`
	SwipeThreshold   float64 `json:"swipe_threshold"`
	ClickDebounceMs  int64   `json:"click_debounce_ms"`
	ScrollIntervalMs int64   `json:"scroll_interval_ms"`
	SwipeDebounceMs  int64   `json:"swipe_debounce_ms"`
	Smoothing        float64 `json:"smoothing"`
	MinMovement      int     `json:"min_movement"`
	ScrollSpeed      int     `json:"scroll_speed"`
}

type statusResponse struct {
	Enabled      bool            `json:"enabled"`
	Running      bool            `json:"running"`
	Pose         string          `json:"pose"`
	LastAction   *actionResponse `json:"last_action"`
	Actions      int             `json:"actions"`
	Hand         string          `json:"hand"`
	ScreenWidth  int             `json:"screen_width"`
	ScreenHeight int             `json:"screen_height"`
	Tuning       tuningResponse  `json:"tuning"`
}

type updateStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// toActionResponse converts an action to its JSON form.
func toActionResponse(a gesture.Action) *actionResponse {
	return &actionResponse{Kind: a.Kind.String(), X: a.X, Y: a.Y, Amount: a.Amount}
}

func toStatusResponse(s app.Status) statusResponse {
	resp := statusResponse{
		Enabled:      s.Enabled,
		Running:      s.Running,
		Pose:         s.Pose.String(),
		Actions:      s.Actions,
		Hand:         string(s.Hand),
		ScreenWidth:  s.Screen.Width,
		ScreenHeight: s.Screen.Height,
		Tuning: tuningResponse{
			PinchThreshold:   s.Tuning.PinchThreshold,
			SwipeThreshold:   s.Tuning.SwipeThreshold,
			ClickDebounceMs:  s.Tuning.ClickDebounce.Milliseconds(),
			ScrollIntervalMs: s.Tuning.ScrollInterval.Milliseconds(),
			SwipeDebounceMs:  s.Tuning.SwipeDebounce.Milliseconds(),
			Smoothing:        s.Tuning.Smoothing,
			MinMovement:      s.Tuning.MinMovement,
			ScrollSpeed:      s.Tuning.ScrollSpeed,
		},
	}
	if s.LastAction != nil {
		resp.LastAction = toActionResponse(*s.LastAction)
		resp.LastAction.At = s.LastActionAt.Format("2006-01-02T15:04:05.000Z07:00")
	}
	return resp
}

// ServeHTTP implements the http.Handler interface.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, toStatusResponse(h.ctrl.Status()))
	case http.MethodPut:
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.ctrl.SetEnabled(*req.Enabled)
		writeJSON(w, http.StatusOK, toStatusResponse(h.ctrl.Status()))
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
