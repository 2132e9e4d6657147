// Package main provides the pointer plugin. It moves the mouse, clicks,
// scrolls and taps hotkeys through robotgo.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// MoveParams are the target screen coordinates of a move.
type MoveParams struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScrollParams describe a scroll. Direction defaults to down.
type ScrollParams struct {
	Amount    int    `json:"amount"`
	Direction string `json:"direction"`
}

// ClickConfig selects the mouse button; left when empty.
type ClickConfig struct {
	Button string `json:"button"`
	Double bool   `json:"double"`
}

// HotkeyConfig is the key combination tapped by the hotkey action.
type HotkeyConfig struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // alt, cmd, ctrl, shift
}

// Pointer is the input backend.
type Pointer interface {
	ScreenSize() (int, int)
	Move(x, y int)
	Click(button string, double bool)
	Scroll(amount int, direction string)
	KeyTap(key string, modifiers []string) error
}

// modifierMap maps user-friendly modifier names to robotgo key names.
var modifierMap = map[string]string{
	"command": "cmd",
	"cmd":     "cmd",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	run(os.Stdin, os.Stdout, robotPointer{})
}

// run answers one request. Failures are reported in the response, never
// through the exit status.
func run(in io.Reader, out io.Writer, p Pointer) {
	var req Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		writeErrorResponse(out, fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	if err := handle(req, p); err != nil {
		writeErrorResponse(out, fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}
	writeSuccessResponse(out)
}

func handle(req Request, p Pointer) error {
	switch req.Action {
	case "move":
		var mp MoveParams
		if err := decode(req.Params, &mp); err != nil {
			return err
		}
		w, h := p.ScreenSize()
		p.Move(clamp(mp.X, w), clamp(mp.Y, h))
	case "click":
		var cc ClickConfig
		if err := decode(req.Config, &cc); err != nil {
			return err
		}
		button := cc.Button
		if button == "" {
			button = "left"
		}
		if button != "left" && button != "right" && button != "center" {
			return fmt.Errorf("unknown button %q", button)
		}
		p.Click(button, cc.Double)
	case "scroll":
		var sp ScrollParams
		if err := decode(req.Params, &sp); err != nil {
			return err
		}
		if sp.Amount <= 0 {
			return fmt.Errorf("amount must be positive, got %d", sp.Amount)
		}
		dir := sp.Direction
		if dir == "" {
			dir = "down"
		}
		if dir != "up" && dir != "down" {
			return fmt.Errorf("unknown direction %q", dir)
		}
		p.Scroll(sp.Amount, dir)
	case "hotkey":
		var hc HotkeyConfig
		if err := decode(req.Config, &hc); err != nil {
			return err
		}
		if hc.Key == "" {
			return fmt.Errorf("key is required")
		}
		mods, err := mapModifiers(hc.Modifiers)
		if err != nil {
			return err
		}
		return p.KeyTap(hc.Key, mods)
	default:
		return fmt.Errorf("unknown action: %s", req.Action)
	}
	return nil
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	return nil
}

func mapModifiers(mods []string) ([]string, error) {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		name, ok := modifierMap[strings.ToLower(m)]
		if !ok {
			return nil, fmt.Errorf("unknown modifier %q", m)
		}
		out = append(out, name)
	}
	return out, nil
}

// clamp keeps v on a screen axis of size n. A non-positive n means the size
// is unknown and v is only kept non-negative.
func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if n > 0 && v >= n {
		return n - 1
	}
	return v
}

// writeErrorResponse writes an error response to out.
func writeErrorResponse(out io.Writer, errMsg string) {
	json.NewEncoder(out).Encode(Response{Success: false, Error: errMsg})
}

// writeSuccessResponse writes a success response to out.
func writeSuccessResponse(out io.Writer) {
	json.NewEncoder(out).Encode(Response{Success: true})
}
