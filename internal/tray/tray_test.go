package tray

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestTitles(t *testing.T) {
	assert.Equal(t, "● Enabled", toggleTitle(true))
	assert.Equal(t, "○ Disabled", toggleTitle(false))
	assert.Equal(t, "Last: none", lastActionTitle(""))
	assert.Equal(t, "Last: click", lastActionTitle("click"))
}

func TestTray_Toggle(t *testing.T) {
	tr := New(true)

	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	tr.handleToggle()
	tr.handleToggle()
	tr.handleToggle()

	assert.Equal(t, []bool{false, true, false}, got)
	assert.False(t, tr.IsEnabled())
}

func TestTray_SetEnabledSkipsCallback(t *testing.T) {
	tr := New(false)
	called := false
	tr.OnToggle(func(bool) { called = true })

	tr.SetEnabled(true)
	assert.True(t, tr.IsEnabled())
	assert.False(t, called)
}

func TestTray_SetEnabledThenToggle(t *testing.T) {
	tr := New(true)
	var got []bool
	tr.OnToggle(func(enabled bool) { got = append(got, enabled) })

	// Disabled elsewhere; one click turns it back on.
	tr.SetEnabled(false)
	tr.handleToggle()

	assert.Equal(t, []bool{true}, got)
	assert.True(t, tr.IsEnabled())
}

func TestTray_QuitCallback(t *testing.T) {
	tr := New(true)
	tr.notifyQuit()

	quits := 0
	tr.OnQuit(func() { quits++ })
	tr.notifyQuit()
	assert.Equal(t, 1, quits)
}

func TestTray_Settings(t *testing.T) {
	tr := New(true)
	tr.handleSettings()

	opened := 0
	tr.OnSettings(func() { opened++ })
	tr.handleSettings()
	assert.Equal(t, 1, opened)
}

func TestTray_ObserveDecision(t *testing.T) {
	tr := New(true)
	now := time.Unix(1000, 0)
	move := gesture.MoveCursor(gesture.ScreenPoint{X: 1, Y: 2})
	click := gesture.Click()
	back := gesture.BrowserBack()

	tr.ObserveDecision(gesture.Decision{Pose: gesture.PoseIdle}, now)
	assert.Equal(t, "", tr.LastAction())

	tr.ObserveDecision(gesture.Decision{Pose: gesture.PosePinch, Action: &click}, now)
	assert.Equal(t, "click", tr.LastAction())

	tr.ObserveDecision(gesture.Decision{Pose: gesture.PoseMove, Action: &move}, now)
	assert.Equal(t, "click", tr.LastAction())

	tr.ObserveDecision(gesture.Decision{Pose: gesture.PoseScroll, Action: &back}, now)
	assert.Equal(t, "browser_back", tr.LastAction())
}
