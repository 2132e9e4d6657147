package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/data")

	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("/data", "mudra.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/data", "plugins"), cfg.PluginDir)
	assert.Equal(t, detector.Right, cfg.Hand())
	assert.Equal(t, gesture.DefaultTuning(), cfg.Tuning.Gesture())
	assert.Equal(t, 2*time.Second, cfg.IdleTimeoutDuration())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "nope.json"), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir), cfg)
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"required_hand": "left",
		"screen_width": 2560,
		"screen_height": -1,
		"idle_fps": 0,
		"tuning": {"click_debounce_sec": 0.25, "smoothing": 3, "scroll_speed": 4}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, detector.Left, cfg.Hand())
	assert.Equal(t, gesture.Screen{Width: 2560, Height: 1080}, cfg.Screen())
	assert.Equal(t, 5, cfg.IdleFPS)

	tuning := cfg.Tuning.Gesture()
	assert.Equal(t, 250*time.Millisecond, tuning.ClickDebounce)
	assert.Equal(t, gesture.DefaultSmoothing, tuning.Smoothing)
	assert.Equal(t, 4, tuning.ScrollSpeed)
	// Untouched keys keep their defaults.
	assert.Equal(t, gesture.DefaultSwipeDebounce, tuning.SwipeDebounce)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	cfg, err := Load(bad, dir)
	assert.Error(t, err)
	assert.Equal(t, DefaultConfig(dir), cfg)

	hand := filepath.Join(dir, "hand.json")
	require.NoError(t, os.WriteFile(hand, []byte(`{"required_hand": "both"}`), 0644))
	cfg, err = Load(hand, dir)
	assert.Error(t, err)
	assert.Equal(t, detector.Right, cfg.Hand())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := DefaultConfig(dir)
	cfg.Mirror = false
	cfg.Tuning.SwipeThreshold = 0.2
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path, dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestTuningSecondsConversion(t *testing.T) {
	tuning := Tuning{ClickDebounce: 0.5, ScrollInterval: 0.05, SwipeDebounce: 1.5}.Gesture()

	assert.Equal(t, 500*time.Millisecond, tuning.ClickDebounce)
	assert.Equal(t, 50*time.Millisecond, tuning.ScrollInterval)
	assert.Equal(t, 1500*time.Millisecond, tuning.SwipeDebounce)
}
