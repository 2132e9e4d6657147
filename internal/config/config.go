// Package config loads the startup configuration. Values come from a JSON
// file and may be overridden by command-line flags; nothing here changes
// once the app is running.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// Config holds runtime configuration for capture, gesture tuning and the
// surrounding services.
type Config struct {
	// Capture
	CameraID     int     `json:"camera_id"`
	FrameWidth   int     `json:"frame_width"`
	FrameHeight  int     `json:"frame_height"`
	Mirror       bool    `json:"mirror"`
	MotionThresh float64 `json:"motion_threshold"`
	IdleFPS      int     `json:"idle_fps"`
	ActiveFPS    int     `json:"active_fps"`
	IdleTimeout  float64 `json:"idle_timeout_sec"`

	// Gesture
	RequiredHand string `json:"required_hand"`
	ScreenWidth  int    `json:"screen_width"`
	ScreenHeight int    `json:"screen_height"`
	Tuning       Tuning `json:"tuning"`

	// Services
	PluginDir     string `json:"plugin_dir"`
	PluginTimeout int    `json:"plugin_timeout_ms"`
	Addr          string `json:"addr"`
	StaticDir     string `json:"static_dir"`
	DBPath        string `json:"db_path"`
	LogLevel      string `json:"log_level"`
}

// Tuning is the file form of gesture.Tuning. Durations are in seconds.
type Tuning struct {
	PinchThreshold float64 `json:"pinch_threshold"`
	SwipeThreshold float64 `json:"swipe_threshold"`
	ClickDebounce  float64 `json:"click_debounce_sec"`
	ScrollInterval float64 `json:"scroll_interval_sec"`
	SwipeDebounce  float64 `json:"swipe_debounce_sec"`
	Smoothing      float64 `json:"smoothing"`
	MinMovement    int     `json:"min_movement_px"`
	ScrollSpeed    int     `json:"scroll_speed"`
}

// DefaultConfig returns a Config populated with standard defaults. Paths are
// rooted at dataDir, typically ~/.mudra.
func DefaultConfig(dataDir string) *Config {
	t := gesture.DefaultTuning()
	return &Config{
		CameraID:     0,
		FrameWidth:   640,
		FrameHeight:  480,
		Mirror:       true,
		MotionThresh: 1.0,
		IdleFPS:      5,
		ActiveFPS:    15,
		IdleTimeout:  2,

		RequiredHand: string(detector.Right),
		ScreenWidth:  1920,
		ScreenHeight: 1080,
		Tuning:       TuningFrom(t),

		PluginDir:     filepath.Join(dataDir, "plugins"),
		PluginTimeout: 5000,
		Addr:          "127.0.0.1:8080",
		DBPath:        filepath.Join(dataDir, "mudra.db"),
		LogLevel:      "info",
	}
}

// DefaultDataDir returns ~/.mudra, or .mudra when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// TuningFrom converts gesture tuning to its file form.
func TuningFrom(t gesture.Tuning) Tuning {
	return Tuning{
		PinchThreshold: t.PinchThreshold,
		SwipeThreshold: t.SwipeThreshold,
		ClickDebounce:  t.ClickDebounce.Seconds(),
		ScrollInterval: t.ScrollInterval.Seconds(),
		SwipeDebounce:  t.SwipeDebounce.Seconds(),
		Smoothing:      t.Smoothing,
		MinMovement:    t.MinMovement,
		ScrollSpeed:    t.ScrollSpeed,
	}
}

// Gesture converts the file form back to gesture tuning.
func (t Tuning) Gesture() gesture.Tuning {
	return gesture.Tuning{
		PinchThreshold: t.PinchThreshold,
		SwipeThreshold: t.SwipeThreshold,
		ClickDebounce:  seconds(t.ClickDebounce),
		ScrollInterval: seconds(t.ScrollInterval),
		SwipeDebounce:  seconds(t.SwipeDebounce),
		Smoothing:      t.Smoothing,
		MinMovement:    t.MinMovement,
		ScrollSpeed:    t.ScrollSpeed,
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Validate clamps out-of-range values to their defaults. It fails only for
// values that have no sensible fallback.
func (c *Config) Validate() error {
	if c.FrameWidth <= 0 {
		c.FrameWidth = 640
	}
	if c.FrameHeight <= 0 {
		c.FrameHeight = 480
	}
	if c.MotionThresh <= 0 || c.MotionThresh > 100 {
		c.MotionThresh = 1.0
	}
	if c.IdleFPS <= 0 {
		c.IdleFPS = 5
	}
	if c.ActiveFPS < c.IdleFPS {
		c.ActiveFPS = max(15, c.IdleFPS)
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 2
	}
	if c.ScreenWidth <= 0 {
		c.ScreenWidth = 1920
	}
	if c.ScreenHeight <= 0 {
		c.ScreenHeight = 1080
	}
	if c.PluginTimeout <= 0 {
		c.PluginTimeout = 5000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.Tuning.clamp()

	if _, err := detector.ParseHandedness(c.RequiredHand); err != nil {
		return fmt.Errorf("required_hand: %w", err)
	}
	if err := c.Tuning.Gesture().Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

func (t *Tuning) clamp() {
	d := TuningFrom(gesture.DefaultTuning())
	if t.PinchThreshold <= 0 || t.PinchThreshold >= 1 {
		t.PinchThreshold = d.PinchThreshold
	}
	if t.SwipeThreshold <= 0 || t.SwipeThreshold >= 1 {
		t.SwipeThreshold = d.SwipeThreshold
	}
	if t.ClickDebounce < 0 {
		t.ClickDebounce = d.ClickDebounce
	}
	if t.ScrollInterval < 0 {
		t.ScrollInterval = d.ScrollInterval
	}
	if t.SwipeDebounce < 0 {
		t.SwipeDebounce = d.SwipeDebounce
	}
	if t.Smoothing < 0 || t.Smoothing >= 1 {
		t.Smoothing = d.Smoothing
	}
	if t.MinMovement < 0 {
		t.MinMovement = d.MinMovement
	}
	if t.ScrollSpeed <= 0 {
		t.ScrollSpeed = d.ScrollSpeed
	}
}

// Hand returns the required handedness. Call Validate first.
func (c *Config) Hand() detector.Handedness {
	h, _ := detector.ParseHandedness(c.RequiredHand)
	return h
}

// Screen returns the screen the pointer maps onto.
func (c *Config) Screen() gesture.Screen {
	return gesture.Screen{Width: c.ScreenWidth, Height: c.ScreenHeight}
}

// IdleTimeoutDuration returns IdleTimeout as a duration.
func (c *Config) IdleTimeoutDuration() time.Duration {
	return seconds(c.IdleTimeout)
}

// Load reads configuration from the JSON file at path on top of defaults.
// A missing file yields the defaults. On error the returned config holds
// the defaults.
func Load(path, dataDir string) (*Config, error) {
	cfg := DefaultConfig(dataDir)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return DefaultConfig(dataDir), fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(dataDir), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
