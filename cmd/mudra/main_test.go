package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/tray"
)

func TestSettingsURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:8080/", settingsURL(":8080"))
	assert.Equal(t, "http://localhost:9000/", settingsURL("localhost:9000"))
}

func TestFindWebDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	empty := t.TempDir()
	require.NoError(t, os.Chdir(empty))
	t.Cleanup(func() { os.Chdir(wd) })

	dataDir := t.TempDir()
	assert.Equal(t, "", findWebDir(dataDir))

	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "web"), 0755))
	assert.Equal(t, filepath.Join(dataDir, "web"), findWebDir(dataDir))

	require.NoError(t, os.Mkdir(filepath.Join(empty, "web"), 0755))
	got := findWebDir(dataDir)
	assert.Equal(t, "web", filepath.Base(got))
	assert.True(t, filepath.IsAbs(got))
	assert.NotEqual(t, filepath.Join(dataDir, "web"), got)
}

func TestLoadConfig_Flags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	configFlag = path
	t.Cleanup(func() { configFlag = "" })

	require.NoError(t, rootCmd.ParseFlags([]string{"--hand", "left", "--addr", ":9999", "--camera", "2"}))
	t.Cleanup(func() {
		for _, name := range []string{"hand", "addr", "camera"} {
			rootCmd.Flags().Lookup(name).Changed = false
		}
	})

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "Left", string(cfg.Hand()))
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 2, cfg.CameraID)
	assert.Equal(t, 1920, cfg.ScreenWidth)
}

func TestPrintPlugins(t *testing.T) {
	var buf bytes.Buffer
	printPlugins(&buf, "/tmp/plugins", nil)
	assert.Equal(t, "no plugins in /tmp/plugins\n", buf.String())

	buf.Reset()
	printPlugins(&buf, "/tmp/plugins", []*plugin.Plugin{
		{Manifest: plugin.Manifest{Name: "pointer", Version: "1.0.0", Actions: []string{"move", "click"}}},
	})
	assert.Equal(t, "pointer      1.0.0    move, click\n", buf.String())
}

func TestBindTray_FollowsOutsideChanges(t *testing.T) {
	a := app.New(app.Config{
		Camera:   capture.NewMockCamera(nil, false),
		Detector: detector.NewMockDetector(),
	})
	tr := tray.New(a.IsEnabled())
	bindTray(tr, a)

	a.SetEnabled(false)
	assert.False(t, tr.IsEnabled())

	a.SetEnabled(true)
	assert.True(t, tr.IsEnabled())

	a.ProcessHands([]detector.HandFrame{detector.PinchFrame(0.5, 0.5)}, time.Unix(1000, 0))
	assert.Equal(t, gesture.ActionClick.String(), tr.LastAction())
}
