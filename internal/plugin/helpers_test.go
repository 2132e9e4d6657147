package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writePlugin creates dir/name with a manifest and a shell script body, and
// returns the plugin directory.
func writePlugin(t *testing.T, dir, name, script string, actions ...string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins need a POSIX shell")
	}

	pluginDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	manifest, err := json.Marshal(Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Actions:    actions,
	})
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, ManifestFile), manifest, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "run.sh"), []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return pluginDir
}

// scriptPlugin returns a Plugin backed by a one-off shell script.
func scriptPlugin(t *testing.T, script string) *Plugin {
	t.Helper()
	dir := writePlugin(t, t.TempDir(), "script", script)
	return &Plugin{
		Manifest:   Manifest{Name: "script", Executable: "run.sh"},
		Path:       dir,
		Executable: filepath.Join(dir, "run.sh"),
	}
}
