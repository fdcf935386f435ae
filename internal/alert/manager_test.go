package alert

import (
	"os"
	"path/filepath"
	"testing"
)

// writePluginDir creates a plugin directory containing the given manifests,
// keyed by plugin directory name.
func writePluginDir(t *testing.T, manifests map[string]string) string {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cronos-plugins-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	for name, manifest := range manifests {
		pluginDir := filepath.Join(tmpDir, name)
		if err := os.MkdirAll(pluginDir, 0755); err != nil {
			t.Fatalf("failed to create plugin dir: %v", err)
		}
		if manifest == "" {
			continue // directory without plugin.json
		}
		manifestPath := filepath.Join(pluginDir, "plugin.json")
		if err := os.WriteFile(manifestPath, []byte(manifest), 0644); err != nil {
			t.Fatalf("failed to write manifest: %v", err)
		}
	}

	return tmpDir
}

func TestManager_Discover(t *testing.T) {
	dir := writePluginDir(t, map[string]string{
		"webhook": `{
			"name": "webhook",
			"version": "1.0.0",
			"description": "Posts engagement alerts to an HTTP endpoint",
			"executable": "webhook",
			"actions": ["notify"]
		}`,
		"desktop-notify": `{
			"name": "desktop-notify",
			"version": "0.2.0",
			"executable": "notify.sh",
			"actions": ["popup", "sound"]
		}`,
	})

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(m.List()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(m.List()))
	}

	webhook, err := m.Get("webhook")
	if err != nil {
		t.Fatalf("failed to get webhook plugin: %v", err)
	}
	if webhook.Manifest.Version != "1.0.0" {
		t.Errorf("version = %q, want 1.0.0", webhook.Manifest.Version)
	}
	if webhook.Executable != filepath.Join(dir, "webhook", "webhook") {
		t.Errorf("executable path = %q", webhook.Executable)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	dir := writePluginDir(t, map[string]string{
		"good": `{"name": "good", "executable": "run.sh", "actions": ["notify"]}`,
		"bad-json": `{not json`,
		"no-manifest": "",
	})

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(m.List()) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(m.List()))
	}
	if _, err := m.Get("good"); err != nil {
		t.Errorf("good plugin should be discovered: %v", err)
	}
}

func TestManager_Discover_MissingDir(t *testing.T) {
	m := NewManager("/non/existent/plugin/dir")
	if err := m.Discover(); err != nil {
		t.Errorf("Discover() on missing dir should not error: %v", err)
	}
	if len(m.List()) != 0 {
		t.Errorf("expected 0 plugins, got %d", len(m.List()))
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	dir := writePluginDir(t, map[string]string{
		"webhook": `{"name": "webhook", "executable": "webhook", "actions": ["notify"]}`,
	})

	m := NewManager(dir)
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	// Remove the plugin and rescan; it should disappear
	if err := os.RemoveAll(filepath.Join(dir, "webhook")); err != nil {
		t.Fatalf("failed to remove plugin dir: %v", err)
	}
	if err := m.Discover(); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}

	if _, err := m.Get("webhook"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound after rescan, got: %v", err)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Get("missing"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got: %v", err)
	}
}
