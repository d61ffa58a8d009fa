package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"meowdash/internal/catalog"
	"meowdash/internal/dashboard"
)

func TestLoadFullConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")
	configContent := `
theme: latte
log_level: debug
web:
  enabled: false
  bind: 0.0.0.0
  port: 9000
timing:
  load_timeout: 10s
  refresh_delay: 250ms
asset_dir: pages
catalog:
  - label: Local
    address: local.html
panels:
  - local.html
  - ""
  - https://chatglm.cn/chat
mascot:
  enabled: false
  messages: cat.yaml
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Web.Enabled || cfg.Web.Bind != "0.0.0.0" || cfg.Web.Port != 9000 {
		t.Errorf("Web: got %+v", cfg.Web)
	}
	if cfg.Timing.LoadTimeout != 10*time.Second || cfg.Timing.RefreshDelay != 250*time.Millisecond {
		t.Errorf("Timing: got %+v", cfg.Timing)
	}
	if cfg.Timing.SpinnerSafety != 5*time.Second {
		t.Errorf("SpinnerSafety default lost: %v", cfg.Timing.SpinnerSafety)
	}
	if got := cfg.ResolveAssetDir(); got != filepath.Join(tempDir, "pages") {
		t.Errorf("ResolveAssetDir: got %q", got)
	}
	if got := cfg.ResolveMessagesPath(); got != filepath.Join(tempDir, "cat.yaml") {
		t.Errorf("ResolveMessagesPath: got %q", got)
	}
	if cfg.Mascot.Enabled {
		t.Error("Mascot.Enabled: got true")
	}
	if got := cfg.CatalogEntries(); len(got) != 1 || got[0].Address != "local.html" {
		t.Errorf("CatalogEntries: got %+v", got)
	}
	if cfg.PanelDefault(1) != "local.html" || cfg.PanelDefault(2) != "" || cfg.PanelDefault(3) != "https://chatglm.cn/chat" {
		t.Errorf("Panels: got %q", cfg.Panels)
	}
	if cfg.PanelDefault(4) != "" || cfg.PanelDefault(0) != "" {
		t.Error("PanelDefault out of range returned a tool")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}
	if cfg.Theme != "mocha" || !cfg.Web.Enabled || cfg.Web.Bind != "127.0.0.1" || !cfg.Mascot.Enabled {
		t.Errorf("defaults: got %+v", cfg)
	}
	if got := cfg.CatalogEntries(); len(got) != len(catalog.Defaults()) {
		t.Errorf("CatalogEntries: got %d entries, want built-in list", len(got))
	}
	want := dashboard.DefaultTiming()
	got := cfg.DashboardTiming()
	if got.LoadTimeout != want.LoadTimeout || got.ReloadDelay != want.ReloadDelay || got.SpinnerSafety != want.SpinnerSafety {
		t.Errorf("DashboardTiming: got %+v", got)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Theme != "mocha" {
		t.Errorf("Theme after parse error: got %q, want default", cfg.Theme)
	}
}

func TestLoadTruncatesPanels(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "panels: [a, b, c, d, e, f]\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Panels) != dashboard.PanelCount {
		t.Errorf("Panels: got %d, want %d", len(cfg.Panels), dashboard.PanelCount)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultDir(); got != filepath.Join("/tmp/xdg", "meowdash") {
		t.Errorf("DefaultDir: got %q", got)
	}
}
