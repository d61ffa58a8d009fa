package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"meowdash/internal/config"
	"meowdash/internal/dashboard"
	"meowdash/internal/instance"
	"meowdash/internal/logging"
	"meowdash/internal/mascot"
)

func TestLogManagerInitialization(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	lm, err := logging.NewManager(logging.Config{
		FilePath:       logPath,
		MaxSizeMB:      1,
		MaxBackups:     1,
		MaxAgeDays:     1,
		ChannelBufSize: 10,
		Level:          "debug",
	})
	if err != nil {
		t.Fatalf("failed to create LogManager: %v", err)
	}
	defer lm.Close()

	logger := lm.For("app")
	logger.Info("test message")
	_ = lm.Sync()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("log file was not created")
	}

	select {
	case entry := <-lm.Entries():
		if entry.Scope != "app" {
			t.Errorf("expected scope 'app', got %q", entry.Scope)
		}
		if entry.Message != "test message" {
			t.Errorf("expected message 'test message', got %q", entry.Message)
		}
	default:
		t.Error("no log entry received on channel")
	}
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestStartServices(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
web:
  enabled: true
  bind: 127.0.0.1
  port: 0
panels:
  - guide.html
  - ""
  - https://kimi.moonshot.cn/
mascot:
  enabled: false
`)

	svc, err := startServices(dir)
	if err != nil {
		t.Fatalf("startServices: %v", err)
	}
	defer svc.close()

	if svc.web == nil || svc.webURL == "" {
		t.Fatal("web server not started")
	}

	url, err := instance.Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if url != svc.webURL {
		t.Errorf("discovered %q, want %q", url, svc.webURL)
	}

	svc.openDefaults()
	snap := svc.engine.Snapshot()
	if pv := snap.Panel(1); pv.Address != "guide.html" || pv.State != dashboard.StateLoading {
		t.Errorf("panel 1 = %q %s, want guide.html loading", pv.Address, pv.State)
	}
	if pv := snap.Panel(2); pv.State != dashboard.StateEmpty {
		t.Errorf("panel 2 state = %s, want empty", pv.State)
	}
	if pv := snap.Panel(3); pv.Label != "Kimi" {
		t.Errorf("panel 3 label = %q, want catalog label Kimi", pv.Label)
	}

	if _, err := startServices(dir); !errors.Is(err, instance.ErrRunning) {
		t.Errorf("second start error = %v, want ErrRunning", err)
	}
}

func TestStartServices_WebDisabled(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "web:\n  enabled: false\n")

	svc, err := startServices(dir)
	if err != nil {
		t.Fatalf("startServices: %v", err)
	}
	defer svc.close()

	if svc.web != nil || svc.webURL != "" {
		t.Error("web server started although disabled")
	}
	if _, err := os.Stat(filepath.Join(dir, "meowdash.port")); !os.IsNotExist(err) {
		t.Errorf("port file written with web disabled: %v", err)
	}
}

func TestLoadMessages(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "cat.yaml")
	if err := os.WriteFile(custom, []byte("welcome: 你好\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	def := mascot.DefaultMessages()

	tests := []struct {
		name        string
		messages    string
		wantWelcome string
	}{
		{name: "built-in", messages: "", wantWelcome: def.Welcome},
		{name: "override", messages: "cat.yaml", wantWelcome: "你好"},
		{name: "missing file falls back", messages: "nope.yaml", wantWelcome: def.Welcome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Dir = dir
			cfg.Mascot.Messages = tt.messages
			got := loadMessages(&cfg, logging.NopLogger())
			if got.Welcome != tt.wantWelcome {
				t.Errorf("welcome = %q, want %q", got.Welcome, tt.wantWelcome)
			}
		})
	}
}
