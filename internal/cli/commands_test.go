// pattern: Imperative Shell
package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meowdash/internal/catalog"
)

func TestBuildApp_VersionCommand_PrintsVersion(t *testing.T) {
	app := BuildApp("1.2.3", "", nil)
	versionCmd, ok := app.commands["version"]
	if !ok {
		t.Fatal("version command not registered")
	}

	var err error
	output := captureStdout(t, func() { err = versionCmd.Run(nil) })
	if err != nil {
		t.Errorf("version command returned error: %v", err)
	}
	if output != "1.2.3\n" {
		t.Errorf("version command output = %q, want \"1.2.3\\n\"", output)
	}
}

func TestBuildApp_ServeCommand_CallsServe(t *testing.T) {
	var passed []string
	app := BuildApp("1.0.0", "", func(args []string) error {
		passed = args
		return nil
	})
	if err := app.commands["serve"].Run([]string{"--x"}); err != nil {
		t.Fatalf("serve returned error: %v", err)
	}
	if len(passed) != 1 || passed[0] != "--x" {
		t.Errorf("serve args = %v", passed)
	}

	if err := BuildApp("1.0.0", "", nil).commands["serve"].Run(nil); err == nil {
		t.Error("serve without a runner should fail")
	}
}

func TestBuildApp_RegistersPanelGroup(t *testing.T) {
	app := BuildApp("1.0.0", "", nil)
	group, ok := app.groups["panel"]
	if !ok {
		t.Fatal("panel group not registered")
	}
	for _, name := range []string{"list", "show", "select", "close", "retry", "open", "refresh", "zoom", "fullscreen", "wait"} {
		cmd, ok := group.Commands[name]
		if !ok {
			t.Errorf("panel %s not registered", name)
			continue
		}
		if !cmd.RequiresInstance || !strings.HasPrefix(cmd.Usage, "Usage: meowdash panel "+name) {
			t.Errorf("panel %s = %+v", name, cmd)
		}
	}
}

func TestWriteCatalog_MergesDropIns(t *testing.T) {
	dir := t.TempDir()
	config := "catalog:\n  - label: Local\n    address: local.html\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "catalog.d"), 0o755); err != nil {
		t.Fatal(err)
	}
	dropIn := "- label: Extra\n  address: https://extra.example\n- label: Local again\n  address: local.html\n"
	if err := os.WriteFile(filepath.Join(dir, "catalog.d", "extra.yaml"), []byte(dropIn), 0o644); err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	if err := writeCatalog(buf, dir); err != nil {
		t.Fatalf("writeCatalog() error = %v", err)
	}
	var got []catalog.Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	want := []catalog.Entry{
		{Label: "Local", Address: "local.html"},
		{Label: "Extra", Address: "https://extra.example"},
		catalog.ChatGLM,
	}
	if len(got) != len(want) {
		t.Fatalf("catalog = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestWriteCatalog_BadConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("catalog: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if err := writeCatalog(buf, dir); err == nil {
		t.Fatal("writeCatalog() should fail on a broken config")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote output despite the error: %s", buf.String())
	}
}

func TestBuildApp_CleanupCommand(t *testing.T) {
	app := BuildApp("1.0.0", t.TempDir(), nil)
	cleanupCmd, ok := app.commands["cleanup"]
	if !ok {
		t.Fatal("cleanup command not registered")
	}

	var err error
	output := captureStdout(t, func() { err = cleanupCmd.Run(nil) })
	if err != nil {
		t.Errorf("cleanup command returned error: %v", err)
	}
	if !strings.Contains(output, "Cleaned up") {
		t.Errorf("expected cleanup message in output, got: %s", output)
	}
}
