package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"meowdash/internal/catalog"
	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
	"meowdash/internal/web"
)

type recordingOpener struct {
	mu     sync.Mutex
	opened []string
}

func (o *recordingOpener) Open(address string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, address)
	return nil
}

func (o *recordingOpener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

type testEnv struct {
	engine  *dashboard.Engine
	opener  *recordingOpener
	baseURL string
}

func startServer(t *testing.T, cfg web.Config, opts ...web.Option) *testEnv {
	t.Helper()
	lm := logging.NewTestLogManager(200)

	opener := &recordingOpener{}
	board := dashboard.NewBoard(catalog.New(catalog.Defaults()), dashboard.DefaultTiming())
	engine := dashboard.NewEngine(board, dashboard.WithOpener(opener), dashboard.WithLogger(lm.For("engine")))

	cfg.Bind = "127.0.0.1"
	cfg.Port = 0
	s := web.New(cfg, engine, lm, opts...)
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
		engine.Close()
		_ = lm.Close()
	})

	return &testEnv{engine: engine, opener: opener, baseURL: "http://" + s.Addr()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.baseURL+path, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, data
}

func decodePanel(t *testing.T, data []byte) dashboard.PanelView {
	t.Helper()
	var v dashboard.PanelView
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode panel %s: %v", data, err)
	}
	return v
}

// loadPanel selects address on panel id and reports the attempt loaded.
func (e *testEnv) loadPanel(t *testing.T, id int, address string) dashboard.PanelView {
	t.Helper()
	status, data := e.do(t, "POST", "/api/panels/"+itoa(id)+"/select", web.SelectRequest{Address: address})
	if status != http.StatusOK {
		t.Fatalf("select status = %d: %s", status, data)
	}
	v := decodePanel(t, data)
	if v.State != dashboard.StateLoading || v.Token == 0 {
		t.Fatalf("after select: %+v", v)
	}
	status, data = e.do(t, "POST", "/api/panels/"+itoa(id)+"/attempts/"+utoa(v.Token)+"/loaded", nil)
	if status != http.StatusOK {
		t.Fatalf("loaded status = %d: %s", status, data)
	}
	return decodePanel(t, data)
}

func itoa(i int) string { return utoa(uint64(i)) }

func utoa(u uint64) string {
	if u == 0 {
		return "0"
	}
	var b []byte
	for u > 0 {
		b = append([]byte{byte('0' + u%10)}, b...)
		u /= 10
	}
	return string(b)
}

func TestAPI_ListPanelsAndCatalog(t *testing.T) {
	env := startServer(t, web.Config{})

	status, data := env.do(t, "GET", "/api/panels", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Panels) != dashboard.PanelCount {
		t.Errorf("panels = %d, want %d", len(snap.Panels), dashboard.PanelCount)
	}
	if snap.Panels[0].Title != "窗口 1" || snap.Panels[0].State != dashboard.StateEmpty {
		t.Errorf("panel 1 = %+v", snap.Panels[0])
	}

	status, data = env.do(t, "GET", "/api/catalog", nil)
	if status != http.StatusOK {
		t.Fatalf("catalog status = %d", status)
	}
	var entries []catalog.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, e := range entries {
		if e == catalog.ChatGLM {
			found = true
		}
	}
	if !found {
		t.Errorf("catalog missing ChatGLM: %+v", entries)
	}
}

func TestAPI_GetPanelNotFound(t *testing.T) {
	env := startServer(t, web.Config{})
	for _, path := range []string{"/api/panels/0", "/api/panels/5", "/api/panels/abc"} {
		if status, _ := env.do(t, "GET", path, nil); status != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, status)
		}
	}
}

func TestAPI_SelectLoadAndZoom(t *testing.T) {
	env := startServer(t, web.Config{})
	v := env.loadPanel(t, 2, catalog.ChatGLM.Address)
	if v.State != dashboard.StateLoaded || v.Title != "智谱清言" || !v.ControlsEnabled {
		t.Fatalf("loaded panel = %+v", v)
	}
	if len(v.Sandbox) != len(catalog.SandboxTokens) {
		t.Errorf("sandbox = %v", v.Sandbox)
	}

	tests := []struct {
		method  string
		path    string
		body    any
		status  int
		percent int
	}{
		{"POST", "/api/panels/2/zoom/in", nil, http.StatusOK, 110},
		{"POST", "/api/panels/2/zoom/in", nil, http.StatusOK, 125},
		{"POST", "/api/panels/2/zoom/reset", nil, http.StatusOK, 100},
		{"POST", "/api/panels/2/zoom/out", nil, http.StatusOK, 90},
		{"PUT", "/api/panels/2/zoom", web.ZoomRequest{Index: 0}, http.StatusOK, 50},
		{"PUT", "/api/panels/2/zoom", web.ZoomRequest{Index: 42}, http.StatusBadRequest, 0},
		{"POST", "/api/panels/2/zoom/sideways", nil, http.StatusNotFound, 0},
	}
	for _, tt := range tests {
		status, data := env.do(t, tt.method, tt.path, tt.body)
		if status != tt.status {
			t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.path, status, tt.status, data)
			continue
		}
		if tt.percent != 0 {
			if got := decodePanel(t, data).Geometry.Percent; got != tt.percent {
				t.Errorf("%s %s percent = %d, want %d", tt.method, tt.path, got, tt.percent)
			}
		}
	}
}

func TestAPI_ControlsRequireContent(t *testing.T) {
	env := startServer(t, web.Config{})
	tests := []struct {
		method string
		path   string
		status int
	}{
		{"POST", "/api/panels/1/zoom/in", http.StatusConflict},
		{"POST", "/api/panels/1/fullscreen", http.StatusConflict},
		{"POST", "/api/panels/1/retry", http.StatusConflict},
		{"POST", "/api/panels/1/open", http.StatusConflict},
		{"POST", "/api/panels/1/refresh", http.StatusOK},
		{"DELETE", "/api/panels/1/fullscreen", http.StatusOK},
	}
	for _, tt := range tests {
		if status, data := env.do(t, tt.method, tt.path, nil); status != tt.status {
			t.Errorf("%s %s status = %d, want %d: %s", tt.method, tt.path, status, tt.status, data)
		}
	}
}

func TestAPI_FullscreenSwitches(t *testing.T) {
	env := startServer(t, web.Config{})
	env.loadPanel(t, 1, "https://a.example")
	env.loadPanel(t, 3, "https://c.example")

	if status, _ := env.do(t, "POST", "/api/panels/1/fullscreen", nil); status != http.StatusOK {
		t.Fatalf("enter fullscreen status = %d", status)
	}
	if status, _ := env.do(t, "POST", "/api/panels/3/fullscreen", nil); status != http.StatusOK {
		t.Fatalf("switch fullscreen status = %d", status)
	}
	snap := env.engine.Snapshot()
	if snap.Fullscreen != 3 || snap.Panel(1).Fullscreen || !snap.Panel(1).Hidden {
		t.Errorf("after switch: fullscreen=%d panel1=%+v", snap.Fullscreen, snap.Panel(1))
	}

	status, data := env.do(t, "DELETE", "/api/panels/3/fullscreen", nil)
	if status != http.StatusOK || decodePanel(t, data).Fullscreen {
		t.Errorf("exit fullscreen status = %d body = %s", status, data)
	}
}

func TestAPI_FailureRetryAndOpen(t *testing.T) {
	env := startServer(t, web.Config{})
	status, data := env.do(t, "POST", "/api/panels/4/select", web.SelectRequest{Label: "Broken", Address: "https://broken.example"})
	if status != http.StatusOK {
		t.Fatalf("select status = %d", status)
	}
	first := decodePanel(t, data)

	report := web.FailureReport{Detail: "refused", Causes: []string{"host cause"}}
	status, data = env.do(t, "POST", "/api/panels/4/attempts/"+utoa(first.Token)+"/failed", report)
	if status != http.StatusOK {
		t.Fatalf("failed status = %d: %s", status, data)
	}
	v := decodePanel(t, data)
	if v.State != dashboard.StateFailed || v.Failure == nil || v.Failure.Causes[0] != "host cause" || v.Failure.Label != "Broken" {
		t.Fatalf("failed panel = %+v failure=%+v", v, v.Failure)
	}

	if status, _ := env.do(t, "POST", "/api/panels/4/open", nil); status != http.StatusOK {
		t.Errorf("open status = %d", status)
	}
	if got := env.opener.Opened(); len(got) != 1 || got[0] != "https://broken.example" {
		t.Errorf("opened = %v", got)
	}

	status, data = env.do(t, "POST", "/api/panels/4/retry", nil)
	if status != http.StatusOK {
		t.Fatalf("retry status = %d", status)
	}
	retried := decodePanel(t, data)
	if retried.State != dashboard.StateLoading || retried.Token == first.Token {
		t.Errorf("retried = %+v", retried)
	}

	// the first attempt's late success is ignored
	status, data = env.do(t, "POST", "/api/panels/4/attempts/"+utoa(first.Token)+"/loaded", nil)
	if status != http.StatusOK || decodePanel(t, data).State != dashboard.StateLoading {
		t.Errorf("stale report changed state: %d %s", status, data)
	}

	if status, _ := env.do(t, "POST", "/api/panels/4/attempts/nope/loaded", nil); status != http.StatusBadRequest {
		t.Errorf("bad token status = %d", status)
	}
}

func TestAPI_SelectBadBody(t *testing.T) {
	env := startServer(t, web.Config{})
	req, _ := http.NewRequest("POST", env.baseURL+"/api/panels/1/select", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStatic_EmbeddedAndAssetDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.html"), []byte("<p>local tool</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := startServer(t, web.Config{AssetDir: dir})

	tests := []struct {
		path string
		want string
	}{
		{"/", "神奇喵喵"},
		{"/guide.html", "使用说明"},
		{"/mine.html", "local tool"},
	}
	for _, tt := range tests {
		status, data := env.do(t, "GET", tt.path, nil)
		if status != http.StatusOK || !strings.Contains(string(data), tt.want) {
			t.Errorf("GET %s = %d, body missing %q", tt.path, status, tt.want)
		}
	}
}

func TestEvents_RefreshOnChange(t *testing.T) {
	env := startServer(t, web.Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", env.baseURL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	if err != nil || !strings.Contains(string(buf[:n]), "event: connected") {
		t.Fatalf("first event = %q, %v", buf[:n], err)
	}

	if err := env.engine.SelectTool(1, "", "https://a.example"); err != nil {
		t.Fatal(err)
	}
	n, err = resp.Body.Read(buf)
	if err != nil || !strings.Contains(string(buf[:n]), "event: refresh") {
		t.Errorf("second event = %q, %v", buf[:n], err)
	}
}
