package web_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"meowdash/internal/catalog"
	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
	"meowdash/internal/web"
)

// serveBare starts a server the test shuts down itself. done receives the
// Serve result.
func serveBare(t *testing.T) (s *web.Server, done <-chan error) {
	t.Helper()
	lm := logging.NewTestLogManager(50)
	t.Cleanup(func() { _ = lm.Close() })

	engine := dashboard.NewEngine(dashboard.NewBoard(catalog.New(catalog.Defaults()), dashboard.DefaultTiming()))
	t.Cleanup(engine.Close)

	s = web.New(web.Config{Bind: "127.0.0.1", Port: 0}, engine, lm)
	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ch := make(chan error, 1)
	go func() { ch <- s.Serve(ln) }()
	return s, ch
}

func TestHandleHealth(t *testing.T) {
	env := startServer(t, web.Config{})

	resp, err := http.Get(env.baseURL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != `{"status":"ok"}` {
		t.Errorf("health = %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestServer_AddrBeforeListen(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	t.Cleanup(func() { _ = lm.Close() })

	s := web.New(web.Config{Bind: "127.0.0.1", Port: 8765}, nil, lm)
	if addr := s.Addr(); addr != "127.0.0.1:8765" {
		t.Errorf("Addr() before Listen() = %q, want 127.0.0.1:8765", addr)
	}
}

func TestServer_BindFailure(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	t.Cleanup(func() { _ = lm.Close() })

	occupier, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not open occupier listener: %v", err)
	}
	defer func() { _ = occupier.Close() }()
	port := occupier.Addr().(*net.TCPAddr).Port

	s := web.New(web.Config{Bind: "127.0.0.1", Port: port}, nil, lm)
	if err := s.Start(); err == nil || !strings.Contains(err.Error(), "listen") {
		t.Errorf("Start() on a busy port error = %v, want listen error", err)
	}
}

func TestServer_ShutdownEndsOpenStreams(t *testing.T) {
	s, done := serveBare(t)
	addr := s.Addr()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/api/events", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	events := bufio.NewReader(resp.Body)
	if line, err := events.ReadString('\n'); err != nil || !strings.HasPrefix(line, "event: connected") {
		t.Fatalf("first event line = %q, %v", line, err)
	}

	conn, _, err := websocket.Dial(ctx, "ws://"+addr+"/api/host", nil)
	if err != nil {
		t.Fatalf("dial host: %v", err)
	}
	defer func() { _ = conn.CloseNow() }()
	var first web.HostMessage
	if err := wsjson.Read(ctx, conn, &first); err != nil {
		t.Fatalf("no replay frame on connect: %v", err)
	}

	streamEnded := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, events)
		streamEnded <- err
	}()
	socketEnded := make(chan error, 1)
	go func() {
		for {
			var m web.HostMessage
			if err := wsjson.Read(ctx, conn, &m); err != nil {
				socketEnded <- err
				return
			}
		}
	}()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer shutdownCancel()
	start := time.Now()
	if err := s.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("Shutdown() error = %v after %s", err, time.Since(start))
	}

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve() did not return after Shutdown()")
	}

	select {
	case <-streamEnded:
	case <-time.After(3 * time.Second):
		t.Error("event stream still open after Shutdown()")
	}
	select {
	case err := <-socketEnded:
		if errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("host socket ended by the test deadline, not the server: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Error("host socket still open after Shutdown()")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	if _, err := client.Get("http://" + addr + "/api/health"); err == nil {
		t.Error("server still accepting connections after Shutdown()")
	}
}

func TestServer_StartServesUntilShutdown(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	t.Cleanup(func() { _ = lm.Close() })

	occupier, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := occupier.Addr().(*net.TCPAddr).Port
	_ = occupier.Close()

	s := web.New(web.Config{Bind: "127.0.0.1", Port: port}, nil, lm)
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/api/health"
	deadline := time.Now().Add(3 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never answered: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Start() returned %v, want ErrServerClosed", err)
	}
}
