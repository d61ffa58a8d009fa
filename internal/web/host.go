// pattern: Imperative Shell

package web

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
)

const hostQueueSize = 64

// HostMessage is one frame on the /api/host channel. The server sends
// navigate, clear, announce and mascot frames; the page sends loaded,
// failed, poke and touch frames.
type HostMessage struct {
	Type    string   `json:"type"`
	Panel   int      `json:"panel,omitempty"`
	Token   uint64   `json:"token,omitempty"`
	Address string   `json:"address,omitempty"`
	Sandbox []string `json:"sandbox,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Causes  []string `json:"causes,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

// browserHost relays engine navigations to one connected page. Every
// method only queues, so the engine never waits on the network.
type browserHost struct {
	out     chan HostMessage
	logger  *logging.ScopedLogger
	dropped atomic.Int64
}

func newBrowserHost(logger *logging.ScopedLogger) *browserHost {
	return &browserHost{
		out:    make(chan HostMessage, hostQueueSize),
		logger: logger,
	}
}

func (h *browserHost) send(m HostMessage) bool {
	select {
	case h.out <- m:
		return true
	default:
		h.dropped.Add(1)
		return false
	}
}

func (h *browserHost) Navigate(nav dashboard.Navigate) {
	m := HostMessage{Type: "navigate", Panel: nav.Panel, Token: nav.Token, Address: nav.Address, Sandbox: nav.Sandbox}
	if !h.send(m) {
		h.logger.Warn("host queue full, navigation dropped", "panel", nav.Panel, "token", nav.Token)
	}
}

func (h *browserHost) Clear(panel int) {
	if !h.send(HostMessage{Type: "clear", Panel: panel}) {
		h.logger.Warn("host queue full, clear dropped", "panel", panel)
	}
}

func (h *browserHost) Announce(a dashboard.Announce) {
	if !h.send(HostMessage{Type: "announce", Panel: a.Panel, Token: a.Token, Address: a.Address}) {
		h.logger.Debug("announce dropped", "panel", a.Panel)
	}
}

// handleHost handles GET /api/host, the websocket a dashboard page uses to
// embed tools. The page receives the current board on connect.
func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(64 << 10)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	host := newBrowserHost(s.logger)
	detach := s.engine.AttachHost(host)
	defer detach()
	if s.mascot != nil {
		s.mascot.subscribe(host)
		defer s.mascot.unsubscribe(host)
	}

	s.logger.Info("browser host connected", "remote", r.RemoteAddr)

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case m := <-host.out:
				if err := wsjson.Write(ctx, conn, m); err != nil {
					return
				}
			}
		}
	}()

	for {
		var m HostMessage
		if err := wsjson.Read(ctx, conn, &m); err != nil {
			if !errors.Is(err, context.Canceled) && websocket.CloseStatus(err) == -1 {
				s.logger.Debug("browser host read ended", "error", err)
			}
			break
		}
		s.handleHostMessage(m)
	}

	s.logger.Info("browser host disconnected", "remote", r.RemoteAddr, "dropped", host.dropped.Load())
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func (s *Server) handleHostMessage(m HostMessage) {
	var err error
	switch m.Type {
	case "loaded":
		err = s.engine.ReportLoaded(m.Panel, m.Token)
	case "failed":
		err = s.engine.ReportFailed(m.Panel, m.Token, m.Detail, m.Causes...)
	case "poke":
		if s.mascot != nil {
			s.mascot.poke()
		}
	case "touch":
		if s.mascot != nil {
			s.mascot.touch()
		}
	default:
		s.logger.Debug("unknown host message", "type", m.Type)
	}
	if err != nil {
		s.logger.Debug("host report rejected", "type", m.Type, "panel", m.Panel, "error", err)
	}
}
