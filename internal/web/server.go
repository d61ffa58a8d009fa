// pattern: Imperative Shell

package web

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"path"
	"time"

	"meowdash/internal/assets"
	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
	"meowdash/internal/mascot"
)

// Server is the web server that serves the API, the browser host channel
// and the embedded dashboard page.
type Server struct {
	httpServer *http.Server
	engine     *dashboard.Engine
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker
	mascot     *mascotFeed
	static     fs.FS
	assetDir   string
	keepAlive  time.Duration

	// ctx outlives requests; websocket handlers stop when it is cancelled.
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds web server configuration.
type Config struct {
	Bind     string
	Port     int
	AssetDir string // served before the embedded files when set
}

// Option configures optional server features.
type Option func(*Server)

// WithMascot streams the cat to connected browser pages.
func WithMascot(msgs mascot.Messages) Option {
	return func(s *Server) {
		s.mascot = newMascotFeed(msgs, mascotWidth, s.logger)
	}
}

// WithStatic replaces the embedded page files.
func WithStatic(fsys fs.FS) Option {
	return func(s *Server) { s.static = fsys }
}

// New creates a web server around engine. Engine changes are pushed to SSE
// subscribers. logProvider must implement logging.LoggerProvider (both
// *logging.Manager and *logging.TestLogManager satisfy this interface).
func New(cfg Config, engine *dashboard.Engine, logProvider logging.LoggerProvider, opts ...Option) *Server {
	logger := logProvider.For("web")
	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)

	mux := http.NewServeMux()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine:    engine,
		logger:    logger,
		addr:      addr,
		events:    newEventBroker(),
		static:    assets.FS(),
		assetDir:  cfg.AssetDir,
		keepAlive: sseKeepAlive,
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if engine != nil {
		engine.OnChange(s.events.Notify)
	}
	if s.mascot != nil {
		go s.mascot.run(ctx)
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/host", s.handleHost)
	mux.HandleFunc("GET /api/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/panels", s.handleListPanels)
	mux.HandleFunc("GET /api/panels/{id}", s.handleGetPanel)
	mux.HandleFunc("POST /api/panels/{id}/select", s.handleSelect)
	mux.HandleFunc("POST /api/panels/{id}/retry", s.panelAction((*dashboard.Engine).Retry))
	mux.HandleFunc("POST /api/panels/{id}/open", s.panelAction((*dashboard.Engine).OpenExternally))
	mux.HandleFunc("POST /api/panels/{id}/refresh", s.panelAction((*dashboard.Engine).Refresh))
	mux.HandleFunc("POST /api/panels/{id}/zoom/{action}", s.handleZoom)
	mux.HandleFunc("PUT /api/panels/{id}/zoom", s.handleSetZoom)
	mux.HandleFunc("POST /api/panels/{id}/fullscreen", s.panelAction((*dashboard.Engine).EnterFullscreen))
	mux.HandleFunc("DELETE /api/panels/{id}/fullscreen", s.panelAction((*dashboard.Engine).ExitFullscreen))
	mux.HandleFunc("POST /api/panels/{id}/attempts/{token}/loaded", s.handleReportLoaded)
	mux.HandleFunc("POST /api/panels/{id}/attempts/{token}/failed", s.handleReportFailed)
	mux.Handle("/", s.staticHandler())

	return s
}

// staticHandler serves the asset directory first, then the embedded files.
func (s *Server) staticHandler() http.Handler {
	embedded := http.FileServer(http.FS(s.static))
	if s.assetDir == "" {
		return embedded
	}
	local := http.Dir(s.assetDir)
	localServer := http.FileServer(local)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f, err := local.Open(path.Clean("/" + r.URL.Path)); err == nil {
			info, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !info.IsDir() {
				localServer.ServeHTTP(w, r)
				return
			}
		}
		embedded.ServeHTTP(w, r)
	})
}

// Listen binds the server to its configured address and returns the listener.
// Call Serve() after Listen() to start accepting connections.
// This two-step approach allows callers to obtain the actual bound address
// (useful for ephemeral port 0 in tests) before the server blocks on Serve().
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on the listener. Blocks until the server stops.
// Must call Listen() first.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Start is a convenience that calls Listen() then Serve(). Blocks until the server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown closes host channels and event streams, then stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
