// pattern: Imperative Shell
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"meowdash/internal/assets"
	"meowdash/internal/catalog"
	"meowdash/internal/cli"
	"meowdash/internal/config"
	"meowdash/internal/content"
	"meowdash/internal/dashboard"
	"meowdash/internal/events"
	"meowdash/internal/instance"
	"meowdash/internal/launch"
	"meowdash/internal/logging"
	"meowdash/internal/mascot"
	"meowdash/internal/tui"
	"meowdash/internal/web"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the subcommand),
	// so that --help after a subcommand is handled by the subcommand.
	flag.CommandLine.SetInterspersed(false)

	configDir := flag.StringP("config-dir", "c", "", "config directory (default: ~/.config/meowdash)")
	guide := flag.Bool("guide", false, "print the scripting guide")

	serve := func(args []string) error { return runServe(*configDir) }

	// Override flag.Usage before Parse so --help uses the CLI app's help
	flag.Usage = func() {
		app := cli.BuildApp(version, *configDir, serve)
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	app := cli.BuildApp(version, *configDir, serve)

	if *guide {
		app.PrintGuide(os.Stdout)
		return
	}

	if app.Execute(flag.Args()) {
		runTUI(*configDir)
	}
}

// loadConfig loads the configuration from the specified directory or default location.
func loadConfig(configDir string) (config.Config, error) {
	if configDir != "" {
		return config.LoadFromDir(configDir)
	}
	return config.Load()
}

// services is everything the terminal dashboard and serve mode share: the
// instance lock, logging, the engine and the web server.
type services struct {
	cfg     config.Config
	logs    *logging.Manager
	logger  *logging.ScopedLogger
	engine  *dashboard.Engine
	web     *web.Server
	webURL  string
	msgs    mascot.Messages
	ctx     context.Context
	closers []func()

	// program receives board changes once the terminal UI is running.
	program atomic.Pointer[tea.Program]
}

// startServices takes the instance lock and brings up the engine and the
// web server. Call close when done.
func startServices(configDir string) (*services, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}

	dataDir := cli.ResolveDataDir(configDir)
	svc := &services{cfg: cfg}

	// Acquire single-instance lock
	fl, err := instance.Lock(dataDir)
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, func() { instance.Cleanup(dataDir, fl) })

	logManager, err := logging.NewManager(logging.Config{
		FilePath:       filepath.Join(dataDir, "meowdash.log"),
		MaxSizeMB:      10,
		MaxBackups:     3,
		MaxAgeDays:     7,
		ChannelBufSize: 1000,
		Level:          cfg.LogLevel,
	})
	if err != nil {
		svc.close()
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	svc.logs = logManager
	svc.closers = append(svc.closers, func() { _ = logManager.Close() })
	svc.logger = logManager.For("app")
	svc.logger.Info("application starting", "version", version, "config_dir", cfg.Dir)

	entries, err := config.Catalog(cfg.Dir)
	if err != nil {
		svc.logger.Warn("catalog load incomplete", "error", err)
	}
	if len(entries) == 0 {
		entries = cfg.CatalogEntries()
	}

	svc.engine = dashboard.NewEngine(
		dashboard.NewBoard(catalog.New(entries), cfg.DashboardTiming()),
		dashboard.WithOpener(launch.NewBrowser(
			launch.WithLogger(logManager.For("launch")),
			launch.WithBaseURL(func() string { return svc.webURL }),
			launch.WithAssetDir(cfg.ResolveAssetDir()),
		)),
		dashboard.WithLogger(logManager.For("engine")),
	)
	svc.closers = append(svc.closers, svc.engine.Close)
	svc.engine.OnChange(func() { svc.send(events.BoardChangedMsg{}) })

	svc.msgs = loadMessages(&cfg, svc.logger)

	ctx, cancel := context.WithCancel(context.Background())
	svc.ctx = ctx
	svc.closers = append(svc.closers, cancel)

	if cfg.Web.Enabled {
		if err := svc.startWeb(dataDir); err != nil {
			svc.close()
			return nil, err
		}
	}
	return svc, nil
}

func (svc *services) startWeb(dataDir string) error {
	var opts []web.Option
	if svc.cfg.Mascot.Enabled {
		opts = append(opts, web.WithMascot(svc.msgs))
	}
	svc.web = web.New(
		web.Config{Bind: svc.cfg.Web.Bind, Port: svc.cfg.Web.Port, AssetDir: svc.cfg.ResolveAssetDir()},
		svc.engine,
		svc.logs,
		opts...,
	)
	ln, err := svc.web.Listen()
	if err != nil {
		svc.logger.Error("web server listen error", "error", err)
		return err
	}

	// Write port file for CLI discovery
	if err := instance.WritePort(dataDir, svc.web.Addr()); err != nil {
		svc.logger.Error("failed to write port file", "error", err)
	}
	svc.webURL = fmt.Sprintf("http://%s", svc.web.Addr())

	go func() {
		if err := svc.web.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			svc.logger.Error("web server error", "error", err)
		}
	}()
	svc.closers = append(svc.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.web.Shutdown(ctx); err != nil {
			svc.logger.Error("web server shutdown error", "error", err)
		}
	})
	svc.logger.Info("web server listening", "url", svc.webURL)
	return nil
}

// watchConfig adds tools that appear in the config directory to the
// catalog. onAdded, if set, is told how many were new.
func (svc *services) watchConfig(onAdded func(int)) {
	logger := svc.logs.For("config")
	w, err := config.NewWatcher(svc.cfg.Dir, func(entries []catalog.Entry) {
		added := svc.engine.AppendCatalog(entries)
		if len(added) > 0 && onAdded != nil {
			onAdded(len(added))
		}
	}, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", "error", err)
		return
	}
	go func() {
		if err := w.Start(svc.ctx); err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()
}

// openDefaults loads the configured startup tool into each panel.
func (svc *services) openDefaults() {
	for id := 1; id <= dashboard.PanelCount; id++ {
		address := svc.cfg.PanelDefault(id)
		if address == "" {
			continue
		}
		if err := svc.engine.SelectTool(id, "", address); err != nil {
			svc.logger.Warn("failed to open startup tool", "panel", id, "address", address, "error", err)
		}
	}
}

// send forwards msg to the terminal UI without blocking the caller.
func (svc *services) send(msg tea.Msg) {
	if p := svc.program.Load(); p != nil {
		go p.Send(msg)
	}
}

func (svc *services) close() {
	for i := len(svc.closers) - 1; i >= 0; i-- {
		svc.closers[i]()
	}
}

func loadMessages(cfg *config.Config, logger *logging.ScopedLogger) mascot.Messages {
	path := cfg.ResolveMessagesPath()
	if path == "" {
		return mascot.DefaultMessages()
	}
	msgs, err := mascot.LoadMessages(path)
	if err != nil {
		logger.Warn("using built-in mascot messages", "error", err)
		return mascot.DefaultMessages()
	}
	return msgs
}

// runTUI launches the interactive dashboard.
func runTUI(configDir string) {
	svc, err := startServices(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	exitCode := 0
	defer func() {
		svc.close()
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	fetcher := content.NewFetcher(svc.engine.Timing().LoadTimeout,
		content.WithAssetDir(svc.cfg.ResolveAssetDir()),
		content.WithAssets(assets.FS()),
	)
	host := content.NewTerminalHost(fetcher, svc.engine, svc.logs.For("content"), func(panel int) {
		svc.send(events.ContentUpdatedMsg{Panel: panel})
	})
	defer host.Close()

	opts := []tui.Option{
		tui.WithContent(host),
		tui.WithTheme(svc.cfg.Theme),
		tui.WithLogger(svc.logs.For("tui")),
		tui.WithLogEntries(svc.logs.Entries()),
	}
	if svc.cfg.Mascot.Enabled {
		opts = append(opts, tui.WithMascot(mascot.New(svc.msgs, nil, 0, time.Now())))
	}
	p := tea.NewProgram(tui.NewModel(svc.engine, opts...), tea.WithAltScreen())
	svc.program.Store(p)

	detach := svc.engine.AttachHost(host)
	defer detach()

	svc.watchConfig(func(added int) { svc.send(events.CatalogReloadedMsg{Added: added}) })
	svc.openDefaults()

	if svc.webURL != "" {
		svc.send(events.WebListenURLMsg{URL: svc.webURL})
	}

	if _, err := p.Run(); err != nil {
		svc.logger.Error("application exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		exitCode = 1
		return
	}

	svc.logger.Info("application stopped")
}

// runServe runs the web dashboard until interrupted.
func runServe(configDir string) error {
	svc, err := startServices(configDir)
	if err != nil {
		return err
	}
	defer svc.close()

	if svc.web == nil {
		return errors.New("web server is disabled (set web.enabled: true)")
	}

	svc.watchConfig(func(added int) {
		svc.logger.Info("catalog reloaded", "added", added)
	})
	svc.openDefaults()

	fmt.Fprintf(os.Stdout, "meowdash serving on %s\n", svc.webURL)

	ctx, stop := signal.NotifyContext(svc.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	svc.logger.Info("application stopped")
	return nil
}
