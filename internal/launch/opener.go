// pattern: Imperative Shell

// Package launch hands addresses to the desktop browser.
package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"meowdash/internal/catalog"
	"meowdash/internal/logging"
)

// ErrNoBrowser is returned when no launcher command could be started.
var ErrNoBrowser = errors.New("no browser launcher available")

// ErrUnresolved is returned for a local address that has neither a web
// server nor a file in the asset directory behind it.
var ErrUnresolved = errors.New("local page is not reachable from a browser")

// starter starts a command without waiting for it.
type starter func(name string, args ...string) (wait func() error, err error)

func startCommand(name string, args ...string) (func() error, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Wait, nil
}

// Browser opens addresses in a new browser tab. $BROWSER wins when set,
// otherwise the platform launcher is used.
type Browser struct {
	goos   string
	getenv   func(string) string
	start    starter
	logger   *logging.ScopedLogger
	baseURL  func() string
	assetDir string
	stat     func(string) (os.FileInfo, error)
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger logs launches and launcher exits.
func WithLogger(l *logging.ScopedLogger) Option {
	return func(b *Browser) { b.logger = l }
}

// WithBaseURL serves local addresses from the running web server. base is
// read on every Open and may return "" while no server is listening.
func WithBaseURL(base func() string) Option {
	return func(b *Browser) { b.baseURL = base }
}

// WithAssetDir opens local addresses as file:// URLs under dir when no web
// server is available.
func WithAssetDir(dir string) Option {
	return func(b *Browser) { b.assetDir = dir }
}

func NewBrowser(opts ...Option) *Browser {
	b := &Browser{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		start:  startCommand,
		logger: logging.NopLogger(),
		stat:   os.Stat,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolve turns address into something a browser started outside the
// dashboard can load. External and file:// addresses pass through. Local
// pages are served by the web server when one is running, otherwise read
// from the asset directory.
func (b *Browser) Resolve(address string) (string, error) {
	address = strings.TrimSpace(address)
	if catalog.IsExternal(address) || strings.HasPrefix(strings.ToLower(address), "file:") {
		return address, nil
	}
	if b.baseURL != nil {
		if base := strings.TrimRight(b.baseURL(), "/"); base != "" {
			return base + "/" + strings.TrimLeft(address, "/"), nil
		}
	}
	if b.assetDir != "" {
		path := filepath.Join(b.assetDir, filepath.FromSlash(address))
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if info, err := b.stat(path); err == nil && !info.IsDir() {
			slashed := filepath.ToSlash(path)
			if !strings.HasPrefix(slashed, "/") {
				slashed = "/" + slashed
			}
			return "file://" + slashed, nil
		}
	}
	return "", fmt.Errorf("%s: %w", address, ErrUnresolved)
}

// Commands lists the launcher invocations Open tries for address, in order.
func (b *Browser) Commands(address string) [][]string {
	var cmds [][]string
	for _, candidate := range strings.Split(b.getenv("BROWSER"), string(os.PathListSeparator)) {
		parts := strings.Fields(candidate)
		if len(parts) == 0 {
			continue
		}
		cmds = append(cmds, append(parts, address))
	}
	switch b.goos {
	case "darwin":
		cmds = append(cmds, []string{"open", address})
	case "windows":
		cmds = append(cmds, []string{"cmd", "/c", "start", "", address})
	default:
		cmds = append(cmds, []string{"xdg-open", address})
	}
	return cmds
}

// Open starts the first launcher that can be executed. It does not wait
// for the browser.
func (b *Browser) Open(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("open: empty address")
	}
	address, err := b.Resolve(address)
	if err != nil {
		return fmt.Errorf("open %w", err)
	}
	var errs []error
	for _, argv := range b.Commands(address) {
		wait, err := b.start(argv[0], argv[1:]...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", argv[0], err))
			continue
		}
		b.logger.Info("opened externally", "address", address, "launcher", argv[0])
		go func() {
			if err := wait(); err != nil {
				b.logger.Debug("launcher exited", "launcher", argv[0], "error", err)
			}
		}()
		return nil
	}
	return fmt.Errorf("open %s: %w: %w", address, ErrNoBrowser, errors.Join(errs...))
}
