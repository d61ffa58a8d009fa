// pattern: Imperative Shell

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"meowdash/internal/catalog"
	"meowdash/internal/logging"
)

const watchDebounce = 200 * time.Millisecond

// Watcher reloads the config file and the catalog drop-in directory when
// they change and hands the resulting tool list to OnCatalog.
type Watcher struct {
	dir       string
	onCatalog func([]catalog.Entry)
	logger    *logging.ScopedLogger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
}

// NewWatcher watches the config directory dir.
func NewWatcher(dir string, onCatalog func([]catalog.Entry), logger *logging.ScopedLogger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	return &Watcher{
		dir:       dir,
		onCatalog: onCatalog,
		logger:    logger,
		watcher:   watcher,
		debounce:  watchDebounce,
	}, nil
}

// Catalog loads the full tool list: the config file's catalog (or the
// built-in one) followed by the drop-in files.
func Catalog(dir string) ([]catalog.Entry, error) {
	cfg, err := LoadFromDir(dir)
	if err != nil {
		return nil, err
	}
	entries := cfg.CatalogEntries()
	extra, err := LoadCatalogDir(cfg.CatalogDir())
	entries = append(entries, extra...)
	return entries, err
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	dropIn := filepath.Join(w.dir, CatalogDirName)
	if info, err := os.Stat(dropIn); err == nil && info.IsDir() {
		_ = w.watcher.Add(dropIn)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if filepath.Clean(event.Name) == dropIn && event.Has(fsnotify.Create) {
				_ = w.watcher.Add(dropIn)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	name := filepath.Clean(event.Name)
	switch {
	case name == filepath.Join(w.dir, "config.yaml"):
		return true
	case name == filepath.Join(w.dir, CatalogDirName):
		return true
	case filepath.Dir(name) == filepath.Join(w.dir, CatalogDirName):
		return isYAML(name)
	}
	return false
}

func (w *Watcher) reload() {
	entries, err := Catalog(w.dir)
	if err != nil {
		w.logger.Warn("config reload incomplete", "error", err)
		if entries == nil {
			return
		}
	}
	w.logger.Info("config reloaded", "tools", len(entries))
	if w.onCatalog != nil {
		w.onCatalog(entries)
	}
}
