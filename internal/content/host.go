// pattern: Imperative Shell

package content

import (
	"context"
	"errors"
	"sync"

	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
)

// Reporter receives load outcomes. *dashboard.Engine satisfies it.
type Reporter interface {
	ReportLoaded(panel int, token uint64) error
	ReportFailed(panel int, token uint64, detail string, causes ...string) error
}

// Loader fetches an address. *Fetcher satisfies it.
type Loader interface {
	Fetch(ctx context.Context, address string) (*Document, error)
}

// PanelContent is what the terminal currently shows for one panel.
type PanelContent struct {
	Address string
	Doc     *Document
	Err     error
	Pending bool
}

// TerminalHost is the terminal's embedded content: each navigation fetches
// the address in the background and reports the outcome with the attempt
// token it was given.
type TerminalHost struct {
	loader   Loader
	reporter Reporter
	logger   *logging.ScopedLogger
	onUpdate func(panel int)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	seq      uint64
	panels   map[int]PanelContent
	inflight map[int]flight
	wg       sync.WaitGroup
}

type flight struct {
	seq    uint64
	cancel context.CancelFunc
}

// NewTerminalHost creates a host. onUpdate, if set, is called whenever a
// panel's content changes, never while the engine lock is held.
func NewTerminalHost(loader Loader, reporter Reporter, logger *logging.ScopedLogger, onUpdate func(panel int)) *TerminalHost {
	if logger == nil {
		logger = logging.NopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TerminalHost{
		loader:   loader,
		reporter: reporter,
		logger:   logger,
		onUpdate: onUpdate,
		ctx:      ctx,
		cancel:   cancel,
		panels:   make(map[int]PanelContent),
		inflight: make(map[int]flight),
	}
}

// Navigate starts fetching nav.Address. A token of 0 refreshes the display
// without reporting back.
func (h *TerminalHost) Navigate(nav dashboard.Navigate) {
	h.mu.Lock()
	h.stopLocked(nav.Panel)
	ctx, cancel := context.WithCancel(h.ctx)
	h.seq++
	seq := h.seq
	h.inflight[nav.Panel] = flight{seq: seq, cancel: cancel}
	h.panels[nav.Panel] = PanelContent{Address: nav.Address, Pending: true}
	h.wg.Add(1)
	h.mu.Unlock()

	go h.notify(nav.Panel)
	go h.load(ctx, seq, nav)
}

func (h *TerminalHost) load(ctx context.Context, seq uint64, nav dashboard.Navigate) {
	defer h.wg.Done()

	doc, err := h.loader.Fetch(ctx, nav.Address)

	h.mu.Lock()
	f, ok := h.inflight[nav.Panel]
	if !ok || f.seq != seq || ctx.Err() != nil {
		// Superseded, cleared or closed.
		h.mu.Unlock()
		return
	}
	f.cancel()
	delete(h.inflight, nav.Panel)
	h.panels[nav.Panel] = PanelContent{Address: nav.Address, Doc: doc, Err: err}
	h.mu.Unlock()
	h.notify(nav.Panel)

	if nav.Token == 0 {
		return
	}
	var reportErr error
	if err != nil {
		h.logger.Warn("fetch failed", "panel", nav.Panel, "address", nav.Address, "error", err)
		reportErr = h.reporter.ReportFailed(nav.Panel, nav.Token, err.Error(), Diagnose(err)...)
	} else {
		h.logger.Debug("fetched", "panel", nav.Panel, "address", nav.Address, "lines", len(doc.Lines))
		reportErr = h.reporter.ReportLoaded(nav.Panel, nav.Token)
	}
	if reportErr != nil && !errors.Is(reportErr, context.Canceled) {
		h.logger.Warn("report rejected", "panel", nav.Panel, "error", reportErr)
	}
}

// Clear drops the panel's content and cancels any fetch for it.
func (h *TerminalHost) Clear(panel int) {
	h.mu.Lock()
	h.stopLocked(panel)
	delete(h.panels, panel)
	h.mu.Unlock()
	go h.notify(panel)
}

// Announce has no channel into a text preview; the message is only logged.
func (h *TerminalHost) Announce(a dashboard.Announce) {
	h.logger.Debug("announce", "panel", a.Panel, "address", a.Address)
}

// Content returns what panel currently shows.
func (h *TerminalHost) Content(panel int) (PanelContent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.panels[panel]
	return c, ok
}

// Close cancels outstanding fetches and waits for them to return.
func (h *TerminalHost) Close() {
	h.cancel()
	h.wg.Wait()
}

func (h *TerminalHost) stopLocked(panel int) {
	if f, ok := h.inflight[panel]; ok {
		f.cancel()
		delete(h.inflight, panel)
	}
}

func (h *TerminalHost) notify(panel int) {
	if h.onUpdate != nil {
		h.onUpdate(panel)
	}
}
