// pattern: Imperative Shell

package dashboard

import (
	"fmt"
	"sync"
	"time"

	"meowdash/internal/catalog"
	"meowdash/internal/logging"
)

// Host renders panel content somewhere: the terminal, a browser page.
// Methods are called with the engine lock held, so a host must not block
// and must never call back into the Engine synchronously. Load outcomes are
// delivered later through ReportLoaded or ReportFailed.
type Host interface {
	Navigate(nav Navigate)
	Clear(panel int)
	Announce(a Announce)
}

// Opener opens an address outside the dashboard.
type Opener interface {
	Open(address string) error
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d on another goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerKind int

const (
	timerLoad timerKind = iota
	timerReload
	timerSpinner
	timerScroll
)

type timerKey struct {
	panel int
	kind  timerKind
}

type pendingTimer struct {
	seq   uint64
	timer Timer
}

// Engine serializes every board operation, host report and timer expiry
// behind one lock and carries out the resulting effects.
type Engine struct {
	mu       sync.Mutex
	board    *Board
	sched    Scheduler
	opener   Opener
	logger   *logging.ScopedLogger
	hosts    []Host
	timers   map[timerKey]pendingTimer
	timerSeq uint64
	closed   bool
	version  uint64
	onChange []func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler. Used by tests.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithOpener sets how addresses are opened externally.
func WithOpener(o Opener) Option {
	return func(e *Engine) { e.opener = o }
}

// WithLogger sets the engine logger.
func WithLogger(l *logging.ScopedLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine wraps board.
func NewEngine(board *Board, opts ...Option) *Engine {
	e := &Engine{
		board:  board,
		sched:  clock{},
		logger: logging.NopLogger(),
		timers: make(map[timerKey]pendingTimer),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers a callback invoked after every state change. Register
// callbacks before the engine is shared between goroutines.
func (e *Engine) OnChange(fn func()) {
	e.onChange = append(e.onChange, fn)
}

func (e *Engine) notifyChange() {
	for _, fn := range e.onChange {
		fn()
	}
}

// AttachHost adds h and replays what every panel should currently show.
// The returned function detaches it.
func (e *Engine) AttachHost(h Host) (detach func()) {
	e.mu.Lock()
	e.hosts = append(e.hosts, h)
	for _, p := range e.board.panels {
		switch {
		case p.address == "":
			h.Clear(p.id)
		case p.attempt != nil && !p.attempt.navigated:
			h.Clear(p.id)
		default:
			var token uint64
			if p.attempt != nil {
				token = p.attempt.token
			}
			h.Navigate(Navigate{
				Panel:   p.id,
				Token:   token,
				Address: p.address,
				Sandbox: catalog.SandboxPolicy(p.address),
			})
		}
	}
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, existing := range e.hosts {
				if existing == h {
					e.hosts = append(e.hosts[:i], e.hosts[i+1:]...)
					break
				}
			}
		})
	}
}

// Snapshot copies the current board.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.board.Snapshot()
	s.Version = e.version
	return s
}

// Timing returns the effective durations.
func (e *Engine) Timing() Timing {
	return e.board.Timing()
}

// SelectTool loads address into panel. An empty address empties the panel.
func (e *Engine) SelectTool(panel int, label, address string) error {
	return e.apply("select", panel, func(b *Board) ([]Effect, error) {
		return b.SelectTool(panel, label, address)
	})
}

// Retry starts a new load of a failed panel's address.
func (e *Engine) Retry(panel int) error {
	return e.apply("retry", panel, func(b *Board) ([]Effect, error) { return b.Retry(panel) })
}

// OpenExternally opens the panel's address with the configured Opener.
func (e *Engine) OpenExternally(panel int) error {
	return e.apply("open", panel, func(b *Board) ([]Effect, error) { return b.OpenExternally(panel) })
}

// Refresh reloads a loaded panel after the reload delay.
func (e *Engine) Refresh(panel int) error {
	return e.apply("refresh", panel, func(b *Board) ([]Effect, error) { return b.Refresh(panel) })
}

// ZoomIn moves panel one zoom step up.
func (e *Engine) ZoomIn(panel int) error {
	return e.apply("zoom in", panel, func(b *Board) ([]Effect, error) { return b.ZoomIn(panel) })
}

// ZoomOut moves panel one zoom step down.
func (e *Engine) ZoomOut(panel int) error {
	return e.apply("zoom out", panel, func(b *Board) ([]Effect, error) { return b.ZoomOut(panel) })
}

// ZoomReset returns panel to 100%.
func (e *Engine) ZoomReset(panel int) error {
	return e.apply("zoom reset", panel, func(b *Board) ([]Effect, error) { return b.ZoomReset(panel) })
}

// SetZoom sets panel to the zoom step at index.
func (e *Engine) SetZoom(panel, index int) error {
	return e.apply("zoom set", panel, func(b *Board) ([]Effect, error) { return b.SetZoom(panel, index) })
}

// EnterFullscreen shows panel alone at 100% zoom, replacing any other
// fullscreen panel.
func (e *Engine) EnterFullscreen(panel int) error {
	return e.apply("fullscreen enter", panel, func(b *Board) ([]Effect, error) { return b.EnterFullscreen(panel) })
}

// ExitFullscreen restores the grid if panel is the fullscreen one.
func (e *Engine) ExitFullscreen(panel int) error {
	return e.apply("fullscreen exit", panel, func(b *Board) ([]Effect, error) { return b.ExitFullscreen(panel) })
}

// ToggleFullscreen enters or exits fullscreen for panel.
func (e *Engine) ToggleFullscreen(panel int) error {
	return e.apply("fullscreen toggle", panel, func(b *Board) ([]Effect, error) { return b.ToggleFullscreen(panel) })
}

// ReportLoaded is called by a host when the content for token has loaded.
func (e *Engine) ReportLoaded(panel int, token uint64) error {
	return e.apply("loaded", panel, func(b *Board) ([]Effect, error) { return b.ReportLoaded(panel, token) })
}

// ReportFailed is called by a host when the content for token failed.
func (e *Engine) ReportFailed(panel int, token uint64, detail string, causes ...string) error {
	return e.apply("failed", panel, func(b *Board) ([]Effect, error) {
		return b.ReportFailed(panel, token, detail, causes...)
	})
}

// AppendCatalog merges entries into the selector catalog.
func (e *Engine) AppendCatalog(entries []catalog.Entry) []catalog.Entry {
	e.mu.Lock()
	added := e.board.AppendCatalog(entries)
	if len(added) > 0 {
		e.version++
	}
	e.mu.Unlock()
	if len(added) > 0 {
		e.logger.Info("catalog extended", "added", len(added))
		e.notifyChange()
	}
	return added
}

// Close stops every pending timer. Later timer callbacks are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for key, pt := range e.timers {
		pt.timer.Stop()
		delete(e.timers, key)
	}
}

func (e *Engine) apply(op string, panel int, fn func(*Board) ([]Effect, error)) error {
	e.mu.Lock()
	effects, err := fn(e.board)
	if err != nil {
		e.mu.Unlock()
		e.logger.Debug("operation rejected", "op", op, "panel", panel, "error", err)
		return err
	}
	err = e.run(effects)
	e.version++
	e.mu.Unlock()

	e.logger.Debug("operation applied", "op", op, "panel", panel, "effects", len(effects))
	e.notifyChange()
	return err
}

// run executes effects in order. Must hold e.mu.
func (e *Engine) run(effects []Effect) error {
	var firstErr error
	for _, eff := range effects {
		switch eff := eff.(type) {
		case ArmTimeout:
			e.arm(timerKey{eff.Panel, timerLoad}, eff.After, func(b *Board) ([]Effect, error) {
				e.logger.Warn("load timed out", "panel", eff.Panel, "token", eff.Token)
				return b.TimeoutElapsed(eff.Panel, eff.Token)
			})
		case CancelTimeout:
			e.disarm(timerKey{eff.Panel, timerLoad})
		case ScheduleReload:
			e.arm(timerKey{eff.Panel, timerReload}, eff.After, func(b *Board) ([]Effect, error) {
				return b.ReloadDue(eff.Panel, eff.Token)
			})
		case ArmSpinnerSafety:
			e.arm(timerKey{eff.Panel, timerSpinner}, eff.After, func(b *Board) ([]Effect, error) {
				return b.SpinnerSafetyElapsed(eff.Panel, eff.Token)
			})
		case ScheduleScrollRestore:
			e.arm(timerKey{eff.Panel, timerScroll}, eff.After, func(b *Board) ([]Effect, error) {
				return b.ScrollRestoreDue(eff.Panel, eff.Generation)
			})
		case Navigate:
			e.logger.Info("navigating", "panel", eff.Panel, "token", eff.Token, "address", eff.Address)
			for _, h := range e.hosts {
				h.Navigate(eff)
			}
		case ClearContent:
			for _, h := range e.hosts {
				h.Clear(eff.Panel)
			}
		case Announce:
			for _, h := range e.hosts {
				h.Announce(eff)
			}
		case OpenExternal:
			if err := e.openExternal(eff.Address); err != nil && firstErr == nil {
				firstErr = err
			}
		default:
			e.logger.Error("unhandled effect", "effect", fmt.Sprintf("%T", eff))
		}
	}
	return firstErr
}

func (e *Engine) openExternal(address string) error {
	if e.opener == nil {
		return fmt.Errorf("open %s: no opener configured", address)
	}
	if err := e.opener.Open(address); err != nil {
		e.logger.Warn("open externally failed", "address", address, "error", err)
		return fmt.Errorf("open %s: %w", address, err)
	}
	e.logger.Info("opened externally", "address", address)
	return nil
}

// arm replaces any timer pending under key. Must hold e.mu.
func (e *Engine) arm(key timerKey, after time.Duration, fire func(*Board) ([]Effect, error)) {
	if e.closed {
		return
	}
	e.disarm(key)
	e.timerSeq++
	seq := e.timerSeq
	t := e.sched.AfterFunc(after, func() { e.expire(key, seq, fire) })
	e.timers[key] = pendingTimer{seq: seq, timer: t}
}

// disarm stops the timer pending under key. Must hold e.mu.
func (e *Engine) disarm(key timerKey) {
	if pt, ok := e.timers[key]; ok {
		pt.timer.Stop()
		delete(e.timers, key)
	}
}

func (e *Engine) expire(key timerKey, seq uint64, fire func(*Board) ([]Effect, error)) {
	e.mu.Lock()
	pt, ok := e.timers[key]
	if e.closed || !ok || pt.seq != seq {
		e.mu.Unlock()
		return
	}
	delete(e.timers, key)
	effects, err := fire(e.board)
	if err == nil {
		err = e.run(effects)
	}
	e.version++
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("timer effect failed", "panel", key.panel, "error", err)
	}
	e.notifyChange()
}
