// pattern: Functional Core

package dashboard

import (
	"fmt"
	"strings"

	"meowdash/internal/catalog"
)

// PanelCount is the number of panels in the grid.
const PanelCount = 4

// DisplayState is what a panel currently shows.
type DisplayState int

const (
	StateEmpty DisplayState = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s DisplayState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("DisplayState(%d)", int(s))
	}
}

func (s DisplayState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DisplayState) UnmarshalText(text []byte) error {
	for _, candidate := range []DisplayState{StateEmpty, StateLoading, StateLoaded, StateFailed} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown display state %q", text)
}

// FailureKind distinguishes a timed-out attempt from a reported error.
type FailureKind int

const (
	FailureTimeout FailureKind = iota
	FailureError
)

func (k FailureKind) String() string {
	if k == FailureTimeout {
		return "timeout"
	}
	return "error"
}

func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FailureKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "timeout":
		*k = FailureTimeout
	case "error":
		*k = FailureError
	default:
		return fmt.Errorf("unknown failure kind %q", text)
	}
	return nil
}

// DefaultCauses are the possible reasons listed on every failure view.
var DefaultCauses = []string{
	"网络连接问题",
	"目标网站不允许在iframe中显示（X-Frame-Options）",
	"目标网站访问限制",
	"浏览器安全策略阻止",
}

// Failure is the diagnostic shown for a failed attempt.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Label   string      `json:"label"`
	Address string      `json:"address"`
	Detail  string      `json:"detail,omitempty"`
	Causes  []string    `json:"causes"`
}

// AttemptKind records what started a load attempt.
type AttemptKind int

const (
	AttemptSelect AttemptKind = iota
	AttemptRetry
	AttemptRefresh
)

type attempt struct {
	token     uint64
	kind      AttemptKind
	address   string
	navigated bool
}

// panel is the mutable state of one grid cell. spinToken is the refresh
// attempt that started the spinner; zoomGen counts zoom applications so a
// stale scroll restore can be recognized.
type panel struct {
	id           int
	label        string
	address      string
	state        DisplayState
	enabled      bool
	attempt      *attempt
	failure      *Failure
	spinning     bool
	spinToken    uint64
	zoomGen      uint64
	scrollFrozen bool
}

func (p *panel) title() string {
	if p.address == "" {
		return fmt.Sprintf("窗口 %d", p.id)
	}
	return p.label
}

// Board holds the complete dashboard state. Every operation mutates the
// board and returns the effects the caller must carry out. Board performs
// no I/O and is not safe for concurrent use.
type Board struct {
	panels     [PanelCount]*panel
	zoom       *Zoom
	catalog    *catalog.Catalog
	timing     Timing
	nextToken  uint64
	fullscreen int
}

// NewBoard creates a board with every panel empty.
func NewBoard(c *catalog.Catalog, timing Timing) *Board {
	if c == nil {
		c = catalog.New(catalog.Defaults())
	}
	b := &Board{
		zoom:    NewZoom(PanelCount),
		catalog: c,
		timing:  timing.withDefaults(),
	}
	for i := range b.panels {
		b.panels[i] = &panel{id: i + 1, state: StateEmpty}
	}
	return b
}

// Catalog returns the tool catalog backing the selectors.
func (b *Board) Catalog() *catalog.Catalog {
	return b.catalog
}

// Timing returns the effective durations.
func (b *Board) Timing() Timing {
	return b.timing
}

func (b *Board) panel(id int) (*panel, error) {
	if id < 1 || id > PanelCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPanel, id)
	}
	return b.panels[id-1], nil
}

func (b *Board) issueToken() uint64 {
	b.nextToken++
	return b.nextToken
}

// cancelAttempt drops the in-flight attempt so any later report for it is
// ignored.
func (b *Board) cancelAttempt(p *panel) []Effect {
	if p.attempt == nil {
		return nil
	}
	p.attempt = nil
	return []Effect{CancelTimeout{Panel: p.id}}
}

// startAttempt begins loading p.address. Any previous attempt is superseded.
func (b *Board) startAttempt(p *panel, kind AttemptKind) []Effect {
	effects := b.cancelAttempt(p)
	a := &attempt{
		token:     b.issueToken(),
		kind:      kind,
		address:   p.address,
		navigated: true,
	}
	p.attempt = a
	p.state = StateLoading
	p.failure = nil
	return append(effects,
		ArmTimeout{Panel: p.id, Token: a.token, After: b.timing.LoadTimeout},
		Navigate{
			Panel:   p.id,
			Token:   a.token,
			Address: a.address,
			Sandbox: catalog.SandboxPolicy(a.address),
		},
	)
}

func (b *Board) stopSpinner(p *panel) {
	p.spinning = false
	p.spinToken = 0
}

// SelectTool loads address into panel. An empty address clears the panel
// and disables its content controls. A blank label falls back to the
// catalog label, then to the address itself.
func (b *Board) SelectTool(id int, label, address string) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	label = strings.TrimSpace(label)

	if address == "" {
		effects := b.cancelAttempt(p)
		b.stopSpinner(p)
		p.label, p.address = "", ""
		p.state = StateEmpty
		p.enabled = false
		p.failure = nil
		return append(effects, ClearContent{Panel: p.id}), nil
	}

	if label == "" {
		if e, ok := b.catalog.Lookup(address); ok {
			label = e.Label
		} else {
			label = address
		}
	}
	b.stopSpinner(p)
	p.label, p.address = label, address
	return b.startAttempt(p, AttemptSelect), nil
}

// Retry reloads the failed panel's address as a fresh attempt.
func (b *Board) Retry(id int) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if p.state != StateFailed {
		return nil, fmt.Errorf("panel %d: %w", id, ErrNotFailed)
	}
	return b.startAttempt(p, AttemptRetry), nil
}

// OpenExternally hands the panel's address to the host environment. The
// panel itself is unchanged.
func (b *Board) OpenExternally(id int) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if p.address == "" {
		return nil, fmt.Errorf("panel %d: %w", id, ErrNoTool)
	}
	return []Effect{OpenExternal{Address: p.address}}, nil
}

// ReportLoaded records that the content for token finished loading.
// Reports for superseded or unknown attempts return no effects.
func (b *Board) ReportLoaded(id int, token uint64) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	a := p.attempt
	if a == nil || a.token != token || !a.navigated {
		return nil, nil
	}

	p.attempt = nil
	p.state = StateLoaded
	p.failure = nil
	p.enabled = true
	if p.spinToken == token {
		b.stopSpinner(p)
	}

	effects := []Effect{CancelTimeout{Panel: p.id}}
	effects = append(effects, b.applyZoom(p)...)
	return append(effects, Announce{Panel: p.id, Token: token, Address: a.address}), nil
}

// ReportFailed records that the content for token could not be loaded.
// Extra causes are listed ahead of DefaultCauses.
func (b *Board) ReportFailed(id int, token uint64, detail string, causes ...string) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	a := p.attempt
	if a == nil || a.token != token || !a.navigated {
		return nil, nil
	}
	b.fail(p, FailureError, detail, causes)
	return []Effect{CancelTimeout{Panel: p.id}}, nil
}

// TimeoutElapsed fails the attempt for token if it is still in flight.
func (b *Board) TimeoutElapsed(id int, token uint64) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	a := p.attempt
	if a == nil || a.token != token {
		return nil, nil
	}
	detail := fmt.Sprintf("no response after %s", b.timing.LoadTimeout)
	b.fail(p, FailureTimeout, detail, nil)
	return nil, nil
}

func (b *Board) fail(p *panel, kind FailureKind, detail string, causes []string) {
	all := make([]string, 0, len(causes)+len(DefaultCauses))
	for _, c := range causes {
		if c = strings.TrimSpace(c); c != "" {
			all = append(all, c)
		}
	}
	all = append(all, DefaultCauses...)

	p.attempt = nil
	p.state = StateFailed
	p.failure = &Failure{
		Kind:    kind,
		Label:   p.label,
		Address: p.address,
		Detail:  detail,
		Causes:  all,
	}
	if p.spinning {
		b.stopSpinner(p)
	}
}

// AppendCatalog merges entries into the catalog and returns those added.
func (b *Board) AppendCatalog(entries []catalog.Entry) []catalog.Entry {
	return b.catalog.Merge(entries)
}
