package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"meowdash/internal/content"
	"meowdash/internal/dashboard"
	"meowdash/internal/logging"
	"meowdash/internal/mascot"
)

// Controller is the part of the dashboard engine the terminal drives.
// *dashboard.Engine satisfies it.
type Controller interface {
	Snapshot() dashboard.Snapshot
	SelectTool(panel int, label, address string) error
	Retry(panel int) error
	OpenExternally(panel int) error
	Refresh(panel int) error
	ZoomIn(panel int) error
	ZoomOut(panel int) error
	ZoomReset(panel int) error
	ToggleFullscreen(panel int) error
	ExitFullscreen(panel int) error
}

// ContentSource provides the text previews. *content.TerminalHost
// satisfies it.
type ContentSource interface {
	Content(panel int) (content.PanelContent, bool)
}

const maxLogEntries = 200

// Model represents the TUI application state.
type Model struct {
	width  int
	height int
	styles *Styles
	keys   keyMap
	help   help.Model

	ctrl       Controller
	source     ContentSource
	logger     *logging.ScopedLogger
	logEntries <-chan logging.LogEntry

	snap      dashboard.Snapshot
	contents  [dashboard.PanelCount]content.PanelContent
	viewports [dashboard.PanelCount]viewport.Model
	focus     int
	selector  selector
	spinner   spinner.Model

	cat      *mascot.Cat
	logs     []logging.LogEntry
	logsOpen bool

	webURL    string
	status    string
	statusErr bool
	lastCtrlC time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithContent sets where panel text previews come from.
func WithContent(src ContentSource) Option {
	return func(m *Model) { m.source = src }
}

// WithTheme picks the catppuccin flavor by name.
func WithTheme(name string) Option {
	return func(m *Model) { m.styles = NewStyles(name) }
}

// WithLogger sets the model's logger.
func WithLogger(l *logging.ScopedLogger) Option {
	return func(m *Model) { m.logger = l }
}

// WithLogEntries feeds the log strip.
func WithLogEntries(ch <-chan logging.LogEntry) Option {
	return func(m *Model) { m.logEntries = ch }
}

// WithMascot shows the cat strip under the grid.
func WithMascot(cat *mascot.Cat) Option {
	return func(m *Model) { m.cat = cat }
}

// NewModel creates a new TUI model driving ctrl.
func NewModel(ctrl Controller, opts ...Option) Model {
	m := Model{
		styles:  NewStyles(""),
		keys:    defaultKeyMap(),
		help:    help.New(),
		ctrl:    ctrl,
		logger:  logging.NopLogger(),
		focus:   1,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init returns the initial command to run.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchSnapshot(), m.spinner.Tick}
	for id := 1; id <= dashboard.PanelCount; id++ {
		cmds = append(cmds, m.fetchContent(id))
	}
	if m.cat != nil {
		cmds = append(cmds, mascotTick())
	}
	if m.logEntries != nil {
		cmds = append(cmds, consumeLogEntries(m.logEntries))
	}
	return tea.Batch(cmds...)
}

// Focus returns the focused panel id.
func (m Model) Focus() int { return m.focus }

// SelectorOpen reports whether the tool selector is showing.
func (m Model) SelectorOpen() bool { return m.selector.open }

// Status returns the status bar message and whether it is an error.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

func (m Model) layout() Layout {
	return ComputeLayout(m.width, m.height, m.cat != nil, m.logsOpen)
}
