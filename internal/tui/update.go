// pattern: Imperative Shell

package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"meowdash/internal/content"
	"meowdash/internal/dashboard"
	"meowdash/internal/events"
	"meowdash/internal/logging"
	"meowdash/internal/mascot"
)

// snapshotMsg carries a fresh engine snapshot.
type snapshotMsg struct{ snap dashboard.Snapshot }

// opResultMsg reports the outcome of an engine operation run off the
// update loop.
type opResultMsg struct {
	op    string
	panel int
	err   error
	snap  dashboard.Snapshot
}

// contentMsg carries the terminal preview for one panel.
type contentMsg struct {
	panel   int
	content content.PanelContent
	ok      bool
}

type mascotTickMsg time.Time

type logEntriesMsg []logging.LogEntry

type clearStatusMsg struct{}

const (
	doubleCtrlCWindow = time.Second
	statusTimeout     = 3 * time.Second
	logBatchSize      = 50
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.cat != nil {
			m.cat.Resize(msg.Width)
		}
		m.syncViewports()
		return m, nil

	case events.BoardChangedMsg:
		return m, m.fetchSnapshot()

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, nil

	case events.ContentUpdatedMsg:
		return m, m.fetchContent(msg.Panel)

	case contentMsg:
		if msg.panel >= 1 && msg.panel <= dashboard.PanelCount {
			if msg.ok {
				m.contents[msg.panel-1] = msg.content
			} else {
				m.contents[msg.panel-1] = content.PanelContent{}
			}
			m.syncViewport(msg.panel)
		}
		return m, nil

	case events.WebListenURLMsg:
		m.webURL = msg.URL
		return m, nil

	case events.CatalogReloadedMsg:
		return m, m.setStatus(fmt.Sprintf("已添加 %d 个工具", msg.Added), false)

	case opResultMsg:
		m.applySnapshot(msg.snap)
		if msg.err != nil {
			m.logger.Warn("tui.op_failed", "op", msg.op, "panel", msg.panel, "error", msg.err)
			return m, m.setStatus(fmt.Sprintf("窗口 %d: %s", msg.panel, describeError(msg.err)), true)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mascotTickMsg:
		if m.cat == nil {
			return m, nil
		}
		m.cat.Step(time.Time(msg))
		return m, mascotTick()

	case logEntriesMsg:
		m.logs = append(m.logs, msg...)
		if over := len(m.logs) - maxLogEntries; over > 0 {
			m.logs = append([]logging.LogEntry(nil), m.logs[over:]...)
		}
		if m.logEntries == nil {
			return m, nil
		}
		return m, consumeLogEntries(m.logEntries)

	case clearStatusMsg:
		if !m.statusErr {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		now := time.Now()
		if now.Sub(m.lastCtrlC) < doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlC = now
		return m, m.setStatus("再按一次 ctrl+c 退出", false)
	}

	if m.selector.open {
		entry, chosen := m.selector.handleKey(msg, m.snap.Catalog)
		if !chosen {
			return m, nil
		}
		panel := m.selector.panel
		return m, m.runOp("select", panel, func() error {
			return m.ctrl.SelectTool(panel, entry.Label, entry.Address)
		})
	}

	id := m.focus
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Panel1):
		m.setFocus(1)
	case key.Matches(msg, m.keys.Panel2):
		m.setFocus(2)
	case key.Matches(msg, m.keys.Panel3):
		m.setFocus(3)
	case key.Matches(msg, m.keys.Panel4):
		m.setFocus(4)
	case key.Matches(msg, m.keys.Next):
		m.setFocus(id%dashboard.PanelCount + 1)
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((id+dashboard.PanelCount-2)%dashboard.PanelCount + 1)

	case key.Matches(msg, m.keys.Select):
		m.selector = selector{open: true, panel: id}
	case key.Matches(msg, m.keys.Close):
		return m, m.runOp("close", id, func() error { return m.ctrl.SelectTool(id, "", "") })
	case key.Matches(msg, m.keys.Refresh):
		return m, m.runOp("refresh", id, func() error { return m.ctrl.Refresh(id) })
	case key.Matches(msg, m.keys.Retry):
		return m, m.runOp("retry", id, func() error { return m.ctrl.Retry(id) })
	case key.Matches(msg, m.keys.Open):
		return m, m.runOp("open", id, func() error { return m.ctrl.OpenExternally(id) })
	case key.Matches(msg, m.keys.ZoomIn):
		return m, m.runOp("zoom_in", id, func() error { return m.ctrl.ZoomIn(id) })
	case key.Matches(msg, m.keys.ZoomOut):
		return m, m.runOp("zoom_out", id, func() error { return m.ctrl.ZoomOut(id) })
	case key.Matches(msg, m.keys.ZoomReset):
		return m, m.runOp("zoom_reset", id, func() error { return m.ctrl.ZoomReset(id) })
	case key.Matches(msg, m.keys.Fullscreen):
		return m, m.runOp("fullscreen", id, func() error { return m.ctrl.ToggleFullscreen(id) })
	case key.Matches(msg, m.keys.Exit):
		if m.statusErr {
			m.status, m.statusErr = "", false
			return m, nil
		}
		if fs := m.snap.Fullscreen; fs != 0 {
			return m, m.runOp("exit_fullscreen", fs, func() error { return m.ctrl.ExitFullscreen(fs) })
		}

	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll(id, -1)
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll(id, 1)

	case key.Matches(msg, m.keys.Poke):
		if m.cat != nil {
			m.cat.Poke(time.Now())
		}
	case key.Matches(msg, m.keys.Logs):
		m.logsOpen = !m.logsOpen
		m.syncViewports()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// setFocus moves focus unless a panel is fullscreen, which keeps it.
func (m *Model) setFocus(id int) {
	if m.snap.Fullscreen != 0 {
		return
	}
	m.focus = id
}

func (m *Model) scroll(id, delta int) {
	pv := m.snap.Panel(id)
	if pv.State != dashboard.StateLoaded || pv.ScrollSuppressed {
		return
	}
	vp := &m.viewports[id-1]
	vp.SetYOffset(vp.YOffset + delta)
}

// applySnapshot stores snap and re-lays the viewports, since zoom and
// fullscreen change their geometry. Snapshots taken before the one already
// shown are dropped; commands deliver them in no particular order.
func (m *Model) applySnapshot(snap dashboard.Snapshot) {
	if len(snap.Panels) == 0 {
		return
	}
	if m.snap.Panels != nil && snap.Version < m.snap.Version {
		return
	}
	m.snap = snap
	if snap.Fullscreen != 0 {
		m.focus = snap.Fullscreen
	}
	m.syncViewports()
}

func (m *Model) syncViewports() {
	for id := 1; id <= dashboard.PanelCount; id++ {
		m.syncViewport(id)
	}
}

// syncViewport sizes one panel's viewport and refills it from the panel's
// preview, wrapped for the panel's zoom.
func (m *Model) syncViewport(id int) {
	regions := PanelRegions(m.layout().Grid, m.snap.Fullscreen)
	w, h := regions[id-1].Inner()
	vp := &m.viewports[id-1]
	vp.Width = w
	vp.Height = h

	pv := m.snap.Panel(id)
	c := m.contents[id-1]
	if c.Doc == nil || c.Address != pv.Address {
		vp.SetContent("")
		return
	}
	vp.SetContent(renderDocument(c.Doc, w, pv.Geometry.BoxFactor, m.styles))
	if pv.ScrollSuppressed {
		vp.GotoTop()
	}
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	if isErr {
		return nil
	}
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// runOp calls the engine off the update loop and reports back with the
// resulting snapshot.
func (m Model) runOp(op string, panel int, fn func() error) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		err := fn()
		return opResultMsg{op: op, panel: panel, err: err, snap: ctrl.Snapshot()}
	}
}

func (m Model) fetchSnapshot() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return snapshotMsg{snap: ctrl.Snapshot()}
	}
}

func (m Model) fetchContent(panel int) tea.Cmd {
	src := m.source
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := src.Content(panel)
		return contentMsg{panel: panel, content: c, ok: ok}
	}
}

func mascotTick() tea.Cmd {
	return tea.Tick(mascot.DefaultInterval, func(t time.Time) tea.Msg {
		return mascotTickMsg(t)
	})
}

// consumeLogEntries waits for one entry and then takes whatever else is
// already buffered.
func consumeLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	return func() tea.Msg {
		first, ok := <-ch
		if !ok {
			return nil
		}
		batch := logEntriesMsg{first}
		for len(batch) < logBatchSize {
			select {
			case e, ok := <-ch:
				if !ok {
					return batch
				}
				batch = append(batch, e)
			default:
				return batch
			}
		}
		return batch
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, dashboard.ErrNotLoaded):
		return "请先加载一个工具"
	case errors.Is(err, dashboard.ErrNotFailed):
		return "只有加载失败的窗口可以重试"
	case errors.Is(err, dashboard.ErrNoTool):
		return "窗口中没有工具"
	case errors.Is(err, dashboard.ErrZoomRange):
		return "缩放已到极限"
	default:
		return err.Error()
	}
}
