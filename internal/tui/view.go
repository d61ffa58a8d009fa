package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"meowdash/internal/content"
	"meowdash/internal/dashboard"
	"meowdash/internal/mascot"
)

const appTitle = "神奇喵喵 AI 工具集"

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	l := m.layout()
	sections := []string{m.renderHeader(l.Header)}
	switch {
	case m.selector.open:
		sections = append(sections, m.renderSelector(l.Grid))
	case m.help.ShowAll:
		sections = append(sections, m.renderHelp(l.Grid))
	default:
		sections = append(sections, m.renderGrid(l.Grid))
	}
	if !l.Mascot.Empty() && m.cat != nil {
		sections = append(sections, m.renderMascot(l.Mascot))
	}
	if !l.Logs.Empty() {
		sections = append(sections, m.renderLogs(l.Logs))
	}
	sections = append(sections, m.renderStatusBar(l.StatusBar))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(r Region) string {
	title := m.styles.TitleStyle().Render("🐱 " + appTitle)
	if m.webURL == "" {
		return ansi.Truncate(title, r.Width, "…")
	}
	url := m.styles.SubtitleStyle().Render(m.webURL)
	gap := r.Width - lipgloss.Width(title) - lipgloss.Width(url)
	if gap < 1 {
		return ansi.Truncate(title, r.Width, "…")
	}
	return title + strings.Repeat(" ", gap) + url
}

func (m Model) renderGrid(grid Region) string {
	if grid.Empty() {
		return ""
	}
	regions := PanelRegions(grid, m.snap.Fullscreen)
	if fs := m.snap.Fullscreen; fs != 0 {
		return m.renderPanel(fs, regions[fs-1])
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPanel(1, regions[0]), m.renderPanel(2, regions[1]))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPanel(3, regions[2]), m.renderPanel(4, regions[3]))
	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderPanel draws one bordered panel filling r: a title line and the
// body for the panel's state.
func (m Model) renderPanel(id int, r Region) string {
	if r.Width < 4 || r.Height < 3 {
		return strings.Repeat(" ", max(r.Width, 0))
	}
	pv := m.snap.Panel(id)
	if pv.ID == 0 {
		pv = dashboard.PanelView{ID: id, Title: fmt.Sprintf("窗口 %d", id), Geometry: dashboard.GeometryFor(dashboard.DefaultZoomIndex)}
	}
	focused := id == m.focus
	w, h := r.Inner()

	body := m.panelBody(pv, w, h)
	lines := strings.Split(body, "\n")
	for len(lines) < h {
		lines = append(lines, "")
	}
	lines = lines[:h]

	inner := m.panelTitle(pv, focused, w) + "\n" + strings.Join(lines, "\n")
	return m.styles.PanelStyle(focused).
		Width(w).
		Height(h + 1).
		MaxHeight(r.Height).
		Render(inner)
}

func (m Model) panelTitle(pv dashboard.PanelView, focused bool, width int) string {
	left := m.styles.PanelTitleStyle(focused).Render(fmt.Sprintf("%d. %s", pv.ID, pv.Title))
	if pv.Refreshing {
		left += " " + m.spinner.View()
	}
	right := m.styles.ZoomStyle().Render(fmt.Sprintf("%d%%", pv.Geometry.Percent))
	if pv.Fullscreen {
		right = m.styles.AccentStyle().Render("⛶ ") + right
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return ansi.Truncate(left, width, "…")
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) panelBody(pv dashboard.PanelView, w, h int) string {
	switch pv.State {
	case dashboard.StateLoading:
		label := pv.Label
		if label == "" {
			label = pv.Address
		}
		return center(m.spinner.View()+" 正在加载 "+label+" …", w, h)
	case dashboard.StateFailed:
		return m.failureView(pv, w)
	case dashboard.StateLoaded:
		return m.loadedView(pv, w, h)
	default:
		return center(m.styles.SubtitleStyle().Render("选择一个 AI 工具开始使用\n按 enter 选择"), w, h)
	}
}

// failureView lists what went wrong and what the user can do next.
func (m Model) failureView(pv dashboard.PanelView, w int) string {
	f := pv.Failure
	if f == nil {
		f = &dashboard.Failure{Label: pv.Label, Address: pv.Address, Causes: dashboard.DefaultCauses}
	}
	heading := "⚠ 无法加载 " + f.Label
	if f.Kind == dashboard.FailureTimeout {
		heading = "⚠ " + f.Label + " 加载超时"
	}

	var b strings.Builder
	b.WriteString(m.styles.ErrorStyle().Render(heading))
	b.WriteString("\n")
	b.WriteString(m.styles.SubtitleStyle().Render(f.Address))
	b.WriteString("\n")
	if f.Detail != "" {
		b.WriteString(wordwrap.String(f.Detail, w))
		b.WriteString("\n")
	}
	b.WriteString("\n可能的原因:\n")
	for _, c := range f.Causes {
		b.WriteString(wordwrap.String("• "+c, w))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.AccentStyle().Render("R 重试 • o 在浏览器中打开"))
	return clip(b.String(), w)
}

func (m Model) loadedView(pv dashboard.PanelView, w, h int) string {
	c := m.contents[pv.ID-1]
	if c.Doc != nil && c.Address == pv.Address {
		return m.viewports[pv.ID-1].View()
	}
	switch {
	case c.Address == pv.Address && c.Err != nil:
		var b strings.Builder
		b.WriteString(m.styles.SubtitleStyle().Render("终端预览不可用，可在浏览器中查看 (o)"))
		for _, cause := range content.Diagnose(c.Err) {
			b.WriteString("\n")
			b.WriteString(wordwrap.String("• "+cause, w))
		}
		return clip(b.String(), w)
	case c.Address == pv.Address && c.Pending:
		return center(m.spinner.View()+" 正在获取预览 …", w, h)
	default:
		return center(m.styles.SuccessStyle().Render("✓ "+pv.Title+" 已加载"), w, h)
	}
}

// renderDocument lays a preview out at the panel's zoom: the text is
// wrapped at the scaled box width and the panel shows the top-left region
// of it.
func renderDocument(doc *content.Document, width int, boxFactor float64, styles *Styles) string {
	if width <= 0 {
		return ""
	}
	if boxFactor <= 0 {
		boxFactor = 1
	}
	wrapAt := max(int(math.Round(float64(width)*boxFactor)), 1)

	var out []string
	if doc.Title != "" {
		out = append(out, styles.TitleStyle().Render(ansi.Truncate(doc.Title, width, "")))
	}
	for _, para := range doc.Lines {
		for _, line := range strings.Split(wordwrap.String(para, wrapAt), "\n") {
			out = append(out, ansi.Truncate(line, width, ""))
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) renderSelector(grid Region) string {
	if grid.Empty() {
		return ""
	}
	opts := m.selector.options(m.snap.Catalog)
	inner := min(max(grid.Width/2, 30), max(grid.Width-4, 1))

	var b strings.Builder
	b.WriteString(m.styles.TitleStyle().Render(fmt.Sprintf("窗口 %d: 选择 AI 工具", m.selector.panel)))
	b.WriteString("\n> ")
	b.WriteString(m.selector.query)
	b.WriteString("▏\n\n")

	rows := max(grid.Height-8, 1)
	start := 0
	if m.selector.cursor >= rows {
		start = m.selector.cursor - rows + 1
	}
	if len(opts) == 0 {
		b.WriteString(m.styles.SubtitleStyle().Render("没有匹配的工具"))
	}
	for i := start; i < len(opts) && i < start+rows; i++ {
		row := opts[i].Label
		if opts[i].Address != "" && opts[i].Address != opts[i].Label {
			row += "  " + m.styles.SubtitleStyle().Render(opts[i].Address)
		}
		row = ansi.Truncate(row, inner-2, "…")
		if i == m.selector.cursor {
			row = m.styles.SelectedStyle().Render(" " + ansi.Strip(row) + " ")
		} else {
			row = " " + row
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.HelpStyle().Render("↑/↓ move • enter choose • esc cancel"))

	box := m.styles.BoxStyle().Width(inner).Render(b.String())
	return lipgloss.Place(grid.Width, grid.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHelp(grid Region) string {
	if grid.Empty() {
		return ""
	}
	box := m.styles.BoxStyle().Render(m.help.FullHelpView(m.keys.FullHelp()))
	return lipgloss.Place(grid.Width, grid.Height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderMascot(r Region) string {
	lines := mascot.Render(m.cat.State(), r.Width)
	style := m.styles.MascotStyle()
	for i, l := range lines {
		lines[i] = style.Render(l)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLogs(r Region) string {
	rows := r.Height
	start := max(len(m.logs)-rows, 0)
	lines := make([]string, 0, rows)
	for _, e := range m.logs[start:] {
		line := m.styles.LogTimestampStyle().Render(e.Timestamp.Format("15:04:05")) + " " +
			m.styles.LogLevelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level)) + " " +
			m.styles.LogScopeStyle().Render(e.Scope) + " " +
			e.Message
		lines = append(lines, ansi.Truncate(line, r.Width, "…"))
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar(r Region) string {
	if m.status != "" {
		style := m.styles.InfoStyle()
		if m.statusErr {
			style = m.styles.ErrorStyle()
		}
		return ansi.Truncate(style.Render(m.status), r.Width, "…")
	}
	return ansi.Truncate(m.help.ShortHelpView(m.keys.ShortHelp()), r.Width, "…")
}

// center places text in the middle of a w by h area.
func center(text string, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, clip(text, w))
}

// clip truncates every line of text to w cells.
func clip(text string, w int) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, w, "")
	}
	return strings.Join(lines, "\n")
}
