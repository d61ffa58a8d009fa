// pattern: Functional Core

package tui

import "meowdash/internal/dashboard"

// Region defines a rectangular area within the terminal.
type Region struct {
	X      int // Left position (0-indexed)
	Y      int // Top position (0-indexed)
	Width  int // Width in cells
	Height int // Height in lines
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Layout holds computed regions for all UI components.
type Layout struct {
	Header    Region // Title and web address
	Grid      Region // The four panels, or the fullscreen one
	Mascot    Region // Cat strip when enabled
	Logs      Region // Log strip when open
	StatusBar Region // Status and key help
}

// Fixed heights for chrome elements
const (
	headerHeight    = 1
	statusBarHeight = 1
	mascotHeight    = 4
	logsHeight      = 6
	minGridHeight   = 6
)

// ComputeLayout calculates regions based on terminal dimensions. The
// mascot and log strips are dropped before the grid gets too short.
func ComputeLayout(width, height int, mascotOn, logsOpen bool) Layout {
	avail := height - headerHeight - statusBarHeight
	if mascotOn && avail-mascotHeight < minGridHeight {
		mascotOn = false
	}
	if mascotOn {
		avail -= mascotHeight
	}
	if logsOpen && avail-logsHeight < minGridHeight {
		logsOpen = false
	}
	if logsOpen {
		avail -= logsHeight
	}
	avail = max(avail, 0)

	y := 0
	l := Layout{Header: Region{X: 0, Y: y, Width: width, Height: headerHeight}}
	y += headerHeight

	l.Grid = Region{X: 0, Y: y, Width: width, Height: avail}
	y += avail

	if mascotOn {
		l.Mascot = Region{X: 0, Y: y, Width: width, Height: mascotHeight}
		y += mascotHeight
	}
	if logsOpen {
		l.Logs = Region{X: 0, Y: y, Width: width, Height: logsHeight}
		y += logsHeight
	}
	l.StatusBar = Region{X: 0, Y: y, Width: width, Height: statusBarHeight}
	return l
}

// PanelRegions splits the grid 2x2 in panel order (1 2 / 3 4). When a panel
// is fullscreen it takes the whole grid and the others get no area.
func PanelRegions(grid Region, fullscreen int) [dashboard.PanelCount]Region {
	var out [dashboard.PanelCount]Region
	if fullscreen >= 1 && fullscreen <= dashboard.PanelCount {
		out[fullscreen-1] = grid
		return out
	}

	leftW := grid.Width / 2
	rightW := grid.Width - leftW
	topH := grid.Height / 2
	bottomH := grid.Height - topH

	out[0] = Region{X: grid.X, Y: grid.Y, Width: leftW, Height: topH}
	out[1] = Region{X: grid.X + leftW, Y: grid.Y, Width: rightW, Height: topH}
	out[2] = Region{X: grid.X, Y: grid.Y + topH, Width: leftW, Height: bottomH}
	out[3] = Region{X: grid.X + leftW, Y: grid.Y + topH, Width: rightW, Height: bottomH}
	return out
}

// Inner returns the text area of a bordered panel: one border cell on each
// side and one title line.
func (r Region) Inner() (width, height int) {
	return max(r.Width-2, 0), max(r.Height-3, 0)
}
