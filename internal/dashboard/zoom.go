// pattern: Functional Core

package dashboard

import (
	"fmt"
	"math"
)

// Scales are the discrete zoom factors, smallest first.
var Scales = [...]float64{0.5, 0.75, 0.9, 1.0, 1.1, 1.25, 1.5, 1.75, 2.0}

// DefaultZoomIndex points at scale 1.0.
const DefaultZoomIndex = 3

// Geometry describes how embedded content is laid out at a zoom level.
// The content is scaled by Scale from its top-left corner, and its logical
// box is BoxFactor times the viewport in both dimensions so the scaled
// result still fills the viewport.
type Geometry struct {
	Scale          float64 `json:"scale"`
	Percent        int     `json:"percent"`
	BoxFactor      float64 `json:"box_factor"`
	SuppressScroll bool    `json:"suppress_scroll"`
}

// GeometryFor computes the layout for a zoom index.
func GeometryFor(index int) Geometry {
	scale := Scales[clampZoom(index)]
	g := Geometry{
		Scale:     scale,
		Percent:   int(math.Round(scale * 100)),
		BoxFactor: 1,
	}
	if scale != 1 {
		g.BoxFactor = 1 / scale
	}
	g.SuppressScroll = scale < 1
	return g
}

func clampZoom(index int) int {
	return max(0, min(index, len(Scales)-1))
}

// Zoom owns the zoom index of every panel. Nothing else writes zoom state.
type Zoom struct {
	index []int
}

// NewZoom starts every panel at DefaultZoomIndex.
func NewZoom(panels int) *Zoom {
	z := &Zoom{index: make([]int, panels)}
	for i := range z.index {
		z.index[i] = DefaultZoomIndex
	}
	return z
}

// Get returns the zoom index of panel (1-based).
func (z *Zoom) Get(panel int) int {
	return z.index[panel-1]
}

// Set stores an explicit index. Out-of-range indices are rejected.
func (z *Zoom) Set(panel, index int) error {
	if index < 0 || index >= len(Scales) {
		return fmt.Errorf("%w: %d", ErrZoomRange, index)
	}
	z.index[panel-1] = index
	return nil
}

// In moves one step up. It reports false at the largest scale.
func (z *Zoom) In(panel int) bool {
	i := z.index[panel-1]
	if i >= len(Scales)-1 {
		return false
	}
	z.index[panel-1] = i + 1
	return true
}

// Out moves one step down. It reports false at the smallest scale.
func (z *Zoom) Out(panel int) bool {
	i := z.index[panel-1]
	if i <= 0 {
		return false
	}
	z.index[panel-1] = i - 1
	return true
}

// Reset returns panel to DefaultZoomIndex.
func (z *Zoom) Reset(panel int) {
	z.index[panel-1] = DefaultZoomIndex
}

// Geometry returns the layout for panel's current index.
func (z *Zoom) Geometry(panel int) Geometry {
	return GeometryFor(z.Get(panel))
}
