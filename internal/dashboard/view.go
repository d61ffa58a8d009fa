// pattern: Functional Core

package dashboard

import (
	"slices"

	"meowdash/internal/catalog"
)

// PanelView is a read-only copy of one panel for renderers and the API.
type PanelView struct {
	ID               int          `json:"id"`
	Title            string       `json:"title"`
	Label            string       `json:"label"`
	Address          string       `json:"address"`
	State            DisplayState `json:"state"`
	ControlsEnabled  bool         `json:"controls_enabled"`
	Token            uint64       `json:"token,omitempty"`
	ZoomIndex        int          `json:"zoom_index"`
	Geometry         Geometry     `json:"geometry"`
	ScrollSuppressed bool         `json:"scroll_suppressed"`
	Fullscreen       bool         `json:"fullscreen"`
	Hidden           bool         `json:"hidden"`
	Refreshing       bool         `json:"refreshing"`
	External         bool         `json:"external"`
	Sandbox          []string     `json:"sandbox"`
	Failure          *Failure     `json:"failure,omitempty"`
}

// Snapshot is the whole board at one instant. Version grows with every
// engine change, so a later snapshot never has a smaller Version.
type Snapshot struct {
	Version    uint64          `json:"version"`
	Panels     []PanelView     `json:"panels"`
	Fullscreen int             `json:"fullscreen"`
	Catalog    []catalog.Entry `json:"catalog"`
}

// Panel returns the view for id. The zero value is returned for unknown ids.
func (s Snapshot) Panel(id int) PanelView {
	if id < 1 || id > len(s.Panels) {
		return PanelView{}
	}
	return s.Panels[id-1]
}

// Snapshot copies the current state.
func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		Panels:     make([]PanelView, 0, PanelCount),
		Fullscreen: b.fullscreen,
		Catalog:    b.catalog.Entries(),
	}
	for _, p := range b.panels {
		s.Panels = append(s.Panels, b.view(p))
	}
	return s
}

func (b *Board) view(p *panel) PanelView {
	v := PanelView{
		ID:               p.id,
		Title:            p.title(),
		Label:            p.label,
		Address:          p.address,
		State:            p.state,
		ControlsEnabled:  p.enabled,
		ZoomIndex:        b.zoom.Get(p.id),
		Geometry:         b.zoom.Geometry(p.id),
		ScrollSuppressed: p.scrollFrozen,
		Fullscreen:       b.fullscreen == p.id,
		Hidden:           b.fullscreen != 0 && b.fullscreen != p.id,
		Refreshing:       p.spinning,
		External:         p.address != "" && catalog.IsExternal(p.address),
		Sandbox:          catalog.SandboxPolicy(p.address),
	}
	if p.attempt != nil {
		v.Token = p.attempt.token
	}
	if p.failure != nil {
		f := *p.failure
		f.Causes = slices.Clone(p.failure.Causes)
		v.Failure = &f
	}
	return v
}
