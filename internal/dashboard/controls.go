// pattern: Functional Core

package dashboard

import "meowdash/internal/catalog"

func (b *Board) enabledPanel(id int) (*panel, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if !p.enabled {
		return nil, ErrNotLoaded
	}
	return p, nil
}

// applyZoom re-derives the geometry for p. Scales below 1 freeze scrolling
// until the follow-up restore lands.
func (b *Board) applyZoom(p *panel) []Effect {
	p.zoomGen++
	if !b.zoom.Geometry(p.id).SuppressScroll {
		p.scrollFrozen = false
		return nil
	}
	p.scrollFrozen = true
	return []Effect{ScheduleScrollRestore{
		Panel:      p.id,
		Generation: p.zoomGen,
		After:      b.timing.ScrollRestore,
	}}
}

// ZoomIn steps the panel's scale up. At the largest scale it is a no-op.
func (b *Board) ZoomIn(id int) ([]Effect, error) {
	p, err := b.enabledPanel(id)
	if err != nil {
		return nil, err
	}
	if !b.zoom.In(id) {
		return nil, nil
	}
	return b.applyZoom(p), nil
}

// ZoomOut steps the panel's scale down. At the smallest scale it is a no-op.
func (b *Board) ZoomOut(id int) ([]Effect, error) {
	p, err := b.enabledPanel(id)
	if err != nil {
		return nil, err
	}
	if !b.zoom.Out(id) {
		return nil, nil
	}
	return b.applyZoom(p), nil
}

// ZoomReset returns the panel to 100%.
func (b *Board) ZoomReset(id int) ([]Effect, error) {
	p, err := b.enabledPanel(id)
	if err != nil {
		return nil, err
	}
	b.zoom.Reset(id)
	return b.applyZoom(p), nil
}

// SetZoom jumps straight to a zoom index.
func (b *Board) SetZoom(id, index int) ([]Effect, error) {
	p, err := b.enabledPanel(id)
	if err != nil {
		return nil, err
	}
	if err := b.zoom.Set(id, index); err != nil {
		return nil, err
	}
	return b.applyZoom(p), nil
}

// ScrollRestoreDue unfreezes scrolling unless a newer zoom has been applied.
func (b *Board) ScrollRestoreDue(id int, generation uint64) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if p.zoomGen == generation {
		p.scrollFrozen = false
	}
	return nil, nil
}

// EnterFullscreen makes id the only visible panel and resets its zoom.
// A different panel that was fullscreen is switched out.
func (b *Board) EnterFullscreen(id int) ([]Effect, error) {
	p, err := b.enabledPanel(id)
	if err != nil {
		return nil, err
	}
	b.fullscreen = id
	b.zoom.Reset(id)
	return b.applyZoom(p), nil
}

// ExitFullscreen restores the grid and keeps whatever zoom the panel had
// while fullscreen. It is a no-op unless id is the fullscreen panel, and it
// works whatever the panel's state.
func (b *Board) ExitFullscreen(id int) ([]Effect, error) {
	if _, err := b.panel(id); err != nil {
		return nil, err
	}
	if b.fullscreen == id {
		b.fullscreen = 0
	}
	return nil, nil
}

// ToggleFullscreen enters or exits depending on the current layout.
func (b *Board) ToggleFullscreen(id int) ([]Effect, error) {
	if b.fullscreen == id {
		return b.ExitFullscreen(id)
	}
	return b.EnterFullscreen(id)
}

// Fullscreen returns the fullscreen panel id, or 0 when the grid is shown.
func (b *Board) Fullscreen() int {
	return b.fullscreen
}

// Refresh reloads a loaded panel's current address. The content is
// cleared first and restored after Timing.ReloadDelay. Panels that are not
// loaded are left alone.
func (b *Board) Refresh(id int) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if p.state != StateLoaded {
		return nil, nil
	}

	effects := b.cancelAttempt(p)
	a := &attempt{
		token:   b.issueToken(),
		kind:    AttemptRefresh,
		address: p.address,
	}
	p.attempt = a
	p.state = StateLoading
	p.spinning = true
	p.spinToken = a.token
	return append(effects,
		ClearContent{Panel: p.id},
		ScheduleReload{Panel: p.id, Token: a.token, After: b.timing.ReloadDelay},
		ArmSpinnerSafety{Panel: p.id, Token: a.token, After: b.timing.SpinnerSafety},
	), nil
}

// ReloadDue navigates a refreshed panel back to its address.
func (b *Board) ReloadDue(id int, token uint64) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	a := p.attempt
	if a == nil || a.token != token || a.navigated {
		return nil, nil
	}
	a.navigated = true
	return []Effect{
		ArmTimeout{Panel: p.id, Token: a.token, After: b.timing.LoadTimeout},
		Navigate{Panel: p.id, Token: a.token, Address: a.address, Sandbox: catalog.SandboxPolicy(a.address)},
	}, nil
}

// SpinnerSafetyElapsed stops the refresh spinner started for token.
func (b *Board) SpinnerSafetyElapsed(id int, token uint64) ([]Effect, error) {
	p, err := b.panel(id)
	if err != nil {
		return nil, err
	}
	if p.spinning && p.spinToken == token {
		b.stopSpinner(p)
	}
	return nil, nil
}
