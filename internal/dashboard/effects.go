// pattern: Functional Core

package dashboard

import "time"

// Effect is a side effect requested by a Board transition. The Engine
// executes effects in the order they are returned.
type Effect interface {
	effect()
}

// ArmTimeout starts the load timeout for an attempt.
type ArmTimeout struct {
	Panel int
	Token uint64
	After time.Duration
}

// CancelTimeout stops whatever load timeout is pending for a panel.
type CancelTimeout struct {
	Panel int
}

// Navigate points a panel's embedded content at an address.
type Navigate struct {
	Panel   int
	Token   uint64
	Address string
	Sandbox []string
}

// ClearContent blanks a panel's embedded content.
type ClearContent struct {
	Panel int
}

// Announce sends the best-effort readiness message to loaded content.
type Announce struct {
	Panel   int
	Token   uint64
	Address string
}

// OpenExternal asks the host environment to open an address on its own.
type OpenExternal struct {
	Address string
}

// ScheduleReload restores a refreshed panel's address after a short delay.
type ScheduleReload struct {
	Panel int
	Token uint64
	After time.Duration
}

// ArmSpinnerSafety force-stops a refresh spinner after a delay.
type ArmSpinnerSafety struct {
	Panel int
	Token uint64
	After time.Duration
}

// ScheduleScrollRestore re-enables scrolling after a zoom-out resize.
type ScheduleScrollRestore struct {
	Panel      int
	Generation uint64
	After      time.Duration
}

func (ArmTimeout) effect()            {}
func (CancelTimeout) effect()         {}
func (Navigate) effect()              {}
func (ClearContent) effect()          {}
func (Announce) effect()              {}
func (OpenExternal) effect()          {}
func (ScheduleReload) effect()        {}
func (ArmSpinnerSafety) effect()      {}
func (ScheduleScrollRestore) effect() {}

// Timing holds the fixed durations used by the loader and controllers.
type Timing struct {
	LoadTimeout   time.Duration
	ReloadDelay   time.Duration
	SpinnerSafety time.Duration
	ScrollRestore time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		LoadTimeout:   30 * time.Second,
		ReloadDelay:   100 * time.Millisecond,
		SpinnerSafety: 5 * time.Second,
		ScrollRestore: 50 * time.Millisecond,
	}
}

func (t Timing) withDefaults() Timing {
	d := DefaultTiming()
	if t.LoadTimeout <= 0 {
		t.LoadTimeout = d.LoadTimeout
	}
	if t.ReloadDelay <= 0 {
		t.ReloadDelay = d.ReloadDelay
	}
	if t.SpinnerSafety <= 0 {
		t.SpinnerSafety = d.SpinnerSafety
	}
	if t.ScrollRestore <= 0 {
		t.ScrollRestore = d.ScrollRestore
	}
	return t
}
