// Package events contains message types the engine, the web server and the
// content host send into the tui program.
package events

// BoardChangedMsg is sent after any engine state change. Bursts may be
// coalesced; the receiver re-reads the whole snapshot.
type BoardChangedMsg struct{}

// ContentUpdatedMsg is sent when the terminal host has new content for a panel.
type ContentUpdatedMsg struct{ Panel int }

// WebListenURLMsg is sent when the web server starts listening.
type WebListenURLMsg struct{ URL string }

// CatalogReloadedMsg is sent when a config change added selector entries.
type CatalogReloadedMsg struct{ Added int }
