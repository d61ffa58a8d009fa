// pattern: Functional Core

package logging

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// LogEntry is one decoded log line as shown in the terminal log strip.
type LogEntry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN, ERROR
	Scope     string // e.g. "engine", "panel.3"
	Message   string
	Fields    map[string]any
}

// String renders "15:04:05 LEVEL [scope] message k=v ..." with fields in
// key order so output is stable.
func (e LogEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// MatchesScope reports whether the entry belongs to prefix. Empty matches all.
func (e LogEntry) MatchesScope(prefix string) bool {
	return prefix == "" || e.Scope == prefix || strings.HasPrefix(e.Scope, prefix+".")
}

// ParseLevel normalizes a zap level name. Unknown names become INFO.
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error", "dpanic", "panic", "fatal":
		return "ERROR"
	default:
		return "INFO"
	}
}
