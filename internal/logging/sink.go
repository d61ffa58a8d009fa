// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

var errSinkClosed = errors.New("logging: write to closed sink")

// ChannelSink is a zapcore.WriteSyncer that decodes each JSON line into a
// LogEntry and queues it. When the queue is full the oldest entry is
// discarded so logging never blocks the caller.
type ChannelSink struct {
	mu      sync.Mutex
	entries chan LogEntry
	closed  bool
}

func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{entries: make(chan LogEntry, size)}
}

func (s *ChannelSink) Write(p []byte) (int, error) {
	entry, ok := decodeEntry(p)
	if !ok {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errSinkClosed
	}

	for {
		select {
		case s.entries <- entry:
			return len(p), nil
		default:
		}
		select {
		case <-s.entries:
		default:
		}
	}
}

func (s *ChannelSink) Sync() error { return nil }

// Close ends the stream. Later writes fail; repeated Close calls are fine.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.entries)
	}
	return nil
}

func (s *ChannelSink) Entries() <-chan LogEntry {
	return s.entries
}

// decodeEntry lifts the well-known zap keys out of a JSON line and keeps the
// rest as fields.
func decodeEntry(line []byte) (LogEntry, bool) {
	var raw map[string]any
	if err := json.Unmarshal(line, &raw); err != nil {
		return LogEntry{}, false
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Scope:     "app",
		Fields:    map[string]any{},
	}
	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = ParseLevel(level)
	}
	if scope, ok := raw["logger"].(string); ok {
		entry.Scope = scope
	}
	if ts, ok := raw["ts"].(float64); ok {
		sec := int64(ts)
		entry.Timestamp = time.Unix(sec, int64((ts-float64(sec))*1e9))
	}

	for k, v := range raw {
		switch k {
		case "msg", "level", "logger", "ts", "caller", "stacktrace":
			continue
		}
		entry.Fields[k] = v
	}
	return entry, true
}
