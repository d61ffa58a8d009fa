// pattern: Imperative Shell

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestLogManager logs at debug level into a channel only, so tests can
// assert on what was logged without touching the filesystem.
type TestLogManager struct {
	sink   *ChannelSink
	scopes *scopeCache
}

func NewTestLogManager(size int) *TestLogManager {
	sink := NewChannelSink(size)
	base := zap.New(zapcore.NewCore(newEncoder(), zapcore.AddSync(sink), zapcore.DebugLevel))
	return &TestLogManager{
		sink:   sink,
		scopes: newScopeCache(base, zapcore.DebugLevel),
	}
}

func (m *TestLogManager) For(scope string) *ScopedLogger {
	return m.scopes.get(scope)
}

// Channel returns the stream of logged entries.
func (m *TestLogManager) Channel() <-chan LogEntry {
	return m.sink.Entries()
}

// Drain returns every entry logged so far without blocking.
func (m *TestLogManager) Drain() []LogEntry {
	var out []LogEntry
	for {
		select {
		case e, ok := <-m.sink.Entries():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func (m *TestLogManager) Close() error {
	return m.sink.Close()
}
