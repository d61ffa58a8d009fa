// pattern: Imperative Shell

package logging

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider hands out scoped loggers. Manager and TestLogManager both
// satisfy it, so components only ever depend on this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog front end over a named zap logger.
// A zero or nil-backed ScopedLogger discards everything.
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

func (l *ScopedLogger) Debug(msg string, args ...any) {
	if l != nil && l.slog != nil {
		l.slog.Debug(msg, args...)
	}
}

func (l *ScopedLogger) Info(msg string, args ...any) {
	if l != nil && l.slog != nil {
		l.slog.Info(msg, args...)
	}
}

func (l *ScopedLogger) Warn(msg string, args ...any) {
	if l != nil && l.slog != nil {
		l.slog.Warn(msg, args...)
	}
}

func (l *ScopedLogger) Error(msg string, args ...any) {
	if l != nil && l.slog != nil {
		l.slog.Error(msg, args...)
	}
}

// With returns a child logger that attaches args to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l == nil || l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), scope: l.scope}
}

// Scope returns the dotted scope name, e.g. "panel.2".
func (l *ScopedLogger) Scope() string {
	if l == nil {
		return ""
	}
	return l.scope
}

// NopLogger returns a logger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// scopeCache builds and memoizes one ScopedLogger per scope on top of a base
// zap logger.
type scopeCache struct {
	base  *zap.Logger
	level zapcore.Level

	mu      sync.RWMutex
	loggers map[string]*ScopedLogger
}

func newScopeCache(base *zap.Logger, level zapcore.Level) *scopeCache {
	return &scopeCache{
		base:    base,
		level:   level,
		loggers: make(map[string]*ScopedLogger),
	}
}

func (c *scopeCache) get(scope string) *ScopedLogger {
	c.mu.RLock()
	logger, ok := c.loggers[scope]
	c.mu.RUnlock()
	if ok {
		return logger
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if logger, ok := c.loggers[scope]; ok {
		return logger
	}

	handler := &zapHandler{zap: c.base.Named(scope), level: c.level}
	logger = &ScopedLogger{slog: slog.New(handler), scope: scope}
	c.loggers[scope] = logger
	return logger
}

// zapHandler implements slog.Handler by forwarding records to zap.
type zapHandler struct {
	zap   *zap.Logger
	level zapcore.Level
	attrs []slog.Attr
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zapLevel(level) >= h.level
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
	}
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
		return true
	})

	if ce := h.zap.Check(zapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &zapHandler{zap: h.zap, level: h.level, attrs: merged}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	return &zapHandler{zap: h.zap.Named(name), level: h.level, attrs: h.attrs}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
