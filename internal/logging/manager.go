// pattern: Imperative Shell

package logging

import (
	"errors"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes where and how much the Manager logs.
type Config struct {
	FilePath       string // rotating JSON log file
	MaxSizeMB      int
	MaxBackups     int
	MaxAgeDays     int
	Level          string // debug, info, warn, error
	ChannelBufSize int    // entries buffered for the terminal log strip
}

// Manager tees every entry to a rotating file and to a ChannelSink read by
// the terminal UI.
type Manager struct {
	base   *zap.Logger
	sink   *ChannelSink
	file   *lumberjack.Logger
	scopes *scopeCache
}

// NewManager applies defaults to cfg and opens the log file directory.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("logging: FilePath is required")
	}
	if cfg.ChannelBufSize <= 0 {
		cfg.ChannelBufSize = 500
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 5
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 7
	}

	level := ParseZapLevel(cfg.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, err
	}

	file := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	sink := NewChannelSink(cfg.ChannelBufSize)

	core := zapcore.NewTee(
		zapcore.NewCore(newEncoder(), zapcore.AddSync(file), level),
		zapcore.NewCore(newEncoder(), zapcore.AddSync(sink), level),
	)
	base := zap.New(core)

	return &Manager{
		base:   base,
		sink:   sink,
		file:   file,
		scopes: newScopeCache(base, level),
	}, nil
}

// For returns the cached logger for scope.
func (m *Manager) For(scope string) *ScopedLogger {
	return m.scopes.get(scope)
}

// Entries streams parsed entries for display.
func (m *Manager) Entries() <-chan LogEntry {
	return m.sink.Entries()
}

// Sync flushes buffered entries.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes, closes the entry stream and the file.
func (m *Manager) Close() error {
	_ = m.Sync()
	_ = m.sink.Close()
	return m.file.Close()
}

// ParseZapLevel maps a config string to a zap level, defaulting to info.
func ParseZapLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func newEncoder() zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.EpochTimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return zapcore.NewJSONEncoder(encoderCfg)
}
