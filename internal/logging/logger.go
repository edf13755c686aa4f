// Package logging holds the process-wide zap logger.
package logging

import (
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MaxLogFieldLength caps string fields that may carry provider payloads
const MaxLogFieldLength = 512

// ServiceName is attached to every entry written by the default logger
const ServiceName = "servermonitor"

var defaultLogger atomic.Pointer[zap.Logger]

// ParseLevel maps LOG_LEVEL values onto zap levels. Unknown or empty values
// mean info.
func ParseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// NewLogger builds the JSON logger used by the server and the CLI
func NewLogger(level zapcore.Level) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.InitialFields = map[string]interface{}{"service": ServiceName}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"

	// no sampling at debug, every provider call is wanted
	if level == zapcore.DebugLevel {
		config.Sampling = nil
	}

	return config.Build()
}

// InitLogger installs the default logger at the level named by LOG_LEVEL
func InitLogger() error {
	logger, err := NewLogger(ParseLevel(os.Getenv("LOG_LEVEL")))
	if err != nil {
		return err
	}
	defaultLogger.Store(logger)
	zap.ReplaceGlobals(logger)
	return nil
}

// Logger returns the default logger. Safe for concurrent use; before
// InitLogger it falls back to an info-level logger.
func Logger() *zap.Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	fallback, err := NewLogger(zapcore.InfoLevel)
	if err != nil {
		fallback = zap.NewNop()
	}
	if !defaultLogger.CompareAndSwap(nil, fallback) {
		_ = fallback.Sync()
	}
	return defaultLogger.Load()
}

// Sync flushes any buffered log entries
func Sync() error {
	l := defaultLogger.Load()
	if l == nil {
		return nil
	}
	return l.Sync()
}

// Truncate shortens s to MaxLogFieldLength bytes, marking the cut with "..."
func Truncate(s string) string {
	return TruncateN(s, MaxLogFieldLength)
}

// TruncateN shortens s to at most n bytes without splitting a UTF-8
// sequence, marking the cut with "..."
func TruncateN(s string, n int) string {
	if n < 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
