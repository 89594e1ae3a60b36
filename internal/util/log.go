package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type LogLevel int32

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"trace": LevelTrace,
	"debug": LevelDebug,
	"info":  LevelInfo,
	"warn":  LevelWarn,
	"error": LevelError,
}

var zerologLevels = map[LogLevel]zerolog.Level{
	LevelTrace: zerolog.TraceLevel,
	LevelDebug: zerolog.DebugLevel,
	LevelInfo:  zerolog.InfoLevel,
	LevelWarn:  zerolog.WarnLevel,
	LevelError: zerolog.ErrorLevel,
}

// Logger wraps a zerolog logger with printf-style helpers and a runtime level.
type Logger struct {
	level atomic.Int32
	base  zerolog.Logger
}

// NewLogger creates a level-aware console logger writing to stderr.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a level-aware console logger writing to the provided destination.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    w != os.Stderr,
	}
	return newLogger(level, zerolog.New(console))
}

// NewJSONLogger emits one JSON object per line, for running under a supervisor that collects logs.
func NewJSONLogger(level LogLevel, w io.Writer) *Logger {
	return newLogger(level, zerolog.New(w))
}

func newLogger(level LogLevel, zl zerolog.Logger) *Logger {
	l := &Logger{base: zl.With().Timestamp().Logger()}
	l.level.Store(int32(level))
	return l
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

// With returns a child logger that attaches key=value to every entry.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	child := &Logger{base: l.base.With().Interface(key, value).Logger()}
	child.level.Store(l.level.Load())
	return child
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	if l == nil || level < LogLevel(l.level.Load()) {
		return
	}
	l.base.WithLevel(zerologLevels[level]).Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Tracef(format string, args ...interface{}) {
	l.logf(LevelTrace, format, args...)
}
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logf(LevelDebug, format, args...)
}
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logf(LevelInfo, format, args...)
}
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logf(LevelWarn, format, args...)
}
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logf(LevelError, format, args...)
}

// ParseLogLevel converts a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	if lvl, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return lvl
	}
	return LevelInfo
}
