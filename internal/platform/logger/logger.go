// Package logger provides leveled logging for the agent.
// Every decision the agent takes should be traceable through this.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// Logger provides leveled logging with context.
type Logger struct {
	level       Level
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a logger writing info to stdout and errors to stderr.
func NewLogger() *Logger {
	return New(LevelInfo, os.Stdout, os.Stderr)
}

// New creates a logger with an explicit level and destinations.
func New(level Level, out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		level:       level,
		debugLogger: log.New(out, "[AGENT-DEBUG] ", flags),
		infoLogger:  log.New(out, "[AGENT-INFO] ", flags),
		warnLogger:  log.New(out, "[AGENT-WARN] ", flags),
		errorLogger: log.New(errOut, "[AGENT-ERROR] ", flags),
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(LevelError+1, io.Discard, io.Discard)
}

// Debug logs verbose diagnostics.
func (l *Logger) Debug(msg string) {
	if l.level <= LevelDebug {
		l.debugLogger.Output(2, msg)
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	if l.level <= LevelInfo {
		l.infoLogger.Output(2, msg)
	}
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	if l.level <= LevelWarn {
		l.warnLogger.Output(2, msg)
	}
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	if l.level <= LevelError {
		l.errorLogger.Output(2, msg)
	}
}

// Event logs a decision or game event for audit.
func (l *Logger) Event(eventType string, actorID string, details string) {
	if l.level <= LevelInfo {
		l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details)
	}
}
