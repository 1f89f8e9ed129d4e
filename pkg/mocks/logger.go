package mocks

import (
	"sync"

	"github.com/user/bagannotate/pkg/ports"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level     ports.LogLevel
	Component string
	Msg       string
	Args      []interface{}
}

// Logger is a mock implementation of ports.Logger that records every call.
type Logger struct {
	mu        *sync.Mutex
	entries   *[]LogEntry
	component string
}

// NewLogger creates a new recording Logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, entries: &[]LogEntry{}}
}

func (l *Logger) record(level ports.LogLevel, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, LogEntry{Level: level, Component: l.component, Msg: msg, Args: args})
}

// Debug implements ports.Logger.
func (l *Logger) Debug(msg string, args ...interface{}) { l.record(ports.LevelDebug, msg, args) }

// Info implements ports.Logger.
func (l *Logger) Info(msg string, args ...interface{}) { l.record(ports.LevelInfo, msg, args) }

// Warn implements ports.Logger.
func (l *Logger) Warn(msg string, args ...interface{}) { l.record(ports.LevelWarn, msg, args) }

// Error implements ports.Logger.
func (l *Logger) Error(msg string, args ...interface{}) { l.record(ports.LevelError, msg, args) }

// WithComponent returns a logger sharing the same record.
func (l *Logger) WithComponent(component string) ports.Logger {
	return &Logger{mu: l.mu, entries: l.entries, component: component}
}

// Entries returns a copy of the recorded calls.
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), *l.entries...)
}

// HasMessage reports whether msg was logged at any level.
func (l *Logger) HasMessage(msg string) bool {
	return l.Count(msg) > 0
}

// Count returns how many times msg was logged.
func (l *Logger) Count(msg string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Msg == msg {
			n++
		}
	}
	return n
}

var _ ports.Logger = (*Logger)(nil)
