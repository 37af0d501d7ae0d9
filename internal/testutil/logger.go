// Package testutil holds shared test fakes and filesystem helpers.
package testutil

import (
	"fmt"
	"sync"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// CaptureLogger records log calls instead of writing them anywhere.
// It satisfies the pipeline's Logger interface.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewCaptureLogger() *CaptureLogger { return &CaptureLogger{} }

func (l *CaptureLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *CaptureLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *CaptureLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *CaptureLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

func (l *CaptureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

// Entries returns a copy of the captured entries.
func (l *CaptureLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry{}, l.entries...)
}

// Contains reports whether any captured entry's message contains msg.
func (l *CaptureLogger) Contains(msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Msg == msg {
			return true
		}
	}
	return false
}

// String renders the captured log for test failure messages.
func (l *CaptureLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := ""
	for _, e := range l.entries {
		out += fmt.Sprintf("%s %s %v\n", e.Level, e.Msg, e.Args)
	}
	return out
}
