package logger

import (
	"fmt"
	"sort"
	"strings"
	"testing"
)

// TestLogger routes log lines to t.Logf, fields included
type TestLogger struct {
	T      *testing.T
	fields map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger(t *testing.T) Logger {
	return &TestLogger{T: t}
}

func (l *TestLogger) log(level, msg string) {
	if l.T == nil {
		return
	}
	l.T.Helper()
	if len(l.fields) == 0 {
		l.T.Logf("[%s] %s", level, msg)
		return
	}
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
	}
	l.T.Logf("[%s] %s %s", level, msg, strings.Join(parts, " "))
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg) }

// WithField returns a logger carrying one more field
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger carrying the extra fields
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{T: l.T, fields: merged}
}
