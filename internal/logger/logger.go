package logger

import (
	"sync"
)

// Log levels accepted by Get and the log_level config key.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger configured at the provided level.
// The first call wins; later calls ignore the level argument and return
// the same instance, so the control loop and the HTTP layer share one
// sink.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// Named returns a child logger tagged with the given subsystem name,
// e.g. "engine" or "telemetry".
func (l *Logger) Named(name string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(name)}
}
