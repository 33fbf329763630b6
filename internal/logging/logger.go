package logging

// Logger defines the interface for logging messages.
type Logger interface {
	// Log formats and writes a log message.
	Log(format string, args ...interface{})
	// IsEnabled returns true if the logger is active (e.g., debug mode is on).
	IsEnabled() bool
	// Close flushes pending messages and releases the log file.
	Close() error
}

// OrNil returns l, or a NilLogger when l is nil
func OrNil(l Logger) Logger {
	if l == nil {
		return NewNilLogger()
	}
	return l
}
