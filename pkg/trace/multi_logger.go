package trace

// MultiLogger sends events to multiple loggers.
// Useful when you want both console output (via SlogAdapter)
// and file output (via FileLogger) simultaneously.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Flusher is implemented by loggers that buffer events, such as FileLogger.
type Flusher interface {
	// Flush forces buffered events out to the underlying destination.
	Flush() error
}

// Flush flushes every configured logger that buffers. All loggers are
// flushed even on failure; the first error is reported.
func (m *MultiLogger) Flush() error {
	var first error
	for _, l := range m.loggers {
		if f, ok := l.(Flusher); ok {
			if err := f.Flush(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Compile-time interface satisfaction checks.
var (
	_ Logger  = (*MultiLogger)(nil)
	_ Flusher = (*MultiLogger)(nil)
)
