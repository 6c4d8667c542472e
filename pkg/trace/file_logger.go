package trace

import (
	"bufio"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// writeBufferSize is the in-memory buffer in front of the trace file.
// Pump events arrive on the stream's hot path; Log must not pay a syscall
// per event.
const writeBufferSize = 32 * 1024

// FileLogger writes stream events to a file in CBOR format. Events are
// buffered: call Flush to make them visible to readers of a live file,
// Close flushes the remainder.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	buf     *bufio.Writer
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger creates a new FileLogger that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriterSize(f, writeBufferSize)
	return &FileLogger{
		file:    f,
		buf:     buf,
		encoder: NewEncoder(buf),
	}, nil
}

// Log writes an event to the trace buffer.
// This method is safe for concurrent use.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Ignore encoding errors - capture should not disrupt the stream
	_ = l.encoder.Encode(event)
}

// Flush forces buffered events out to the file. A closed logger flushes
// nothing and reports no error.
func (l *FileLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	return l.buf.Flush()
}

// Close flushes buffered events and closes the trace file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	err := l.buf.Flush()
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// Compile-time interface satisfaction checks.
var (
	_ Logger  = (*FileLogger)(nil)
	_ Flusher = (*FileLogger)(nil)
)
