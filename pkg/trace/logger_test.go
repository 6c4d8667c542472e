package trace

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger counts events for fan-out assertions.
type recordingLogger struct {
	events []Event
}

func (l *recordingLogger) Log(event Event) {
	l.events = append(l.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}
	m := NewMultiLogger(a, b, NoopLogger{})

	m.Log(NewEvent("s1", CategoryPump))
	m.Log(NewEvent("s1", CategoryError))

	assert.Len(t, a.events, 2)
	assert.Len(t, b.events, 2)
	assert.Equal(t, CategoryError, a.events[1].Category)
}

// TestMultiLoggerFlush verifies Flush reaches the buffering loggers and
// skips the ones that don't buffer.
func TestMultiLoggerFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.cbor")
	fl, err := NewFileLogger(path)
	require.NoError(t, err)
	defer fl.Close()
	m := NewMultiLogger(&recordingLogger{}, fl)

	m.Log(NewEvent("s1", CategoryPump))
	require.NoError(t, m.Flush())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSlogAdapterHandlesAllPayloads(t *testing.T) {
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	pump := NewEvent("s1", CategoryPump)
	pump.Direction = DirectionIn
	pump.Pump = &PumpEvent{Bytes: 64, WouldBlock: true}
	adapter.Log(pump)

	hs := NewEvent("s1", CategoryHandshake)
	hs.Handshake = &HandshakeEvent{BytesRead: 51, BytesWritten: 51, Completed: true}
	adapter.Log(hs)

	state := NewEvent("s1", CategoryState)
	state.StateChange = &StateChangeEvent{NewState: "CLOSED", Reason: "shutdown complete"}
	adapter.Log(state)

	fail := NewEvent("s1", CategoryError)
	fail.Error = &ErrorEventData{Message: "decode failed", Context: "fill"}
	adapter.Log(fail)
}
