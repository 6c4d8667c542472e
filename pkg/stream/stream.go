package stream

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/seamtls/seamtls-go/pkg/channel"
	"github.com/seamtls/seamtls-go/pkg/trace"
)

// Stream is the public adapter composing an engine and a transport into a
// poll-style secure byte stream. It owns no buffers of its own: all
// buffering is delegated to the engine's ciphertext/plaintext queues and to
// the transport.
//
// A Stream exclusively borrows its engine and transport. It must be driven
// from one task at a time and performs no internal locking.
type Stream struct {
	transport channel.Transport
	engine    channel.Engine
	driver    *IoDriver

	eofIsError bool
	closeSent  bool
	state      State

	scratchSize int
	logger      trace.Logger
	streamID    string
}

// New creates a Stream over the given transport and engine.
// The handshake is not driven here; call Handshake, or let the first Read
// or Write drive it.
func New(t channel.Transport, e channel.Engine, opts ...Option) *Stream {
	s := &Stream{
		transport: t,
		engine:    e,
		state:     StateHandshaking,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger != nil && s.streamID == "" {
		s.streamID = uuid.NewString()
	}
	s.driver = newIoDriver(t, e, s.scratchSize)
	if !e.IsHandshaking() {
		s.state = StateEstablished
	}
	return s
}

// SetStrictEOF updates strict end-of-stream mode. The flag persists for the
// life of the stream; see WithStrictEOF.
func (s *Stream) SetStrictEOF(strict bool) {
	s.eofIsError = strict
}

// StrictEOF reports whether strict end-of-stream mode is enabled.
func (s *Stream) StrictEOF() bool {
	return s.eofIsError
}

// State returns the stream's lifecycle state.
func (s *Stream) State() State {
	return s.state
}

// ID returns the stream's trace identifier. Empty unless a logger or an
// explicit ID was configured.
func (s *Stream) ID() string {
	return s.streamID
}

// Driver exposes the raw ciphertext pumps for callers composing
// higher-level stream types on top of the adapter.
func (s *Stream) Driver() *IoDriver {
	return s.driver
}

// Read copies decrypted application data into p.
//
// If the handshake has not completed it is driven first. Read returns
// (0, channel.ErrWouldBlock) when the transport has nothing available,
// (0, io.EOF) on a graceful protocol-acknowledged close, and
// (0, io.ErrUnexpectedEOF) when strict-EOF mode is on and the transport
// closed before the engine observed the peer's close notification.
func (s *Stream) Read(p []byte) (int, error) {
	if err := s.driveHandshake(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := s.engine.ReadPlaintext(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && !channel.IsWouldBlock(err) {
			if errors.Is(err, io.EOF) {
				// Orderly close recorded by the engine itself.
				s.setState(StateClosed, "peer close notification")
				return 0, io.EOF
			}
			s.traceError(err, "read plaintext")
			return 0, err
		}

		if s.driver.TransportEOF() {
			if s.eofIsError {
				err := io.ErrUnexpectedEOF
				s.traceError(err, "transport closed before protocol close")
				return 0, err
			}
			s.setState(StateClosed, "transport close")
			return 0, io.EOF
		}

		moved, ferr := s.driver.FillFromTransport()
		if ferr != nil {
			if !channel.IsWouldBlock(ferr) {
				s.traceError(ferr, "fill from transport")
			}
			return 0, ferr
		}
		s.tracePump(trace.DirectionIn, moved)
		if moved == 0 && !s.driver.TransportEOF() {
			// The engine stopped wanting input without yielding
			// plaintext; wait for more transport readiness.
			return 0, channel.ErrWouldBlock
		}
	}
}

// Write encrypts application data from p into the engine and
// opportunistically drains the engine's ciphertext to the transport.
//
// The engine may accept fewer bytes than offered once its output buffer
// reaches its configured cap; Write then returns the short count. When no
// bytes can be accepted and the transport is not ready to make room, Write
// returns (0, channel.ErrWouldBlock) — never a zero-byte success.
func (s *Stream) Write(p []byte) (int, error) {
	if err := s.driveHandshake(); err != nil {
		return 0, err
	}
	var pos int
	for pos < len(p) {
		n, err := s.engine.WritePlaintext(p[pos:])
		if err != nil {
			s.traceError(err, "write plaintext")
			return pos, err
		}
		pos += n

		// Advisory drain to make room for future writes. Its
		// suspension is not surfaced while bytes were accepted.
		drained, derr := s.driver.DrainToTransport()
		s.tracePump(trace.DirectionOut, drained)
		blocked := false
		if derr != nil {
			if !channel.IsWouldBlock(derr) {
				s.traceError(derr, "drain to transport")
				return pos, derr
			}
			blocked = true
		}

		switch {
		case pos == 0 && blocked:
			return 0, channel.ErrWouldBlock
		case pos == 0 && drained == 0:
			s.traceError(ErrWriteStalled, "write")
			return 0, ErrWriteStalled
		case pos > 0 && blocked:
			return pos, nil
		}
		// pos == 0 with drain progress: room was freed, offer again.
		// pos > 0 without backpressure: keep going.
	}
	return pos, nil
}

// Flush drains the engine's remaining ciphertext to the transport and then
// flushes the transport itself. It returns channel.ErrWouldBlock whenever
// the transport suspends; retrying resumes where it left off.
func (s *Stream) Flush() error {
	drained, err := s.driver.DrainToTransport()
	s.tracePump(trace.DirectionOut, drained)
	if err != nil {
		if !channel.IsWouldBlock(err) {
			s.traceError(err, "flush drain")
		}
		return err
	}
	return s.transport.TryFlush()
}

// Shutdown performs the TLS-correct close sequence: queue the engine's
// close notification, flush it together with any remaining ciphertext, and
// shut down the transport's write half. Each sub-step may suspend with
// channel.ErrWouldBlock; retrying Shutdown resumes the sequence without
// re-queuing the notification.
func (s *Stream) Shutdown() error {
	if !s.closeSent {
		s.engine.InitiateClose()
		s.closeSent = true
		s.setState(StateClosing, "shutdown requested")
	}
	if err := s.Flush(); err != nil {
		return err
	}
	if err := s.transport.TryShutdown(); err != nil {
		if !channel.IsWouldBlock(err) {
			s.traceError(err, "transport shutdown")
		}
		return err
	}
	s.setState(StateClosed, "shutdown complete")
	return nil
}

// setState records a lifecycle transition and emits a state trace event.
func (s *Stream) setState(next State, reason string) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	if s.logger == nil {
		return
	}
	ev := trace.NewEvent(s.streamID, trace.CategoryState)
	ev.StateChange = &trace.StateChangeEvent{
		OldState: prev.String(),
		NewState: next.String(),
		Reason:   reason,
	}
	s.logger.Log(ev)
}

// tracePump emits a pump event when bytes moved.
func (s *Stream) tracePump(dir trace.Direction, bytes int) {
	if s.logger == nil || bytes == 0 {
		return
	}
	ev := trace.NewEvent(s.streamID, trace.CategoryPump)
	ev.Direction = dir
	ev.Pump = &trace.PumpEvent{Bytes: bytes}
	s.logger.Log(ev)
}

// traceError emits an error event.
func (s *Stream) traceError(err error, context string) {
	if s.logger == nil {
		return
	}
	ev := trace.NewEvent(s.streamID, trace.CategoryError)
	ev.Error = &trace.ErrorEventData{
		Message: err.Error(),
		Context: context,
	}
	s.logger.Log(ev)
}
