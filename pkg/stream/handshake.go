package stream

import (
	"io"

	"github.com/seamtls/seamtls-go/pkg/channel"
	"github.com/seamtls/seamtls-go/pkg/trace"
)

// Handshake performs one bounded round of handshake progress and returns
// the ciphertext byte counts moved in each direction during the call.
//
// The caller drives the handshake by invoking Handshake repeatedly while
// the engine still reports handshaking:
//
//	for eng.IsHandshaking() {
//		if _, _, err := s.Handshake(); err != nil && !channel.IsWouldBlock(err) {
//			return err
//		}
//	}
//
// A round that made byte progress in either direction returns its counts
// with a nil error even if the handshake is not finished; a round that
// could not move a single byte returns (0, 0, channel.ErrWouldBlock). Once
// the handshake has completed, further calls are cheap no-ops returning
// zero counts. A clean transport close observed while still handshaking is
// always fatal and returns io.ErrUnexpectedEOF, regardless of strict-EOF
// mode: a handshake can never validly complete against a silently closed
// peer.
func (s *Stream) Handshake() (bytesRead, bytesWritten int, err error) {
	for {
		var writeBlocked, readBlocked bool
		progressed := false

		if s.engine.WantsWrite() {
			n, derr := s.driver.DrainToTransport()
			bytesWritten += n
			if n > 0 {
				progressed = true
			}
			switch {
			case derr == nil:
			case channel.IsWouldBlock(derr):
				writeBlocked = true
			default:
				s.traceError(derr, "handshake drain")
				return bytesRead, bytesWritten, derr
			}
			if n > 0 {
				if ferr := s.transport.TryFlush(); ferr != nil {
					if !channel.IsWouldBlock(ferr) {
						s.traceError(ferr, "handshake flush")
						return bytesRead, bytesWritten, ferr
					}
					writeBlocked = true
				}
			}
		}

		if !s.driver.TransportEOF() && s.engine.WantsRead() {
			n, ferr := s.driver.FillFromTransport()
			bytesRead += n
			if n > 0 {
				progressed = true
			}
			switch {
			case ferr == nil:
			case channel.IsWouldBlock(ferr):
				readBlocked = true
			default:
				s.traceError(ferr, "handshake fill")
				return bytesRead, bytesWritten, ferr
			}
		}

		switch {
		case s.driver.TransportEOF() && s.engine.IsHandshaking():
			s.traceError(io.ErrUnexpectedEOF, "transport closed during handshake")
			return bytesRead, bytesWritten, io.ErrUnexpectedEOF

		case !s.engine.IsHandshaking():
			if s.engine.WantsWrite() && !writeBlocked {
				// The decode that finished the handshake may queue a
				// final flight (a responder's reply hello); send it
				// before reporting completion, or a peer driven only
				// by reads would never transmit it.
				continue
			}
			s.setState(StateEstablished, "handshake complete")
			s.traceHandshake(bytesRead, bytesWritten, true)
			return bytesRead, bytesWritten, nil

		case writeBlocked || readBlocked:
			if bytesRead > 0 || bytesWritten > 0 {
				s.traceHandshake(bytesRead, bytesWritten, false)
				return bytesRead, bytesWritten, nil
			}
			return 0, 0, channel.ErrWouldBlock

		case !progressed:
			// Neither pump found anything pending; the round is done
			// even though the handshake is not.
			s.traceHandshake(bytesRead, bytesWritten, false)
			return bytesRead, bytesWritten, nil
		}
	}
}

// driveHandshake pumps handshake rounds until the handshake completes, a
// round suspends with channel.ErrWouldBlock, or a round can make no
// progress at all. Read and Write call this before touching plaintext: a
// round that moved bytes without finishing must be followed by another
// round, not by a plaintext operation the engine would reject.
func (s *Stream) driveHandshake() error {
	for s.engine.IsHandshaking() {
		r, w, err := s.Handshake()
		if err != nil {
			return err
		}
		if r == 0 && w == 0 {
			// Stalled without suspension; let the engine report its
			// own state on the operation that follows.
			return nil
		}
	}
	return nil
}

// traceHandshake emits a handshake round event.
func (s *Stream) traceHandshake(bytesRead, bytesWritten int, completed bool) {
	if s.logger == nil {
		return
	}
	ev := trace.NewEvent(s.streamID, trace.CategoryHandshake)
	ev.Handshake = &trace.HandshakeEvent{
		BytesRead:    bytesRead,
		BytesWritten: bytesWritten,
		Completed:    completed,
	}
	s.logger.Log(ev)
}
