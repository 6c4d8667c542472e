// Package stream adapts a synchronous secure-channel engine to a
// non-blocking byte transport.
//
// The engine (channel.Engine) is a pull/push state machine: it consumes
// ciphertext through an explicit call, produces ciphertext through an
// explicit call, and must be pumped by its caller until satisfied. The
// transport (channel.Transport) is poll-style: every read or write either
// completes immediately or reports channel.ErrWouldBlock. Stream multiplexes
// the two directions across that readiness model while preserving
// byte-exact delivery, TLS-correct shutdown, and truncation protection.
//
// # Layers
//
//	┌────────────────────────────────┐
//	│   Application plaintext        │  Stream.Read / Stream.Write
//	├────────────────────────────────┤
//	│   Handshake coordination       │  Stream.Handshake
//	├────────────────────────────────┤
//	│   Ciphertext pumps             │  IoDriver
//	├────────────────────────────────┤
//	│   Engine ⇄ Transport           │  channel.Engine / channel.Transport
//	└────────────────────────────────┘
//
// # Driving a stream
//
// All operations are non-blocking. An operation that cannot progress
// returns channel.ErrWouldBlock; the caller retries it after the transport
// becomes ready again. Progress is never lost across a would-block: partial
// state lives in the engine's own queues, so re-invocation is idempotent.
//
//	s := stream.New(tp, eng)
//	for eng.IsHandshaking() {
//		if _, _, err := s.Handshake(); err != nil && !channel.IsWouldBlock(err) {
//			return err
//		}
//	}
//
// # End-of-stream strictness
//
// A transport that closes cleanly before the engine observed the peer's
// protocol-level close notification may be hiding a truncation attack.
// With strict-EOF mode enabled (WithStrictEOF), Read fails such a close
// with io.ErrUnexpectedEOF instead of reporting a graceful end. During the
// handshake a clean transport close is always fatal, regardless of mode.
//
// A Stream exclusively borrows its engine and transport; it performs no
// internal locking and must be driven from a single task at a time.
package stream
