// Package channel defines the capability contracts between the seamtls
// stream adapter and its two collaborators: the secure-channel engine and
// the byte transport.
//
// Both collaborators are expressed as small interfaces rather than concrete
// types so that any engine exposing the same pull/push primitives
// (produce/consume ciphertext, decode, handshaking and want predicates) and
// any transport exposing non-blocking try-style I/O can be paired by a
// Stream.
//
// # Readiness model
//
// Every try-style operation either completes immediately or reports
// ErrWouldBlock. ErrWouldBlock is not a failure: it tells the caller that
// the operation cannot progress until the underlying readiness changes, and
// that retrying later is safe. No progress is ever lost across a
// would-block: bytes already accepted by the engine stay in the engine's
// queues, and bytes the transport did not accept are not dequeued.
//
// # End of stream
//
// A Source reports a clean close as (0, io.EOF). Whether that close is
// acceptable depends on who observes it: during a handshake it is always
// fatal, and on an established stream its interpretation is governed by the
// Stream's strict-EOF mode.
package channel
