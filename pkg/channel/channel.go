package channel

// Sink accepts bytes without blocking.
// Implemented by transports and by adapters that feed a peer engine.
type Sink interface {
	// TryWrite writes as much of p as the sink can accept right now and
	// returns the number of bytes taken. It returns (0, ErrWouldBlock)
	// when the sink cannot accept any bytes until its readiness changes.
	TryWrite(p []byte) (int, error)
}

// Source yields bytes without blocking.
type Source interface {
	// TryRead reads into p and returns the number of bytes read.
	// It returns (0, ErrWouldBlock) when no bytes are available yet and
	// (0, io.EOF) once the peer has cleanly closed its write half.
	TryRead(p []byte) (int, error)
}

// Transport is a non-blocking duplex byte transport.
// Implemented by transport.Pipe ends and transport.Conn.
type Transport interface {
	Source
	Sink

	// TryFlush pushes buffered bytes toward the peer.
	// May return ErrWouldBlock.
	TryFlush() error

	// TryShutdown closes the write half of the transport.
	// May return ErrWouldBlock.
	TryShutdown() error
}

// Engine is the synchronous secure-channel state machine the Stream pumps.
// It owns all buffering: queued outgoing ciphertext, partially received
// records, and decrypted plaintext. Implemented by boxengine.Engine.
//
// An Engine is not safe for concurrent use; the Stream that pumps it is its
// sole owner for the duration of each operation.
type Engine interface {
	// ConsumeCiphertext feeds received ciphertext to the engine and
	// returns the number of bytes taken. The engine may take fewer bytes
	// than offered when its receive buffer is full; DecodePending frees
	// space.
	ConsumeCiphertext(p []byte) (int, error)

	// ProduceCiphertext writes queued outgoing ciphertext to dst,
	// dequeuing only the bytes dst accepted, and returns the number of
	// bytes moved. If dst blocks while ciphertext remains queued it
	// returns (moved, ErrWouldBlock); the unsent remainder stays queued
	// and is retried on the next call.
	ProduceCiphertext(dst Sink) (int, error)

	// DecodePending processes ciphertext previously consumed. A non-nil
	// error is a *DecodeError and is fatal for the connection.
	DecodePending() error

	// IsHandshaking reports whether the handshake is still in progress.
	IsHandshaking() bool

	// WantsRead reports whether feeding the engine more ciphertext could
	// make progress.
	WantsRead() bool

	// WantsWrite reports whether the engine has ciphertext queued to send.
	WantsWrite() bool

	// ReadPlaintext copies decrypted application data into p. It returns
	// (0, ErrWouldBlock) when no plaintext is currently available and
	// (0, io.EOF) once the peer's orderly protocol close has been
	// observed and the plaintext queue is drained.
	ReadPlaintext(p []byte) (int, error)

	// WritePlaintext encrypts application data into the outgoing
	// ciphertext queue and returns the number of bytes accepted. Once the
	// queue reaches the configured buffer limit the engine accepts fewer
	// bytes than offered; a short count with a nil error is the
	// backpressure signal, not an error. WritePlaintext fails while the
	// handshake is in progress.
	WritePlaintext(p []byte) (int, error)

	// InitiateClose queues the protocol-level close notification.
	// Calling it more than once has no further effect.
	InitiateClose()

	// SetBufferLimit caps the outgoing ciphertext queue at n bytes.
	SetBufferLimit(n int)
}
