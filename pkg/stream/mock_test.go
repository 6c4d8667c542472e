package stream_test

import (
	"io"
	"testing"

	"github.com/seamtls/seamtls-go/pkg/boxengine"
	"github.com/seamtls/seamtls-go/pkg/channel"
	"github.com/seamtls/seamtls-go/pkg/stream"
)

// byteSink collects produced ciphertext into a fixed destination buffer,
// blocking once it is full.
type byteSink struct {
	dst []byte
	n   int
}

func (s *byteSink) TryWrite(p []byte) (int, error) {
	if s.n == len(s.dst) {
		return 0, channel.ErrWouldBlock
	}
	c := copy(s.dst[s.n:], p)
	s.n += c
	return c, nil
}

// engineTransport exposes a peer engine directly as a transport: writes
// feed the peer's decoder, reads pull the peer's queued ciphertext. A read
// finding nothing queued suspends, or reports a clean transport close when
// idleEOF is set.
type engineTransport struct {
	peer    *boxengine.Engine
	idleEOF bool
}

func (t *engineTransport) TryRead(p []byte) (int, error) {
	sink := &byteSink{dst: p}
	if _, err := t.peer.ProduceCiphertext(sink); err != nil && !channel.IsWouldBlock(err) {
		return sink.n, err
	}
	if sink.n == 0 {
		if t.idleEOF {
			return 0, io.EOF
		}
		return 0, channel.ErrWouldBlock
	}
	return sink.n, nil
}

func (t *engineTransport) TryWrite(p []byte) (int, error) {
	n, err := t.peer.ConsumeCiphertext(p)
	if err != nil {
		return n, err
	}
	if err := t.peer.DecodePending(); err != nil {
		return n, err
	}
	return n, nil
}

func (t *engineTransport) TryFlush() error {
	return t.peer.DecodePending()
}

func (t *engineTransport) TryShutdown() error {
	return nil
}

// pendingTransport never becomes ready in either direction.
type pendingTransport struct{}

func (pendingTransport) TryRead([]byte) (int, error) {
	return 0, channel.ErrWouldBlock
}

func (pendingTransport) TryWrite([]byte) (int, error) {
	return 0, channel.ErrWouldBlock
}

func (pendingTransport) TryFlush() error    { return nil }
func (pendingTransport) TryShutdown() error { return nil }

// writeOnlyTransport accepts all writes but never has bytes to read.
// Mimics a peer that has not answered yet.
type writeOnlyTransport struct{}

func (writeOnlyTransport) TryRead([]byte) (int, error) {
	return 0, channel.ErrWouldBlock
}

func (writeOnlyTransport) TryWrite(p []byte) (int, error) {
	return len(p), nil
}

func (writeOnlyTransport) TryFlush() error    { return nil }
func (writeOnlyTransport) TryShutdown() error { return nil }

// eofTransport reports an immediate clean close on reads and discards all
// writes.
type eofTransport struct{}

func (eofTransport) TryRead([]byte) (int, error) {
	return 0, io.EOF
}

func (eofTransport) TryWrite(p []byte) (int, error) {
	return len(p), nil
}

func (eofTransport) TryFlush() error    { return nil }
func (eofTransport) TryShutdown() error { return nil }

// makePair returns a connected initiator/responder engine pair.
func makePair(t *testing.T) (client, server *boxengine.Engine) {
	t.Helper()
	client, server, err := boxengine.Pair()
	if err != nil {
		t.Fatalf("creating engine pair: %v", err)
	}
	return client, server
}

// completeHandshake drives s until eng finishes handshaking. The transport
// backing s must never block (engineTransport does not).
func completeHandshake(t *testing.T, s *stream.Stream, eng *boxengine.Engine) {
	t.Helper()
	for i := 0; eng.IsHandshaking(); i++ {
		if i > 100 {
			t.Fatal("handshake made no progress after 100 rounds")
		}
		if _, _, err := s.Handshake(); err != nil && !channel.IsWouldBlock(err) {
			t.Fatalf("handshake failed: %v", err)
		}
	}
	// Push out anything still queued (e.g. the final flight).
	if _, err := s.Driver().DrainToTransport(); err != nil && !channel.IsWouldBlock(err) {
		t.Fatalf("draining after handshake: %v", err)
	}
}

// fixtureData returns deterministic test payload bytes.
func fixtureData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*7 + i/251)
	}
	return data
}
