package transport

import (
	"errors"
	"io"
	"sync"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// DefaultPipeCapacity is the per-direction byte capacity of a Pipe.
const DefaultPipeCapacity = 65536

// ErrPipeShutdown indicates a write on a pipe end whose write half has
// been shut down.
var ErrPipeShutdown = errors.New("pipe write half is shut down")

// pipeBuffer is one direction of a Pipe: a bounded byte queue with a
// closed latch for the writer's half.
type pipeBuffer struct {
	mu       sync.Mutex
	data     []byte
	capacity int
	closed   bool
}

func (b *pipeBuffer) read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.data) > 0 {
		n := copy(p, b.data)
		b.data = b.data[n:]
		return n, nil
	}
	if b.closed {
		return 0, io.EOF
	}
	return 0, channel.ErrWouldBlock
}

func (b *pipeBuffer) write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrPipeShutdown
	}
	space := b.capacity - len(b.data)
	if space <= 0 {
		return 0, channel.ErrWouldBlock
	}
	n := min(space, len(p))
	b.data = append(b.data, p[:n]...)
	return n, nil
}

func (b *pipeBuffer) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// PipeEnd is one side of an in-memory duplex pipe.
type PipeEnd struct {
	recv *pipeBuffer
	send *pipeBuffer
}

// Pipe creates a connected pair of in-memory transports. Each direction
// holds at most capacity bytes; capacity <= 0 selects
// DefaultPipeCapacity. The pair is mutex-guarded so both ends may be
// driven from different goroutines.
func Pipe(capacity int) (*PipeEnd, *PipeEnd) {
	if capacity <= 0 {
		capacity = DefaultPipeCapacity
	}
	ab := &pipeBuffer{capacity: capacity}
	ba := &pipeBuffer{capacity: capacity}
	a := &PipeEnd{recv: ba, send: ab}
	b := &PipeEnd{recv: ab, send: ba}
	return a, b
}

// TryRead reads bytes written by the peer. It returns
// (0, channel.ErrWouldBlock) when the queue is empty and (0, io.EOF) once
// the peer has shut down its write half and the queue is drained.
func (e *PipeEnd) TryRead(p []byte) (int, error) {
	return e.recv.read(p)
}

// TryWrite queues bytes for the peer, up to the remaining capacity.
// It returns (0, channel.ErrWouldBlock) when the direction is full.
func (e *PipeEnd) TryWrite(p []byte) (int, error) {
	return e.send.write(p)
}

// TryFlush is a no-op: queued bytes are immediately visible to the peer.
func (e *PipeEnd) TryFlush() error {
	return nil
}

// TryShutdown closes this end's write half. Bytes already queued remain
// readable by the peer, which then observes io.EOF.
func (e *PipeEnd) TryShutdown() error {
	e.send.shutdown()
	return nil
}

// Compile-time interface satisfaction check.
var _ channel.Transport = (*PipeEnd)(nil)
