package stream

import (
	"errors"
	"io"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// Driver errors.
var (
	// ErrWriteStalled indicates the engine accepted no plaintext even
	// though its output queue could be drained without blocking.
	ErrWriteStalled = errors.New("write stalled")

	// ErrConsumeStalled indicates the engine repeatedly refused received
	// ciphertext even after a decode pass.
	ErrConsumeStalled = errors.New("engine refused ciphertext")
)

// DefaultScratchSize is the default size of the driver's receive scratch
// buffer.
const DefaultScratchSize = 4096

// IoDriver moves ciphertext between an engine and a transport, one
// direction per pump. Both pumps track bytes moved and suspend with
// channel.ErrWouldBlock on transport backpressure; suspended work is
// retried safely because all pending state stays inside the engine's own
// queues.
type IoDriver struct {
	transport channel.Transport
	engine    channel.Engine
	scratch   []byte
	eof       bool
}

func newIoDriver(t channel.Transport, e channel.Engine, scratchSize int) *IoDriver {
	if scratchSize <= 0 {
		scratchSize = DefaultScratchSize
	}
	return &IoDriver{
		transport: t,
		engine:    e,
		scratch:   make([]byte, scratchSize),
	}
}

// DrainToTransport moves engine-produced ciphertext into the transport
// until the engine has nothing left to send. It returns the number of
// bytes moved. On transport backpressure it returns the bytes moved so far
// together with channel.ErrWouldBlock; the engine retains the unsent
// remainder, so the call is safe to retry once the transport is writable.
// Transport I/O failures propagate immediately and are not retried here.
func (d *IoDriver) DrainToTransport() (int, error) {
	var moved int
	for d.engine.WantsWrite() {
		n, err := d.engine.ProduceCiphertext(d.transport)
		moved += n
		if err != nil {
			if channel.IsWouldBlock(err) {
				return moved, channel.ErrWouldBlock
			}
			return moved, err
		}
	}
	return moved, nil
}

// FillFromTransport moves transport-received ciphertext into the engine and
// triggers decoding, until the transport has no more immediately available
// bytes or the engine stops wanting input. It returns the number of bytes
// moved. If the transport is not ready and nothing was moved yet, it
// returns (0, channel.ErrWouldBlock). A clean transport close is recorded
// (see TransportEOF) and not raised here; the handshake and read paths
// interpret it differently. A decode failure is fatal and surfaces as a
// *channel.DecodeError.
func (d *IoDriver) FillFromTransport() (int, error) {
	var moved int
	for d.engine.WantsRead() && !d.eof {
		n, err := d.transport.TryRead(d.scratch)
		if err != nil {
			if channel.IsWouldBlock(err) {
				if moved > 0 {
					return moved, nil
				}
				return 0, channel.ErrWouldBlock
			}
			if errors.Is(err, io.EOF) {
				d.eof = true
				return moved, nil
			}
			return moved, err
		}
		if n == 0 {
			// A zero-byte completion without an explicit signal is
			// treated as not-ready.
			if moved > 0 {
				return moved, nil
			}
			return 0, channel.ErrWouldBlock
		}
		if err := d.feedEngine(d.scratch[:n]); err != nil {
			return moved, err
		}
		moved += n
	}
	return moved, nil
}

// feedEngine hands p to the engine in full, decoding after each consume so
// a full receive buffer can free itself.
func (d *IoDriver) feedEngine(p []byte) error {
	stalled := false
	for len(p) > 0 {
		n, err := d.engine.ConsumeCiphertext(p)
		if err != nil {
			return err
		}
		if err := d.engine.DecodePending(); err != nil {
			return err
		}
		if n == 0 {
			if stalled {
				return ErrConsumeStalled
			}
			stalled = true
			continue
		}
		stalled = false
		p = p[n:]
	}
	return nil
}

// TransportEOF reports whether the transport signaled a clean close.
func (d *IoDriver) TransportEOF() bool {
	return d.eof
}
