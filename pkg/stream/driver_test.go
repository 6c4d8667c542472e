package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// stubEngine is a scriptable channel.Engine for exercising the driver's
// pump loops in isolation.
type stubEngine struct {
	out bytes.Buffer // ciphertext queued to send
	in  bytes.Buffer // ciphertext handed over via ConsumeCiphertext

	handshaking bool
	wantsRead   bool
	consumeCap  int  // receive buffer cap; 0 = unlimited, < 0 = refuse all input
	decodeErr   error
	decoded     int  // DecodePending invocations
	decodeFrees bool // decoding drains the receive buffer
}

func (e *stubEngine) ConsumeCiphertext(p []byte) (int, error) {
	n := len(p)
	if e.consumeCap != 0 {
		room := e.consumeCap - e.in.Len()
		if room < n {
			n = room
		}
		if n < 0 {
			n = 0
		}
	}
	e.in.Write(p[:n])
	return n, nil
}

func (e *stubEngine) ProduceCiphertext(dst channel.Sink) (int, error) {
	var moved int
	for e.out.Len() > 0 {
		n, err := dst.TryWrite(e.out.Bytes())
		e.out.Next(n)
		moved += n
		if err != nil {
			return moved, err
		}
	}
	return moved, nil
}

func (e *stubEngine) DecodePending() error {
	e.decoded++
	if e.decodeFrees {
		e.in.Reset()
	}
	return e.decodeErr
}

func (e *stubEngine) IsHandshaking() bool { return e.handshaking }
func (e *stubEngine) WantsRead() bool     { return e.wantsRead }
func (e *stubEngine) WantsWrite() bool    { return e.out.Len() > 0 }

func (e *stubEngine) ReadPlaintext([]byte) (int, error) {
	return 0, channel.ErrWouldBlock
}

func (e *stubEngine) WritePlaintext([]byte) (int, error) {
	return 0, nil
}

func (e *stubEngine) InitiateClose()     {}
func (e *stubEngine) SetBufferLimit(int) {}

// limitedTransport accepts at most cap bytes per TryWrite and replays a
// scripted sequence of reads.
type limitedTransport struct {
	writeCap int
	written  bytes.Buffer
	reads    [][]byte
	readErr  error
}

func (t *limitedTransport) TryRead(p []byte) (int, error) {
	if len(t.reads) == 0 {
		if t.readErr != nil {
			return 0, t.readErr
		}
		return 0, channel.ErrWouldBlock
	}
	n := copy(p, t.reads[0])
	if n == len(t.reads[0]) {
		t.reads = t.reads[1:]
	} else {
		t.reads[0] = t.reads[0][n:]
	}
	return n, nil
}

func (t *limitedTransport) TryWrite(p []byte) (int, error) {
	if t.writeCap == 0 {
		return 0, channel.ErrWouldBlock
	}
	n := len(p)
	if n > t.writeCap {
		n = t.writeCap
	}
	t.written.Write(p[:n])
	t.writeCap -= n
	if n == 0 {
		return 0, channel.ErrWouldBlock
	}
	return n, nil
}

func (t *limitedTransport) TryFlush() error    { return nil }
func (t *limitedTransport) TryShutdown() error { return nil }

func TestDrainToTransportMovesAll(t *testing.T) {
	eng := &stubEngine{}
	eng.out.WriteString("queued ciphertext")
	tr := &limitedTransport{writeCap: 1024}
	d := newIoDriver(tr, eng, 0)

	moved, err := d.DrainToTransport()
	require.NoError(t, err)
	assert.Equal(t, 17, moved)
	assert.Equal(t, "queued ciphertext", tr.written.String())
	assert.False(t, eng.WantsWrite())
}

// TestDrainToTransportResumesWithoutDuplication verifies that a drain cut
// short by backpressure leaves the remainder queued, and a later drain
// sends exactly the remainder.
func TestDrainToTransportResumesWithoutDuplication(t *testing.T) {
	eng := &stubEngine{}
	eng.out.WriteString("0123456789")
	tr := &limitedTransport{writeCap: 4}
	d := newIoDriver(tr, eng, 0)

	moved, err := d.DrainToTransport()
	assert.Equal(t, 4, moved)
	assert.ErrorIs(t, err, channel.ErrWouldBlock)
	assert.True(t, eng.WantsWrite())

	tr.writeCap = 1024
	moved, err = d.DrainToTransport()
	require.NoError(t, err)
	assert.Equal(t, 6, moved)
	assert.Equal(t, "0123456789", tr.written.String())
}

func TestDrainToTransportIdleEngine(t *testing.T) {
	d := newIoDriver(&limitedTransport{}, &stubEngine{}, 0)

	moved, err := d.DrainToTransport()
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestFillFromTransportWouldBlock(t *testing.T) {
	eng := &stubEngine{wantsRead: true}
	d := newIoDriver(&limitedTransport{}, eng, 0)

	moved, err := d.FillFromTransport()
	assert.Zero(t, moved)
	assert.ErrorIs(t, err, channel.ErrWouldBlock)
	assert.False(t, d.TransportEOF())
}

// TestFillFromTransportPartialThenBlock verifies a fill that moved bytes
// before the transport dried up reports the progress, not the suspension.
func TestFillFromTransportPartialThenBlock(t *testing.T) {
	eng := &stubEngine{wantsRead: true}
	tr := &limitedTransport{reads: [][]byte{[]byte("abc")}}
	d := newIoDriver(tr, eng, 0)

	moved, err := d.FillFromTransport()
	require.NoError(t, err)
	assert.Equal(t, 3, moved)
	assert.Equal(t, "abc", eng.in.String())
	assert.Positive(t, eng.decoded)
}

func TestFillFromTransportLatchesEOF(t *testing.T) {
	eng := &stubEngine{wantsRead: true}
	tr := &limitedTransport{reads: [][]byte{[]byte("tail")}, readErr: io.EOF}
	d := newIoDriver(tr, eng, 0)

	moved, err := d.FillFromTransport()
	require.NoError(t, err)
	assert.Equal(t, 4, moved)
	assert.True(t, d.TransportEOF())

	// Latched: subsequent fills no longer touch the transport.
	moved, err = d.FillFromTransport()
	require.NoError(t, err)
	assert.Zero(t, moved)
}

func TestFillFromTransportDecodeError(t *testing.T) {
	decodeErr := &channel.DecodeError{Err: errors.New("bad record")}
	eng := &stubEngine{wantsRead: true, decodeErr: decodeErr}
	tr := &limitedTransport{reads: [][]byte{[]byte("junk")}}
	d := newIoDriver(tr, eng, 0)

	_, err := d.FillFromTransport()
	var de *channel.DecodeError
	assert.ErrorAs(t, err, &de)
}

// TestFillFromTransportConsumeRetry verifies a full receive buffer is
// retried after decoding frees it, with no bytes dropped.
func TestFillFromTransportConsumeRetry(t *testing.T) {
	eng := &stubEngine{wantsRead: true, consumeCap: 2, decodeFrees: true}
	tr := &limitedTransport{reads: [][]byte{[]byte("abcdef")}}
	d := newIoDriver(tr, eng, 0)

	moved, err := d.FillFromTransport()
	require.NoError(t, err)
	assert.Equal(t, 6, moved)
}

func TestFillFromTransportConsumeStalled(t *testing.T) {
	// The engine refuses all input and decoding frees nothing.
	eng := &stubEngine{wantsRead: true, consumeCap: -1}
	tr := &limitedTransport{reads: [][]byte{[]byte("x")}}
	d := newIoDriver(tr, eng, 0)

	_, err := d.FillFromTransport()
	assert.ErrorIs(t, err, ErrConsumeStalled)
}

// TestWriteStalledEngine verifies Write fails loudly when the engine
// accepts nothing even though nothing is queued to drain.
func TestWriteStalledEngine(t *testing.T) {
	eng := &stubEngine{}
	s := New(&limitedTransport{writeCap: 1024}, eng)

	_, err := s.Write([]byte("payload"))
	assert.ErrorIs(t, err, ErrWriteStalled)
}
