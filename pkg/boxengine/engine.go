package boxengine

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// Engine errors.
var (
	// ErrHandshakeIncomplete indicates plaintext was offered before the
	// handshake finished.
	ErrHandshakeIncomplete = errors.New("handshake incomplete")

	// ErrCloseInitiated indicates plaintext was offered after
	// InitiateClose.
	ErrCloseInitiated = errors.New("close already initiated")
)

// DefaultBufferLimit is the default cap on queued outgoing ciphertext (64 KB).
const DefaultBufferLimit = 65536

// helloSize is the hello payload: X25519 public key plus handshake random.
const helloSize = 32 + 16

// role distinguishes the handshake initiator from the responder.
type role uint8

const (
	roleInitiator role = iota
	roleResponder
)

// String returns the role name.
func (r role) String() string {
	switch r {
	case roleInitiator:
		return "INITIATOR"
	case roleResponder:
		return "RESPONDER"
	default:
		return "UNKNOWN"
	}
}

// Engine is a minimal secure-channel state machine implementing
// channel.Engine. It is pumped by a stream.Stream and performs no
// transport I/O of its own.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	role          role
	handshakeDone bool

	privateKey  [32]byte
	publicKey   [32]byte
	localRandom [16]byte

	sendAEAD cipher.AEAD
	recvAEAD cipher.AEAD
	sendSeq  uint64
	recvSeq  uint64

	out   bytes.Buffer // queued outgoing ciphertext
	in    bytes.Buffer // received, not yet decoded ciphertext
	plain bytes.Buffer // decrypted application data

	bufferLimit int
	peerClosed  bool
	closeQueued bool
}

// NewInitiator creates the handshake-initiating side of a channel.
// Its hello record is queued immediately, so the engine wants to write
// from the start.
func NewInitiator() (*Engine, error) {
	e, err := newEngine(roleInitiator)
	if err != nil {
		return nil, err
	}
	e.queueHello()
	return e, nil
}

// NewResponder creates the responding side of a channel. It stays silent
// until the initiator's hello decodes, then queues its reply.
func NewResponder() (*Engine, error) {
	return newEngine(roleResponder)
}

// Pair creates a connected initiator/responder pair with fresh keys.
// Intended for tests and loopback setups.
func Pair() (initiator, responder *Engine, err error) {
	initiator, err = NewInitiator()
	if err != nil {
		return nil, nil, err
	}
	responder, err = NewResponder()
	if err != nil {
		return nil, nil, err
	}
	return initiator, responder, nil
}

func newEngine(r role) (*Engine, error) {
	e := &Engine{
		role:        r,
		bufferLimit: DefaultBufferLimit,
	}
	if _, err := rand.Read(e.privateKey[:]); err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}
	if _, err := rand.Read(e.localRandom[:]); err != nil {
		return nil, fmt.Errorf("generating handshake random: %w", err)
	}
	pub, err := curve25519.X25519(e.privateKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("deriving public key: %w", err)
	}
	copy(e.publicKey[:], pub)
	return e, nil
}

// queueHello appends this side's hello record to the outgoing queue.
func (e *Engine) queueHello() {
	e.out.Write(appendRecordHeader(nil, recordTypeHandshake, helloSize))
	e.out.Write(e.publicKey[:])
	e.out.Write(e.localRandom[:])
}

// ConsumeCiphertext feeds received ciphertext into the receive buffer.
func (e *Engine) ConsumeCiphertext(p []byte) (int, error) {
	n, err := e.in.Write(p)
	return n, err
}

// ProduceCiphertext writes queued outgoing ciphertext to dst, dequeuing
// only what dst accepted. Unsent ciphertext stays queued for retry.
func (e *Engine) ProduceCiphertext(dst channel.Sink) (int, error) {
	var moved int
	for e.out.Len() > 0 {
		n, err := dst.TryWrite(e.out.Bytes())
		e.out.Next(n)
		moved += n
		if err != nil {
			return moved, err
		}
		if n == 0 {
			// A sink that takes nothing without signaling is
			// treated as blocked.
			return moved, channel.ErrWouldBlock
		}
	}
	return moved, nil
}

// DecodePending processes complete records in the receive buffer.
// Incomplete trailing records are kept for the next call.
func (e *Engine) DecodePending() error {
	for {
		buf := e.in.Bytes()
		if len(buf) < recordHeaderSize {
			return nil
		}
		typ, length := parseRecordHeader(buf)
		if length > maxRecordPayload+chacha20poly1305.Overhead {
			return &channel.DecodeError{Err: errRecordTooLarge}
		}
		if len(buf) < recordHeaderSize+length {
			return nil
		}
		e.in.Next(recordHeaderSize)
		payload := e.in.Next(length)
		if err := e.processRecord(typ, payload); err != nil {
			return err
		}
	}
}

// processRecord handles one complete record.
func (e *Engine) processRecord(typ byte, payload []byte) error {
	switch typ {
	case recordTypeHandshake:
		if e.handshakeDone {
			return &channel.DecodeError{Err: errUnexpectedHandshake}
		}
		if len(payload) != helloSize {
			return &channel.DecodeError{Err: errBadHello}
		}
		if err := e.deriveKeys(payload[:32], payload[32:]); err != nil {
			return &channel.DecodeError{Err: err}
		}
		if e.role == roleResponder {
			e.queueHello()
		}
		e.handshakeDone = true
		return nil

	case recordTypeData:
		if !e.handshakeDone {
			return &channel.DecodeError{Err: errDataBeforeHandshake}
		}
		if e.peerClosed {
			return &channel.DecodeError{Err: errDataAfterClose}
		}
		var nonce [chacha20poly1305.NonceSize]byte
		binary.BigEndian.PutUint64(nonce[4:], e.recvSeq)
		plaintext, err := e.recvAEAD.Open(nil, nonce[:], payload, nil)
		if err != nil {
			return &channel.DecodeError{Err: errDecryptFailed}
		}
		e.recvSeq++
		e.plain.Write(plaintext)
		return nil

	case recordTypeClose:
		e.peerClosed = true
		return nil

	default:
		return &channel.DecodeError{Err: errUnknownRecordType}
	}
}

// deriveKeys computes both directions' traffic keys from the peer's hello.
func (e *Engine) deriveKeys(peerPub, peerRandom []byte) error {
	shared, err := curve25519.X25519(e.privateKey[:], peerPub)
	if err != nil {
		return fmt.Errorf("key agreement: %w", err)
	}

	// Salt is initiator random then responder random, seen identically
	// by both sides.
	salt := make([]byte, 0, 32)
	if e.role == roleInitiator {
		salt = append(salt, e.localRandom[:]...)
		salt = append(salt, peerRandom...)
	} else {
		salt = append(salt, peerRandom...)
		salt = append(salt, e.localRandom[:]...)
	}

	initiatorKey, err := trafficKey(shared, salt, "seamtls initiator")
	if err != nil {
		return err
	}
	responderKey, err := trafficKey(shared, salt, "seamtls responder")
	if err != nil {
		return err
	}

	initiatorAEAD, err := chacha20poly1305.New(initiatorKey)
	if err != nil {
		return fmt.Errorf("initiator cipher: %w", err)
	}
	responderAEAD, err := chacha20poly1305.New(responderKey)
	if err != nil {
		return fmt.Errorf("responder cipher: %w", err)
	}

	if e.role == roleInitiator {
		e.sendAEAD, e.recvAEAD = initiatorAEAD, responderAEAD
	} else {
		e.sendAEAD, e.recvAEAD = responderAEAD, initiatorAEAD
	}
	return nil
}

// trafficKey derives one direction's key via HKDF-SHA256.
func trafficKey(secret, salt []byte, label string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, salt, []byte(label))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("deriving %s key: %w", label, err)
	}
	return key, nil
}

// IsHandshaking reports whether the handshake is still in progress.
func (e *Engine) IsHandshaking() bool {
	return !e.handshakeDone
}

// WantsRead reports whether more received ciphertext could make progress.
func (e *Engine) WantsRead() bool {
	if e.peerClosed {
		return false
	}
	if !e.handshakeDone {
		return true
	}
	return e.plain.Len() == 0 || e.in.Len() > 0
}

// WantsWrite reports whether ciphertext is queued to send.
func (e *Engine) WantsWrite() bool {
	return e.out.Len() > 0
}

// ReadPlaintext copies decrypted application data into p. It reports
// io.EOF once the peer's close notification has been processed and the
// plaintext queue is drained.
func (e *Engine) ReadPlaintext(p []byte) (int, error) {
	if e.plain.Len() > 0 {
		return e.plain.Read(p)
	}
	if e.peerClosed {
		return 0, io.EOF
	}
	return 0, channel.ErrWouldBlock
}

// WritePlaintext encrypts application data into the outgoing queue, up to
// the buffer limit. A short count with a nil error signals backpressure.
func (e *Engine) WritePlaintext(p []byte) (int, error) {
	if !e.handshakeDone {
		return 0, ErrHandshakeIncomplete
	}
	if e.closeQueued {
		return 0, ErrCloseInitiated
	}
	recordOverhead := recordHeaderSize + chacha20poly1305.Overhead
	var accepted int
	for len(p) > 0 {
		room := e.bufferLimit - e.out.Len()
		if room <= recordOverhead {
			break
		}
		chunk := min(len(p), room-recordOverhead, maxRecordPayload)
		e.sealRecord(p[:chunk])
		accepted += chunk
		p = p[chunk:]
	}
	return accepted, nil
}

// sealRecord encrypts one data record into the outgoing queue.
func (e *Engine) sealRecord(plaintext []byte) {
	var nonce [chacha20poly1305.NonceSize]byte
	binary.BigEndian.PutUint64(nonce[4:], e.sendSeq)
	sealed := e.sendAEAD.Seal(nil, nonce[:], plaintext, nil)
	e.sendSeq++
	e.out.Write(appendRecordHeader(nil, recordTypeData, len(sealed)))
	e.out.Write(sealed)
}

// InitiateClose queues the close notification once. The close record is
// exempt from the buffer limit so a full queue cannot block shutdown.
func (e *Engine) InitiateClose() {
	if e.closeQueued {
		return
	}
	e.closeQueued = true
	e.out.Write(appendRecordHeader(nil, recordTypeClose, 0))
}

// SetBufferLimit caps the outgoing ciphertext queue. Values <= 0 restore
// DefaultBufferLimit.
func (e *Engine) SetBufferLimit(n int) {
	if n <= 0 {
		n = DefaultBufferLimit
	}
	e.bufferLimit = n
}

// PeerClosed reports whether the peer's close notification was observed.
func (e *Engine) PeerClosed() bool {
	return e.peerClosed
}

// Compile-time interface satisfaction check.
var _ channel.Engine = (*Engine)(nil)
