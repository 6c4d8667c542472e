package trace

import "time"

// Event represents one captured stream event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// StreamID correlates events belonging to one stream (UUID).
	StreamID string `cbor:"2,keyasint"`

	// Direction indicates ciphertext flow for pump events.
	Direction Direction `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (exactly one is set).
	Pump        *PumpEvent        `cbor:"5,keyasint,omitempty"`
	Handshake   *HandshakeEvent   `cbor:"6,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"8,keyasint,omitempty"`
}

// NewEvent returns an Event stamped with the current time.
func NewEvent(streamID string, category Category) Event {
	return Event{
		Timestamp: time.Now(),
		StreamID:  streamID,
		Category:  category,
	}
}

// Direction indicates the direction of ciphertext flow.
type Direction uint8

const (
	// DirectionIn indicates transport-to-engine flow.
	DirectionIn Direction = 0
	// DirectionOut indicates engine-to-transport flow.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryPump indicates ciphertext moved by a pump.
	CategoryPump Category = 0
	// CategoryHandshake indicates a handshake round.
	CategoryHandshake Category = 1
	// CategoryState indicates a lifecycle state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPump:
		return "PUMP"
	case CategoryHandshake:
		return "HANDSHAKE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PumpEvent captures one pump invocation that moved ciphertext.
type PumpEvent struct {
	// Bytes moved by this pump invocation.
	Bytes int `cbor:"1,keyasint"`

	// WouldBlock indicates the pump suspended after moving Bytes.
	WouldBlock bool `cbor:"2,keyasint,omitempty"`
}

// HandshakeEvent captures one handshake round.
type HandshakeEvent struct {
	// BytesRead is the ciphertext moved transport-to-engine this round.
	BytesRead int `cbor:"1,keyasint"`

	// BytesWritten is the ciphertext moved engine-to-transport this round.
	BytesWritten int `cbor:"2,keyasint"`

	// Completed indicates the handshake finished during this round.
	Completed bool `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures stream lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
