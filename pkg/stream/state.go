package stream

// Stream states.
type State int

const (
	// StateHandshaking indicates the handshake has not completed.
	StateHandshaking State = iota

	// StateEstablished indicates application data may flow.
	StateEstablished

	// StateClosing indicates the close notification has been queued.
	StateClosing

	// StateClosed indicates the stream observed or completed an orderly
	// close.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "HANDSHAKING"
	case StateEstablished:
		return "ESTABLISHED"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
