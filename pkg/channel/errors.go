package channel

import "errors"

// ErrWouldBlock reports that an operation cannot progress until the
// underlying transport's readiness changes. It is never a failure: the
// caller retries the same operation later and no progress is lost.
var ErrWouldBlock = errors.New("operation would block")

// DecodeError reports that the engine rejected received ciphertext.
// It is fatal for the connection; the stream is left in the state the
// failure occurred in and no recovery is attempted.
type DecodeError struct {
	// Err is the engine's underlying decode failure.
	Err error
}

// Error returns the decode error message.
func (e *DecodeError) Error() string {
	return "protocol decode: " + e.Err.Error()
}

// Unwrap returns the underlying decode failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsWouldBlock reports whether err indicates a retryable would-block
// condition.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}
