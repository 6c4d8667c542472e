package stream

import "github.com/seamtls/seamtls-go/pkg/trace"

// Option configures a Stream at construction.
type Option func(*Stream)

// WithStrictEOF controls strict end-of-stream mode. When enabled, a clean
// transport close observed before the engine saw the peer's protocol-level
// close notification fails reads with io.ErrUnexpectedEOF instead of
// reporting a graceful end. Disabled by default.
func WithStrictEOF(strict bool) Option {
	return func(s *Stream) {
		s.eofIsError = strict
	}
}

// WithScratchSize sets the size of the receive scratch buffer used by the
// fill pump. Values <= 0 select DefaultScratchSize.
func WithScratchSize(n int) Option {
	return func(s *Stream) {
		s.scratchSize = n
	}
}

// WithLogger attaches a trace logger that receives handshake, state and
// error events for this stream.
func WithLogger(logger trace.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithStreamID sets the identifier used to correlate trace events.
// When a logger is attached without an explicit ID, a UUID is generated.
func WithStreamID(id string) Option {
	return func(s *Stream) {
		s.streamID = id
	}
}
