package trace

import (
	"context"
	"log/slog"
)

// SlogAdapter writes stream events to an slog.Logger.
// Useful for development when you want to see adapter activity in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("stream_id", event.StreamID),
		slog.String("category", event.Category.String()),
	}

	// Add type-specific attributes
	switch {
	case event.Pump != nil:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("bytes", event.Pump.Bytes),
		)
		if event.Pump.WouldBlock {
			attrs = append(attrs, slog.Bool("would_block", true))
		}
	case event.Handshake != nil:
		attrs = append(attrs,
			slog.Int("bytes_read", event.Handshake.BytesRead),
			slog.Int("bytes_written", event.Handshake.BytesWritten),
			slog.Bool("completed", event.Handshake.Completed),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "stream", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
