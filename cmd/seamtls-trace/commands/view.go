// Package commands implements the seamtls-trace CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/seamtls/seamtls-go/pkg/trace"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	// Header line: timestamp [stream:id] DIRECTION Category
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	streamID := shortenStreamID(event.StreamID)

	if event.Category == trace.CategoryPump {
		fmt.Fprintf(w, "%s [stream:%s] %-3s %s\n", ts, streamID, event.Direction.String(), event.Category.String())
	} else {
		fmt.Fprintf(w, "%s [stream:%s] %s\n", ts, streamID, event.Category.String())
	}

	switch {
	case event.Pump != nil:
		formatPumpDetails(w, event.Pump)
	case event.Handshake != nil:
		formatHandshakeDetails(w, event.Handshake)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenStreamID returns the first 8 characters of the stream ID.
func shortenStreamID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatPumpDetails writes pump-specific details.
func formatPumpDetails(w io.Writer, pump *trace.PumpEvent) {
	fmt.Fprintf(w, "  Bytes: %d\n", pump.Bytes)
	if pump.WouldBlock {
		fmt.Fprintln(w, "  WouldBlock: true")
	}
}

// formatHandshakeDetails writes handshake round details.
func formatHandshakeDetails(w io.Writer, hs *trace.HandshakeEvent) {
	fmt.Fprintf(w, "  Read: %d bytes  Written: %d bytes\n", hs.BytesRead, hs.BytesWritten)
	if hs.Completed {
		fmt.Fprintln(w, "  Completed: true")
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *trace.StateChangeEvent) {
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *trace.ErrorEventData) {
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (trace.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return trace.DirectionIn, nil
	case "out":
		return trace.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (trace.Category, error) {
	switch strings.ToLower(s) {
	case "pump":
		return trace.CategoryPump, nil
	case "handshake":
		return trace.CategoryHandshake, nil
	case "state":
		return trace.CategoryState, nil
	case "error":
		return trace.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be pump, handshake, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter trace.Filter, output io.Writer) error {
	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
