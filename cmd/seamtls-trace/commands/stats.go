package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/seamtls/seamtls-go/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[trace.Category]int
	EventsByDirection map[trace.Direction]int
	Streams           map[string]*StreamStats
	BytesIn           int
	BytesOut          int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// StreamStats holds statistics for a single stream.
type StreamStats struct {
	FirstSeen          time.Time
	LastSeen           time.Time
	Events             int
	BytesIn            int
	BytesOut           int
	HandshakeCompleted bool
	LastState          string
	Errors             int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[trace.Category]int),
		EventsByDirection: make(map[trace.Direction]int),
		Streams:           make(map[string]*StreamStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		stream, ok := stats.Streams[event.StreamID]
		if !ok {
			stream = &StreamStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Streams[event.StreamID] = stream
		}
		stream.Events++
		if event.Timestamp.After(stream.LastSeen) {
			stream.LastSeen = event.Timestamp
		}

		if event.Pump != nil {
			stats.EventsByDirection[event.Direction]++
			if event.Direction == trace.DirectionIn {
				stats.BytesIn += event.Pump.Bytes
				stream.BytesIn += event.Pump.Bytes
			} else {
				stats.BytesOut += event.Pump.Bytes
				stream.BytesOut += event.Pump.Bytes
			}
		}
		if event.Handshake != nil && event.Handshake.Completed {
			stream.HandshakeCompleted = true
		}
		if event.StateChange != nil {
			stream.LastState = event.StateChange.NewState
		}
		if event.Error != nil {
			stats.Errors++
			stream.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== seamtls Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []trace.Category{trace.CategoryPump, trace.CategoryHandshake, trace.CategoryState, trace.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Ciphertext: %d bytes in, %d bytes out\n", stats.BytesIn, stats.BytesOut)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Streams: %d\n", len(stats.Streams))
	if len(stats.Streams) > 0 {
		type streamInfo struct {
			id    string
			stats *StreamStats
		}
		streams := make([]streamInfo, 0, len(stats.Streams))
		for id, ss := range stats.Streams {
			streams = append(streams, streamInfo{id, ss})
		}
		sort.Slice(streams, func(i, j int) bool {
			return streams[i].stats.FirstSeen.Before(streams[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range streams {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenStreamID(s.id), s.stats.Events, duration)
			fmt.Fprintf(w, "           Ciphertext: %d in / %d out\n", s.stats.BytesIn, s.stats.BytesOut)
			if s.stats.HandshakeCompleted {
				fmt.Fprintln(w, "           Handshake: completed")
			}
			if s.stats.LastState != "" {
				fmt.Fprintf(w, "           State: %s\n", s.stats.LastState)
			}
			if s.stats.Errors > 0 {
				fmt.Fprintf(w, "           Errors: %d\n", s.stats.Errors)
			}
		}
	}
}
