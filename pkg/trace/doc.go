// Package trace provides structured event capture for seamtls streams.
//
// This package defines the Logger interface and Event types for recording
// adapter-level activity: ciphertext pump progress, handshake rounds,
// lifecycle state changes and errors. It is separate from operational
// logging (slog) - event capture provides a complete machine-readable trace
// for debugging connection problems after the fact.
//
// # Basic Usage
//
// Streams are given a Logger implementation at construction:
//
//	// For development: log to console via slog
//	s := stream.New(tp, eng, stream.WithLogger(trace.NewSlogAdapter(slog.Default())))
//
//	// For production: write to binary file
//	fl, _ := trace.NewFileLogger("/var/log/seamtls/conn.strace")
//	s := stream.New(tp, eng, stream.WithLogger(fl))
//
//	// Both: use MultiLogger
//	s := stream.New(tp, eng, stream.WithLogger(trace.NewMultiLogger(
//	    trace.NewSlogAdapter(slog.Default()),
//	    fl,
//	)))
//
// # Event Types
//
// Each event carries exactly one typed payload:
//   - Pump: ciphertext bytes moved by one pump invocation (PumpEvent)
//   - Handshake: one handshake round's byte counts (HandshakeEvent)
//   - State: stream lifecycle transitions (StateChangeEvent)
//   - Error: failures at any layer (ErrorEventData)
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events with integer map
// keys, written append-only by FileLogger. FileLogger buffers its writes;
// Flush (fanned out by MultiLogger.Flush) makes events visible to readers
// of a live file, and Close flushes the remainder.
package trace
