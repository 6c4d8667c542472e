// Package config loads seamtls configuration from YAML.
//
// Configuration covers the stream adapter's tunables (buffer limit,
// scratch size, strict-EOF mode) and trace capture output. It does not
// configure the engine's cryptography or the transport's addressing;
// those belong to the caller assembling the connection.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seamtls/seamtls-go/pkg/stream"
	"github.com/seamtls/seamtls-go/pkg/trace"
)

// StreamConfig tunes the stream adapter.
type StreamConfig struct {
	// BufferLimit caps the engine's queued outgoing ciphertext in bytes
	// (0 = engine default).
	BufferLimit int `yaml:"buffer_limit"`

	// ScratchSize is the receive scratch buffer size in bytes
	// (0 = default).
	ScratchSize int `yaml:"scratch_size"`

	// StrictEOF makes an unacknowledged transport close a read error.
	StrictEOF bool `yaml:"strict_eof"`
}

// TraceConfig configures event capture.
type TraceConfig struct {
	// Path is the CBOR trace file to append to (empty = no file capture).
	Path string `yaml:"path"`

	// Console also emits events through slog at debug level.
	Console bool `yaml:"console"`
}

// Config is the root configuration document.
type Config struct {
	Stream StreamConfig `yaml:"stream"`
	Trace  TraceConfig  `yaml:"trace"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Stream: StreamConfig{
			ScratchSize: stream.DefaultScratchSize,
		},
	}
}

// Parse parses a configuration from YAML bytes, applied over defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load loads and parses a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	if c.Stream.BufferLimit < 0 {
		return fmt.Errorf("stream.buffer_limit must not be negative: %d", c.Stream.BufferLimit)
	}
	if c.Stream.ScratchSize < 0 {
		return fmt.Errorf("stream.scratch_size must not be negative: %d", c.Stream.ScratchSize)
	}
	return nil
}

// StreamOptions converts the configuration into stream construction
// options. The trace logger, if any, must be built separately via
// BuildLogger and passed alongside.
func (c Config) StreamOptions() []stream.Option {
	opts := []stream.Option{
		stream.WithStrictEOF(c.Stream.StrictEOF),
	}
	if c.Stream.ScratchSize > 0 {
		opts = append(opts, stream.WithScratchSize(c.Stream.ScratchSize))
	}
	return opts
}

// BuildLogger builds the configured trace logger. It returns nil when no
// capture is configured; the returned close function is always safe to
// call.
func (c Config) BuildLogger() (trace.Logger, func() error, error) {
	noop := func() error { return nil }

	var loggers []trace.Logger
	if c.Trace.Console {
		loggers = append(loggers, trace.NewSlogAdapter(slog.Default()))
	}

	var closeFn = noop
	if c.Trace.Path != "" {
		fl, err := trace.NewFileLogger(c.Trace.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("opening trace file: %w", err)
		}
		loggers = append(loggers, fl)
		closeFn = fl.Close
	}

	switch len(loggers) {
	case 0:
		return nil, noop, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return trace.NewMultiLogger(loggers...), closeFn, nil
	}
}
