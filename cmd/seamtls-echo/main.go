// Command seamtls-echo is a demonstration echo service over a seamtls
// channel on TCP.
//
// Run the responder side first, then connect to it:
//
//	seamtls-echo -listen 127.0.0.1:7465
//	seamtls-echo -connect 127.0.0.1:7465 -message "hello"
//
// The non-blocking adapter is driven by a simple sleep-based poll loop
// here; a production caller would drive it from its own readiness
// notifications instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/seamtls/seamtls-go/pkg/boxengine"
	"github.com/seamtls/seamtls-go/pkg/channel"
	"github.com/seamtls/seamtls-go/pkg/config"
	"github.com/seamtls/seamtls-go/pkg/stream"
	"github.com/seamtls/seamtls-go/pkg/transport"
)

func main() {
	listen := flag.String("listen", "", "Listen address (responder side)")
	connect := flag.String("connect", "", "Connect address (initiator side)")
	message := flag.String("message", "ping", "Message to send (initiator side)")
	configPath := flag.String("config", "", "Optional configuration file")
	flag.Parse()

	if (*listen == "") == (*connect == "") {
		fmt.Fprintln(os.Stderr, "specify exactly one of -listen or -connect")
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
			os.Exit(1)
		}
	}

	var err error
	if *listen != "" {
		err = serve(*listen, cfg)
	} else {
		err = send(*connect, *message, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "seamtls-echo: %v\n", err)
		os.Exit(1)
	}
}

// serve accepts one connection at a time and echoes everything it reads
// until the peer closes.
func serve(addr string, cfg config.Config) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()
	fmt.Printf("listening on %s\n", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		if err := echo(conn, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "session %s: %v\n", conn.RemoteAddr(), err)
		}
		conn.Close()
	}
}

func echo(conn net.Conn, cfg config.Config) error {
	engine, err := boxengine.NewResponder()
	if err != nil {
		return err
	}
	s, cleanup, err := newStream(conn, engine, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	buf := make([]byte, 4096)
	for {
		n, err := pollRead(s, buf)
		if errors.Is(err, io.EOF) {
			return poll(s.Shutdown)
		}
		if err != nil {
			return err
		}
		for off := 0; off < n; {
			w, err := pollWrite(s, buf[off:n])
			if err != nil {
				return err
			}
			off += w
		}
	}
}

// send delivers one message and prints the echoed reply.
func send(addr, message string, cfg config.Config) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	engine, err := boxengine.NewInitiator()
	if err != nil {
		return err
	}
	s, cleanup, err := newStream(conn, engine, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	payload := []byte(message)
	for off := 0; off < len(payload); {
		n, err := pollWrite(s, payload[off:])
		if err != nil {
			return err
		}
		off += n
	}
	if err := poll(s.Flush); err != nil {
		return err
	}

	buf := make([]byte, 4096)
	var reply []byte
	for len(reply) < len(payload) {
		n, err := pollRead(s, buf)
		if err != nil {
			return err
		}
		reply = append(reply, buf[:n]...)
	}
	fmt.Printf("echo: %s\n", reply)

	return poll(s.Shutdown)
}

// newStream assembles the configured stream over a TCP connection.
func newStream(conn net.Conn, engine *boxengine.Engine, cfg config.Config) (*stream.Stream, func(), error) {
	if cfg.Stream.BufferLimit > 0 {
		engine.SetBufferLimit(cfg.Stream.BufferLimit)
	}
	opts := cfg.StreamOptions()

	logger, closeLogger, err := cfg.BuildLogger()
	if err != nil {
		return nil, nil, err
	}
	if logger != nil {
		opts = append(opts, stream.WithLogger(logger))
	}

	s := stream.New(transport.NewConn(conn), engine, opts...)
	return s, func() { _ = closeLogger() }, nil
}

const pollInterval = time.Millisecond

// pollRead retries Read until it makes progress or fails.
func pollRead(s *stream.Stream, p []byte) (int, error) {
	for {
		n, err := s.Read(p)
		if channel.IsWouldBlock(err) {
			time.Sleep(pollInterval)
			continue
		}
		return n, err
	}
}

// pollWrite retries Write until it makes progress or fails.
func pollWrite(s *stream.Stream, p []byte) (int, error) {
	for {
		n, err := s.Write(p)
		if channel.IsWouldBlock(err) {
			time.Sleep(pollInterval)
			continue
		}
		return n, err
	}
}

// poll retries a suspending operation until it completes.
func poll(op func() error) error {
	for {
		err := op()
		if channel.IsWouldBlock(err) {
			time.Sleep(pollInterval)
			continue
		}
		return err
	}
}
