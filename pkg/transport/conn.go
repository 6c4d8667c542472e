package transport

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// Conn adapts a net.Conn to the non-blocking channel.Transport capability
// set. Each try-style call runs under an immediate deadline; a deadline
// timeout maps to channel.ErrWouldBlock.
//
// The Conn takes exclusive ownership of the wrapped connection's
// deadlines. Do not mix try-style calls with blocking reads or writes on
// the same net.Conn.
type Conn struct {
	conn net.Conn
}

// NewConn wraps a net.Conn as a channel.Transport.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Raw returns the wrapped net.Conn.
func (c *Conn) Raw() net.Conn {
	return c.conn
}

// TryRead reads whatever is immediately available. It returns
// (0, channel.ErrWouldBlock) when nothing is buffered and (0, io.EOF) on a
// clean close of the peer's write half.
func (c *Conn) TryRead(p []byte) (int, error) {
	if err := c.conn.SetReadDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.conn.Read(p)
	if err != nil {
		if isTimeout(err) {
			if n > 0 {
				return n, nil
			}
			return 0, channel.ErrWouldBlock
		}
		if errors.Is(err, io.EOF) {
			if n > 0 {
				return n, nil
			}
			return 0, io.EOF
		}
		return n, err
	}
	return n, nil
}

// TryWrite writes as much as the connection accepts immediately and
// returns (0, channel.ErrWouldBlock) when the socket buffer is full.
func (c *Conn) TryWrite(p []byte) (int, error) {
	if err := c.conn.SetWriteDeadline(time.Now()); err != nil {
		return 0, err
	}
	n, err := c.conn.Write(p)
	if err != nil {
		if isTimeout(err) {
			if n > 0 {
				return n, nil
			}
			return 0, channel.ErrWouldBlock
		}
		return n, err
	}
	return n, nil
}

// TryFlush is a no-op: the kernel owns the socket's send buffer.
func (c *Conn) TryFlush() error {
	return nil
}

// TryShutdown closes the write half when the connection supports it
// (TCP and Unix connections do) and falls back to a full close otherwise.
func (c *Conn) TryShutdown() error {
	if cw, ok := c.conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return c.conn.Close()
}

// isTimeout reports whether err is a deadline timeout.
func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// Compile-time interface satisfaction check.
var _ channel.Transport = (*Conn)(nil)
