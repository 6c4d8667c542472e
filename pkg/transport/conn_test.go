package transport

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamtls/seamtls-go/pkg/channel"
)

// tcpPair returns two connected TCP loopback connections.
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		server, err = ln.Accept()
	}()
	client, cerr := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, cerr)
	<-done
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

// pollRead retries TryRead until data or a terminal result arrives, since
// loopback delivery is asynchronous.
func pollRead(t *testing.T, c *Conn, p []byte) (int, error) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		n, err := c.TryRead(p)
		if n > 0 || !channel.IsWouldBlock(err) {
			return n, err
		}
		if time.Now().After(deadline) {
			t.Fatal("no data within deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestConnRoundTrip(t *testing.T) {
	cc, sc := tcpPair(t)
	client, server := NewConn(cc), NewConn(sc)

	n, err := client.TryWrite([]byte("over tcp"))
	require.NoError(t, err)
	require.Equal(t, 8, n)

	buf := make([]byte, 16)
	n, err = pollRead(t, server, buf)
	require.NoError(t, err)
	assert.Equal(t, "over tcp", string(buf[:n]))
}

func TestConnEmptyReadSuspends(t *testing.T) {
	cc, _ := tcpPair(t)
	client := NewConn(cc)

	_, err := client.TryRead(make([]byte, 8))
	assert.ErrorIs(t, err, channel.ErrWouldBlock)
}

// TestConnShutdownSignalsEOF verifies TryShutdown closes only the write
// half: the peer reads pending data, then io.EOF, and can still respond.
func TestConnShutdownSignalsEOF(t *testing.T) {
	cc, sc := tcpPair(t)
	client, server := NewConn(cc), NewConn(sc)

	_, err := client.TryWrite([]byte("bye"))
	require.NoError(t, err)
	require.NoError(t, client.TryShutdown())

	buf := make([]byte, 16)
	n, err := pollRead(t, server, buf)
	require.NoError(t, err)
	assert.Equal(t, "bye", string(buf[:n]))

	_, err = pollRead(t, server, buf)
	assert.ErrorIs(t, err, io.EOF)

	// The server's write half is unaffected.
	n, err = server.TryWrite([]byte("ack"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = pollRead(t, client, buf)
	require.NoError(t, err)
	assert.Equal(t, "ack", string(buf[:n]))
}

func TestConnRaw(t *testing.T) {
	cc, _ := tcpPair(t)
	assert.Equal(t, cc, NewConn(cc).Raw())
}
