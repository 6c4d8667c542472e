// Package transport provides concrete channel.Transport implementations.
//
// Two transports are included:
//
//   - Pipe: a bounded in-memory duplex pair. Each direction has a fixed
//     capacity; writes beyond it report channel.ErrWouldBlock, which makes
//     the pair a faithful loopback for exercising backpressure and
//     shutdown behavior without a network.
//
//   - Conn: an adapter that exposes a net.Conn through the non-blocking
//     try-style capability set by issuing reads and writes under an
//     immediate deadline and mapping timeouts to channel.ErrWouldBlock.
//
// Both report a clean close of the peer's write half as (0, io.EOF) from
// TryRead, after any buffered bytes have been drained.
package transport
