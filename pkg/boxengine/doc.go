// Package boxengine is a small secure-channel engine implementing the
// channel.Engine capability set.
//
// It exists so the stream adapter has a real pull/push state machine to
// pump: a loopback pair of engines negotiates keys and moves encrypted
// application data through whatever transport the adapter is wired to.
// The protocol is deliberately minimal and is not TLS:
//
//   - One hello record each way carrying a 32-byte X25519 public key and a
//     16-byte random.
//   - Traffic keys from HKDF-SHA256 over the X25519 shared secret, salted
//     with both randoms and expanded with per-direction labels.
//   - Application data in ChaCha20-Poly1305 records with counter nonces,
//     one sequence per direction.
//   - An empty close record as the protocol-level close notification.
//
// # Record layout
//
//	┌──────┬──────────────┬─────────────┐
//	│ type │ length (2B)  │   payload   │
//	└──────┴──────────────┴─────────────┘
//
// The engine owns all buffering: queued outgoing ciphertext (capped by the
// configurable buffer limit), partially received records, and decrypted
// plaintext. It never touches a transport itself; the stream adapter pumps
// it.
package boxengine
