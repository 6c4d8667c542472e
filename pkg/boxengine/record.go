package boxengine

import (
	"encoding/binary"
	"errors"
)

// Record framing constants.
const (
	// recordHeaderSize is the size of the record header: one type byte
	// and a 2-byte big-endian payload length.
	recordHeaderSize = 3

	// maxRecordPayload is the maximum plaintext carried by one data
	// record (16 KB).
	maxRecordPayload = 16384
)

// Record types.
const (
	recordTypeHandshake byte = 1
	recordTypeData      byte = 2
	recordTypeClose     byte = 3
)

// Decode failures. All are surfaced wrapped in *channel.DecodeError.
var (
	errRecordTooLarge      = errors.New("record exceeds maximum size")
	errUnknownRecordType   = errors.New("unknown record type")
	errBadHello            = errors.New("malformed hello record")
	errUnexpectedHandshake = errors.New("handshake record after handshake completion")
	errDataBeforeHandshake = errors.New("data record before handshake completion")
	errDataAfterClose      = errors.New("data record after close notification")
	errDecryptFailed       = errors.New("record decryption failed")
)

// appendRecordHeader appends a record header for a payload of length n.
func appendRecordHeader(dst []byte, typ byte, n int) []byte {
	var hdr [recordHeaderSize]byte
	hdr[0] = typ
	binary.BigEndian.PutUint16(hdr[1:], uint16(n))
	return append(dst, hdr[:]...)
}

// parseRecordHeader splits a record header into its type and payload
// length. The caller guarantees len(buf) >= recordHeaderSize.
func parseRecordHeader(buf []byte) (typ byte, length int) {
	return buf[0], int(binary.BigEndian.Uint16(buf[1:recordHeaderSize]))
}
