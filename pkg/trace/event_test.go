package trace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	before := time.Now()
	ev := NewEvent("stream-1", CategoryPump)

	assert.Equal(t, "stream-1", ev.StreamID)
	assert.Equal(t, CategoryPump, ev.Category)
	assert.False(t, ev.Timestamp.Before(before))
}

func TestEventEncodeDecode(t *testing.T) {
	ev := NewEvent("4f5a9c2e", CategoryHandshake)
	ev.Handshake = &HandshakeEvent{
		BytesRead:    51,
		BytesWritten: 51,
		Completed:    true,
	}

	data, err := EncodeEvent(ev)
	require.NoError(t, err)

	got, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.StreamID, got.StreamID)
	assert.Equal(t, ev.Category, got.Category)
	require.NotNil(t, got.Handshake)
	assert.Equal(t, ev.Handshake, got.Handshake)
	assert.True(t, ev.Timestamp.Equal(got.Timestamp), "timestamp not preserved")
	assert.Nil(t, got.Pump)
	assert.Nil(t, got.StateChange)
	assert.Nil(t, got.Error)
}

func TestDecodeEventInvalid(t *testing.T) {
	_, err := DecodeEvent([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "IN", DirectionIn.String())
	assert.Equal(t, "OUT", DirectionOut.String())
	assert.Equal(t, "UNKNOWN", Direction(42).String())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "PUMP", CategoryPump.String())
	assert.Equal(t, "HANDSHAKE", CategoryHandshake.String())
	assert.Equal(t, "STATE", CategoryState.String())
	assert.Equal(t, "ERROR", CategoryError.String())
	assert.Equal(t, "UNKNOWN", Category(42).String())
}
