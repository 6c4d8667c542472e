package channel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWouldBlock(t *testing.T) {
	assert.True(t, IsWouldBlock(ErrWouldBlock))
	assert.True(t, IsWouldBlock(fmt.Errorf("pump: %w", ErrWouldBlock)))
	assert.False(t, IsWouldBlock(nil))
	assert.False(t, IsWouldBlock(errors.New("other")))
}

func TestDecodeError(t *testing.T) {
	cause := errors.New("bad record")
	err := &DecodeError{Err: cause}

	assert.Equal(t, "protocol decode: bad record", err.Error())
	assert.ErrorIs(t, err, cause)

	var de *DecodeError
	assert.ErrorAs(t, fmt.Errorf("fill: %w", err), &de)
}
