package golin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFlagsString(t *testing.T) {
	tests := []struct {
		flags ErrorFlags
		want  string
	}{
		{ErrNone, "OK"},
		{ErrState, "STATE"},
		{ErrEcho | ErrChecksum, "ECHO|CHECKSUM"},
		{ErrTimeout | ErrTransport | ErrMisc, "TIMEOUT|TRANSPORT|MISC"},
		{ErrLength, "LENGTH"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.flags.String())
	}
}

func TestErrorFlagsHas(t *testing.T) {
	f := ErrEcho | ErrTimeout
	assert.True(t, f.Has(ErrEcho))
	assert.True(t, f.Has(ErrEcho|ErrTimeout))
	assert.False(t, f.Has(ErrChecksum))
	assert.False(t, f.Has(ErrNone))
}

func TestFrameError(t *testing.T) {
	assert.NoError(t, ErrNone.Err())

	err := (ErrEcho | ErrChecksum).Err()
	assert.EqualError(t, err, "lin frame 0x00 failed: ECHO|CHECKSUM")
	assert.True(t, errors.Is(err, ErrEchoMismatch))
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
	assert.False(t, errors.Is(err, ErrFrameTimeout))

	cause := errors.New("read failed")
	err = &FrameError{Flags: ErrTransport, ID: 0x3C, Cause: cause}
	assert.EqualError(t, err, "lin frame 0x3C failed: TRANSPORT: read failed")
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrTransportFailure))

	var fe *FrameError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, byte(0x3C), fe.ID)
}
