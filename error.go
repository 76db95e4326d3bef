package golin

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorFlags is the latched error state of a Master. Flags are ORed together
// and only cleared by ResetError or Open.
type ErrorFlags uint8

const (
	ErrNone      ErrorFlags = 0x00
	ErrState     ErrorFlags = 0x01 // transaction requested while not idle
	ErrEcho      ErrorFlags = 0x02 // echo did not match sent bytes
	ErrTimeout   ErrorFlags = 0x04 // frame did not complete in time
	ErrChecksum  ErrorFlags = 0x08 // checksum mismatch
	ErrLength    ErrorFlags = 0x10 // invalid number of data bytes
	ErrTransport ErrorFlags = 0x20 // transport I/O failure
	ErrMisc      ErrorFlags = 0x80 // should not occur
)

var flagNames = []struct {
	flag ErrorFlags
	name string
}{
	{ErrState, "STATE"},
	{ErrEcho, "ECHO"},
	{ErrTimeout, "TIMEOUT"},
	{ErrChecksum, "CHECKSUM"},
	{ErrLength, "LENGTH"},
	{ErrTransport, "TRANSPORT"},
	{ErrMisc, "MISC"},
}

func (e ErrorFlags) Has(flag ErrorFlags) bool {
	return e&flag == flag && flag != 0
}

func (e ErrorFlags) String() string {
	if e == ErrNone {
		return "OK"
	}
	var names []string
	for _, fn := range flagNames {
		if e&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}

// Err returns nil if no flag is set, otherwise a *FrameError
func (e ErrorFlags) Err() error {
	if e == ErrNone {
		return nil
	}
	return &FrameError{Flags: e}
}

var (
	ErrNilTransport     = errors.New("transport is nil")
	ErrInvalidBaudrate  = errors.New("invalid baudrate")
	ErrUnknownTransport = errors.New("unknown transport")
	ErrPortClosed       = errors.New("port closed")

	ErrStateViolation   = errors.New("lin state error")
	ErrEchoMismatch     = errors.New("lin echo error")
	ErrFrameTimeout     = errors.New("lin frame timeout")
	ErrChecksumMismatch = errors.New("lin checksum error")
	ErrDataLength       = errors.New("lin data length error")
	ErrTransportFailure = errors.New("lin transport error")
	ErrInternal         = errors.New("lin internal error")
)

var flagErrors = map[ErrorFlags]error{
	ErrState:     ErrStateViolation,
	ErrEcho:      ErrEchoMismatch,
	ErrTimeout:   ErrFrameTimeout,
	ErrChecksum:  ErrChecksumMismatch,
	ErrLength:    ErrDataLength,
	ErrTransport: ErrTransportFailure,
	ErrMisc:      ErrInternal,
}

// FrameError is the error form of latched ErrorFlags
type FrameError struct {
	Flags ErrorFlags
	ID    byte
	Cause error // cause of the last failure, if known
}

func (e *FrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("lin frame 0x%02X failed: %s: %v", e.ID, e.Flags, e.Cause)
	}
	return fmt.Sprintf("lin frame 0x%02X failed: %s", e.ID, e.Flags)
}

// Is matches the sentinel error of every latched flag
func (e *FrameError) Is(target error) bool {
	for flag, sentinel := range flagErrors {
		if e.Flags.Has(flag) && target == sentinel {
			return true
		}
	}
	return false
}

func (e *FrameError) Unwrap() error {
	return e.Cause
}
