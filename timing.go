package golin

import "time"

const (
	// BitsPerByte on the wire: start bit, 8 data bits and stop bit
	BitsPerByte = 10
	// BreakBits is the nominal length of a break
	BreakBits = 13

	// DefaultTimeoutFactor scales the nominal frame duration into the frame
	// timeout. Host serial behind USB usually needs a larger factor.
	DefaultTimeoutFactor = 1.5
	DefaultBaudrate      = 19200
	DefaultName          = "Master"
	MaxNameLen           = 30
)

// Clock is the time source used for frame timeouts
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock uses time.Now
var SystemClock Clock = systemClock{}

// TimePerByte returns the duration of one byte at baudrate
func TimePerByte(baudrate int) time.Duration {
	if baudrate <= 0 {
		return 0
	}
	return time.Duration(BitsPerByte) * time.Second / time.Duration(baudrate)
}

// BreakDuration returns the duration of a BreakBits long break at baudrate
func BreakDuration(baudrate int) time.Duration {
	if baudrate <= 0 {
		return 0
	}
	return time.Duration(BreakBits) * time.Second / time.Duration(baudrate)
}

// FrameTimeout is the max duration of a frame receiving rxLen bytes.
// The break is accounted as one extra byte.
func FrameTimeout(rxLen, baudrate int, factor float64) time.Duration {
	nominal := time.Duration(rxLen+1) * TimePerByte(baudrate)
	return time.Duration(float64(nominal) * factor)
}
