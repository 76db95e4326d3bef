package golin

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version is the LIN protocol version, it selects the checksum model
type Version uint8

const (
	V1 Version = 1 // LIN 1.x, classic checksum
	V2 Version = 2 // LIN 2.x, enhanced checksum
)

func (v Version) String() string {
	switch v {
	case V1:
		return "LIN1.x"
	case V2:
		return "LIN2.x"
	default:
		return fmt.Sprintf("LIN?(%d)", uint8(v))
	}
}

type FrameType uint8

const (
	MasterRequest FrameType = 1
	SlaveResponse FrameType = 2
)

func (ft FrameType) String() string {
	switch ft {
	case MasterRequest:
		return "MasterRequest"
	case SlaveResponse:
		return "SlaveResponse"
	default:
		return "Unknown"
	}
}

const (
	BreakByte = 0x00
	SyncByte  = 0x55

	// MaxDataLen is the max number of data bytes in a frame
	MaxDataLen = 8
	// HeaderLen is break marker + sync + protected id
	HeaderLen = 3
	// MaxFrameLen is header + 8 data bytes + checksum
	MaxFrameLen = HeaderLen + MaxDataLen + 1

	// Diagnostic frames always use the classic checksum
	DiagMasterRequestID = 0x3C
	DiagSlaveResponseID = 0x3D

	idMask = 0x3F
)

// ProtectedID returns the 6 bit identifier with the two parity bits added
// as described in LIN2.0 "2.3.1.3 Protected identifier field".
//
//	P0 (bit 6) = ID0 ^ ID1 ^ ID2 ^ ID4
//	P1 (bit 7) = ^(ID1 ^ ID3 ^ ID4 ^ ID5)
func ProtectedID(id byte) byte {
	pid := id & idMask
	p0 := (pid ^ (pid >> 1) ^ (pid >> 2) ^ (pid >> 4)) & 0x01
	p1 := ^((pid >> 1) ^ (pid >> 3) ^ (pid >> 4) ^ (pid >> 5)) & 0x01
	return pid | p0<<6 | p1<<7
}

// IsDiagnostic reports if id is one of the two reserved diagnostic frame identifiers
func IsDiagnostic(id byte) bool {
	id &= idMask
	return id == DiagMasterRequestID || id == DiagSlaveResponseID
}

// Checksum calculates the frame checksum. V2 frames use the enhanced checksum
// seeded with the protected id, except for the diagnostic frames 0x3C and 0x3D
// which always use the classic checksum over the data bytes only.
func Checksum(version Version, id byte, data []byte) byte {
	var chk uint16
	if version == V2 && !IsDiagnostic(id) {
		chk = uint16(ProtectedID(id))
	}
	for _, b := range data {
		chk += uint16(b)
		if chk > 0xFF {
			chk -= 0xFF
		}
	}
	return ^byte(chk)
}

// CheckFrame compares the sent bytes with the received echo and verifies the
// checksum of the received frame. rx holds break marker, sync, pid, data and checksum.
func CheckFrame(version Version, id byte, tx, rx []byte) ErrorFlags {
	if len(rx) < HeaderLen+1 || len(tx) > len(rx) {
		return ErrLength
	}
	for i := range tx {
		if tx[i] != rx[i] {
			return ErrEcho
		}
	}
	last := len(rx) - 1
	if rx[last] != Checksum(version, id, rx[HeaderLen:last]) {
		return ErrChecksum
	}
	return ErrNone
}

// Frame is a snapshot of a LIN frame
type Frame struct {
	Type    FrameType
	Version Version
	ID      byte
	Data    []byte
}

func (f *Frame) PID() byte {
	return ProtectedID(f.ID)
}

func (f *Frame) Checksum() byte {
	return Checksum(f.Version, f.ID, f.Data)
}

var (
	blue  = color.New(color.FgHiBlue).SprintfFunc()
	red   = color.New(color.FgRed).SprintfFunc()
	green = color.New(color.FgGreen).SprintfFunc()
)

func (f *Frame) prefix() string {
	switch f.Type {
	case MasterRequest:
		return "<o> || "
	case SlaveResponse:
		return "<i> || "
	default:
		return "<?> || "
	}
}

func hexView(data []byte) string {
	var out strings.Builder
	for i, b := range data {
		out.WriteString(fmt.Sprintf("%02X", b))
		if i != len(data)-1 {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func (f *Frame) String() string {
	var out strings.Builder
	out.WriteString(f.prefix())
	out.WriteString(fmt.Sprintf("0x%02X (0x%02X)", f.ID&idMask, f.PID()) + " || ")
	out.WriteString(fmt.Sprintf("%d || ", len(f.Data)))
	out.WriteString(fmt.Sprintf("%-23s", hexView(f.Data)))
	out.WriteString(fmt.Sprintf(" || 0x%02X %s", f.Checksum(), f.Version))
	return out.String()
}

func (f *Frame) ColorString() string {
	var out strings.Builder
	out.WriteString(f.prefix())
	out.WriteString(green("0x%02X", f.ID&idMask) + fmt.Sprintf(" (0x%02X)", f.PID()) + " || ")
	out.WriteString(fmt.Sprintf("%d || ", len(f.Data)))
	out.WriteString(blue("%-23s", hexView(f.Data)))
	out.WriteString(" || " + red("0x%02X", f.Checksum()) + " " + f.Version.String())
	return out.String()
}
