package schedule

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roffe/golin"
)

// Entry is one slot of a schedule table
type Entry struct {
	Type    golin.FrameType
	Version golin.Version
	ID      byte
	Data    []byte // master request payload
	Length  int    // expected slave response data bytes
	Delay   time.Duration
}

func (e Entry) String() string {
	var sb strings.Builder
	switch e.Type {
	case golin.MasterRequest:
		fmt.Fprintf(&sb, "req:0x%02X", e.ID)
		if len(e.Data) > 0 {
			sb.WriteString(":" + hex.EncodeToString(e.Data))
		}
	case golin.SlaveResponse:
		fmt.Fprintf(&sb, "resp:0x%02X:%d", e.ID, e.Length)
	default:
		return "invalid entry"
	}
	if e.Delay > 0 {
		sb.WriteString("@" + e.Delay.String())
	}
	return sb.String()
}

// ParseEntry parses
//
//	req:<id>[:<hexdata>][@<delay>]
//	resp:<id>:<n>[@<delay>]
//
// id accepts decimal or 0x prefixed hex, delay is a time.Duration string.
// The version defaults to LIN 2.x.
func ParseEntry(s string) (Entry, error) {
	e := Entry{Version: golin.V2}

	body := strings.TrimSpace(s)
	if i := strings.LastIndexByte(body, '@'); i >= 0 {
		d, err := time.ParseDuration(body[i+1:])
		if err != nil {
			return e, fmt.Errorf("entry %q: invalid delay: %w", s, err)
		}
		if d < 0 {
			return e, fmt.Errorf("entry %q: negative delay", s)
		}
		e.Delay = d
		body = body[:i]
	}

	parts := strings.Split(body, ":")
	if len(parts) < 2 {
		return e, fmt.Errorf("entry %q: expected <type>:<id>", s)
	}
	id, err := strconv.ParseUint(parts[1], 0, 8)
	if err != nil {
		return e, fmt.Errorf("entry %q: invalid id: %w", s, err)
	}
	if id > 0x3F {
		return e, fmt.Errorf("entry %q: id 0x%02X out of range", s, id)
	}
	e.ID = byte(id)

	switch strings.ToLower(parts[0]) {
	case "req":
		e.Type = golin.MasterRequest
		switch len(parts) {
		case 2:
		case 3:
			data, err := hex.DecodeString(parts[2])
			if err != nil {
				return e, fmt.Errorf("entry %q: invalid data: %w", s, err)
			}
			if len(data) > golin.MaxDataLen {
				return e, fmt.Errorf("entry %q: %d data bytes, max %d", s, len(data), golin.MaxDataLen)
			}
			e.Data = data
		default:
			return e, fmt.Errorf("entry %q: too many fields", s)
		}
	case "resp":
		e.Type = golin.SlaveResponse
		if len(parts) != 3 {
			return e, fmt.Errorf("entry %q: expected resp:<id>:<n>", s)
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return e, fmt.Errorf("entry %q: invalid length: %w", s, err)
		}
		if n < 0 || n > golin.MaxDataLen {
			return e, fmt.Errorf("entry %q: length %d out of range", s, n)
		}
		e.Length = n
	default:
		return e, fmt.Errorf("entry %q: unknown frame type %q", s, parts[0])
	}
	return e, nil
}

// ParseEntries parses all entries, stopping at the first invalid one
func ParseEntries(args []string) ([]Entry, error) {
	out := make([]Entry, 0, len(args))
	for _, a := range args {
		e, err := ParseEntry(a)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
