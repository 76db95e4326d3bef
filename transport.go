package golin

import (
	"fmt"
	"sort"
	"strings"
)

// Transport is the byte level serial interface a Master drives.
// A Transport is borrowed by the Master, the caller owns its lifetime.
type Transport interface {
	Name() string
	Open(baudrate int) error
	Close() error
	// Write queues bytes for transmission
	Write(p []byte) (int, error)
	// Buffered returns the number of received bytes ready to be read
	Buffered() int
	// Read consumes up to len(p) buffered bytes without blocking
	Read(p []byte) (int, error)
	// Break asserts a break condition of at least 13 bit times
	Break() error
	// SetTransmitEnable drives the direction line of half duplex transceivers.
	// No-op if the transport has none configured.
	SetTransmitEnable(on bool) error
	Capabilities() TransportCapabilities
}

// BreakReleaser is implemented by transports whose break has to be ended
// explicitly before the rest of the frame is sent, e.g. the half baud trick
// where the nominal baudrate must be restored.
type BreakReleaser interface {
	ReleaseBreak() error
}

type TransportCapabilities struct {
	// BreakEcho is set if the break is received back as one byte
	BreakEcho bool
	// Echo is set if transmitted bytes are received back from the bus
	Echo bool
}

func (c *TransportCapabilities) String() string {
	return fmt.Sprintf("BreakEcho: %v, Echo: %v", c.BreakEcho, c.Echo)
}

const (
	TxEnableNone = ""
	TxEnableRTS  = "rts"
	TxEnableDTR  = "dtr"

	BreakModeNative   = "native"
	BreakModeHalfBaud = "halfbaud"
)

type TransportConfig struct {
	Debug            bool
	Port             string
	TxEnable         string // TxEnableNone, TxEnableRTS or TxEnableDTR
	TxEnableInverted bool
	BreakMode        string // BreakModeNative or BreakModeHalfBaud
	Logger           Logger
}

type TransportInfo struct {
	Name               string
	Description        string
	RequiresSerialPort bool
	Capabilities       TransportCapabilities
	New                func(*TransportConfig) (Transport, error)
}

func (t *TransportInfo) String() string {
	return fmt.Sprintf("%s | %s, requires serial port: %v ", t.Name, t.Description, t.RequiresSerialPort)
}

var transportMap = make(map[string]*TransportInfo)

func NewTransport(name string, cfg *TransportConfig) (Transport, error) {
	if cfg == nil {
		cfg = &TransportConfig{}
	}
	if cfg.Logger == nil {
		cfg.Logger = NopLogger
	}
	if info, found := transportMap[strings.ToLower(name)]; found {
		return info.New(cfg)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownTransport, name)
}

func RegisterTransport(info *TransportInfo) error {
	key := strings.ToLower(info.Name)
	if _, found := transportMap[key]; !found {
		transportMap[key] = info
		return nil
	}
	return fmt.Errorf("transport %s already registered", info.Name)
}

func ListTransportNames() []string {
	var out []string
	for _, info := range transportMap {
		out = append(out, info.Name)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func ListTransports() []TransportInfo {
	var out []TransportInfo
	for _, info := range transportMap {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}
