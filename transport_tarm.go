//go:build !tinygo

package golin

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// Tarm is a serial transport for platforms where go.bug.st/serial is not
// available. tarm/serial can neither send a break nor change the baudrate of
// an open port, so the break is made by reopening the port at half baudrate.
type Tarm struct {
	*BaseTransport
	port *serial.Port
	pump rxPump
}

func init() {
	if err := RegisterTransport(&TransportInfo{
		Name:               "tarm",
		Description:        "serial port LIN transceiver, reopen break",
		RequiresSerialPort: true,
		Capabilities: TransportCapabilities{
			BreakEcho: false,
			Echo:      true,
		},
		New: NewTarm,
	}); err != nil {
		panic(err)
	}
}

func NewTarm(cfg *TransportConfig) (Transport, error) {
	if cfg.Port == "" {
		return nil, errors.New("tarm: no port given")
	}
	if cfg.TxEnable != TxEnableNone {
		return nil, fmt.Errorf("tarm: tx enable line %q not supported", cfg.TxEnable)
	}
	return &Tarm{
		BaseTransport: NewBaseTransport("tarm", cfg),
	}, nil
}

func (t *Tarm) Capabilities() TransportCapabilities {
	return TransportCapabilities{
		BreakEcho: false,
		Echo:      true,
	}
}

func (t *Tarm) open(baudrate int) error {
	p, err := serial.OpenPort(&serial.Config{
		Name:        t.cfg.Port,
		Baud:        baudrate,
		ReadTimeout: 2 * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	})
	if err != nil {
		return fmt.Errorf("failed to open com port %q : %w", t.cfg.Port, err)
	}
	t.port = p
	t.pump.start(p)
	return nil
}

func (t *Tarm) Open(baudrate int) error {
	if t.port != nil {
		return fmt.Errorf("com port %q already open", t.cfg.Port)
	}
	if err := t.open(baudrate); err != nil {
		return err
	}
	t.baudrate = baudrate
	t.Debug(fmt.Sprintf("opened %s at %d baud", t.cfg.Port, baudrate))
	return nil
}

func (t *Tarm) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.pump.stop(t.port)
	t.port = nil
	return err
}

func (t *Tarm) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrPortClosed
	}
	if t.cfg.Debug {
		t.Debug(fmt.Sprintf(">> % X", p))
	}
	return t.port.Write(p)
}

func (t *Tarm) Buffered() int {
	return t.pump.Buffered()
}

func (t *Tarm) Read(p []byte) (int, error) {
	return t.pump.Read(p)
}

// Break reopens the port at half baudrate, sends 0x00 and reopens at the
// nominal baudrate. The echo of the break is lost while reopening.
func (t *Tarm) Break() error {
	if t.port == nil {
		return ErrPortClosed
	}
	half := t.baudrate >> 1
	if err := t.pump.stop(t.port); err != nil {
		t.Debug(fmt.Sprintf("close before break: %v", err))
	}
	t.port = nil
	if err := t.open(half); err != nil {
		return err
	}
	if _, err := t.port.Write([]byte{BreakByte}); err != nil {
		return fmt.Errorf("failed to send break: %w", err)
	}
	// one byte at half baudrate plus the delimiter
	time.Sleep(2*TimePerByte(half) + TimePerByte(t.baudrate))
	if err := t.pump.stop(t.port); err != nil {
		t.Debug(fmt.Sprintf("close after break: %v", err))
	}
	t.port = nil
	return t.open(t.baudrate)
}

func (t *Tarm) SetTransmitEnable(on bool) error {
	return nil
}
