//go:build !tinygo

package golin

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
)

type Serial struct {
	*BaseTransport
	port serial.Port
	mode *serial.Mode
	pump rxPump
}

func init() {
	if err := RegisterTransport(&TransportInfo{
		Name:               "serial",
		Description:        "serial port LIN transceiver",
		RequiresSerialPort: true,
		Capabilities: TransportCapabilities{
			BreakEcho: false,
			Echo:      true,
		},
		New: NewSerial,
	}); err != nil {
		panic(err)
	}
}

func NewSerial(cfg *TransportConfig) (Transport, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial: no port given")
	}
	switch cfg.BreakMode {
	case "":
		cfg.BreakMode = BreakModeNative
	case BreakModeNative, BreakModeHalfBaud:
	default:
		return nil, fmt.Errorf("serial: unknown break mode %q", cfg.BreakMode)
	}
	switch cfg.TxEnable {
	case TxEnableNone, TxEnableRTS, TxEnableDTR:
	default:
		return nil, fmt.Errorf("serial: unknown tx enable line %q", cfg.TxEnable)
	}
	return &Serial{
		BaseTransport: NewBaseTransport("serial", cfg),
	}, nil
}

func (s *Serial) Capabilities() TransportCapabilities {
	return TransportCapabilities{
		BreakEcho: s.cfg.BreakMode == BreakModeHalfBaud,
		Echo:      true,
	}
}

func (s *Serial) Open(baudrate int) error {
	if s.port != nil {
		return fmt.Errorf("com port %q already open", s.cfg.Port)
	}
	mode := &serial.Mode{
		BaudRate: baudrate,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(s.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open com port %q : %w", s.cfg.Port, err)
	}
	if err := p.SetReadTimeout(2 * time.Millisecond); err != nil {
		p.Close()
		return err
	}
	p.ResetOutputBuffer()
	p.ResetInputBuffer()

	s.port = p
	s.mode = mode
	s.baudrate = baudrate
	if err := s.SetTransmitEnable(false); err != nil {
		s.Warn(fmt.Sprintf("failed to reset tx enable: %v", err))
	}
	s.pump.start(p)
	s.Debug(fmt.Sprintf("opened %s at %d baud, break mode %s", s.cfg.Port, baudrate, s.cfg.BreakMode))
	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	s.SetTransmitEnable(false)
	err := s.pump.stop(s.port)
	s.port = nil
	s.Debug("closed " + s.cfg.Port)
	return err
}

func (s *Serial) Write(p []byte) (int, error) {
	if s.port == nil {
		return 0, ErrPortClosed
	}
	if s.cfg.Debug {
		s.Debug(fmt.Sprintf(">> % X", p))
	}
	return s.port.Write(p)
}

func (s *Serial) Buffered() int {
	return s.pump.Buffered()
}

func (s *Serial) Read(p []byte) (int, error) {
	n, err := s.pump.Read(p)
	if n > 0 && s.cfg.Debug {
		s.Debug(fmt.Sprintf("<< % X", p[:n]))
	}
	return n, err
}

func (s *Serial) Break() error {
	if s.port == nil {
		return ErrPortClosed
	}
	if s.cfg.BreakMode == BreakModeHalfBaud {
		return s.halfBaudBreak()
	}
	if err := s.port.Break(BreakDuration(s.baudrate)); err != nil {
		return fmt.Errorf("failed to send break: %w", err)
	}
	// break delimiter, then drop whatever the uart made of the break. Behind
	// usb the 0x00 can arrive after the reset, the master drops it there.
	time.Sleep(TimePerByte(s.baudrate))
	if err := s.port.ResetInputBuffer(); err != nil {
		return err
	}
	s.pump.reset()
	return nil
}

// halfBaudBreak sends 0x00 at half the baudrate. Start bit and 8 data bits
// are low for 18 nominal bit times. The baudrate is restored in ReleaseBreak
// once the echo has been received.
func (s *Serial) halfBaudBreak() error {
	half := *s.mode
	half.BaudRate = s.baudrate >> 1
	if err := s.port.SetMode(&half); err != nil {
		return fmt.Errorf("failed to set break baudrate: %w", err)
	}
	if _, err := s.port.Write([]byte{BreakByte}); err != nil {
		return fmt.Errorf("failed to send break: %w", err)
	}
	return nil
}

func (s *Serial) ReleaseBreak() error {
	if s.port == nil {
		return ErrPortClosed
	}
	if s.cfg.BreakMode != BreakModeHalfBaud {
		return nil
	}
	if err := s.port.Drain(); err != nil {
		return err
	}
	if err := s.port.SetMode(s.mode); err != nil {
		return fmt.Errorf("failed to restore baudrate: %w", err)
	}
	return nil
}

func (s *Serial) SetTransmitEnable(on bool) error {
	level := on != s.cfg.TxEnableInverted
	switch s.cfg.TxEnable {
	case TxEnableRTS:
		if s.port == nil {
			return ErrPortClosed
		}
		return s.port.SetRTS(level)
	case TxEnableDTR:
		if s.port == nil {
			return ErrPortClosed
		}
		return s.port.SetDTR(level)
	}
	return nil
}
