//go:build tinygo

package golin

import (
	"machine"
)

// UART drives a LIN transceiver from a microcontroller hardware UART.
// The break is made with the half baudrate trick, the transceiver echo of
// the break is stored as first received byte.
type UART struct {
	*BaseTransport
	uart     *machine.UART
	tx, rx   machine.Pin
	txEnable machine.Pin
	open     bool
}

// NewUART returns a transport for uart. txEnable may be machine.NoPin.
func NewUART(uart *machine.UART, tx, rx, txEnable machine.Pin, cfg *TransportConfig) *UART {
	if cfg == nil {
		cfg = &TransportConfig{}
	}
	u := &UART{
		BaseTransport: NewBaseTransport("uart", cfg),
		uart:          uart,
		tx:            tx,
		rx:            rx,
		txEnable:      txEnable,
	}
	if txEnable != machine.NoPin {
		txEnable.Set(cfg.TxEnableInverted)
		txEnable.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	return u
}

func (u *UART) Capabilities() TransportCapabilities {
	return TransportCapabilities{
		BreakEcho: true,
		Echo:      true,
	}
}

func (u *UART) Open(baudrate int) error {
	if err := u.uart.Configure(machine.UARTConfig{
		BaudRate: uint32(baudrate),
		TX:       u.tx,
		RX:       u.rx,
	}); err != nil {
		return err
	}
	u.baudrate = baudrate
	u.open = true
	return nil
}

func (u *UART) Close() error {
	u.open = false
	return u.SetTransmitEnable(false)
}

func (u *UART) Write(p []byte) (int, error) {
	if !u.open {
		return 0, ErrPortClosed
	}
	return u.uart.Write(p)
}

func (u *UART) Buffered() int {
	return u.uart.Buffered()
}

func (u *UART) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && u.uart.Buffered() > 0 {
		b, err := u.uart.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (u *UART) Break() error {
	if !u.open {
		return ErrPortClosed
	}
	u.uart.SetBaudRate(uint32(u.baudrate >> 1))
	_, err := u.uart.Write([]byte{BreakByte})
	return err
}

func (u *UART) ReleaseBreak() error {
	u.uart.SetBaudRate(uint32(u.baudrate))
	return nil
}

func (u *UART) SetTransmitEnable(on bool) error {
	if u.txEnable == machine.NoPin {
		return nil
	}
	u.txEnable.Set(on != u.cfg.TxEnableInverted)
	return nil
}
