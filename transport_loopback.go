package golin

import (
	"sync"
)

// Loopback is an in memory transport. Everything written is echoed back
// unless NoEcho is set, and the bytes returned by Responder are appended
// after the echo. It is used for dry runs and tests.
type Loopback struct {
	*BaseTransport

	// Responder is called for every write with the written bytes
	Responder func(written []byte) []byte
	// NoEcho emulates a transport that cannot hear its own transmission
	NoEcho bool
	// BreakEcho makes Break put a 0x00 into the receive buffer
	BreakEcho bool

	mu       sync.Mutex
	open     bool
	rx       []byte
	written  []byte
	breaks   int
	txEnable []bool
}

func init() {
	if err := RegisterTransport(&TransportInfo{
		Name:               "loopback",
		Description:        "in memory loopback, echoes all writes",
		RequiresSerialPort: false,
		Capabilities: TransportCapabilities{
			BreakEcho: false,
			Echo:      true,
		},
		New: func(cfg *TransportConfig) (Transport, error) {
			return NewLoopback(cfg), nil
		},
	}); err != nil {
		panic(err)
	}
}

func NewLoopback(cfg *TransportConfig) *Loopback {
	if cfg == nil {
		cfg = &TransportConfig{}
	}
	return &Loopback{
		BaseTransport: NewBaseTransport("loopback", cfg),
	}
}

func (l *Loopback) Capabilities() TransportCapabilities {
	return TransportCapabilities{
		BreakEcho: l.BreakEcho,
		Echo:      !l.NoEcho,
	}
}

func (l *Loopback) Open(baudrate int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = true
	l.baudrate = baudrate
	l.rx = l.rx[:0]
	return nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.open = false
	return nil
}

func (l *Loopback) Write(p []byte) (int, error) {
	l.mu.Lock()
	if !l.open {
		l.mu.Unlock()
		return 0, ErrPortClosed
	}
	l.written = append(l.written, p...)
	if !l.NoEcho {
		l.rx = append(l.rx, p...)
	}
	responder := l.Responder
	l.mu.Unlock()

	if responder != nil {
		l.Feed(responder(p)...)
	}
	return len(p), nil
}

func (l *Loopback) Buffered() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rx)
}

func (l *Loopback) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return 0, ErrPortClosed
	}
	n := copy(p, l.rx)
	l.rx = append(l.rx[:0], l.rx[n:]...)
	return n, nil
}

func (l *Loopback) Break() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return ErrPortClosed
	}
	l.breaks++
	if l.BreakEcho {
		l.rx = append(l.rx, BreakByte)
	}
	return nil
}

func (l *Loopback) SetTransmitEnable(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.txEnable = append(l.txEnable, on)
	return nil
}

// Feed appends bytes to the receive buffer as if received from the bus
func (l *Loopback) Feed(b ...byte) {
	if len(b) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rx = append(l.rx, b...)
}

// Written returns a copy of all bytes written since creation
func (l *Loopback) Written() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.written...)
}

func (l *Loopback) Breaks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.breaks
}

// TxEnableHistory returns every SetTransmitEnable call in order
func (l *Loopback) TxEnableHistory() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]bool(nil), l.txEnable...)
}

// StaticResponder answers headers for the given ids with data and a valid checksum
func StaticResponder(version Version, responses map[byte][]byte) func([]byte) []byte {
	byPID := make(map[byte][]byte, len(responses))
	for id, data := range responses {
		byPID[ProtectedID(id)] = append(append([]byte(nil), data...), Checksum(version, id, data))
	}
	return func(written []byte) []byte {
		if len(written) != 2 || written[0] != SyncByte {
			return nil
		}
		return byPID[written[1]]
	}
}
