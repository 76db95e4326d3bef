package golin

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Master emulates a LIN master node on top of a Transport.
//
// A frame is started with SendMasterRequest or ReceiveSlaveResponse and
// advanced by calling Handler until it returns StateDone. The blocking
// variants do the polling themselves. Errors are latched in Error() until
// ResetError is called. A done master must be reset with ResetStateMachine
// before the next frame, otherwise the next frame fails with ErrState.
//
// A Master is not safe for concurrent use, except for Frame which may be
// called from any goroutine.
type Master struct {
	name          string
	t             Transport
	caps          TransportCapabilities
	log           Logger
	clock         Clock
	timeoutFactor float64

	baudrate int

	state    State
	err      ErrorFlags
	frameErr ErrorFlags // flags of the current frame only
	errID    byte       // id of the frame that last latched a flag
	cause    error

	start     time.Time
	timeout   time.Duration
	txEnabled bool
	lateBreak bool

	cs      criticalSection
	version Version
	typ     FrameType
	id      byte
	txLen   int
	tx      [MaxFrameLen]byte
	rxLen   int
	rxPos   int
	rx      [MaxFrameLen]byte

	stats Stats
}

func New(t Transport, opts ...Option) (*Master, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	m := &Master{
		name:          DefaultName,
		t:             t,
		log:           NopLogger,
		clock:         SystemClock,
		timeoutFactor: DefaultTimeoutFactor,
		state:         StateOff,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Master) logf(level EventType, format string, v ...interface{}) {
	m.log.Log(level, m.name+": "+fmt.Sprintf(format, v...))
}

// Name returns the node name
func (m *Master) Name() string {
	return m.name
}

// Open opens the transport at baudrate and makes the master idle
func (m *Master) Open(baudrate int) error {
	if baudrate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBaudrate, baudrate)
	}
	if m.state != StateOff {
		m.Close()
	}
	if err := m.t.Open(baudrate); err != nil {
		m.logf(EventTypeError, "failed to open %s: %v", m.t.Name(), err)
		return err
	}
	m.baudrate = baudrate
	m.err = ErrNone
	m.cause = nil
	m.state = StateIdle
	m.logf(EventTypeInfo, "ok, BR=%d", baudrate)
	return nil
}

// Close closes the transport, the master is off until opened again
func (m *Master) Close() error {
	m.state = StateOff
	m.disableTransmitter()
	err := m.t.Close()
	m.logf(EventTypeInfo, "closed")
	return err
}

func (m *Master) State() State {
	return m.state
}

// ResetStateMachine forces the master back to idle and releases the
// transmitter. Bytes already handed to the transport are not retracted.
func (m *Master) ResetStateMachine() {
	m.disableTransmitter()
	m.state = StateIdle
}

func (m *Master) Error() ErrorFlags {
	return m.err
}

func (m *Master) ResetError() {
	m.err = ErrNone
	m.cause = nil
}

// Err returns the latched flags as error, nil if none are set
func (m *Master) Err() error {
	if m.err == ErrNone {
		return nil
	}
	return &FrameError{Flags: m.err, ID: m.errID, Cause: m.cause}
}

func (m *Master) Stats() Stats {
	return m.stats
}

// Frame returns a consistent snapshot of the current frame. Data holds the
// received data bytes, i.e. the echo for master requests.
func (m *Master) Frame() Frame {
	defer m.cs.enter()()
	n := m.rxLen - HeaderLen - 1
	if n < 0 {
		n = 0
	}
	data := make([]byte, n)
	copy(data, m.rx[HeaderLen:HeaderLen+n])
	return Frame{
		Type:    m.typ,
		Version: m.version,
		ID:      m.id,
		Data:    data,
	}
}

// SendMasterRequest starts a master request frame. The master sends break,
// sync, protected id, data and checksum and expects to read it all back.
func (m *Master) SendMasterRequest(version Version, id byte, data []byte) State {
	if m.state != StateIdle {
		return m.reject(MasterRequest, id, ErrState, fmt.Sprintf("wrong state %s", m.state))
	}
	if len(data) > MaxDataLen {
		return m.reject(MasterRequest, id, ErrLength, fmt.Sprintf("%d data bytes", len(data)))
	}

	end := m.cs.enter()
	m.typ = MasterRequest
	m.version = version
	m.id = id & idMask
	m.txLen = HeaderLen + len(data) + 1
	m.tx[0] = BreakByte
	m.tx[1] = SyncByte
	m.tx[2] = ProtectedID(id)
	copy(m.tx[HeaderLen:], data)
	m.tx[m.txLen-1] = Checksum(version, id, data)
	m.rxLen = m.txLen
	m.rx = [MaxFrameLen]byte{}
	m.rxPos = 0
	end()

	return m.sendBreak()
}

// SendMasterRequestBlocking sends a master request and polls until done
func (m *Master) SendMasterRequestBlocking(version Version, id byte, data []byte) ErrorFlags {
	m.SendMasterRequest(version, id, data)
	m.poll()
	return m.err
}

// ReceiveSlaveResponse starts a slave response frame. The master sends the
// header and expects its echo followed by numData bytes and the checksum.
func (m *Master) ReceiveSlaveResponse(version Version, id byte, numData int) State {
	if m.state != StateIdle {
		return m.reject(SlaveResponse, id, ErrState, fmt.Sprintf("wrong state %s", m.state))
	}
	if numData < 0 || numData > MaxDataLen {
		return m.reject(SlaveResponse, id, ErrLength, fmt.Sprintf("%d data bytes", numData))
	}

	end := m.cs.enter()
	m.typ = SlaveResponse
	m.version = version
	m.id = id & idMask
	m.txLen = HeaderLen
	m.tx[0] = BreakByte
	m.tx[1] = SyncByte
	m.tx[2] = ProtectedID(id)
	m.rxLen = HeaderLen + numData + 1
	m.rx = [MaxFrameLen]byte{}
	m.rxPos = 0
	end()

	return m.sendBreak()
}

// ReceiveSlaveResponseBlocking receives a slave response and returns its data
func (m *Master) ReceiveSlaveResponseBlocking(version Version, id byte, numData int) ([]byte, ErrorFlags) {
	m.ReceiveSlaveResponse(version, id, numData)
	m.poll()
	f := m.Frame()
	return f.Data, m.err
}

// Wait polls Handler until the frame is done or ctx is cancelled. On
// cancellation the state machine is reset to idle.
func (m *Master) Wait(ctx context.Context) (ErrorFlags, error) {
	if m.state == StateOff || m.state == StateIdle {
		return m.err, nil
	}
	for m.Handler() != StateDone {
		select {
		case <-ctx.Done():
			m.ResetStateMachine()
			m.logf(EventTypeWarning, "frame 0x%02X aborted: %v", m.id, ctx.Err())
			return m.err, ctx.Err()
		default:
			runtime.Gosched()
		}
	}
	return m.err, nil
}

func (m *Master) poll() {
	for m.Handler() != StateDone {
		runtime.Gosched()
	}
}

// Handler advances the state machine by one step, call until StateDone
func (m *Master) Handler() State {
	switch m.state {
	case StateOff, StateIdle, StateDone:
	case StateBreak:
		m.sendFrame()
	case StateBody:
		m.receiveFrame()
	default:
		m.fail(ErrMisc, fmt.Errorf("invalid state 0x%02X", uint8(m.state)))
	}
	return m.state
}

// reject ends a request before the transport is touched. The current
// frame is left alone, only the error names the rejected id.
func (m *Master) reject(ft FrameType, id byte, flag ErrorFlags, reason string) State {
	m.err |= flag
	m.errID = id & idMask
	m.state = StateDone
	m.stats.add(ft, flag)
	m.logf(EventTypeError, "%s 0x%02X rejected: %s", ft, id&idMask, reason)
	return m.state
}

func (m *Master) fail(flag ErrorFlags, cause error) {
	m.err |= flag
	m.frameErr |= flag
	m.errID = m.id
	if cause != nil {
		m.cause = cause
		m.logf(EventTypeError, "frame 0x%02X %s: %v", m.id, flag, cause)
	} else {
		m.logf(EventTypeError, "frame 0x%02X %s", m.id, flag)
	}
	m.finish()
}

func (m *Master) finish() {
	m.disableTransmitter()
	m.state = StateDone
	m.stats.add(m.typ, m.frameErr)
}

func (m *Master) enableTransmitter() error {
	m.txEnabled = true
	return m.t.SetTransmitEnable(true)
}

func (m *Master) disableTransmitter() {
	if !m.txEnabled {
		return
	}
	m.txEnabled = false
	if err := m.t.SetTransmitEnable(false); err != nil {
		m.logf(EventTypeWarning, "failed to disable transmitter: %v", err)
	}
}

func (m *Master) timedOut() bool {
	return m.clock.Now().Sub(m.start) > m.timeout
}

// flushRx drops stale bytes, e.g. from an aborted frame
func (m *Master) flushRx() error {
	var scratch [MaxFrameLen]byte
	for m.t.Buffered() > 0 {
		n, err := m.t.Read(scratch[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		m.logf(EventTypeDebug, "dropped % X", scratch[:n])
	}
	return nil
}

// sendBreak arms the timeout and starts the frame with a break
func (m *Master) sendBreak() State {
	m.frameErr = ErrNone
	m.lateBreak = false
	m.caps = m.t.Capabilities()
	m.timeout = FrameTimeout(m.rxLen, m.baudrate, m.timeoutFactor)

	if err := m.flushRx(); err != nil {
		m.fail(ErrTransport, err)
		return m.state
	}
	if err := m.enableTransmitter(); err != nil {
		m.fail(ErrTransport, err)
		return m.state
	}
	if err := m.t.Break(); err != nil {
		m.fail(ErrTransport, err)
		return m.state
	}
	m.start = m.clock.Now()
	m.state = StateBreak
	m.logf(EventTypeDebug, "%s 0x%02X break sent, timeout %s", m.typ, m.id, m.timeout)
	return m.state
}

// sendFrame sends the rest of the frame once the break is on the bus.
// Request frames send sync, pid, data and checksum, response frames sync and pid.
func (m *Master) sendFrame() {
	breakEcho := byte(BreakByte)
	if m.caps.BreakEcho {
		if m.t.Buffered() == 0 {
			if m.timedOut() {
				m.fail(ErrTimeout, nil)
			}
			return
		}
		var b [1]byte
		if _, err := m.t.Read(b[:]); err != nil {
			m.fail(ErrTransport, err)
			return
		}
		breakEcho = b[0]
	}
	if r, ok := m.t.(BreakReleaser); ok {
		if err := r.ReleaseBreak(); err != nil {
			m.fail(ErrTransport, err)
			return
		}
	}
	if _, err := m.t.Write(m.tx[1:m.txLen]); err != nil {
		m.fail(ErrTransport, err)
		return
	}

	end := m.cs.enter()
	m.rx[0] = breakEcho
	m.rxPos = 1
	if !m.caps.Echo {
		copy(m.rx[:m.txLen], m.tx[:m.txLen])
		m.rxPos = m.txLen
	}
	end()

	m.state = StateBody
	m.logf(EventTypeDebug, "0x%02X header sent: % X", m.id, m.tx[1:m.txLen])
}

// receiveFrame collects the echo and the slave response and checks the frame
func (m *Master) receiveFrame() {
	if m.rxPos < m.rxLen && m.t.Buffered() > 0 {
		var scratch [MaxFrameLen]byte
		n, err := m.t.Read(scratch[:m.rxLen-m.rxPos])
		got := scratch[:n]
		// a transport without break echo may still deliver the break late,
		// one 0x00 ahead of the sync echo is dropped
		if m.rxPos == 1 && !m.caps.BreakEcho && !m.lateBreak && len(got) > 0 && got[0] == BreakByte {
			m.lateBreak = true
			got = got[1:]
			m.logf(EventTypeDebug, "0x%02X dropped late break", m.id)
		}
		end := m.cs.enter()
		copy(m.rx[m.rxPos:], got)
		m.rxPos += len(got)
		end()
		if err != nil {
			m.fail(ErrTransport, err)
			return
		}
	}

	// header echo complete, release the bus for the slave
	if m.typ == SlaveResponse && m.rxPos >= m.txLen {
		m.disableTransmitter()
	}

	if m.rxPos >= m.rxLen {
		end := m.cs.enter()
		flags := CheckFrame(m.version, m.id, m.tx[:m.txLen], m.rx[:m.rxLen])
		end()
		m.err |= flags
		m.frameErr |= flags
		m.finish()
		if flags != ErrNone {
			m.errID = m.id
			m.logf(EventTypeError, "frame 0x%02X %s, tx % X rx % X", m.id, flags, m.tx[:m.txLen], m.rx[:m.rxLen])
		} else {
			m.logf(EventTypeDebug, "frame 0x%02X ok: % X", m.id, m.rx[:m.rxLen])
		}
		return
	}

	if m.timedOut() {
		m.fail(ErrTimeout, fmt.Errorf("received %d of %d bytes", m.rxPos, m.rxLen))
	}
}
