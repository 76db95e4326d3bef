package golin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTransports(t *testing.T) {
	names := ListTransportNames()
	assert.Contains(t, names, "loopback")
	assert.Contains(t, names, "serial")
	assert.Contains(t, names, "tarm")
	assert.IsNonDecreasing(t, names)

	for _, info := range ListTransports() {
		assert.NotEmpty(t, info.Description, info.Name)
		assert.NotNil(t, info.New, info.Name)
	}
}

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport("LoopBack", nil)
	require.NoError(t, err)
	assert.Equal(t, "loopback", tr.Name())

	_, err = NewTransport("k-line", nil)
	assert.ErrorIs(t, err, ErrUnknownTransport)

	_, err = NewTransport("serial", &TransportConfig{})
	assert.Error(t, err, "serial needs a port")

	_, err = NewTransport("serial", &TransportConfig{Port: "/dev/ttyUSB0", BreakMode: "long"})
	assert.Error(t, err)

	_, err = NewTransport("tarm", &TransportConfig{Port: "/dev/ttyUSB0", TxEnable: TxEnableRTS})
	assert.Error(t, err, "tarm has no modem lines")
}

func TestRegisterTransportTwice(t *testing.T) {
	err := RegisterTransport(&TransportInfo{Name: "Loopback"})
	assert.Error(t, err)
}

func TestLoopbackClosed(t *testing.T) {
	lb := NewLoopback(nil)
	_, err := lb.Write([]byte{0x55})
	assert.ErrorIs(t, err, ErrPortClosed)
	assert.ErrorIs(t, lb.Break(), ErrPortClosed)

	require.NoError(t, lb.Open(9600))
	assert.Equal(t, 9600, lb.Baudrate())
	n, err := lb.Write([]byte{0x55, 0x50})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, lb.Buffered())

	buf := make([]byte, 1)
	n, err = lb.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(0x55), buf[0])
	assert.Equal(t, 1, lb.Buffered())
}

func TestStaticResponder(t *testing.T) {
	r := StaticResponder(V2, map[byte][]byte{0x10: {0x01, 0x02}})
	assert.Equal(t, []byte{0x01, 0x02, 0xAC}, r([]byte{SyncByte, 0x50}))
	assert.Nil(t, r([]byte{SyncByte, 0x11}))
	assert.Nil(t, r([]byte{SyncByte, 0x50, 0x01}))
}
