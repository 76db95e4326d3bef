package cmd

import (
	"context"
	"testing"

	"github.com/roffe/golin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{"0x10", 0x10, false},
		{"16", 0x10, false},
		{"0x3F", 0x3F, false},
		{"0x40", 0, true},
		{"0x100", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseData(t *testing.T) {
	data, err := parseData([]string{"01", "0xFF", "a"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xFF, 0x0A}, data)

	_, err = parseData([]string{"100"})
	assert.Error(t, err)

	_, err = parseData(make([]string, golin.MaxDataLen+1))
	assert.Error(t, err)
}

func TestTransportInfo(t *testing.T) {
	info, err := transportInfo("Loopback")
	require.NoError(t, err)
	assert.False(t, info.RequiresSerialPort)

	_, err = transportInfo("nope")
	assert.ErrorIs(t, err, golin.ErrUnknownTransport)
}

func TestRequestLoopback(t *testing.T) {
	rootCmd.SetArgs([]string{"request", "-t", "loopback", "0x10", "01", "02"})
	assert.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"pid", "0x3C"})
	assert.NoError(t, rootCmd.Execute())

	// loopback has no slave
	rootCmd.SetArgs([]string{"response", "-t", "loopback", "0x20", "2"})
	assert.Error(t, rootCmd.Execute())
}

func TestFrameHelpers(t *testing.T) {
	lb := golin.NewLoopback(nil)
	lb.Responder = golin.StaticResponder(golin.V1, map[byte][]byte{0x20: {0x12, 0x34}})
	m, err := golin.New(lb)
	require.NoError(t, err)
	require.NoError(t, m.Open(golin.DefaultBaudrate))
	ctx := context.Background()

	f, err := sendRequest(ctx, m, golin.V2, []string{"0x10", "01", "02"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, f.Data)

	// back to back without reset by the caller
	f, err = receiveResponse(ctx, m, golin.V1, []string{"0x20", "2"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, f.Data)

	_, err = receiveResponse(ctx, m, golin.V2, []string{"0x20", "2"})
	assert.ErrorIs(t, err, golin.ErrChecksumMismatch)

	_, err = sendRequest(ctx, m, golin.V2, nil)
	assert.Error(t, err)
	_, err = receiveResponse(ctx, m, golin.V2, []string{"0x20", "9"})
	assert.Error(t, err)
}

func TestShellVersion(t *testing.T) {
	m, err := golin.New(golin.NewLoopback(nil), golin.WithName("Bench"))
	require.NoError(t, err)
	s := &linShell{m: m, version: golin.V2}
	assert.Equal(t, "Bench LIN2.x > ", s.prompt())

	require.NoError(t, s.setVersion([]string{"1"}))
	assert.Equal(t, golin.V1, s.version)
	assert.Error(t, s.setVersion([]string{"3"}))
	assert.Error(t, s.setVersion(nil))
}

func TestTimeoutFactorFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup(flagTimeoutFactor)
	require.NotNil(t, f)
	assert.Equal(t, "1.5", f.DefValue)
	assert.Contains(t, f.Usage, "USB")

	rootCmd.SetArgs([]string{"request", "-t", "loopback", "--" + flagTimeoutFactor, "8", "0x10", "01"})
	assert.NoError(t, rootCmd.Execute())
}
