//go:build !tinygo

package golin

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader returns one step per Read and then blocks until closed
type scriptedReader struct {
	mu     sync.Mutex
	steps  []readStep
	closed chan struct{}
	closes int
}

type readStep struct {
	data []byte
	err  error
}

func newScriptedReader(steps ...readStep) *scriptedReader {
	return &scriptedReader{steps: steps, closed: make(chan struct{})}
}

func (s *scriptedReader) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(s.steps) == 0 {
		s.mu.Unlock()
		<-s.closed
		return 0, errors.New("port closed")
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	s.mu.Unlock()
	return copy(p, step.data), step.err
}

func (s *scriptedReader) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closes == 0 {
		close(s.closed)
	}
	s.closes++
	return nil
}

func (s *scriptedReader) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func pumpErr(p *rxPump) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func readAll(t *testing.T, p *rxPump) []byte {
	t.Helper()
	var out []byte
	buf := make([]byte, 100)
	for p.Buffered() > 0 {
		n, err := p.Read(buf)
		require.NoError(t, err)
		out = append(out, buf[:n]...)
	}
	return out
}

func TestRxPumpPush(t *testing.T) {
	tests := []struct {
		name   string
		chunks [][]byte
		want   []byte
	}{
		{"empty", nil, nil},
		{"single", [][]byte{{0x55, 0x80}}, []byte{0x55, 0x80}},
		{"appends", [][]byte{{0x01}, {0x02, 0x03}}, []byte{0x01, 0x02, 0x03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p rxPump
			for _, c := range tt.chunks {
				p.push(c)
			}
			assert.Equal(t, len(tt.want), p.Buffered())
			assert.Equal(t, tt.want, readAll(t, &p))
		})
	}
}

func TestRxPumpOverflowKeepsNewest(t *testing.T) {
	var p rxPump
	data := make([]byte, rxPumpSize+904)
	for i := range data {
		data[i] = byte(i)
	}
	p.push(data[:1000])
	p.push(data[1000:])

	require.Equal(t, rxPumpSize, p.Buffered())
	assert.Equal(t, data[904:], readAll(t, &p))
}

func TestRxPumpPartialRead(t *testing.T) {
	var p rxPump
	p.push([]byte{0x01, 0x02, 0x03})

	buf := make([]byte, 2)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, buf[:n])
	assert.Equal(t, 1, p.Buffered())

	p.reset()
	assert.Equal(t, 0, p.Buffered())
	n, err = p.Read(buf)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRxPumpEOFIsTimeout(t *testing.T) {
	r := newScriptedReader(
		readStep{err: io.EOF},
		readStep{data: []byte{0x55}, err: io.EOF},
		readStep{err: io.EOF},
		readStep{data: []byte{0x80, 0x00}},
	)
	var p rxPump
	p.start(r)

	require.Eventually(t, func() bool { return p.Buffered() == 3 }, time.Second, time.Millisecond)
	assert.Equal(t, []byte{0x55, 0x80, 0x00}, readAll(t, &p))
	assert.NoError(t, p.stop(r))
	assert.Equal(t, 1, r.Closes())
}

func TestRxPumpReadError(t *testing.T) {
	readErr := errors.New("device disconnected")
	r := newScriptedReader(
		readStep{data: []byte{0x01, 0x02}},
		readStep{data: []byte{0x03}, err: readErr},
	)
	var p rxPump
	p.start(r)

	require.Eventually(t, func() bool { return p.Buffered() == 3 && pumpErr(&p) != nil }, time.Second, time.Millisecond)
	// buffered bytes come first, then the error
	buf := make([]byte, 8)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])

	n, err = p.Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, readErr)

	assert.ErrorIs(t, p.stop(r), readErr, "stop reports the reader error")
}

func TestRxPumpStop(t *testing.T) {
	pr, pw := io.Pipe()
	var p rxPump
	p.start(pr)

	go pw.Write([]byte{0x55, 0xC1})
	require.Eventually(t, func() bool { return p.Buffered() == 2 }, time.Second, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- p.stop(pr) }()
	select {
	case err := <-done:
		assert.NoError(t, err, "closing the port under a blocked read is not an error")
	case <-time.After(time.Second):
		t.Fatal("stop did not join the reader")
	}

	_, err := pw.Write([]byte{0x00})
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, 2, p.Buffered())

	assert.NoError(t, p.stop(pr), "second stop only closes")
}

func TestRxPumpStopWithoutStart(t *testing.T) {
	r := newScriptedReader()
	var p rxPump
	assert.NoError(t, p.stop(r))
	assert.Equal(t, 1, r.Closes())
}

func TestRxPumpRestart(t *testing.T) {
	readErr := errors.New("read failed")
	r := newScriptedReader(readStep{err: readErr})
	var p rxPump
	p.start(r)
	require.Eventually(t, func() bool {
		_, err := p.Read(make([]byte, 1))
		return err != nil
	}, time.Second, time.Millisecond)
	assert.ErrorIs(t, p.stop(r), readErr)

	r = newScriptedReader(readStep{data: []byte{0x42}})
	p.start(r)
	require.Eventually(t, func() bool { return p.Buffered() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []byte{0x42}, readAll(t, &p))
	assert.NoError(t, p.stop(r))
}
