package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roffe/golin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMaster(t *testing.T, lb *golin.Loopback) *golin.Master {
	t.Helper()
	m, err := golin.New(lb, golin.WithName("Scheduler"))
	require.NoError(t, err)
	require.NoError(t, m.Open(golin.DefaultBaudrate))
	return m
}

func TestRunnerCycles(t *testing.T) {
	lb := golin.NewLoopback(nil)
	lb.Responder = golin.StaticResponder(golin.V2, map[byte][]byte{0x20: {0xAA, 0x55}})
	m := newMaster(t, lb)

	entries, err := ParseEntries([]string{"req:0x10:0102", "resp:0x20:2"})
	require.NoError(t, err)

	var results []Result
	r := &Runner{
		Master:   m,
		Entries:  entries,
		OnResult: func(res Result) { results = append(results, res) },
	}
	require.NoError(t, r.Run(context.Background(), 3))
	require.Len(t, results, 6)
	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.Equal(t, golin.ErrNone, res.Flags)
		assert.Equal(t, 1, res.Attempts)
	}
	assert.Equal(t, []byte{0x01, 0x02}, results[0].Frame.Data)
	assert.Equal(t, []byte{0xAA, 0x55}, results[1].Frame.Data)
	assert.Equal(t, 6, lb.Breaks())
}

func TestRunnerRetry(t *testing.T) {
	lb := golin.NewLoopback(nil)
	answer := golin.StaticResponder(golin.V2, map[byte][]byte{0x21: {0x01}})
	calls := 0
	// slave misses the first header
	lb.Responder = func(written []byte) []byte {
		calls++
		if calls == 1 {
			return nil
		}
		return answer(written)
	}
	m := newMaster(t, lb)

	var retries []uint
	var got Result
	r := &Runner{
		Master:     m,
		Entries:    []Entry{{Type: golin.SlaveResponse, Version: golin.V2, ID: 0x21, Length: 1}},
		Retries:    2,
		RetryDelay: time.Millisecond,
		OnResult:   func(res Result) { got = res },
		OnRetry:    func(e Entry, attempt uint, err error) { retries = append(retries, attempt) },
	}
	require.NoError(t, r.Run(context.Background(), 1))
	assert.NoError(t, got.Err)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, []uint{1}, retries)
	assert.Equal(t, []byte{0x01}, got.Frame.Data)
	assert.Equal(t, golin.StateIdle, m.State())
}

func TestRunnerGivesUp(t *testing.T) {
	lb := golin.NewLoopback(nil)
	m := newMaster(t, lb)

	var results []Result
	r := &Runner{
		Master:     m,
		Entries:    []Entry{{Type: golin.SlaveResponse, Version: golin.V1, ID: 0x22, Length: 4}, {Type: golin.MasterRequest, Version: golin.V1, ID: 0x01}},
		Retries:    1,
		RetryDelay: time.Millisecond,
		OnResult:   func(res Result) { results = append(results, res) },
	}
	require.NoError(t, r.Run(context.Background(), 1))
	require.Len(t, results, 2, "failed frame does not stop the table")

	assert.Equal(t, 2, results[0].Attempts)
	assert.Equal(t, golin.ErrTimeout, results[0].Flags)
	assert.True(t, errors.Is(results[0].Err, golin.ErrFrameTimeout))
	assert.NoError(t, results[1].Err)
}

func TestRunnerCancel(t *testing.T) {
	lb := golin.NewLoopback(nil)
	m := newMaster(t, lb)

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	r := &Runner{
		Master:  m,
		Entries: []Entry{{Type: golin.MasterRequest, Version: golin.V2, ID: 0x01, Delay: time.Millisecond}},
		OnResult: func(Result) {
			n++
			if n == 5 {
				cancel()
			}
		},
	}
	err := r.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, n)
}

func TestRunnerInvalid(t *testing.T) {
	assert.Error(t, (&Runner{}).Run(context.Background(), 1))
	m := newMaster(t, golin.NewLoopback(nil))
	assert.Error(t, (&Runner{Master: m}).Run(context.Background(), 1))
}
