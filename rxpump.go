//go:build !tinygo

package golin

import (
	"context"
	"errors"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"
)

const rxPumpSize = 4096

// rxPump reads a blocking port on a goroutine and buffers the bytes so the
// Master can poll Buffered/Read without blocking.
type rxPump struct {
	mu     sync.Mutex
	buf    []byte
	err    error
	cancel context.CancelFunc
	errg   *errgroup.Group
}

func (p *rxPump) start(r io.Reader) {
	ctx, cancel := context.WithCancel(context.Background())
	errg, ctx := errgroup.WithContext(ctx)
	p.mu.Lock()
	p.buf = p.buf[:0]
	p.err = nil
	p.cancel = cancel
	p.errg = errg
	p.mu.Unlock()
	errg.Go(func() error {
		readBuf := make([]byte, 64)
		for ctx.Err() == nil {
			n, err := r.Read(readBuf)
			if n > 0 {
				p.push(readBuf[:n])
			}
			if err != nil {
				// some ports report a read timeout as EOF
				if errors.Is(err, io.EOF) {
					continue
				}
				if ctx.Err() != nil {
					return nil
				}
				p.mu.Lock()
				p.err = err
				p.mu.Unlock()
				return err
			}
		}
		return nil
	})
}

func (p *rxPump) push(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = append(p.buf, b...)
	if over := len(p.buf) - rxPumpSize; over > 0 {
		p.buf = append(p.buf[:0], p.buf[over:]...)
	}
}

// stop cancels the reader, closes the port and waits for the reader to exit
func (p *rxPump) stop(c io.Closer) error {
	p.mu.Lock()
	cancel, errg := p.cancel, p.errg
	p.cancel, p.errg = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return c.Close()
	}
	cancel()
	err := c.Close()
	if werr := errg.Wait(); werr != nil && err == nil {
		err = werr
	}
	return err
}

func (p *rxPump) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buf)
}

func (p *rxPump) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) == 0 && p.err != nil {
		return 0, p.err
	}
	n := copy(b, p.buf)
	p.buf = append(p.buf[:0], p.buf[n:]...)
	return n, nil
}

func (p *rxPump) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
}
