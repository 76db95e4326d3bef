//go:build !tinygo

package golin

import "sync"

// criticalSection guards the frame buffers against concurrent snapshots
type criticalSection struct {
	mu sync.Mutex
}

// enter locks the section, the returned func unlocks it
func (cs *criticalSection) enter() func() {
	cs.mu.Lock()
	return cs.mu.Unlock
}
