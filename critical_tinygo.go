//go:build tinygo

package golin

import "runtime/interrupt"

// criticalSection disables interrupts so an ISR driven receiver never
// observes a half written frame
type criticalSection struct{}

func (cs *criticalSection) enter() func() {
	state := interrupt.Disable()
	return func() {
		interrupt.Restore(state)
	}
}
