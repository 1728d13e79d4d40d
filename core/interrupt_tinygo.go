//go:build tinygo

package core

import "runtime/interrupt"

// criticalSection masks interrupts while shared state is touched
type criticalSection struct {
	state interrupt.State
}

func (c *criticalSection) enter() {
	c.state = interrupt.Disable()
}

func (c *criticalSection) exit() {
	interrupt.Restore(c.state)
}
