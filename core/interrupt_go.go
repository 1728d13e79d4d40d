//go:build !tinygo

package core

import "sgcd/helpers/syncutil"

// criticalSection serializes handler and supervisor access on regular Go,
// where host goroutines stand in for the UART interrupts.
type criticalSection struct {
	mu syncutil.Mutex
}

func (c *criticalSection) enter() {
	c.mu.Lock()
}

func (c *criticalSection) exit() {
	c.mu.Unlock()
}
