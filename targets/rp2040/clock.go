//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040/RP2350 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// micros reads the low 32 bits of the 1MHz hardware timer
func micros() uint32 {
	return timerRAWL.Get()
}

// millisClock folds the microsecond counter into a millisecond counter
// that keeps counting across the 32-bit microsecond wrap.
type millisClock struct {
	last uint32
	rem  uint32
	ms   uint32
}

func (c *millisClock) now() uint32 {
	t := micros()
	c.rem += t - c.last
	c.last = t
	c.ms += c.rem / 1000
	c.rem %= 1000
	return c.ms
}
