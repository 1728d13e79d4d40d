package core

// Supervisor timing, all in 20 ms ticks
const (
	TickPeriodMS     = 20
	TicksPerMinute   = 60000 / TickPeriodMS
	ResetHoldTicks   = 5   // 100 ms reset pulse
	BootTicks        = 100 // 2 s display boot time
	SequenceTimeout  = 25  // 500 ms per sequence step
	WakeTimeout      = 250 // 5 s to wake a sleeping display
	AutoBaudAttempts = 10
)

// TicksFromMS converts milliseconds to supervisor ticks, rounding up
func TicksFromMS(ms uint32) uint16 {
	return uint16((ms + TickPeriodMS - 1) / TickPeriodMS)
}

// timeBefore compares wrapping millisecond timestamps
func timeBefore(a, b uint32) bool {
	return int32(a-b) < 0
}
