//go:build rp2040 || rp2350

package main

import (
	"machine"

	"sgcd/core"
	"sgcd/targets/poll"
)

const (
	displayBaud = 9600
	resetPin    = core.GPIOPin(2)
)

func main() {
	// Clear any watchdog state left by a previous image
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	initDebugUART()

	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{
		BaudRate: displayBaud,
		TX:       machine.GPIO0,
		RX:       machine.GPIO1,
	}); err != nil {
		debugPrintln("[SGC] uart configure failed")
		return
	}

	pump := poll.New(uart)
	ctrl := core.New(core.Options{
		UART:  pump,
		Reset: core.ResetLine{Driver: NewRPGPIODriver(), Pin: resetPin},
		Debug: debugPrintln,
	})
	pump.Attach(ctrl)
	ctrl.Initialize()

	var clock millisClock
	now := clock.now()
	sched := core.NewScheduler(now)
	sched.Add(core.NewPeriodicTimer(now+core.TickPeriodMS, core.TickPeriodMS, ctrl.Tick))

	for {
		if err := pump.Poll(); err != nil {
			debugPrintln("[SGC] uart: " + err.Error())
		}
		sched.Dispatch(clock.now())
	}
}
