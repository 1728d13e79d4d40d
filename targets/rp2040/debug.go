//go:build rp2040 || rp2350

package main

import "machine"

var debugUART *machine.UART

// initDebugUART brings up UART1 on GPIO4 (TX) / GPIO5 (RX) at 115200 for
// controller trace output. Debug output stays off if it fails.
func initDebugUART() {
	u := machine.UART1
	err := u.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GPIO4,
		RX:       machine.GPIO5,
	})
	if err != nil {
		return
	}
	debugUART = u
}

// debugPrintln writes a line to the debug UART
func debugPrintln(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}
