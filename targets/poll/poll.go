// Package poll drives a controller from a polled byte-stream UART, for
// targets where the UART interrupts are owned by the runtime.
package poll

import (
	"tinygo.org/x/drivers"

	"sgcd/core"
	"sgcd/protocol"
)

// Handler receives the transmit-complete and receive events
type Handler interface {
	OnByteSent()
	OnByteReceived(b byte, flags uint8)
}

// Pump implements core.UART on top of a drivers.UART. TransmitByte only
// queues the byte; Poll writes it and reports the completion. A Pump is
// not safe for concurrent use: call every method from the main loop.
type Pump struct {
	uart      drivers.UART
	h         Handler
	out       *protocol.FifoBuffer
	rx        [16]byte
	txEnabled bool

	// Overflows counts bytes dropped because the queue was full
	Overflows uint32
}

// New creates a pump for uart. Attach the controller before polling.
func New(uart drivers.UART) *Pump {
	return &Pump{
		uart: uart,
		out:  protocol.NewFifoBuffer(core.BufferSize + 1),
	}
}

// Attach sets the handler that receives UART events
func (p *Pump) Attach(h Handler) {
	p.h = h
}

// TransmitByte implements core.UART
func (p *Pump) TransmitByte(b byte) {
	if !p.out.Put(b) {
		p.Overflows++
	}
}

// SetTxInterrupt implements core.UART
func (p *Pump) SetTxInterrupt(enabled bool) {
	p.txEnabled = enabled
}

// TxEnabled reports whether the controller expects completion events
func (p *Pump) TxEnabled() bool {
	return p.txEnabled
}

// Poll writes queued bytes, reporting each completion, then delivers
// whatever the UART has received.
func (p *Pump) Poll() error {
	var b [1]byte
	for p.out.Read(b[:]) == 1 {
		if _, err := p.uart.Write(b[:]); err != nil {
			return err
		}
		if p.h != nil {
			p.h.OnByteSent()
		}
	}

	for p.uart.Buffered() > 0 {
		n, err := p.uart.Read(p.rx[:])
		for _, v := range p.rx[:n] {
			if p.h != nil {
				p.h.OnByteReceived(v, 0)
			}
		}
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return nil
}
