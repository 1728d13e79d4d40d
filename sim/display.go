// Package sim models an SGC display module at the byte level. It answers
// like the real hardware and can be scripted to misbehave, so the controller
// and the host stack run without a display attached.
package sim

import (
	"io"

	"github.com/rs/zerolog/log"

	"sgcd/core"
	"sgcd/helpers/syncutil"
	"sgcd/protocol"
)

// Reply overrides how the display answers a command
type Reply uint8

const (
	ReplyAck     Reply = iota // normal answer
	ReplyNack                 // refuse the command
	ReplySilent               // never answer
	ReplyGarbage              // answer with an undefined byte
)

// GarbageByte is sent for ReplyGarbage
const GarbageByte = 0x3F

const outputQueue = 256

// State is a snapshot of the simulated hardware
type State struct {
	InReset    bool
	BaudLocked bool
	Powered    bool
	DisplayOn  bool
	Sleeping   bool
	Contrast   byte
	Font       byte
	PenSize    byte
	Clears     int
	Commands   [][]byte
	Texts      []string
}

// Display is a simulated SGC module. Write feeds it bytes from the host,
// Read returns its answers.
type Display struct {
	mu     syncutil.Mutex
	rx     *protocol.FifoBuffer
	state  State
	script map[byte][]Reply
	out    chan byte
	done   chan struct{}
	closed bool
}

// New creates a display held out of reset, waiting for auto-baud
func New() *Display {
	return &Display{
		rx:     protocol.NewFifoBuffer(core.BufferSize * 2),
		state:  State{Contrast: 0x0F},
		script: make(map[byte][]Reply),
		out:    make(chan byte, outputQueue),
		done:   make(chan struct{}),
	}
}

// Script queues replies for the next commands starting with op
func (d *Display) Script(op byte, replies ...Reply) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script[op] = append(d.script[op], replies...)
}

// SetReset drives the reset input. While held the module ignores the line
// and forgets its settings.
func (d *Display) SetReset(asserted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if asserted && !d.state.InReset {
		d.state = State{InReset: true, Contrast: 0x0F, Commands: d.state.Commands, Texts: d.state.Texts}
		d.rx.Reset()
	}
	d.state.InReset = asserted
}

// Snapshot returns a copy of the simulated hardware state
func (d *Display) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	s.Commands = append([][]byte(nil), d.state.Commands...)
	s.Texts = append([]string(nil), d.state.Texts...)
	return s
}

// Receive processes one byte from the host
func (d *Display) Receive(b byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.state.InReset:
		return
	case !d.state.BaudLocked:
		if b == protocol.OpAutoBaud {
			d.state.BaudLocked = true
			d.reply(protocol.RespAck)
		}
		return
	case d.state.Sleeping:
		// any byte wakes the module, which confirms with ACK
		d.state.Sleeping = false
		d.reply(protocol.RespAck)
		return
	}

	if !d.rx.Put(b) {
		log.Warn().Msg("sim: receive buffer overflow")
		d.rx.Reset()
		d.reply(protocol.RespNack)
		return
	}
	d.frame()
}

// frame executes the buffered command once it is complete
func (d *Display) frame() {
	op, _ := d.rx.Peek(0)

	n := protocol.CommandLength(op)
	if hdr := protocol.StringHeaderLength(op); hdr > 0 {
		last, _ := d.rx.Peek(d.rx.Available() - 1)
		if d.rx.Available() <= hdr || last != protocol.StringTerminator {
			return
		}
		n = d.rx.Available()
	}
	if n == 0 {
		d.rx.Reset()
		d.reply(protocol.RespNack)
		return
	}
	if d.rx.Available() < n {
		return
	}

	cmd := make([]byte, n)
	d.rx.Read(cmd)
	d.state.Commands = append(d.state.Commands, cmd)
	d.execute(cmd)
}

func (d *Display) execute(cmd []byte) {
	r := d.nextReply(cmd[0])
	if r != ReplyAck {
		d.misbehave(r)
		return
	}

	switch cmd[0] {
	case protocol.OpAutoBaud:
	case protocol.OpControl:
		switch cmd[1] {
		case protocol.CtlDisplay:
			d.state.DisplayOn = cmd[2] != 0
		case protocol.CtlContrast:
			d.state.Contrast = cmd[2]
		case protocol.CtlPower:
			d.state.Powered = cmd[2] != 0
		default:
			d.reply(protocol.RespNack)
			return
		}
	case protocol.OpClearScreen:
		d.state.Clears++
	case protocol.OpSetFont:
		d.state.Font = cmd[1]
	case protocol.OpPenSize:
		d.state.PenSize = cmd[1]
	case protocol.OpSleep:
		// the module goes to sleep without answering
		d.state.Sleeping = true
		return
	case protocol.OpTextString, protocol.OpGfxString:
		hdr := protocol.StringHeaderLength(cmd[0])
		d.state.Texts = append(d.state.Texts, string(cmd[hdr:len(cmd)-1]))
	}
	d.reply(protocol.RespAck)
}

func (d *Display) nextReply(op byte) Reply {
	q := d.script[op]
	if len(q) == 0 {
		return ReplyAck
	}
	d.script[op] = q[1:]
	return q[0]
}

func (d *Display) misbehave(r Reply) {
	switch r {
	case ReplyNack:
		d.reply(protocol.RespNack)
	case ReplyGarbage:
		d.reply(GarbageByte)
	}
}

func (d *Display) reply(b byte) {
	select {
	case d.out <- b:
	default:
		log.Warn().Msg("sim: output queue full, answer lost")
	}
}

// Pending returns the answers produced so far without blocking
func (d *Display) Pending() []byte {
	var out []byte
	for {
		select {
		case b := <-d.out:
			out = append(out, b)
		default:
			return out
		}
	}
}

// Write implements io.Writer; every byte goes through Receive
func (d *Display) Write(p []byte) (int, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return 0, io.ErrClosedPipe
	}

	for _, b := range p {
		d.Receive(b)
	}
	return len(p), nil
}

// Read implements io.Reader. It blocks until an answer is available.
func (d *Display) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	select {
	case b := <-d.out:
		p[0] = b
	case <-d.done:
		return 0, io.EOF
	}

	n := 1
	for n < len(p) {
		select {
		case b := <-d.out:
			p[n] = b
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

// Flush is a no-op; answers are queued as soon as they are produced
func (d *Display) Flush() error {
	return nil
}

// Close unblocks pending reads
func (d *Display) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.closed {
		d.closed = true
		close(d.done)
	}
	return nil
}

// ResetInput adapts the module's reset input to a core.GPIODriver.
// SGC modules reset on a low level.
func (d *Display) ResetInput() core.GPIODriver {
	return resetInput{d}
}

type resetInput struct {
	d *Display
}

func (r resetInput) ConfigureOutput(core.GPIOPin) error {
	return nil
}

func (r resetInput) SetPin(_ core.GPIOPin, value bool) error {
	r.d.SetReset(!value)
	return nil
}
