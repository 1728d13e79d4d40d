package core

import "sgcd/protocol"

// Option modifies how SendCommand loads a command
type Option uint8

const (
	// OptNormal is a caller command subject to the busy and lifecycle gate
	OptNormal Option = 0

	// OptInternal marks a supervisor sequence step. It bypasses the busy,
	// lifecycle and ack gate but never the in-flight transmission check.
	OptInternal Option = 1 << 0

	// OptString appends the printable prefix of text and a terminator
	// after the header
	OptString Option = 1 << 1
)

// SendCommand loads header (and text for OptString) into the transport
// buffer and starts transmission. timeout is the number of ticks to wait for
// the display's answer; 0 means no answer is expected.
// Returns protocol.ErrBusy if the command cannot be accepted now.
func (c *Controller) SendCommand(header []byte, timeout uint16, opts Option, text []byte) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	return c.send(header, timeout, opts, text)
}

// send does the work of SendCommand. Callers hold the critical section.
func (c *Controller) send(header []byte, timeout uint16, opts Option, text []byte) error {
	if len(header) == 0 || len(header) >= BufferSize {
		return protocol.ErrInvalidCommand
	}

	internal := opts&OptInternal != 0
	if c.buf.position != 0 ||
		(!internal && (c.st.lifecycle <= StateShutdown || c.buf.busy || c.st.ack > NackReceived)) {
		c.record(TraceReject, header[0])
		return protocol.ErrBusy
	}

	c.buf.load(header, text, opts&OptString != 0, c.textGuard)
	c.buf.timeout = timeout
	if !internal {
		c.st.fromReset = false
	}
	c.st.ackTimer = 0
	c.st.ack = AckSending
	c.armTx(true)

	if c.st.sleeping {
		// position stays 0 until the display confirms the wake byte
		c.st.ackTimeout = WakeTimeout
		c.transmit(protocol.WakeByte)
		return nil
	}

	c.st.ackTimeout = timeout
	c.buf.position = 1
	c.transmit(c.buf.data[0])
	return nil
}
