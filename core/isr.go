package core

import "sgcd/protocol"

// OnByteSent is the transmit-complete handler. It is called once for every
// byte the UART finished shifting out.
func (c *Controller) OnByteSent() {
	c.cs.enter()
	defer c.cs.exit()

	if !c.buf.txArmed {
		return
	}

	switch {
	case c.buf.remaining() && !c.st.sleeping:
		b := c.buf.data[c.buf.position]
		c.buf.position++
		c.transmit(b)

	case c.st.sleeping:
		// wake byte is out, the ack timer now runs against WakeTimeout
		c.st.ack = AckWakeup

	default:
		c.armTx(false)
		c.buf.clear()
		if c.st.ackTimeout == 0 {
			c.st.ack = AckReceived
			c.notify(EventAck)
		} else {
			c.st.ack = AckPending
		}
		if c.st.sleepPending {
			c.st.sleepPending = false
			c.st.sleeping = true
		}
	}
}

// OnByteReceived is the receive handler. flags carries the UART's
// protocol.RxFramingError / protocol.RxOverrun bits for b.
func (c *Controller) OnByteReceived(b byte, flags uint8) {
	c.cs.enter()
	defer c.cs.exit()

	if !c.buf.rxEnabled {
		return
	}

	if flags != 0 || !protocol.IsResponse(b) || (c.st.ack != AckPending && c.st.ack != AckWakeup) {
		c.violation(&protocol.ProtocolError{Byte: b, Flags: flags, Unexpected: flags == 0 && protocol.IsResponse(b)})
		return
	}
	c.record(TraceRx, b)

	wasSleeping := c.st.sleeping
	if wasSleeping {
		// wake confirmation, start the real payload
		c.st.ackTimer = 0
		c.st.ack = AckSending
		c.st.ackTimeout = c.buf.timeout
		c.buf.position = 1
		c.transmit(c.buf.data[0])
	}

	notify := c.st.lifecycle.Steady() && !wasSleeping
	c.st.sleeping = false
	if b == protocol.RespAck {
		c.st.ack = AckReceived
		if notify {
			c.notify(EventAck)
		}
		return
	}
	c.st.ack = NackReceived
	if notify {
		c.notify(EventNack)
	}
}

// violation forces the supervisor back to RESET to resynchronize the link
func (c *Controller) violation(err *protocol.ProtocolError) {
	c.record(TraceViolation, err.Byte)
	c.debugf("[SGC] protocol violation: " + err.Error())
	c.setState(StateReset)
}
