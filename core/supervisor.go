package core

import "sgcd/protocol"

// Tick runs the periodic supervisor. Call it every TickPeriodMS.
func (c *Controller) Tick() {
	c.cs.enter()
	defer c.cs.exit()

	c.ticks++
	c.tickAckTimer()
	c.tickIdle()
	c.step()
}

// tickAckTimer enforces the answer timeout of the outstanding command
func (c *Controller) tickAckTimer() {
	if c.st.ack == AckPending || c.st.ack == AckWakeup {
		c.st.ackTimer++
	}
	if c.st.ackTimer <= c.st.ackTimeout {
		return
	}

	c.st.ackTimer = 0
	c.buf.rxEnabled = false
	c.record(TraceTimeout, byte(c.st.ack))
	if c.st.ack == AckWakeup {
		c.debugf("[SGC] display did not wake up")
		c.setState(StateReset)
		return
	}
	c.st.ack = AckTimeout
}

// tickIdle counts powered-up minutes and starts a shutdown at the limit
func (c *Controller) tickIdle() {
	if !c.idleEnabled || c.st.lifecycle != StatePowerUp {
		return
	}
	c.st.idleTicks++
	if c.st.idleTicks < TicksPerMinute {
		return
	}
	c.st.idleTicks = 0
	c.st.idleMinutes++
	if c.st.idleLimit != 0 && c.st.idleMinutes >= c.st.idleLimit {
		c.debugf("[SGC] idle for " + utoa(uint32(c.st.idleMinutes)) + " min, shutting down")
		c.setState(StateBeginShutdown)
	}
}

// awaiting reports whether the outstanding command has no result yet. A
// payload still draining after a wake handshake counts as awaiting.
func (c *Controller) awaiting() bool {
	return c.st.ack.Awaiting() || c.buf.position != 0
}

// shutdownSequence and powerUpSequence map each sequence state to the
// command it issues once the previous command was acknowledged.
var shutdownSequence = map[State]func(c *Controller) []byte{
	StateDisplayOffAck:   func(*Controller) []byte { return protocol.ClearScreen() },
	StateClearAck:        func(*Controller) []byte { return protocol.Contrast(0) },
	StateContrastZeroAck: func(*Controller) []byte { return protocol.Power(false) },
}

var powerUpSequence = map[State]func(c *Controller) []byte{
	StatePowerUpAck:  func(c *Controller) []byte { return protocol.Contrast(c.st.contrast) },
	StateContrastAck: func(c *Controller) []byte { return protocol.Font(c.st.font.ID) },
	StateFontAck:     func(c *Controller) []byte { return protocol.PenSize(c.st.penSize) },
	StatePenSizeAck:  func(*Controller) []byte { return protocol.DisplayPower(true) },
}

func (c *Controller) step() {
	switch s := c.st.lifecycle; s {
	case StateReset:
		c.enterReset()

	case StateResetHold:
		c.st.timer++
		if c.st.timer == ResetHoldTicks {
			c.driveReset(false)
			c.st.timer = 0
			c.setState(StateBootWait)
		}

	case StateBootWait:
		c.st.timer++
		if c.st.timer == BootTicks {
			c.setState(StateAutoBaud)
		}

	case StateAutoBaud:
		if c.st.baudAttempts < AutoBaudAttempts {
			c.buf.rxEnabled = true
			if c.send(protocol.AutoBaud(), SequenceTimeout, OptInternal, nil) == nil {
				c.setState(StateAutoBaudAck)
				return
			}
		}
		c.debugf("[SGC] auto-baud failed after " + utoa(uint32(c.st.baudAttempts)) + " attempts")
		c.setState(StateReset)

	case StateAutoBaudAck:
		if c.awaiting() {
			return
		}
		switch c.st.ack {
		case AckReceived:
			// init always settles into SHUTDOWN first
			c.setState(StateBeginShutdown)
		case AckTimeout:
			c.st.baudAttempts++
			c.setState(StateAutoBaud)
		default:
			c.setState(StateReset)
		}

	case StateBeginShutdown:
		c.beginSequence(protocol.DisplayPower(false), StateDisplayOffAck)

	case StateDisplayOffAck, StateClearAck, StateContrastZeroAck:
		c.sequenceStep(shutdownSequence[s], s+1)

	case StateShutdownAck:
		if c.awaiting() {
			return
		}
		if c.st.ack != AckReceived {
			c.setState(StateReset)
			return
		}
		c.setState(StateShutdown)
		c.buf.busy = false
		if c.st.fromReset {
			c.notify(EventReset)
		} else {
			c.notify(EventShutdown)
		}

	case StateBeginPowerUp:
		c.beginSequence(protocol.Power(true), StatePowerUpAck)

	case StatePowerUpAck, StateContrastAck, StateFontAck, StatePenSizeAck:
		c.sequenceStep(powerUpSequence[s], s+1)

	case StateDisplayOnAck:
		if c.awaiting() {
			return
		}
		if c.st.ack != AckReceived {
			c.setState(StateReset)
			return
		}
		c.setState(StatePowerUp)
		c.buf.busy = false
		c.notify(EventPowerUp)

	case StateShutdown, StatePowerUp:
		// an answer that never came means the link is out of sync
		if c.st.ack == AckTimeout {
			c.setState(StateReset)
		}

	default:
		c.setState(StateReset)
	}
}

// enterReset runs the RESET state: once any transmission has drained, put
// the display into reset and restore the defaults.
func (c *Controller) enterReset() {
	c.buf.busy = true
	c.buf.rxEnabled = false
	if c.buf.position != 0 {
		return
	}

	c.armTx(false)
	c.buf.clear()
	c.driveReset(true)
	c.st.baudAttempts = 0
	c.st.ack = AckReceived
	c.st.ackTimer = 0
	c.st.contrast = DefaultContrast
	c.st.penSize = DefaultPenSize
	c.st.font = DefaultFont
	c.st.timer = 0
	c.st.sleepPending = false
	c.st.sleeping = false
	c.st.fromReset = true
	c.setState(StateResetHold)
	c.notify(EventReset)
}

// beginSequence starts a shutdown or power-up sequence. A defined prior
// result, ACK or NACK, is enough to proceed.
func (c *Controller) beginSequence(cmd []byte, next State) {
	c.buf.busy = true
	if c.awaiting() {
		return
	}
	if c.st.ack <= NackReceived && c.send(cmd, SequenceTimeout, OptInternal, nil) == nil {
		c.setState(next)
		return
	}
	c.setState(StateReset)
}

// sequenceStep issues the next command of a sequence once the previous one
// was acknowledged. Anything but ACK restarts from RESET.
func (c *Controller) sequenceStep(build func(*Controller) []byte, next State) {
	if c.awaiting() {
		return
	}
	if c.st.ack == AckReceived && c.send(build(c), SequenceTimeout, OptInternal, nil) == nil {
		c.setState(next)
		return
	}
	c.setState(StateReset)
}
