package core

import "sgcd/protocol"

// Caller-facing commands. Each one resets the idle countdown.

// RequestPowerState starts a power-up (on) or shutdown sequence. It is
// accepted only while the display rests in SHUTDOWN or POWERUP; asking for
// the current state is a no-op.
func (c *Controller) RequestPowerState(on bool) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	if !c.st.lifecycle.Steady() {
		return protocol.ErrBusy
	}
	c.st.fromReset = false
	switch {
	case on && c.st.lifecycle != StatePowerUp:
		c.buf.busy = true
		c.setState(StateBeginPowerUp)
	case !on && c.st.lifecycle != StateShutdown:
		c.buf.busy = true
		c.setState(StateBeginShutdown)
	}
	return nil
}

// PowerState returns the current lifecycle state
func (c *Controller) PowerState() State {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	return c.st.lifecycle
}

// LastResult reports the outcome of the last command. Busy while a sequence
// owns the channel, FromReset when the display was reset since the last
// caller command.
func (c *Controller) LastResult() Result {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	switch {
	case c.buf.busy:
		return ResultBusy
	case c.st.ack == AckTimeout:
		return ResultTimeout
	case c.st.fromReset:
		return ResultFromReset
	case c.awaiting():
		return ResultPending
	case c.st.ack == NackReceived:
		return ResultNack
	default:
		return ResultAck
	}
}

// SetContrast sends the contrast level when powered up, otherwise it is only
// saved for the next power-up and acknowledged right away.
func (c *Controller) SetContrast(level byte) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	if err := c.sendOrAck(protocol.Contrast(level), true); err != nil {
		return err
	}
	c.st.contrast = level
	return nil
}

// SetPenSize sends the pen size when powered up and saves it for restoration
func (c *Controller) SetPenSize(size byte) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	if err := c.sendOrAck(protocol.PenSize(size), true); err != nil {
		return err
	}
	c.st.penSize = size
	return nil
}

// SetFont sends the font id when powered up and it changed. The colours are
// only stored for text helpers.
func (c *Controller) SetFont(f FontSetting) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	if err := c.sendOrAck(protocol.Font(f.ID), f.ID != c.st.font.ID); err != nil {
		return err
	}
	c.st.font = f
	return nil
}

// Font returns the saved font setting
func (c *Controller) Font() FontSetting {
	c.cs.enter()
	defer c.cs.exit()
	return c.st.font
}

// Sleep puts the display to sleep once the command has been sent. The next
// command wakes it with a wake byte first.
func (c *Controller) Sleep(mode byte) error {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	if err := c.send(protocol.Sleep(mode), 0, OptNormal, nil); err != nil {
		return err
	}
	c.st.sleepPending = true
	return nil
}

// SetIdleTimeout sets the number of powered-up minutes without a command
// before the display is shut down. 0 disables the countdown.
func (c *Controller) SetIdleTimeout(minutes uint8) {
	c.cs.enter()
	defer c.cs.exit()

	c.touch()
	c.st.idleLimit = minutes
}

// sendOrAck transmits cmd when powered up and needed, otherwise it
// acknowledges immediately without touching the hardware.
func (c *Controller) sendOrAck(cmd []byte, needed bool) error {
	if c.st.lifecycle == StatePowerUp && needed {
		return c.send(cmd, SequenceTimeout, OptNormal, nil)
	}
	c.notify(EventAck)
	return nil
}
