package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgcd/protocol"
)

func TestInitializeHoldsReset(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, StateReset, h.state())
	assert.False(t, h.c.Snapshot().RxEnabled)
	// active low: asserted means the pin is driven low
	assert.Equal(t, []bool{false}, h.gpio.history)
}

func TestResetTimeline(t *testing.T) {
	h := newHarness(t)

	h.tick(1)
	snap := h.c.Snapshot()
	assert.Equal(t, StateResetHold, snap.State)
	assert.True(t, snap.Busy)
	assert.True(t, snap.FromReset)
	assert.Equal(t, []Event{EventReset}, h.rec.take())

	h.tick(ResetHoldTicks - 1)
	assert.Equal(t, StateResetHold, h.state())
	h.tick(1)
	assert.Equal(t, StateBootWait, h.state())
	assert.True(t, h.gpio.pins[resetPin], "reset released")

	h.tick(BootTicks - 1)
	assert.Equal(t, StateBootWait, h.state())
	h.tick(1)

	snap = h.c.Snapshot()
	assert.Equal(t, StateAutoBaud, snap.State)
	assert.False(t, snap.SleepPending)
	assert.False(t, snap.Sleeping)
	assert.Equal(t, DefaultContrast, snap.Contrast)
	assert.Equal(t, DefaultPenSize, snap.PenSize)
	assert.Equal(t, DefaultFont, snap.Font)
	assert.Empty(t, h.uart.sent)
}

func TestResetRestoresDefaults(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	require.NoError(t, h.c.SetContrast(0x03))
	require.NoError(t, h.c.SetPenSize(0x01))
	require.NoError(t, h.c.SetFont(FontSetting{ID: 2, Color0: 1, Color1: 2}))

	// unexpected byte while idle forces a reset
	h.ack()
	assert.Equal(t, StateReset, h.state())
	h.tick(1)

	snap := h.c.Snapshot()
	assert.Equal(t, byte(0x0F), snap.Contrast)
	assert.Equal(t, byte(0x00), snap.PenSize)
	assert.Equal(t, FontSetting{ID: 0x00, Color0: 0xFF, Color1: 0xFF}, snap.Font)
}

func TestBootSequence(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()

	expected := []byte{
		0x55,
		0x59, 0x01, 0x00,
		0x45,
		0x59, 0x02, 0x00,
		0x59, 0x03, 0x00,
	}
	assert.Equal(t, expected, h.takeSent())
	assert.Equal(t, []Event{EventReset, EventReset}, h.rec.take())

	snap := h.c.Snapshot()
	assert.False(t, snap.Busy)
	assert.Equal(t, ResultFromReset, h.c.LastResult())
	assert.Equal(t, 1, h.uart.maxFlight)
}

func TestAutoBaudTimeoutsResetOnce(t *testing.T) {
	h := newHarness(t)
	h.toAutoBaud()

	resets := 0
	prev := h.state()
	for attempt := 0; attempt < AutoBaudAttempts; attempt++ {
		h.tick(1)
		require.Equal(t, StateAutoBaudAck, h.state(), "attempt %d", attempt)
		h.drain()
		for i := 0; i < SequenceTimeout+1; i++ {
			h.tick(1)
			if s := h.state(); s == StateReset && prev != StateReset {
				resets++
			}
			prev = h.state()
		}
		require.Equal(t, 0, resets, "reset before attempts were exhausted")
	}

	snap := h.c.Snapshot()
	assert.Equal(t, StateAutoBaud, snap.State)
	assert.Equal(t, uint8(AutoBaudAttempts), snap.BaudAttempts)

	h.tick(1)
	assert.Equal(t, StateReset, h.state())
	h.tick(1)
	assert.Equal(t, StateResetHold, h.state())
	assert.Equal(t, uint8(0), h.c.Snapshot().BaudAttempts)
	assert.Equal(t, []byte{
		0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55, 0x55,
	}, h.takeSent())
}

func TestAutoBaudNackResets(t *testing.T) {
	h := newHarness(t)
	h.toAutoBaud()
	h.tick(1)
	h.drain()
	h.nack()
	h.tick(1)
	assert.Equal(t, StateReset, h.state())
}

func TestPowerUpSequence(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.takeSent()
	h.rec.take()

	h.toPowerUp()

	expected := []byte{
		0x59, 0x03, 0x01,
		0x59, 0x02, 0x0F,
		0x46, 0x00,
		0x70, 0x00,
		0x59, 0x01, 0x01,
	}
	assert.Equal(t, expected, h.takeSent())
	assert.Equal(t, []Event{EventPowerUp}, h.rec.take())
	assert.Equal(t, StatePowerUp, h.c.PowerState())
	assert.False(t, h.c.Snapshot().Busy)
	assert.Equal(t, ResultAck, h.c.LastResult())
}

func TestShutdownNackResets(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()
	h.rec.take()

	require.NoError(t, h.c.RequestPowerState(false))
	h.tick(1)
	for i := 0; i < 3; i++ {
		h.answer()
	}
	require.Equal(t, StateShutdownAck, h.state())

	h.drain()
	h.nack()
	h.tick(1)
	assert.Equal(t, StateReset, h.state())
	assert.Empty(t, h.rec.take())
}

func TestShutdownFromPowerUpNotifiesShutdown(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()
	h.rec.take()

	h.toShutdownFromPowerUp()
	assert.Equal(t, []Event{EventShutdown}, h.rec.take())
	assert.Equal(t, ResultAck, h.c.LastResult())
}

func TestRequestPowerState(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.c.RequestPowerState(true), protocol.ErrBusy)

	h.toShutdown()
	require.NoError(t, h.c.RequestPowerState(false))
	assert.Equal(t, StateShutdown, h.state(), "already shut down")

	require.NoError(t, h.c.RequestPowerState(true))
	assert.Equal(t, StateBeginPowerUp, h.state())
	assert.ErrorIs(t, h.c.RequestPowerState(false), protocol.ErrBusy)
}

func TestRequestPowerStateClaimsChannel(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.takeSent()

	require.NoError(t, h.c.RequestPowerState(true))
	assert.True(t, h.c.Snapshot().Busy)
	assert.Equal(t, ResultBusy, h.c.LastResult())

	text := protocol.TextHeader(0, 0, 0, 0xFFFF)
	err := h.c.SendCommand(text, SequenceTimeout, OptString, []byte("hi"))
	assert.ErrorIs(t, err, protocol.ErrBusy, "sequence requested but not started")
	assert.Empty(t, h.uart.sent)

	h.tick(1)
	for i := 0; i < 5; i++ {
		h.answer()
	}
	require.Equal(t, StatePowerUp, h.state())
	assert.Equal(t, byte(0x59), h.takeSent()[0], "sequence starts with the power command")

	require.NoError(t, h.c.SendCommand(text, SequenceTimeout, OptString, []byte("hi")))

	require.NoError(t, h.c.RequestPowerState(false))
	assert.True(t, h.c.Snapshot().Busy, "shutdown claims the channel too")
}

func TestSetContrastWhileShutdown(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.takeSent()
	h.rec.take()

	require.NoError(t, h.c.SetContrast(0x08))
	assert.Empty(t, h.uart.sent)
	assert.Equal(t, []Event{EventAck}, h.rec.take())
	assert.Equal(t, byte(0x08), h.c.Snapshot().Contrast)

	h.toPowerUp()
	assert.Equal(t, []byte{0x59, 0x02, 0x08}, h.takeSent()[3:6])
}

func TestSetContrastWhilePoweredUp(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()
	h.takeSent()
	h.rec.take()

	require.NoError(t, h.c.SetContrast(0x0A))
	assert.Equal(t, ResultPending, h.c.LastResult())
	assert.ErrorIs(t, h.c.SetPenSize(1), protocol.ErrBusy)

	h.drain()
	assert.Equal(t, ResultPending, h.c.LastResult())
	h.ack()

	assert.Equal(t, []byte{0x59, 0x02, 0x0A}, h.takeSent())
	assert.Equal(t, []Event{EventAck}, h.rec.take())
	assert.Equal(t, ResultAck, h.c.LastResult())
	assert.Equal(t, byte(0x0A), h.c.Snapshot().Contrast)
	assert.Equal(t, byte(0x00), h.c.Snapshot().PenSize, "rejected pen size not saved")

	require.NoError(t, h.c.SetPenSize(2))
	h.drain()
	h.nack()
	assert.Equal(t, []Event{EventNack}, h.rec.take())
	assert.Equal(t, ResultNack, h.c.LastResult())
}

func TestFontRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()
	h.takeSent()

	font := FontSetting{ID: 0x13, Color0: 0x12, Color1: 0x34}
	require.NoError(t, h.c.SetFont(font))
	h.drain()
	h.ack()
	assert.Equal(t, []byte{0x46, 0x03}, h.takeSent())
	assert.Equal(t, font, h.c.Font())

	h.toShutdownFromPowerUp()
	h.takeSent()
	h.toPowerUp()

	sent := h.takeSent()
	require.Len(t, sent, 13)
	assert.Equal(t, []byte{0x46, 0x03}, sent[6:8])
}

func TestSetFontUnchangedSkipsTransmit(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()
	h.takeSent()
	h.rec.take()

	require.NoError(t, h.c.SetFont(FontSetting{ID: 0, Color0: 0x01, Color1: 0x02}))
	assert.Empty(t, h.uart.sent)
	assert.Equal(t, []Event{EventAck}, h.rec.take())
	assert.Equal(t, byte(0x01), h.c.Font().Color0)
}

func TestUnexpectedByteForcesReset(t *testing.T) {
	tests := []struct {
		name  string
		b     byte
		flags uint8
	}{
		{"ack while resolved", protocol.RespAck, 0},
		{"nack while resolved", protocol.RespNack, 0},
		{"garbage", 0x42, 0},
		{"framing error", protocol.RespAck, protocol.RxFramingError},
		{"overrun", protocol.RespAck, protocol.RxOverrun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.toShutdown()
			h.toPowerUp()

			h.c.OnByteReceived(tt.b, tt.flags)
			assert.Equal(t, StateReset, h.state())

			trace := h.c.Trace()
			require.NotEmpty(t, trace)
			assert.Equal(t, TraceState, trace[len(trace)-1].Kind)
			assert.Equal(t, TraceViolation, trace[len(trace)-2].Kind)
		})
	}
}

func TestGarbageWhilePendingForcesReset(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()

	require.NoError(t, h.c.SetPenSize(3))
	h.drain()
	h.c.OnByteReceived(0x00, 0)
	assert.Equal(t, StateReset, h.state())
}

func TestReceiveIgnoredWhileDisabled(t *testing.T) {
	h := newHarness(t)
	h.ack()
	h.c.OnByteReceived(0x42, protocol.RxFramingError)
	assert.Equal(t, StateReset, h.state())
	assert.Empty(t, h.c.Trace())
}

func TestCommandTimeoutInPowerUpResets(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()
	h.toPowerUp()

	require.NoError(t, h.c.SetContrast(1))
	h.drain()
	h.tick(SequenceTimeout)
	assert.Equal(t, StatePowerUp, h.state())
	assert.Equal(t, ResultPending, h.c.LastResult())

	h.tick(1)
	assert.Equal(t, StateReset, h.state())
	snap := h.c.Snapshot()
	assert.Equal(t, AckTimeout, snap.Ack)
	assert.False(t, snap.RxEnabled)
}

func TestTimeoutResultInShutdown(t *testing.T) {
	h := newHarness(t)
	h.toShutdown()

	// only internal commands may be sent while shut down
	require.NoError(t, h.c.SendCommand(protocol.ClearScreen(), 2, OptInternal, nil))
	h.drain()
	h.tick(2)
	assert.Equal(t, ResultPending, h.c.LastResult())
	h.c.tickAckTimer()
	assert.Equal(t, ResultTimeout, h.c.LastResult())

	h.tick(1)
	assert.Equal(t, StateReset, h.state())
}

type faultyGPIO struct{}

func (faultyGPIO) ConfigureOutput(GPIOPin) error { return errors.New("pin 7 claimed") }
func (faultyGPIO) SetPin(GPIOPin, bool) error    { return errors.New("gpio fault") }

func TestResetLineErrorsReported(t *testing.T) {
	var lines []string
	h := newHarness(t, func(o *Options) {
		o.Reset = ResetLine{Driver: faultyGPIO{}, Pin: resetPin}
		o.Debug = func(s string) { lines = append(lines, s) }
	})

	assert.Contains(t, lines, "[SGC] reset line: pin 7 claimed")
	assert.Contains(t, lines, "[SGC] reset line: gpio fault")

	lines = nil
	h.toShutdown()
	assert.Contains(t, lines, "[SGC] reset line: gpio fault", "assert and release both reported")
	assert.Equal(t, StateShutdown, h.state(), "a failing reset GPIO does not stall the boot")
}
