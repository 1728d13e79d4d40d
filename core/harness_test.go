package core

import (
	"github.com/stretchr/testify/require"

	"sgcd/protocol"
)

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins    map[GPIOPin]bool
	history []bool
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	m.history = append(m.history, value)
	return nil
}

// mockUART records transmitted bytes. Completion is delivered by the test
// through drain, never from inside TransmitByte.
type mockUART struct {
	sent      []byte
	inFlight  int
	maxFlight int
	txEnabled bool
}

func (u *mockUART) TransmitByte(b byte) {
	u.sent = append(u.sent, b)
	u.inFlight++
	if u.inFlight > u.maxFlight {
		u.maxFlight = u.inFlight
	}
}

func (u *mockUART) SetTxInterrupt(enabled bool) {
	u.txEnabled = enabled
}

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Notify(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) take() []Event {
	ev := r.events
	r.events = nil
	return ev
}

const resetPin = GPIOPin(7)

type harness struct {
	t    require.TestingT
	c    *Controller
	uart *mockUART
	gpio *MockGPIODriver
	rec  *eventRecorder
}

func newHarness(t require.TestingT, configure ...func(*Options)) *harness {
	h := &harness{
		t:    t,
		uart: &mockUART{},
		gpio: NewMockGPIODriver(),
		rec:  &eventRecorder{},
	}
	opts := Options{
		UART:     h.uart,
		Reset:    ResetLine{Driver: h.gpio, Pin: resetPin},
		Notifier: h.rec,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h.c = New(opts)
	h.c.Initialize()
	return h
}

// drain completes every byte in flight, including bytes queued by earlier completions
func (h *harness) drain() {
	for h.uart.inFlight > 0 {
		h.uart.inFlight--
		h.c.OnByteSent()
	}
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.c.Tick()
	}
}

func (h *harness) ack() {
	h.c.OnByteReceived(protocol.RespAck, 0)
}

func (h *harness) nack() {
	h.c.OnByteReceived(protocol.RespNack, 0)
}

// answer completes the outstanding command, answers it and runs one tick
func (h *harness) answer() {
	h.drain()
	h.ack()
	h.tick(1)
}

func (h *harness) takeSent() []byte {
	s := h.uart.sent
	h.uart.sent = nil
	return s
}

func (h *harness) state() State {
	return h.c.Snapshot().State
}

// toAutoBaud runs the reset and boot timers
func (h *harness) toAutoBaud() {
	h.tick(1)
	h.tick(ResetHoldTicks)
	h.tick(BootTicks)
	require.Equal(h.t, StateAutoBaud, h.state())
}

// toShutdown boots the display into SHUTDOWN with every command acknowledged
func (h *harness) toShutdown() {
	h.toAutoBaud()
	h.tick(1)
	require.Equal(h.t, StateAutoBaudAck, h.state())
	h.answer()
	require.Equal(h.t, StateBeginShutdown, h.state())
	h.tick(1)
	for i := 0; i < 4; i++ {
		h.answer()
	}
	require.Equal(h.t, StateShutdown, h.state())
}

// toPowerUp runs a full power-up sequence from SHUTDOWN
func (h *harness) toPowerUp() {
	require.NoError(h.t, h.c.RequestPowerState(true))
	h.tick(1)
	for i := 0; i < 5; i++ {
		h.answer()
	}
	require.Equal(h.t, StatePowerUp, h.state())
}

// toShutdownFromPowerUp runs a full shutdown sequence from POWERUP
func (h *harness) toShutdownFromPowerUp() {
	require.NoError(h.t, h.c.RequestPowerState(false))
	h.tick(1)
	for i := 0; i < 4; i++ {
		h.answer()
	}
	require.Equal(h.t, StateShutdown, h.state())
}
