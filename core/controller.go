package core

// UART is the hardware boundary the controller drives. TransmitByte starts
// shifting one byte out; completion is reported later through OnByteSent and
// must never be delivered from inside TransmitByte itself.
type UART interface {
	TransmitByte(b byte)
	SetTxInterrupt(enabled bool)
}

// Notifier receives state change events. It is called from inside the
// controller's critical section and must not block or call back into the
// controller.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to a Notifier
type NotifierFunc func(ev Event)

// Notify calls f(ev)
func (f NotifierFunc) Notify(ev Event) { f(ev) }

// Options configures a Controller
type Options struct {
	UART     UART
	Reset    ResetLine
	Notifier Notifier
	Debug    DebugWriter

	// TextGuard caps the text appended by OptString sends (0 = buffer limit only)
	TextGuard int

	// IdleShutdown enables the automatic shutdown after IdleMinutes of inactivity
	IdleShutdown bool
	IdleMinutes  uint8
}

// Controller owns the transport buffer and protocol state of one display.
// OnByteSent and OnByteReceived may be called from interrupt context, Tick
// from the main loop every TickPeriodMS.
type Controller struct {
	cs criticalSection

	uart     UART
	reset    ResetLine
	notifier Notifier
	debug    DebugWriter

	textGuard   int
	idleEnabled bool

	buf TransportBuffer
	st  ProtocolState

	ticks uint32
	trace traceRing
}

// New creates a controller in the RESET state with the reset line asserted.
// Call Initialize before the first Tick.
func New(opts Options) *Controller {
	c := &Controller{
		uart:        opts.UART,
		reset:       opts.Reset,
		notifier:    opts.Notifier,
		debug:       opts.Debug,
		textGuard:   opts.TextGuard,
		idleEnabled: opts.IdleShutdown,
	}
	c.st.idleLimit = opts.IdleMinutes
	c.st.contrast = DefaultContrast
	c.st.penSize = DefaultPenSize
	c.st.font = DefaultFont
	return c
}

// Initialize holds the display in reset and ignores the RX line until the
// supervisor runs the reset sequence.
func (c *Controller) Initialize() {
	c.cs.enter()
	defer c.cs.exit()

	if err := c.reset.configure(); err != nil {
		c.debugf("[SGC] reset line: " + err.Error())
	}
	c.driveReset(true)
	c.buf.rxEnabled = false
	c.st.lifecycle = StateReset
	c.touch()
	c.debugf("[SGC] initialized")
}

// Snapshot returns a consistent copy of the controller state
func (c *Controller) Snapshot() Snapshot {
	c.cs.enter()
	defer c.cs.exit()

	return Snapshot{
		State:        c.st.lifecycle,
		Ack:          c.st.ack,
		AckTimer:     c.st.ackTimer,
		AckTimeout:   c.st.ackTimeout,
		Busy:         c.buf.busy,
		RxEnabled:    c.buf.rxEnabled,
		Position:     c.buf.position,
		Length:       c.buf.length,
		SleepPending: c.st.sleepPending,
		Sleeping:     c.st.sleeping,
		FromReset:    c.st.fromReset,
		BaudAttempts: c.st.baudAttempts,
		Contrast:     c.st.contrast,
		PenSize:      c.st.penSize,
		Font:         c.st.font,
		IdleMinutes:  c.st.idleMinutes,
		IdleLimit:    c.st.idleLimit,
	}
}

// Trace returns the recorded protocol events, oldest first
func (c *Controller) Trace() []TraceEvent {
	c.cs.enter()
	defer c.cs.exit()
	return c.trace.snapshot()
}

// DumpTrace writes the trace ring through the debug writer and clears it
func (c *Controller) DumpTrace() {
	c.cs.enter()
	events := c.trace.snapshot()
	c.trace.clear()
	c.cs.exit()

	if c.debug == nil {
		return
	}
	c.debug("[SGC] trace: " + utoa(uint32(len(events))) + " events")
	for _, ev := range events {
		c.debug(ev.Format())
	}
}

// touch resets the idle countdown. Any caller-facing command does this.
func (c *Controller) touch() {
	c.st.idleTicks = 0
	c.st.idleMinutes = 0
}

func (c *Controller) transmit(b byte) {
	c.record(TraceTx, b)
	c.uart.TransmitByte(b)
}

func (c *Controller) armTx(enabled bool) {
	c.buf.txArmed = enabled
	c.uart.SetTxInterrupt(enabled)
}

func (c *Controller) notify(ev Event) {
	c.record(TraceNotify, eventIndex(ev))
	if c.notifier != nil {
		c.notifier.Notify(ev)
	}
}

func (c *Controller) setState(s State) {
	if s == c.st.lifecycle {
		return
	}
	c.record(TraceState, byte(s))
	c.debugf("[SGC] " + c.st.lifecycle.String() + " -> " + s.String())
	c.st.lifecycle = s
}

func (c *Controller) record(kind TraceKind, value byte) {
	c.trace.record(TraceEvent{Kind: kind, Tick: c.ticks, State: c.st.lifecycle, Value: value})
}

// driveReset moves the reset line, reporting a failing GPIO through the
// debug writer
func (c *Controller) driveReset(asserted bool) {
	if err := c.reset.set(asserted); err != nil {
		c.debugf("[SGC] reset line: " + err.Error())
	}
}

func (c *Controller) debugf(msg string) {
	if c.debug != nil {
		c.debug(msg)
	}
}
