package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceKind identifies a recorded protocol event
type TraceKind uint8

// Trace kinds
const (
	TraceTx        TraceKind = 1 // byte handed to the UART
	TraceRx        TraceKind = 2 // byte accepted from the UART
	TraceState     TraceKind = 3 // lifecycle transition
	TraceTimeout   TraceKind = 4 // ack timer expired
	TraceViolation TraceKind = 5 // protocol violation, forced reset
	TraceNotify    TraceKind = 6 // event sent to the notifier
	TraceReject    TraceKind = 7 // command refused as busy
)

// TraceRingSize is how many events are kept for post-mortem
const TraceRingSize = 32

// TraceEvent captures one protocol event
type TraceEvent struct {
	Kind  TraceKind
	Tick  uint32 // supervisor tick count at the event
	State State
	Value byte // byte, new state or event index depending on Kind
}

func (k TraceKind) String() string {
	switch k {
	case TraceTx:
		return "TX"
	case TraceRx:
		return "RX"
	case TraceState:
		return "STATE"
	case TraceTimeout:
		return "TIMEOUT"
	case TraceViolation:
		return "VIOLATION"
	case TraceNotify:
		return "NOTIFY"
	case TraceReject:
		return "REJECT"
	default:
		return "UNKNOWN"
	}
}

// traceRing is a fixed ring of the most recent events (non-blocking, for post-mortem)
type traceRing struct {
	events [TraceRingSize]TraceEvent
	head   uint8
}

func (r *traceRing) record(ev TraceEvent) {
	r.events[r.head] = ev
	r.head = (r.head + 1) % TraceRingSize
}

// snapshot returns the recorded events, oldest first
func (r *traceRing) snapshot() []TraceEvent {
	out := make([]TraceEvent, 0, TraceRingSize)
	for i := uint8(0); i < TraceRingSize; i++ {
		ev := r.events[(r.head+i)%TraceRingSize]
		if ev.Kind == 0 {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (r *traceRing) clear() {
	*r = traceRing{}
}

// Format renders the event as a single debug line
func (ev TraceEvent) Format() string {
	line := "[SGC] t=" + utoa(ev.Tick) + " " + ev.Kind.String() + " state=" + ev.State.String()
	switch ev.Kind {
	case TraceTx, TraceRx, TraceViolation:
		line += " byte=" + hex8(ev.Value)
	case TraceState:
		line += " -> " + State(ev.Value).String()
	case TraceNotify:
		line += " event=" + string(traceEvents[ev.Value])
	case TraceTimeout:
		line += " ack=" + AckStatus(ev.Value).String()
	}
	return line
}

// traceEvents maps notification events to a byte for the ring
var traceEvents = [...]Event{EventReset, EventShutdown, EventPowerUp, EventAck, EventNack}

func eventIndex(e Event) byte {
	for i, ev := range traceEvents {
		if ev == e {
			return byte(i)
		}
	}
	return 0
}
