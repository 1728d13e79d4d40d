package core

// State is the display lifecycle state. The numbering is significant: every
// state up to and including StateShutdown refuses caller commands.
type State uint8

const (
	StateReset           State = iota // begin reset sequence
	StateResetHold                    // reset line asserted
	StateBootWait                     // display booting
	StateAutoBaud                     // send auto-baud probe
	StateAutoBaudAck                  // await auto-baud answer
	StateBeginShutdown                // display off
	StateDisplayOffAck                // then clear screen
	StateClearAck                     // then contrast 0
	StateContrastZeroAck              // then shutdown
	StateShutdownAck                  // await shutdown answer
	StateShutdown                     // shut down, power may be removed
	StateBeginPowerUp                 // power up
	StatePowerUpAck                   // then restore contrast
	StateContrastAck                  // then restore font
	StateFontAck                      // then restore pen size
	StatePenSizeAck                   // then display on
	StateDisplayOnAck                 // await display-on answer
	StatePowerUp                      // powered up, do not remove power
	stateCount
)

var stateNames = [stateCount]string{
	"RESET", "RESET_HOLD", "BOOT_WAIT", "AUTOBAUD", "AUTOBAUD_ACK",
	"BEGIN_SHUTDOWN", "DISPLAY_OFF_ACK", "CLEAR_ACK", "CONTRAST_ZERO_ACK", "SHUTDOWN_ACK",
	"SHUTDOWN",
	"BEGIN_POWERUP", "POWERUP_ACK", "CONTRAST_ACK", "FONT_ACK", "PENSIZE_ACK", "DISPLAY_ON_ACK",
	"POWERUP",
}

func (s State) String() string {
	if s < stateCount {
		return stateNames[s]
	}
	return "UNKNOWN(" + utoa(uint32(s)) + ")"
}

// Steady reports whether s is one of the two resting states
func (s State) Steady() bool {
	return s == StateShutdown || s == StatePowerUp
}

// AckStatus is the state of the last command's acknowledgment. The order is
// significant: AckReceived and NackReceived are resolved, AckSending through
// AckPending are still awaiting a result.
type AckStatus uint8

const (
	AckReceived  AckStatus = iota // display answered ACK
	NackReceived                  // display answered NACK
	AckSending                    // command bytes still being shifted out
	AckWakeup                     // wake byte sent, waiting for the display
	AckPending                    // command sent, waiting for the answer
	AckTimeout                    // no answer within the timeout
)

func (a AckStatus) String() string {
	switch a {
	case AckReceived:
		return "ACK"
	case NackReceived:
		return "NACK"
	case AckSending:
		return "SENDING"
	case AckWakeup:
		return "WAKEUP"
	case AckPending:
		return "NONE"
	case AckTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Awaiting reports whether the result is not known yet
func (a AckStatus) Awaiting() bool {
	return a >= AckSending && a <= AckPending
}

// Result is what LastResult reports to callers
type Result uint8

const (
	ResultAck Result = iota
	ResultNack
	ResultPending
	ResultTimeout
	ResultBusy
	ResultFromReset
)

func (r Result) String() string {
	switch r {
	case ResultAck:
		return "ACK"
	case ResultNack:
		return "NACK"
	case ResultPending:
		return "PENDING"
	case ResultTimeout:
		return "TIMEOUT"
	case ResultBusy:
		return "BUSY"
	case ResultFromReset:
		return "FROM_RESET"
	default:
		return "UNKNOWN"
	}
}

// Event is a state change reported to the notification sink
type Event string

const (
	EventReset    Event = "RESET"
	EventShutdown Event = "SHUTDOWN"
	EventPowerUp  Event = "POWERUP"
	EventAck      Event = "ACK"
	EventNack     Event = "NACK"
)

// FontSetting is the font id plus the two colour bytes used by text helpers
type FontSetting struct {
	ID     byte
	Color0 byte
	Color1 byte
}

// Display defaults restored by every reset
var (
	DefaultContrast byte = 0x0F
	DefaultPenSize  byte = 0x00
	DefaultFont          = FontSetting{ID: 0x00, Color0: 0xFF, Color1: 0xFF}
)

// ProtocolState is the authoritative state record shared by the supervisor
// and both handlers.
type ProtocolState struct {
	lifecycle  State
	ack        AckStatus
	ackTimer   uint16
	ackTimeout uint16

	sleepPending bool // sleep command queued, display sleeps once it drains
	sleeping     bool // display is asleep
	fromReset    bool // the current sequence started from a reset

	baudAttempts uint8
	timer        uint8 // reset and boot sub-timer

	contrast byte
	penSize  byte
	font     FontSetting

	idleTicks   uint16
	idleMinutes uint8
	idleLimit   uint8
}

// Snapshot is a consistent copy of the controller state for diagnostics
type Snapshot struct {
	State        State
	Ack          AckStatus
	AckTimer     uint16
	AckTimeout   uint16
	Busy         bool
	RxEnabled    bool
	Position     int
	Length       int
	SleepPending bool
	Sleeping     bool
	FromReset    bool
	BaudAttempts uint8
	Contrast     byte
	PenSize      byte
	Font         FontSetting
	IdleMinutes  uint8
	IdleLimit    uint8
}
