// Package protocol implements the 4D Systems SGC serial command protocol
package protocol

// Version represents the sgcd firmware version
const Version = "0.1.0"

// Command opcodes (first byte of every command sent to the display)
const (
	OpAutoBaud    byte = 0x55 // 'U' auto-baud probe, also used as wake byte
	OpControl     byte = 0x59 // 'Y' display control functions
	OpClearScreen byte = 0x45 // 'E'
	OpSetFont     byte = 0x46 // 'F'
	OpPenSize     byte = 0x70 // 'p'
	OpSleep       byte = 0x5A // 'Z'
	OpTextString  byte = 0x73 // 's' string of ASCII text, text format
	OpGfxString   byte = 0x53 // 'S' string of ASCII text, graphics format
)

// Control sub-commands for OpControl
const (
	CtlDisplay  byte = 0x01
	CtlContrast byte = 0x02
	CtlPower    byte = 0x03
)

// Single-byte responses from the display
const (
	RespAck  byte = 0x06
	RespNack byte = 0x15
)

const (
	// WakeByte is a harmless probe sent to rouse a sleeping display
	WakeByte = OpAutoBaud

	// FontMask strips the proportional bit from a font id
	FontMask = 0x0F

	// StringTerminator ends a string command
	StringTerminator = 0x00
)

// commandLengths holds the total length of fixed-size commands, opcode included
var commandLengths = map[byte]int{
	OpAutoBaud:    1,
	OpControl:     3,
	OpClearScreen: 1,
	OpSetFont:     2,
	OpPenSize:     2,
	OpSleep:       3,
}

// stringHeaders holds the header length of string commands, opcode included.
// The text and its terminator follow the header.
var stringHeaders = map[byte]int{
	OpTextString: 6, // s col row font colourMSB colourLSB
	OpGfxString:  8, // S x y font colourMSB colourLSB width height
}

// CommandLength returns the total length of a fixed-size command,
// or 0 when the opcode is unknown or variable-length.
func CommandLength(op byte) int {
	return commandLengths[op]
}

// StringHeaderLength returns the header length of a string command,
// or 0 when op is not a string command.
func StringHeaderLength(op byte) int {
	return stringHeaders[op]
}

// IsResponse reports whether b is one of the two defined response codes
func IsResponse(b byte) bool {
	return b == RespAck || b == RespNack
}
