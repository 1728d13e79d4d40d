package core

import "sgcd/protocol"

// BufferSize is the capacity of the transmit buffer
const BufferSize = 64

// TransportBuffer holds the command being shifted out to the display.
// position == 0 means no transmission is in progress.
type TransportBuffer struct {
	data      [BufferSize]byte
	length    int
	position  int
	busy      bool   // a command sequence owns the channel
	rxEnabled bool   // a response may arrive
	txArmed   bool   // transmit-complete reporting enabled
	timeout   uint16 // ack timeout requested for the loaded command
}

// load copies the header and, for string commands, the printable prefix of
// text followed by a terminator. guard limits the text length (0 = none).
func (b *TransportBuffer) load(header []byte, text []byte, asString bool, guard int) {
	n := copy(b.data[:], header)
	if asString {
		n += b.appendText(n, text, guard)
	}
	b.length = n
}

func (b *TransportBuffer) appendText(offset int, text []byte, guard int) int {
	n := 0
	for n < len(text) && printable(text[n]) && offset+n+1 < BufferSize && (guard <= 0 || n < guard) {
		n++
	}
	copy(b.data[offset:], text[:n])
	b.data[offset+n] = protocol.StringTerminator
	return n + 1
}

// clear marks the transmission finished. Callers hold the critical section
// so position and length change together.
func (b *TransportBuffer) clear() {
	b.position = 0
	b.length = 0
}

// remaining reports whether payload bytes are left to send
func (b *TransportBuffer) remaining() bool {
	return b.position < b.length
}

// bytes returns the loaded command
func (b *TransportBuffer) bytes() []byte {
	return b.data[:b.length]
}

func printable(c byte) bool {
	return c >= 0x20 && c < 0x80
}
