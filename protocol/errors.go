package protocol

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when the channel or the lifecycle state cannot accept
// a command right now. The caller may retry on a later tick.
var ErrBusy = errors.New("sgc: busy")

// ErrInvalidCommand is returned for an empty header or one that does not fit
// the transmit buffer.
var ErrInvalidCommand = errors.New("sgc: invalid command")

// Receive error flags reported by the UART together with a byte
const (
	RxFramingError uint8 = 1 << 0
	RxOverrun      uint8 = 1 << 1
)

// ProtocolError describes a received byte that violated the handshake.
// It is recorded for diagnostics only; the controller recovers by resetting.
type ProtocolError struct {
	// Byte is the offending byte
	Byte byte

	// Flags are the receive error flags reported with the byte
	Flags uint8

	// Unexpected is set when the byte arrived while no response was pending
	Unexpected bool
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Flags&RxFramingError != 0:
		return fmt.Sprintf("framing error (byte 0x%02X)", e.Byte)
	case e.Flags&RxOverrun != 0:
		return fmt.Sprintf("receiver overrun (byte 0x%02X)", e.Byte)
	case e.Unexpected:
		return fmt.Sprintf("unexpected response 0x%02X: nothing pending", e.Byte)
	default:
		return fmt.Sprintf("invalid response byte 0x%02X", e.Byte)
	}
}

// IsProtocolError returns true if the error is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
