package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandBuilders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{"display off", DisplayPower(false), []byte{0x59, 0x01, 0x00}},
		{"display on", DisplayPower(true), []byte{0x59, 0x01, 0x01}},
		{"contrast", Contrast(0x0F), []byte{0x59, 0x02, 0x0F}},
		{"shutdown", Power(false), []byte{0x59, 0x03, 0x00}},
		{"power up", Power(true), []byte{0x59, 0x03, 0x01}},
		{"clear", ClearScreen(), []byte{0x45}},
		{"font masks proportional bit", Font(0x12), []byte{0x46, 0x02}},
		{"pen size", PenSize(1), []byte{0x70, 0x01}},
		{"sleep serial wake", Sleep(0), []byte{0x5A, 0x01, 0x00}},
		{"sleep joystick wake", Sleep(1), []byte{0x5A, 0x02, 0x00}},
		{"auto-baud", AutoBaud(), []byte{0x55}},
		{"text header", TextHeader(1, 2, 3, 0xF800), []byte{0x73, 1, 2, 3, 0xF8, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestCommandLengthsMatchBuilders(t *testing.T) {
	t.Parallel()

	for _, cmd := range [][]byte{
		AutoBaud(), DisplayPower(true), Contrast(3), Power(false),
		ClearScreen(), Font(1), PenSize(0), Sleep(0),
	} {
		assert.Equal(t, len(cmd), CommandLength(cmd[0]), "opcode 0x%02X", cmd[0])
	}

	assert.Zero(t, CommandLength(OpTextString))
	assert.Equal(t, len(TextHeader(0, 0, 0, 0)), StringHeaderLength(OpTextString))
	assert.Zero(t, StringHeaderLength(OpControl))
}

func TestProtocolError(t *testing.T) {
	t.Parallel()

	err := error(&ProtocolError{Byte: 0x41})
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "0x41")
	assert.Contains(t, (&ProtocolError{Flags: RxFramingError}).Error(), "framing")
	assert.Contains(t, (&ProtocolError{Flags: RxOverrun}).Error(), "overrun")
	assert.Contains(t, (&ProtocolError{Byte: RespAck, Unexpected: true}).Error(), "nothing pending")
	assert.False(t, IsProtocolError(ErrBusy))
	assert.True(t, errors.Is(ErrBusy, ErrBusy))
	assert.True(t, IsResponse(RespAck))
	assert.True(t, IsResponse(RespNack))
	assert.False(t, IsResponse(0x55))
}
