package protocol

// AutoBaud returns the auto-baud probe
func AutoBaud() []byte {
	return []byte{OpAutoBaud}
}

// DisplayPower switches the display output on or off
func DisplayPower(on bool) []byte {
	return []byte{OpControl, CtlDisplay, boolByte(on)}
}

// Contrast sets the display contrast level
func Contrast(level byte) []byte {
	return []byte{OpControl, CtlContrast, level}
}

// Power shuts the display down (false) or powers it up (true)
func Power(on bool) []byte {
	return []byte{OpControl, CtlPower, boolByte(on)}
}

// ClearScreen clears the display
func ClearScreen() []byte {
	return []byte{OpClearScreen}
}

// Font selects a font, always in non-proportional mode
func Font(id byte) []byte {
	return []byte{OpSetFont, id & FontMask}
}

// PenSize sets the pen size (0 = solid, 1 = wireframe)
func PenSize(size byte) []byte {
	return []byte{OpPenSize, size}
}

// Sleep puts the display to sleep. Mode 0 wakes on serial, mode 1 on joystick.
// The trailing byte is the unused delay field.
func Sleep(mode byte) []byte {
	return []byte{OpSleep, mode + 1, 0x00}
}

// TextHeader builds the header of a text-format string command. The text
// itself is appended by the sender.
func TextHeader(col, row, font byte, colour uint16) []byte {
	return []byte{OpTextString, col, row, font, byte(colour >> 8), byte(colour)}
}

func boolByte(b bool) byte {
	if b {
		return 0x01
	}
	return 0x00
}
