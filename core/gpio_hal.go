package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error
}

// ResetLine drives the display reset input through a GPIODriver
type ResetLine struct {
	Driver     GPIODriver
	Pin        GPIOPin
	ActiveHigh bool // Goldelox modules reset on a low level
}

func (r ResetLine) configure() error {
	if r.Driver == nil {
		return nil
	}
	return r.Driver.ConfigureOutput(r.Pin)
}

// set asserts (holds the display in reset) or releases the line
func (r ResetLine) set(asserted bool) error {
	if r.Driver == nil {
		return nil
	}
	return r.Driver.SetPin(r.Pin, asserted == r.ActiveHigh)
}
