package serial

import (
	"fmt"
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - go.bug.st/serial, which can also enumerate ports
// - The simulated display (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Drivers
const (
	DriverTarm  = "tarm"
	DriverBugst = "bugst"
)

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate (SGC modules auto-baud from 300 to 256000)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int

	// Driver selects the implementation, "tarm" or "bugst"
	Driver string
}

// DefaultConfig returns a default configuration for an SGC module
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        9600,
		ReadTimeout: 100,
		Driver:      DriverTarm,
	}
}

// OpenPort opens cfg.Device with the configured driver
func OpenPort(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Driver {
	case "", DriverTarm:
		return Open(cfg)
	case DriverBugst:
		return OpenBugst(cfg)
	default:
		return nil, fmt.Errorf("unknown serial driver %q", cfg.Driver)
	}
}
