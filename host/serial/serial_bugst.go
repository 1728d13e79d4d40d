//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	bugst "go.bug.st/serial"
)

// BugstPort wraps the go.bug.st/serial implementation
type BugstPort struct {
	port bugst.Port
	cfg  *Config
}

// OpenBugst opens a serial port through go.bug.st/serial, 8N1
func OpenBugst(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	port, err := bugst.Open(cfg.Device, &bugst.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}

	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(time.Duration(cfg.ReadTimeout) * time.Millisecond); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	return &BugstPort{port: port, cfg: cfg}, nil
}

// Read reads data from the serial port
func (p *BugstPort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write writes data to the serial port
func (p *BugstPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the serial port
func (p *BugstPort) Close() error {
	if p.port != nil {
		return p.port.Close()
	}
	return nil
}

// Flush waits for pending output and discards unread input
func (p *BugstPort) Flush() error {
	if err := p.port.Drain(); err != nil {
		return err
	}
	return p.port.ResetInputBuffer()
}

// ListPorts returns the serial ports present on the system
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// IsDisconnected reports whether err means the device went away
func IsDisconnected(err error) bool {
	var code bugst.PortErrorCode
	var ptrErr *bugst.PortError
	var valErr bugst.PortError
	switch {
	case errors.As(err, &ptrErr):
		code = ptrErr.Code()
	case errors.As(err, &valErr):
		code = valErr.Code()
	default:
		return false
	}

	switch code {
	case bugst.PortNotFound, bugst.PortClosed, bugst.InvalidSerialPort:
		return true
	default:
		return false
	}
}
