package link

import (
	"github.com/rs/zerolog/log"

	"sgcd/core"
)

// LogGPIO is a core.GPIODriver for hosts with no reset line wired: it
// records the requested level and logs it.
type LogGPIO struct {
	levels map[core.GPIOPin]bool
}

// NewLogGPIO creates a logging GPIO driver
func NewLogGPIO() *LogGPIO {
	return &LogGPIO{levels: make(map[core.GPIOPin]bool)}
}

func (g *LogGPIO) ConfigureOutput(pin core.GPIOPin) error {
	log.Debug().Uint32("pin", uint32(pin)).Msg("gpio: configure output")
	return nil
}

func (g *LogGPIO) SetPin(pin core.GPIOPin, value bool) error {
	if prev, ok := g.levels[pin]; ok && prev == value {
		return nil
	}
	g.levels[pin] = value
	log.Info().Uint32("pin", uint32(pin)).Bool("high", value).Msg("gpio: set pin")
	return nil
}

// Level returns the last level written to pin
func (g *LogGPIO) Level(pin core.GPIOPin) bool {
	return g.levels[pin]
}
