package ecmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"sgcd/core"
	"sgcd/protocol"
)

// Display is the controller surface the SGC commands drive
type Display interface {
	RequestPowerState(on bool) error
	PowerState() core.State
	LastResult() core.Result
	SetContrast(level byte) error
	SetPenSize(size byte) error
	SetFont(f core.FontSetting) error
	Font() core.FontSetting
	Sleep(mode byte) error
	SetIdleTimeout(minutes uint8)
	SendCommand(header []byte, timeout uint16, opts core.Option, text []byte) error
	Trace() []core.TraceEvent
}

// TargetSetter changes where state change notifications are sent
type TargetSetter interface {
	SetTarget(target string) error
	Target() string
}

// RegisterSGC adds the display commands to r. targets may be nil, in which
// case sgc_ip is not registered.
func RegisterSGC(r *Registry, d Display, targets TargetSetter) {
	r.Register("sgc_pwr", "[0|1]", "show or switch the display power state", func(args []string) (string, error) {
		switch len(args) {
		case 0:
			return d.PowerState().String(), nil
		case 1:
			on, err := parseBool(args[0])
			if err != nil {
				return "", err
			}
			return ok(d.RequestPowerState(on))
		default:
			return "", ErrUsage
		}
	})

	r.Register("sgc_result", "", "result of the last command", func(args []string) (string, error) {
		if len(args) != 0 {
			return "", ErrUsage
		}
		return d.LastResult().String(), nil
	})

	r.Register("sgc_contrast", "<level>", "set the contrast (0-15)", byteCommand(func(v byte) error {
		return d.SetContrast(v)
	}))

	r.Register("sgc_pensize", "<size>", "set the pen size (0 solid, 1 wire frame)", byteCommand(func(v byte) error {
		return d.SetPenSize(v)
	}))

	r.Register("sgc_font", "[<id> [<color0> <color1>]]", "show or set the text font", func(args []string) (string, error) {
		f := d.Font()
		switch len(args) {
		case 0:
			return fmt.Sprintf("%d %d %d", f.ID, f.Color0, f.Color1), nil
		case 1, 3:
		default:
			return "", ErrUsage
		}

		vals, err := parseBytes(args)
		if err != nil {
			return "", err
		}
		f.ID = vals[0]
		if len(vals) == 3 {
			f.Color0, f.Color1 = vals[1], vals[2]
		}
		return ok(d.SetFont(f))
	})

	r.Register("sgc_sleep", "<mode>", "put the display to sleep", byteCommand(func(v byte) error {
		return d.Sleep(v)
	}))

	r.Register("sgc_timeout", "<minutes>", "idle minutes before automatic shutdown, 0 disables", byteCommand(func(v byte) error {
		d.SetIdleTimeout(v)
		return nil
	}))

	r.Register("sgc_cmd", "<timeout> <hex bytes...>", "send a raw command", func(args []string) (string, error) {
		if len(args) < 2 {
			return "", ErrUsage
		}
		timeout, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return "", ErrUsage
		}
		header, err := hex.DecodeString(strings.Join(args[1:], ""))
		if err != nil {
			return "", fmt.Errorf("bad command bytes: %w", err)
		}
		return ok(d.SendCommand(header, uint16(timeout), core.OptNormal, nil))
	})

	r.Register("sgc_text", "<col> <row> <font> <colorhi> <colorlo> <text...>", "draw a text string", func(args []string) (string, error) {
		if len(args) < 6 {
			return "", ErrUsage
		}
		vals, err := parseBytes(args[:5])
		if err != nil {
			return "", err
		}
		colour := uint16(vals[3])<<8 | uint16(vals[4])
		header := protocol.TextHeader(vals[0], vals[1], vals[2], colour)
		text := strings.Join(args[5:], " ")
		return ok(d.SendCommand(header, core.SequenceTimeout, core.OptString, []byte(text)))
	})

	r.Register("sgc_trace", "", "dump the protocol trace", func(args []string) (string, error) {
		events := d.Trace()
		lines := make([]string, 0, len(events))
		for _, ev := range events {
			lines = append(lines, ev.Format())
		}
		return strings.Join(lines, "\n"), nil
	})

	if targets != nil {
		r.Register("sgc_ip", "[<host:port>]", "show or set the notification target", func(args []string) (string, error) {
			switch len(args) {
			case 0:
				return targets.Target(), nil
			case 1:
				return ok(targets.SetTarget(args[0]))
			default:
				return "", ErrUsage
			}
		})
	}
}

func ok(err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "OK", nil
}

func byteCommand(fn func(byte) error) Handler {
	return func(args []string) (string, error) {
		if len(args) != 1 {
			return "", ErrUsage
		}
		vals, err := parseBytes(args)
		if err != nil {
			return "", err
		}
		return ok(fn(vals[0]))
	}
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0", "off":
		return false, nil
	case "1", "on":
		return true, nil
	}
	return false, ErrUsage
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, ErrUsage
		}
		out[i] = byte(v)
	}
	return out, nil
}
