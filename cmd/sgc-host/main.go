package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"sgcd/config"
	"sgcd/core"
	"sgcd/ecmd"
	"sgcd/host/link"
	"sgcd/host/runner"
	"sgcd/host/serial"
	"sgcd/notify"
	"sgcd/protocol"
	"sgcd/sim"
)

var (
	configPath = flag.String("config", config.DefaultPath, "Configuration file")
	device     = flag.String("device", "", "Serial device path (overrides the config file)")
	simulate   = flag.Bool("simulate", false, "Drive a simulated display instead of a serial port")
	listPorts  = flag.Bool("list", false, "List serial ports and exit")
	stdinCmds  = flag.Bool("console", true, "Read commands from stdin")
	verbose    = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *listPorts {
		ports, err := serial.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	cfg, err := config.Load(afero.NewOsFs(), *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	initLogging(cfg.LogFile, cfg.DebugLogging || *verbose)
	log.Info().Str("version", protocol.Version).Msg("sgc-host starting")

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("sgc-host stopped")
		os.Exit(1)
	}
}

func openPort(cfg *config.Config) (serial.Port, core.GPIODriver, error) {
	if *simulate {
		d := sim.New()
		log.Info().Msg("using simulated display")
		return d, d.ResetInput(), nil
	}

	path := cfg.Serial.Device
	if *device != "" {
		path = *device
	}
	if path == "" {
		ports, err := serial.ListPorts()
		if err != nil {
			return nil, nil, err
		}
		if len(ports) == 0 {
			return nil, nil, errors.New("no serial ports found, set serial.device or use -simulate")
		}
		path = ports[0]
		log.Info().Str("device", path).Msg("auto-detected serial port")
	}

	port, err := serial.OpenPort(&serial.Config{
		Device:      path,
		Baud:        cfg.Serial.Baud,
		ReadTimeout: cfg.Serial.ReadTimeoutMS,
		Driver:      cfg.Serial.Driver,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("device", path).Int("baud", cfg.Serial.Baud).Msg("serial port open")
	return port, link.NewLogGPIO(), nil
}

func run(cfg *config.Config) error {
	port, resetDriver, err := openPort(cfg)
	if err != nil {
		return err
	}

	senders := notify.Multi{notify.Log{}}
	var targets ecmd.TargetSetter
	if cfg.Notify.Enabled {
		tcp, err := notify.NewTCP(cfg.Notify.TCPTarget)
		if err != nil {
			return err
		}
		senders = append(senders, tcp)
		targets = tcp

		if cfg.Notify.MQTTBroker != "" {
			m := notify.NewMQTT(cfg.Notify.MQTTBroker, cfg.Notify.MQTTTopic)
			if err := m.Connect(); err != nil {
				log.Warn().Err(err).Msg("mqtt notifications disabled")
			} else {
				defer m.Close()
				senders = append(senders, m)
			}
		}
	}
	events := notify.NewAsync(senders, cfg.Notify.QueueSize)

	l := link.New(port)
	ctrl := core.New(core.Options{
		UART: l,
		Reset: core.ResetLine{
			Driver:     resetDriver,
			Pin:        core.GPIOPin(cfg.Display.ResetPin),
			ActiveHigh: cfg.Display.ResetActiveHigh,
		},
		Notifier:     events,
		Debug:        func(s string) { log.Debug().Msg(s) },
		TextGuard:    cfg.Display.TextGuard,
		IdleShutdown: cfg.Display.IdleTimeoutEnabled,
		IdleMinutes:  cfg.Display.IdleTimeoutMinutes,
	})
	l.Attach(ctrl)
	ctrl.Initialize()

	reg := ecmd.NewRegistry()
	ecmd.RegisterSGC(reg, ctrl, targets)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.Run(ctx) })
	g.Go(func() error { return runner.New(nil, ctrl).Run(ctx) })
	g.Go(func() error { return events.Run(ctx) })

	if cfg.Console.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Console.Listen)
		if err != nil {
			stop()
			_ = g.Wait()
			return fmt.Errorf("failed to listen on %s: %w", cfg.Console.Listen, err)
		}
		log.Info().Str("listen", ln.Addr().String()).Msg("ecmd server listening")
		g.Go(func() error { return ecmd.NewServer(reg).Serve(ctx, ln) })
	}

	// stdin cannot be interrupted, so the console is not part of the group
	if *stdinCmds {
		go func() {
			console(reg)
			stop()
		}()
	}

	err = g.Wait()
	log.Info().Msg("sgc-host shut down")
	return err
}

func console(reg *ecmd.Registry) {
	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return
		}

		reply, err := reg.Dispatch(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Println(reply)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("console input")
	}
}
