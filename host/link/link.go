// Package link connects a core.Controller to a host serial port. Goroutines
// stand in for the UART interrupts: the writer reports each completed byte
// and the reader delivers each received byte.
package link

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"sgcd/core"
	"sgcd/helpers/syncutil"
	"sgcd/host/serial"
)

// Handler receives the UART events
type Handler interface {
	OnByteSent()
	OnByteReceived(b byte, flags uint8)
}

// Link implements core.UART over a serial.Port
type Link struct {
	port serial.Port
	h    Handler
	tx   chan byte

	// held from a write until its completion is delivered, so an answer
	// never overtakes the transmit completion of the byte it answers
	mu syncutil.Mutex

	txEnabled atomic.Bool
	sent      atomic.Uint64
	received  atomic.Uint64
	dropped   atomic.Uint64
}

// Stats counts link traffic
type Stats struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
}

// New creates a link over port. Attach the controller before Run.
func New(port serial.Port) *Link {
	return &Link{
		port: port,
		tx:   make(chan byte, core.BufferSize+1),
	}
}

// Attach sets the handler that receives UART events
func (l *Link) Attach(h Handler) {
	l.h = h
}

// TransmitByte implements core.UART. It only queues the byte.
func (l *Link) TransmitByte(b byte) {
	select {
	case l.tx <- b:
	default:
		l.dropped.Add(1)
		log.Warn().Uint8("byte", b).Msg("link: transmit queue full, byte dropped")
	}
}

// SetTxInterrupt implements core.UART
func (l *Link) SetTxInterrupt(enabled bool) {
	l.txEnabled.Store(enabled)
}

// Stats returns the traffic counters
func (l *Link) Stats() Stats {
	return Stats{
		Sent:     l.sent.Load(),
		Received: l.received.Load(),
		Dropped:  l.dropped.Load(),
	}
}

// Run pumps bytes until ctx is cancelled or the port fails. The port is
// closed on return.
func (l *Link) Run(ctx context.Context) error {
	if l.h == nil {
		return errors.New("link: no handler attached")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		if err := l.port.Close(); err != nil {
			log.Debug().Err(err).Msg("link: close port")
		}
		return nil
	})
	g.Go(func() error { return l.writer(ctx) })
	g.Go(func() error { return l.reader(ctx) })

	return g.Wait()
}

func (l *Link) writer(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-l.tx:
			l.mu.Lock()
			_, err := l.port.Write([]byte{b})
			if err != nil {
				l.mu.Unlock()
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("link: write: %w", err)
			}
			l.sent.Add(1)
			l.h.OnByteSent()
			l.mu.Unlock()
		}
	}
}

func (l *Link) reader(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := l.port.Read(buf)
		if n > 0 {
			l.mu.Lock()
			for _, b := range buf[:n] {
				l.h.OnByteReceived(b, 0)
			}
			l.mu.Unlock()
			l.received.Add(uint64(n))
		}

		if ctx.Err() != nil {
			return nil
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			// read timeout on a tarm port
		case serial.IsDisconnected(err):
			return fmt.Errorf("link: device disconnected: %w", err)
		default:
			return fmt.Errorf("link: read: %w", err)
		}
	}
}
