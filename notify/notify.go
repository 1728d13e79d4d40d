// Package notify delivers display state changes to remote observers.
//
// The controller calls Notify from inside its critical section, so every
// network sink sits behind an Async queue that never blocks the caller.
package notify

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"sgcd/core"
)

// Sender delivers one event. It may block.
type Sender interface {
	Send(ev core.Event) error
}

// SenderFunc adapts a function to a Sender
type SenderFunc func(ev core.Event) error

// Send calls f(ev)
func (f SenderFunc) Send(ev core.Event) error { return f(ev) }

// Async queues events for a Sender. Delivery is best effort: when the queue
// is full the event is dropped and counted.
type Async struct {
	sender  Sender
	queue   chan core.Event
	dropped atomic.Uint64
}

// NewAsync creates a queue of the given size in front of sender
func NewAsync(sender Sender, size int) *Async {
	if size <= 0 {
		size = 16
	}
	return &Async{
		sender: sender,
		queue:  make(chan core.Event, size),
	}
}

// Notify implements core.Notifier
func (a *Async) Notify(ev core.Event) {
	select {
	case a.queue <- ev:
	default:
		n := a.dropped.Add(1)
		log.Warn().Str("event", string(ev)).Uint64("dropped", n).Msg("notify: queue full, event dropped")
	}
}

// Dropped returns how many events were discarded
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Run delivers queued events until ctx is cancelled
func (a *Async) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-a.queue:
			if err := a.sender.Send(ev); err != nil {
				log.Error().Err(err).Str("event", string(ev)).Msg("notify: delivery failed")
			}
		}
	}
}

// Multi sends every event to all senders and joins their errors
type Multi []Sender

// Send implements Sender
func (m Multi) Send(ev core.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes events to the zerolog logger
type Log struct{}

// Send implements Sender
func (Log) Send(ev core.Event) error {
	log.Info().Str("event", string(ev)).Msg("display event")
	return nil
}
