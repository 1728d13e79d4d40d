package notify

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"

	"sgcd/core"
	"sgcd/helpers/syncutil"
)

// DefaultDialTimeout bounds connecting to the event target
const DefaultDialTimeout = 2 * time.Second

// TCP sends each event as a text line ("POWERUP\n") over a short-lived
// connection, the way an ECMD sender reports to a remote host.
type TCP struct {
	mu      syncutil.RWMutex
	target  string
	timeout time.Duration
	dialer  net.Dialer
}

// NewTCP creates a sender for target ("host:port"). An empty target
// disables delivery until SetTarget is called.
func NewTCP(target string) (*TCP, error) {
	t := &TCP{timeout: DefaultDialTimeout}
	if err := t.SetTarget(target); err != nil {
		return nil, err
	}
	return t, nil
}

// SetTarget changes the destination at run time
func (t *TCP) SetTarget(target string) error {
	if target != "" {
		if _, _, err := net.SplitHostPort(target); err != nil {
			return fmt.Errorf("invalid notify target %q: %w", target, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.target = target
	return nil
}

// Target returns the current destination
func (t *TCP) Target() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.target
}

// Send implements Sender
func (t *TCP) Send(ev core.Event) error {
	target := t.Target()
	if target == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	conn, err := t.dialer.DialContext(ctx, "tcp", target)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(t.timeout)); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}
	if _, err := conn.Write([]byte(string(ev) + "\n")); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", ev, target, err)
	}

	log.Debug().Str("event", string(ev)).Str("target", target).Msg("notify: sent")
	return nil
}
