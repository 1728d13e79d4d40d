// Package runner drives the controller's periodic supervisor from a clock.
package runner

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"sgcd/core"
)

// Ticker is the periodic work the runner schedules
type Ticker interface {
	Tick()
}

// Runner calls Tick every core.TickPeriodMS. Missed periods are caught up
// on the next wake-up, so the supervisor sees every tick even when the
// host is late.
type Runner struct {
	clock  clockwork.Clock
	sched  *core.Scheduler
	start  time.Time
	target Ticker
	timer  *core.Timer
}

// New creates a runner for target. A nil clock uses the real clock.
func New(clock clockwork.Clock, target Ticker) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	r := &Runner{
		clock:  clock,
		start:  clock.Now(),
		target: target,
		sched:  core.NewScheduler(0),
	}
	r.timer = core.NewPeriodicTimer(core.TickPeriodMS, core.TickPeriodMS, target.Tick)
	r.sched.Add(r.timer)
	return r
}

// Scheduler exposes the runner's scheduler so callers can add timers
func (r *Runner) Scheduler() *core.Scheduler {
	return r.sched
}

func (r *Runner) millis() uint32 {
	return uint32(r.clock.Since(r.start) / time.Millisecond)
}

// Run dispatches due timers until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.NewTicker(core.TickPeriodMS * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			if n := r.sched.Dispatch(r.millis()); n > 1 {
				log.Debug().Int("fired", n).Msg("runner: caught up on late ticks")
			}
		}
	}
}
