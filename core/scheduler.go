package core

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32 // milliseconds, wrapping
	Handler  func(*Timer) uint8
	next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// Scheduler keeps timers sorted by wake time. Handlers run outside the
// scheduler lock so they may add timers themselves.
type Scheduler struct {
	cs   criticalSection
	list *Timer
	now  uint32
}

// NewScheduler creates an empty scheduler starting at time now
func NewScheduler(now uint32) *Scheduler {
	return &Scheduler{now: now}
}

// Add inserts a timer in sorted order by WakeTime
func (s *Scheduler) Add(t *Timer) {
	s.cs.enter()
	defer s.cs.exit()
	s.insert(t)
}

// Remove unlinks a timer; it reports whether the timer was scheduled
func (s *Scheduler) Remove(t *Timer) bool {
	s.cs.enter()
	defer s.cs.exit()

	for p := &s.list; *p != nil; p = &(*p).next {
		if *p == t {
			*p = t.next
			t.next = nil
			return true
		}
	}
	return false
}

// Now returns the time of the last Dispatch
func (s *Scheduler) Now() uint32 {
	s.cs.enter()
	defer s.cs.exit()
	return s.now
}

func (s *Scheduler) insert(t *Timer) {
	if s.list == nil || timeBefore(t.WakeTime, s.list.WakeTime) {
		t.next = s.list
		s.list = t
		return
	}

	current := s.list
	for current.next != nil && !timeBefore(t.WakeTime, current.next.WakeTime) {
		current = current.next
	}

	t.next = current.next
	current.next = t
}

// pop removes the first timer if it is due
func (s *Scheduler) pop() *Timer {
	s.cs.enter()
	defer s.cs.exit()

	if s.list == nil || timeBefore(s.now, s.list.WakeTime) {
		return nil
	}
	t := s.list
	s.list = t.next
	t.next = nil
	return t
}

// Dispatch runs every timer due at or before now and returns how many fired.
// A timer that reschedules itself into the past runs again, so a late caller
// catches up on missed periods.
func (s *Scheduler) Dispatch(now uint32) int {
	s.cs.enter()
	s.now = now
	s.cs.exit()

	fired := 0
	for t := s.pop(); t != nil; t = s.pop() {
		fired++
		if t.Handler(t) == SF_RESCHEDULE {
			s.Add(t)
		}
	}
	return fired
}

// NewPeriodicTimer returns a timer that calls fn every period milliseconds,
// first at start.
func NewPeriodicTimer(start, period uint32, fn func()) *Timer {
	return &Timer{
		WakeTime: start,
		Handler: func(t *Timer) uint8 {
			fn()
			t.WakeTime += period
			return SF_RESCHEDULE
		},
	}
}
