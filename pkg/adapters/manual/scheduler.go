// Package manual provides a deterministic ports.Scheduler driven by a virtual clock.
// It is meant for tests and headless hosts that step time themselves.
package manual

import (
	"sync"
	"time"

	"github.com/aretw0/dyntext/pkg/ports"
)

// Scheduler fires repeating callbacks when Advance moves its virtual clock.
// Safe for concurrent use; callbacks run on the goroutine calling Advance.
type Scheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	handles []*Handle
}

// New creates a scheduler whose clock starts at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// Handle is a repeating callback registered on a manual Scheduler.
type Handle struct {
	s         *Scheduler
	seq       int
	interval  time.Duration
	next      time.Duration
	tick      func()
	fired     int
	cancelled bool
}

// Cancel removes the handle. Idempotent.
func (h *Handle) Cancel() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.cancelled = true
}

// Interval returns the period the handle was scheduled with.
func (h *Handle) Interval() time.Duration {
	return h.interval
}

// Fired returns how many times the callback ran.
func (h *Handle) Fired() int {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.fired
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.cancelled
}

// ScheduleRepeating registers tick to fire every interval of virtual time.
// Non-positive intervals yield an already cancelled handle.
func (s *Scheduler) ScheduleRepeating(interval time.Duration, tick func()) ports.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	h := &Handle{
		s:         s,
		seq:       s.seq,
		interval:  interval,
		next:      s.now + interval,
		tick:      tick,
		cancelled: interval <= 0,
	}
	s.handles = append(s.handles, h)
	return h
}

// Advance moves the clock forward by d, firing every due callback in
// deadline order (registration order on ties). Callbacks may schedule or
// cancel handles; new handles fire only if they become due within d.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		h := s.nextDue(target)
		if h == nil {
			s.now = target
			s.prune()
			s.mu.Unlock()
			return
		}
		s.now = h.next
		h.next += h.interval
		h.fired++
		s.mu.Unlock()

		h.tick()
	}
}

// Now returns the virtual time elapsed since New.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Active returns the handles that are still scheduled.
func (s *Scheduler) Active() []*Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]*Handle, 0, len(s.handles))
	for _, h := range s.handles {
		if !h.cancelled {
			active = append(active, h)
		}
	}
	return active
}

// nextDue requires s.mu.
func (s *Scheduler) nextDue(target time.Duration) *Handle {
	var due *Handle
	for _, h := range s.handles {
		if h.cancelled || h.next > target {
			continue
		}
		if due == nil || h.next < due.next || (h.next == due.next && h.seq < due.seq) {
			due = h
		}
	}
	return due
}

// prune requires s.mu.
func (s *Scheduler) prune() {
	kept := s.handles[:0]
	for _, h := range s.handles {
		if !h.cancelled {
			kept = append(kept, h)
		}
	}
	s.handles = kept
}
