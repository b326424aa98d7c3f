package ports

import "time"

// Handle is a scheduled repeating callback.
type Handle interface {
	// Cancel prevents future ticks. It is idempotent and does not wait for a
	// tick in progress, so it is safe to call from inside the callback.
	Cancel()
}

// Scheduler defines the periodic timer primitive used to drive ticks.
// Implementations must not invoke the callback of one handle concurrently
// with itself. Firing late or coalescing missed ticks is allowed.
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, tick func()) Handle
}
