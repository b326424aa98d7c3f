// Package clock implements ports.Scheduler on top of time.Ticker.
package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/ports"
)

// Scheduler runs each repeating callback on its own goroutine, so the ticks
// of one handle never overlap. Ticks missed while a callback runs are
// dropped by time.Ticker.
type Scheduler struct {
	ctx    context.Context
	logger *slog.Logger
	wg     sync.WaitGroup
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithContext bounds every handle by ctx: cancelling it cancels them all.
func WithContext(ctx context.Context) Option {
	return func(s *Scheduler) {
		s.ctx = ctx
	}
}

// WithLogger configures a logger for the Scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a wall-clock scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:    context.Background(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type handle struct {
	once sync.Once
	done chan struct{}
}

// Cancel stops future ticks. Safe to call repeatedly and from the callback.
func (h *handle) Cancel() {
	h.once.Do(func() {
		close(h.done)
	})
}

func (h *handle) cancelled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ScheduleRepeating starts calling tick every interval until the handle is cancelled.
func (s *Scheduler) ScheduleRepeating(interval time.Duration, tick func()) ports.Handle {
	h := &handle{done: make(chan struct{})}
	if interval <= 0 {
		s.logger.Warn("refusing to schedule non-positive interval", "interval", interval)
		h.Cancel()
		return h
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				h.Cancel()
				return
			case <-h.done:
				return
			case <-ticker.C:
				// A cancel racing with the ticker wins.
				if h.cancelled() {
					return
				}
				tick()
			}
		}
	}()
	return h
}

// Wait blocks until every cancelled handle's goroutine has returned.
// Handles that are still scheduled keep Wait blocked.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
