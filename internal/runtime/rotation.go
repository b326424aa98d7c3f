package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// Target is the part of an Engine a Rotator drives.
// The rotator only ever writes the base text, never the proxy.
type Target interface {
	SetBaseText(text domain.Text)
	Start()
	Stop()
}

// Rotator cycles a Target through the texts of a RotationSource on its own timer.
//
// Phases: idle -> rotating (StartRotations) -> stop pending (StopRotations)
// -> idle (on the next rotation tick).
type Rotator struct {
	tickMu sync.Mutex
	mu     sync.Mutex

	target    Target
	source    ports.RotationSource
	scheduler ports.Scheduler

	ctx           context.Context
	handle        ports.Handle
	index         int
	hasIndex      bool
	stopRequested bool
	phase         domain.RotationPhase

	queryTimeout time.Duration
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	now          func() time.Time
}

// RotatorOption configures a Rotator.
type RotatorOption func(*Rotator)

// WithRotationHooks registers the rotation callbacks of hooks.
func WithRotationHooks(hooks domain.LifecycleHooks) RotatorOption {
	return func(r *Rotator) {
		r.hooks = hooks
	}
}

// WithRotationLogger sets the structured logger. A nil logger is ignored.
func WithRotationLogger(logger *slog.Logger) RotatorOption {
	return func(r *Rotator) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithQueryTimeout bounds every source query made by a rotation tick.
func WithQueryTimeout(d time.Duration) RotatorOption {
	return func(r *Rotator) {
		r.queryTimeout = d
	}
}

// WithRotationClock overrides the timestamp source of emitted events.
func WithRotationClock(now func() time.Time) RotatorOption {
	return func(r *Rotator) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRotator creates an idle rotator.
func NewRotator(target Target, source ports.RotationSource, scheduler ports.Scheduler, opts ...RotatorOption) (*Rotator, error) {
	if source == nil {
		return nil, domain.ErrNoRotationSource
	}
	if target == nil || scheduler == nil {
		return nil, fmt.Errorf("rotator requires a target and a scheduler")
	}

	r := &Rotator{
		target:    target,
		source:    source,
		scheduler: scheduler,
		ctx:       context.Background(),
		phase:     domain.PhaseIdle,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// StartRotations shows the first text immediately, then rotates at the
// source interval and starts the target's own ticks.
// It is a no-op unless the rotator is idle and the source is non-empty.
// ctx is used for every source query until the rotation stops.
func (r *Rotator) StartRotations(ctx context.Context) error {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	r.mu.Lock()
	if r.phase != domain.PhaseIdle {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	count, err := r.source.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count rotation texts: %w", err)
	}
	if count <= 0 {
		r.logger.Debug("rotation not started: source is empty")
		return nil
	}

	interval, err := r.source.Interval(ctx)
	if err != nil {
		return fmt.Errorf("failed to read rotation interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInterval, interval)
	}

	r.mu.Lock()
	r.ctx = ctx
	r.phase = domain.PhaseRotating
	r.mu.Unlock()

	event := r.rotate()

	r.mu.Lock()
	r.handle = r.scheduler.ScheduleRepeating(interval, r.tick)
	r.mu.Unlock()

	r.target.Start()
	r.logger.Debug("rotations started", "interval", interval, "count", count)
	r.emit(event)
	return nil
}

// StopRotations requests a graceful stop. The next rotation tick cancels the
// rotation timer and stops the target instead of rotating.
// It is a no-op unless rotations are running.
func (r *Rotator) StopRotations() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != domain.PhaseRotating {
		return
	}
	r.stopRequested = true
	r.phase = domain.PhaseStopPending
	r.logger.Debug("rotation stop requested")
}

// Halt cancels rotations immediately, without waiting for the next tick, and
// stops the target. It is a no-op when idle.
func (r *Rotator) Halt() {
	r.mu.Lock()
	if r.phase == domain.PhaseIdle {
		r.mu.Unlock()
		return
	}
	if r.handle != nil {
		r.handle.Cancel()
		r.handle = nil
	}
	r.stopRequested = false
	r.phase = domain.PhaseIdle
	r.mu.Unlock()

	r.target.Stop()
	r.logger.Debug("rotations halted")
}

// State returns a snapshot of the rotation state.
func (r *Rotator) State() domain.RotationState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.RotationState{
		Index:         r.index,
		HasIndex:      r.hasIndex,
		StopRequested: r.stopRequested,
		Phase:         r.phase,
	}
}

// tick is the rotation timer callback.
func (r *Rotator) tick() {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	r.mu.Lock()
	phase := r.phase
	r.mu.Unlock()

	switch phase {
	case domain.PhaseIdle:
		// Late tick from a cancelled handle.
		return
	case domain.PhaseStopPending:
		r.emit(r.finishStop())
		return
	}

	r.emit(r.rotate())
}

// finishStop performs the deferred cleanup requested by StopRotations.
func (r *Rotator) finishStop() *domain.RotationEvent {
	r.mu.Lock()
	if r.handle != nil {
		r.handle.Cancel()
		r.handle = nil
	}
	r.stopRequested = false
	r.phase = domain.PhaseIdle
	event := &domain.RotationEvent{
		EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventRotationStop},
		Index:     r.index,
	}
	r.mu.Unlock()

	r.target.Stop()
	r.logger.Debug("rotations stopped")
	return event
}

// rotate advances to the next text and hands it to the target.
// Source failures skip the rotation and keep the current index.
func (r *Rotator) rotate() *domain.RotationEvent {
	ctx, cancel := r.queryContext()
	defer cancel()

	count, err := r.source.Count(ctx)
	if err != nil {
		r.logger.Warn("rotation skipped: count failed", "err", err)
		return nil
	}
	if count <= 0 {
		return nil
	}

	r.mu.Lock()
	next := 0
	if r.hasIndex && count > r.index+1 {
		next = r.index + 1
	}
	r.mu.Unlock()

	text, err := r.source.Text(ctx, next)
	if err != nil {
		r.logger.Warn("rotation skipped: text fetch failed", "index", next, "err", err)
		return nil
	}

	r.mu.Lock()
	r.index = next
	r.hasIndex = true
	r.mu.Unlock()

	r.target.SetBaseText(text)
	r.logger.Debug("rotated", "index", next, "text", text.String())

	return &domain.RotationEvent{
		EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventRotate},
		Index:     next,
		Text:      text,
	}
}

func (r *Rotator) queryContext() (context.Context, context.CancelFunc) {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()

	if r.queryTimeout > 0 {
		return context.WithTimeout(ctx, r.queryTimeout)
	}
	return ctx, func() {}
}

func (r *Rotator) emit(event *domain.RotationEvent) {
	if event == nil {
		return
	}
	ctx := context.Background()
	switch event.Type {
	case domain.EventRotate:
		if r.hooks.OnRotate != nil {
			r.hooks.OnRotate(ctx, event)
		}
	case domain.EventRotationStop:
		if r.hooks.OnRotationStop != nil {
			r.hooks.OnRotationStop(ctx, event)
		}
	}
}
