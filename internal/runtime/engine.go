package runtime

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// Engine moves a proxy text towards a base text, one token per tick.
//
// Two locks are involved: tickMu serialises steps (including the
// notifications they emit), mu guards the text state. Notifications run with
// only tickMu held, so displays, delegates and hooks may call SetBaseText,
// Stop or Snapshot. They must not call Step.
type Engine struct {
	tickMu sync.Mutex
	mu     sync.Mutex

	config domain.TokenConfiguration
	base   domain.Text
	proxy  domain.Text
	active bool
	handle ports.Handle

	scheduler ports.Scheduler
	display   ports.Display
	delegate  ports.Delegate
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	intN      func(n int) int
	now       func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDisplay sets the host widget that mirrors the proxy text.
func WithDisplay(d ports.Display) EngineOption {
	return func(e *Engine) {
		e.display = d
	}
}

// WithDelegate sets the receiver of "base text rendered" notifications.
func WithDelegate(d ports.Delegate) EngineOption {
	return func(e *Engine) {
		e.delegate = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRand sets the random source used to draw token lengths.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.intN = r.IntN
		}
	}
}

// WithClock overrides the timestamp source of emitted events.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine with a validated configuration.
// A zero configuration is replaced by domain.DefaultTokenConfiguration.
// With a nil scheduler, Start only flips the active flag and Step has to be
// driven by the caller.
func NewEngine(config domain.TokenConfiguration, scheduler ports.Scheduler, opts ...EngineOption) (*Engine, error) {
	if config.IsZero() {
		config = domain.DefaultTokenConfiguration()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:    config,
		scheduler: scheduler,
		logger:    logging.NewNop(),
		intN:      rand.IntN,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// SetBaseText sets the target text. It does not step.
func (e *Engine) SetBaseText(text domain.Text) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.base = text
	e.logger.Debug("base text set", "base", text.String(), "absent", text.IsNone())
}

// Start begins periodic ticking. It is a no-op when already active.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return
	}
	e.active = true
	e.schedule()
	e.logger.Debug("updates started", "interval", e.config.Interval())
}

// Stop cancels periodic ticking. It is a no-op when inactive.
// A tick already in progress is not interrupted.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return
	}
	e.unschedule()
	e.active = false
	e.logger.Debug("updates stopped")
}

// SetConfiguration replaces the configuration. When active, the tick handle
// is re-created at the new interval.
func (e *Engine) SetConfiguration(config domain.TokenConfiguration) error {
	if err := config.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.config = config
	if e.active {
		e.unschedule()
		e.schedule()
	}
	e.logger.Debug("configuration updated", "config", config.String())
	return nil
}

// schedule requires e.mu.
func (e *Engine) schedule() {
	if e.scheduler == nil {
		return
	}
	e.handle = e.scheduler.ScheduleRepeating(e.config.Interval(), e.Step)
}

// unschedule requires e.mu.
func (e *Engine) unschedule() {
	if e.handle != nil {
		e.handle.Cancel()
		e.handle = nil
	}
}

// Configuration returns the active configuration.
func (e *Engine) Configuration() domain.TokenConfiguration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// IsActive reports whether the tick scheduler is running.
func (e *Engine) IsActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Snapshot returns the current text state.
func (e *Engine) Snapshot() domain.TransitionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.TransitionState{
		BaseText:  e.base,
		ProxyText: e.proxy,
		Active:    e.active,
	}
}

// Step performs one tick: it moves the proxy text one token towards the base
// text, or reports the base as rendered when they already match.
func (e *Engine) Step() {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	e.mu.Lock()
	event := e.advance()
	e.mu.Unlock()

	e.emit(event)
}

// advance applies the configured policy. It requires e.mu.
func (e *Engine) advance() *domain.TextEvent {
	event := &domain.TextEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventTextUpdate},
		Policy:    e.config.UpdatePolicy(),
		Op:        domain.OpNone,
		BaseText:  e.base,
		Previous:  e.proxy,
	}

	if e.proxy.Equal(e.base) {
		event.Type = domain.EventTextRendered
		event.ProxyText = e.proxy
		return event
	}

	rng := e.config.TokenLength()
	n := rng.Min + e.intN(rng.Span())
	event.TokenLength = n

	switch e.config.UpdatePolicy() {
	case domain.ResetThenAdd:
		if !e.proxy.IsNone() && !e.base.HasPrefix(e.proxy) {
			e.proxy = domain.None()
			event.Reset = true
		}
		e.proxy = appendNextToken(e.base, e.proxy, n)
		event.Op = domain.OpAppend

	case domain.DeleteThenAdd:
		switch {
		case e.proxy.IsEmpty() && e.base.IsNone():
			// Nothing left to delete and nothing to add: settle on absent.
			e.proxy = domain.None()
			event.Op = domain.OpRemove
		case e.proxy.IsEmpty(), e.base.HasPrefix(e.proxy):
			e.proxy = appendNextToken(e.base, e.proxy, n)
			event.Op = domain.OpAppend
		default:
			e.proxy = removeLastToken(e.proxy, n)
			event.Op = domain.OpRemove
		}

	case domain.ResetThenAddReverse:
		if !e.proxy.IsNone() && !e.base.HasSuffix(e.proxy) {
			e.proxy = domain.None()
			event.Reset = true
		}
		e.proxy = prependNextToken(e.base, e.proxy, n)
		event.Op = domain.OpPrepend
	}

	event.ProxyText = e.proxy
	if event.Reset {
		e.logger.Debug("proxy reset", "policy", event.Policy.String(), "base", e.base.String())
	}
	return event
}

func (e *Engine) emit(event *domain.TextEvent) {
	ctx := context.Background()

	if event.Type == domain.EventTextRendered {
		if e.delegate != nil {
			e.delegate.DidRenderBaseText(event.BaseText)
		}
		if e.hooks.OnBaseTextRendered != nil {
			e.hooks.OnBaseTextRendered(ctx, event)
		}
		return
	}

	if event.ProxyText.Equal(event.Previous) {
		return
	}
	if e.display != nil {
		e.display.SetDisplayedText(event.ProxyText)
	}
	if e.hooks.OnTextUpdate != nil {
		e.hooks.OnTextUpdate(ctx, event)
	}
}
