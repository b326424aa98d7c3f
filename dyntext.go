package dyntext

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/internal/runtime"
	"github.com/aretw0/dyntext/pkg/adapters/clock"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// Label is the high-level entry point for the dyntext library.
// It wraps the internal transition engine and owns its timer.
type Label struct {
	engine *runtime.Engine

	config    domain.TokenConfiguration
	scheduler ports.Scheduler
	display   ports.Display
	delegate  ports.Delegate
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	rng       *rand.Rand

	queryTimeout time.Duration

	// cancel stops the default scheduler, when the label created it.
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Option defines a functional option for configuring a Label.
type Option func(*Label)

// WithConfiguration sets the token configuration. It is validated by New.
func WithConfiguration(config domain.TokenConfiguration) Option {
	return func(l *Label) {
		l.config = config
	}
}

// WithScheduler injects the timer primitive. Defaults to a wall-clock scheduler.
func WithScheduler(s ports.Scheduler) Option {
	return func(l *Label) {
		l.scheduler = s
	}
}

// WithDisplay sets the host widget that receives every proxy text change.
func WithDisplay(d ports.Display) Option {
	return func(l *Label) {
		l.display = d
	}
}

// WithDelegate sets the receiver of "base text rendered" notifications.
func WithDelegate(d ports.Delegate) Option {
	return func(l *Label) {
		l.delegate = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(l *Label) {
		l.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Label) {
		l.logger = logger
	}
}

// WithRand sets the random source used to draw token lengths.
func WithRand(r *rand.Rand) Option {
	return func(l *Label) {
		l.rng = r
	}
}

// New creates an inactive label with an absent text.
func New(opts ...Option) (*Label, error) {
	l := &Label{}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.init(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Label) init() error {
	// Ensure logger is initialized (so we don't pass nil down to the runtime)
	if l.logger == nil {
		l.logger = logging.NewNop()
	}

	if l.scheduler == nil {
		ctx, cancel := context.WithCancel(context.Background())
		l.cancel = cancel
		l.scheduler = clock.New(clock.WithContext(ctx), clock.WithLogger(l.logger))
	}

	engine, err := runtime.NewEngine(l.config, l.scheduler,
		runtime.WithDisplay(l.display),
		runtime.WithDelegate(l.delegate),
		runtime.WithLifecycleHooks(l.hooks),
		runtime.WithLogger(l.logger),
		runtime.WithRand(l.rng),
	)
	if err != nil {
		if l.cancel != nil {
			l.cancel()
		}
		return fmt.Errorf("failed to create label: %w", err)
	}
	l.engine = engine
	return nil
}

// SetBaseText sets the text the label moves towards. It does not step.
func (l *Label) SetBaseText(text domain.Text) {
	l.engine.SetBaseText(text)
}

// SetText is SetBaseText(domain.Some(s)).
func (l *Label) SetText(s string) {
	l.engine.SetBaseText(domain.Some(s))
}

// ClearText sets an absent base text.
func (l *Label) ClearText() {
	l.engine.SetBaseText(domain.None())
}

// Start begins periodic updates. No-op when already active.
func (l *Label) Start() {
	l.engine.Start()
}

// Stop cancels periodic updates. No-op when inactive.
func (l *Label) Stop() {
	l.engine.Stop()
}

// Step performs one update tick synchronously.
func (l *Label) Step() {
	l.engine.Step()
}

// Text returns the text currently displayed.
func (l *Label) Text() domain.Text {
	return l.engine.Snapshot().ProxyText
}

// BaseText returns the text the label is moving towards.
func (l *Label) BaseText() domain.Text {
	return l.engine.Snapshot().BaseText
}

// Snapshot returns the full transition state.
func (l *Label) Snapshot() domain.TransitionState {
	return l.engine.Snapshot()
}

// IsActive reports whether periodic updates are running.
func (l *Label) IsActive() bool {
	return l.engine.IsActive()
}

// Configuration returns the active token configuration.
func (l *Label) Configuration() domain.TokenConfiguration {
	return l.engine.Configuration()
}

// SetConfiguration replaces the token configuration, rescheduling updates
// when active.
func (l *Label) SetConfiguration(config domain.TokenConfiguration) error {
	return l.engine.SetConfiguration(config)
}

// Close stops updates and releases the default scheduler. Idempotent.
func (l *Label) Close() error {
	l.closeOnce.Do(func() {
		l.engine.Stop()
		if l.cancel != nil {
			l.cancel()
		}
	})
	return nil
}
