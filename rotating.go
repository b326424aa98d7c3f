package dyntext

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/dyntext/internal/runtime"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
)

// RotatingLabel is a Label that cycles through the texts of a RotationSource.
type RotatingLabel struct {
	*Label
	source  ports.RotationSource
	rotator *runtime.Rotator
}

// WithQueryTimeout bounds every source query made by a rotation tick.
// Plain labels ignore it.
func WithQueryTimeout(d time.Duration) Option {
	return func(l *Label) {
		l.queryTimeout = d
	}
}

// NewRotating creates an idle rotating label over source.
// The rotation timer shares the label's scheduler and hooks.
func NewRotating(source ports.RotationSource, opts ...Option) (*RotatingLabel, error) {
	if source == nil {
		return nil, domain.ErrNoRotationSource
	}

	label, err := New(opts...)
	if err != nil {
		return nil, err
	}

	rotator, err := runtime.NewRotator(label.engine, source, label.scheduler,
		runtime.WithRotationHooks(label.hooks),
		runtime.WithRotationLogger(label.logger),
		runtime.WithQueryTimeout(label.queryTimeout),
	)
	if err != nil {
		_ = label.Close()
		return nil, fmt.Errorf("failed to create rotator: %w", err)
	}

	return &RotatingLabel{
		Label:   label,
		source:  source,
		rotator: rotator,
	}, nil
}

// StartRotations shows the first text and starts rotating at the source
// interval. No-op unless idle and the source is non-empty.
func (r *RotatingLabel) StartRotations(ctx context.Context) error {
	return r.rotator.StartRotations(ctx)
}

// StopRotations stops rotating on the next rotation tick, which also stops
// the label updates. No-op unless rotating.
func (r *RotatingLabel) StopRotations() {
	r.rotator.StopRotations()
}

// RotationState returns a snapshot of the rotation state.
func (r *RotatingLabel) RotationState() domain.RotationState {
	return r.rotator.State()
}

// Source returns the rotation source.
func (r *RotatingLabel) Source() ports.RotationSource {
	return r.source
}

// Watch returns a channel that signals when the source changes.
// Returns an error if the source does not support watching.
func (r *RotatingLabel) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := r.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current source does not support watching")
}

// Close halts rotations immediately and closes the label. Idempotent.
func (r *RotatingLabel) Close() error {
	r.rotator.Halt()
	return r.Label.Close()
}
