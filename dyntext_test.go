package dyntext_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/dyntext"
	"github.com/aretw0/dyntext/pkg/adapters/manual"
	"github.com/aretw0/dyntext/pkg/adapters/memory"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel_Defaults(t *testing.T) {
	label, err := dyntext.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = label.Close() })

	assert.Equal(t, domain.DefaultTokenConfiguration(), label.Configuration())
	assert.True(t, label.Text().IsNone())
	assert.True(t, label.BaseText().IsNone())
	assert.False(t, label.IsActive())
}

func TestLabel_InvalidConfiguration(t *testing.T) {
	label, err := dyntext.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = label.Close() })

	err = label.SetConfiguration(domain.TokenConfiguration{})
	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

// Scenario: "HELLO" at 10 ticks per second with length [2,3] is fully
// displayed within 2 seconds.
func TestLabel_ConvergesOnSchedule(t *testing.T) {
	sched := manual.New()
	config, err := domain.NewTokenConfiguration(domain.TokenRange{Min: 2, Max: 3}, 10, domain.ResetThenAdd)
	require.NoError(t, err)

	var displayed []string
	label, err := dyntext.New(
		dyntext.WithScheduler(sched),
		dyntext.WithConfiguration(config),
		dyntext.WithDisplay(ports.DisplayFunc(func(text domain.Text) {
			displayed = append(displayed, text.String())
		})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = label.Close() })

	label.SetText("HELLO")
	label.Start()
	sched.Advance(2 * time.Second)

	assert.Equal(t, domain.Some("HELLO"), label.Text())
	require.NotEmpty(t, displayed)
	assert.Equal(t, "HELLO", displayed[len(displayed)-1])
	for _, d := range displayed {
		assert.True(t, domain.Some("HELLO").HasPrefix(domain.Some(d)), d)
	}
}

func TestLabel_ClearText(t *testing.T) {
	label, err := dyntext.New(dyntext.WithScheduler(manual.New()))
	require.NoError(t, err)

	label.SetText("hi")
	for range 3 {
		label.Step()
	}
	require.Equal(t, domain.Some("hi"), label.Text())

	label.ClearText()
	label.Step()
	assert.True(t, label.Text().IsNone())
	assert.True(t, label.Snapshot().Converged())
}

func TestLabel_CloseStopsUpdates(t *testing.T) {
	sched := manual.New()
	label, err := dyntext.New(dyntext.WithScheduler(sched))
	require.NoError(t, err)

	label.SetText("abcdef")
	label.Start()
	require.True(t, label.IsActive())

	require.NoError(t, label.Close())
	require.NoError(t, label.Close())
	assert.False(t, label.IsActive())
	assert.Empty(t, sched.Active())

	sched.Advance(time.Second)
	assert.True(t, label.Text().IsNone())
}

func TestLabel_HooksAndDelegate(t *testing.T) {
	var updates, rendered int
	var renderedBase domain.Text
	label, err := dyntext.New(
		dyntext.WithScheduler(manual.New()),
		dyntext.WithLifecycleHooks(domain.LifecycleHooks{
			OnTextUpdate:       func(context.Context, *domain.TextEvent) { updates++ },
			OnBaseTextRendered: func(context.Context, *domain.TextEvent) { rendered++ },
		}),
		dyntext.WithDelegate(ports.DelegateFunc(func(base domain.Text) { renderedBase = base })),
	)
	require.NoError(t, err)

	label.SetText("x")
	label.Step()
	label.Step()

	assert.Equal(t, 1, updates)
	assert.Equal(t, 1, rendered)
	assert.Equal(t, domain.Some("x"), renderedBase)
}

func TestNewRotating_RequiresSource(t *testing.T) {
	_, err := dyntext.NewRotating(nil)
	assert.ErrorIs(t, err, domain.ErrNoRotationSource)
}

func TestRotatingLabel_Lifecycle(t *testing.T) {
	sched := manual.New()
	source := memory.NewSource(time.Second, "one", "two", "three")
	var stops int

	label, err := dyntext.NewRotating(source,
		dyntext.WithScheduler(sched),
		dyntext.WithQueryTimeout(time.Second),
		dyntext.WithLifecycleHooks(domain.LifecycleHooks{
			OnRotationStop: func(context.Context, *domain.RotationEvent) { stops++ },
		}),
	)
	require.NoError(t, err)
	assert.Same(t, source, label.Source())

	require.NoError(t, label.StartRotations(context.Background()))
	assert.Equal(t, domain.Some("one"), label.BaseText())
	assert.True(t, label.IsActive())

	sched.Advance(3 * time.Second)
	assert.Equal(t, domain.Some("one"), label.BaseText(), "wrapped after three rotations")
	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, domain.Some("one"), label.Text())

	label.StopRotations()
	assert.Equal(t, domain.PhaseStopPending, label.RotationState().Phase)
	sched.Advance(time.Second)
	assert.Equal(t, domain.PhaseIdle, label.RotationState().Phase)
	assert.False(t, label.IsActive())
	assert.Equal(t, 1, stops)
}

func TestRotatingLabel_CloseHalts(t *testing.T) {
	sched := manual.New()
	label, err := dyntext.NewRotating(memory.NewSource(time.Second, "a", "b"), dyntext.WithScheduler(sched))
	require.NoError(t, err)
	require.NoError(t, label.StartRotations(context.Background()))

	require.NoError(t, label.Close())
	assert.Equal(t, domain.PhaseIdle, label.RotationState().Phase)
	assert.Empty(t, sched.Active())
}

func TestRotatingLabel_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := memory.NewSource(time.Second, "a")
	label, err := dyntext.NewRotating(source, dyntext.WithScheduler(manual.New()))
	require.NoError(t, err)

	changes, err := label.Watch(ctx)
	require.NoError(t, err)

	source.Append("b")
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
}

type plainSource struct{}

func (plainSource) Count(context.Context) (int, error)              { return 0, nil }
func (plainSource) Text(context.Context, int) (domain.Text, error)  { return domain.None(), nil }
func (plainSource) Interval(context.Context) (time.Duration, error) { return time.Second, nil }

func TestRotatingLabel_WatchUnsupported(t *testing.T) {
	label, err := dyntext.NewRotating(plainSource{}, dyntext.WithScheduler(manual.New()))
	require.NoError(t, err)

	_, err = label.Watch(context.Background())
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, dyntext.Version)
}
