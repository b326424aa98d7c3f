package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/dyntext"
	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/pkg/adapters/manual"
	"github.com/aretw0/dyntext/pkg/adapters/memory"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsLabelActivity(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	config, err := domain.NewTokenConfiguration(domain.TokenRange{Min: 1, Max: 1}, 10, domain.ResetThenAdd)
	require.NoError(t, err)

	sched := manual.New()
	label, err := dyntext.NewRotating(memory.NewSource(time.Second, "ab", "xy"),
		dyntext.WithScheduler(sched),
		dyntext.WithConfiguration(config),
		dyntext.WithLifecycleHooks(metrics.Hooks()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = label.Close() })

	require.NoError(t, label.StartRotations(context.Background()))
	// 100ms and 200ms type "ab"; the remaining ticks report it rendered.
	sched.Advance(900 * time.Millisecond)

	expected := `
# HELP dyntext_steps_total Engine steps that changed the displayed text.
# TYPE dyntext_steps_total counter
dyntext_steps_total{op="append",policy="reset-then-add"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dyntext_steps_total"))
	rotations, err := testutil.GatherAndCount(reg, "dyntext_rotations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, rotations)

	gathered, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range gathered {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, float64(7), values["dyntext_renders_total"])
	assert.Equal(t, float64(2), values["dyntext_proxy_runes"])

	// Rotating to "xy" resets the proxy.
	sched.Advance(100 * time.Millisecond)
	resets := `
# HELP dyntext_resets_total Steps that cleared the displayed text before adding.
# TYPE dyntext_resets_total counter
dyntext_resets_total{policy="reset-then-add"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(resets), "dyntext_resets_total"))

	label.StopRotations()
	sched.Advance(time.Second)
	stops := `
# HELP dyntext_rotation_stops_total Completed graceful rotation stops.
# TYPE dyntext_rotation_stops_total counter
dyntext_rotation_stops_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(stops), "dyntext_rotation_stops_total"))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)

	_, err = observability.NewMetrics(reg, observability.WithNamespace("other"))
	assert.NoError(t, err)
}

func TestNewMetrics_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg, observability.WithConstLabels(prometheus.Labels{"label": "status"}))
	require.NoError(t, err)

	metrics.Hooks().OnRotationStop(context.Background(), &domain.RotationEvent{})

	expected := `
# HELP dyntext_rotation_stops_total Completed graceful rotation stops.
# TYPE dyntext_rotation_stops_total counter
dyntext_rotation_stops_total{label="status"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dyntext_rotation_stops_total"))
}

func TestChain_DeliversToEverySet(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnRotate: func(context.Context, *domain.RotationEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnRotate:       func(context.Context, *domain.RotationEvent) { order = append(order, "second") },
		OnTextUpdate:   func(context.Context, *domain.TextEvent) { order = append(order, "update") },
		OnRotationStop: func(context.Context, *domain.RotationEvent) { order = append(order, "stop") },
	}

	hooks := observability.Chain(first, domain.LifecycleHooks{}, second)
	ctx := context.Background()
	hooks.OnRotate(ctx, &domain.RotationEvent{})
	hooks.OnTextUpdate(ctx, &domain.TextEvent{})
	hooks.OnBaseTextRendered(ctx, &domain.TextEvent{})
	hooks.OnRotationStop(ctx, &domain.RotationEvent{})

	assert.Equal(t, []string{"first", "second", "update", "stop"}, order)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(logging.NewWithFormat(&buf, slog.LevelDebug, logging.FormatText))

	ctx := context.Background()
	hooks.OnRotate(ctx, &domain.RotationEvent{Index: 2, Text: domain.Some("third")})
	hooks.OnTextUpdate(ctx, &domain.TextEvent{Policy: domain.DeleteThenAdd, Op: domain.OpRemove, ProxyText: domain.Some("HEL")})

	out := buf.String()
	assert.Contains(t, out, "msg=rotate index=2 text=third")
	assert.Contains(t, out, "policy=delete-then-add op=remove")
}
