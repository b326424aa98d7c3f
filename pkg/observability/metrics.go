package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "dyntext"

// Metrics records label activity as Prometheus metrics.
type Metrics struct {
	steps      *prometheus.CounterVec
	resets     *prometheus.CounterVec
	renders    prometheus.Counter
	rotations  *prometheus.CounterVec
	stops      prometheus.Counter
	proxyRunes prometheus.Gauge
	tokenLen   prometheus.Histogram
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsSettings)

type metricsSettings struct {
	namespace string
	labels    prometheus.Labels
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) MetricsOption {
	return func(s *metricsSettings) {
		s.namespace = ns
	}
}

// WithConstLabels attaches constant labels (e.g. the label name) to every metric.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(s *metricsSettings) {
		s.labels = labels
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) (*Metrics, error) {
	settings := metricsSettings{namespace: DefaultNamespace}
	for _, opt := range opts {
		opt(&settings)
	}
	ns, cl := settings.namespace, settings.labels

	m := &Metrics{
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "steps_total", ConstLabels: cl,
			Help: "Engine steps that changed the displayed text.",
		}, []string{"policy", "op"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "resets_total", ConstLabels: cl,
			Help: "Steps that cleared the displayed text before adding.",
		}, []string{"policy"}),
		renders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "renders_total", ConstLabels: cl,
			Help: "Ticks that found the base text fully rendered.",
		}),
		rotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "rotations_total", ConstLabels: cl,
			Help: "Rotations by source index.",
		}, []string{"index"}),
		stops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "rotation_stops_total", ConstLabels: cl,
			Help: "Completed graceful rotation stops.",
		}),
		proxyRunes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Name: "proxy_runes", ConstLabels: cl,
			Help: "Length in runes of the displayed text.",
		}),
		tokenLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Name: "token_length_runes", ConstLabels: cl,
			Help:    "Token length drawn per step.",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.steps, m.resets, m.renders, m.rotations, m.stops, m.proxyRunes, m.tokenLen} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTextUpdate: func(_ context.Context, e *domain.TextEvent) {
			m.steps.WithLabelValues(e.Policy.String(), string(e.Op)).Inc()
			if e.Reset {
				m.resets.WithLabelValues(e.Policy.String()).Inc()
			}
			m.tokenLen.Observe(float64(e.TokenLength))
			m.proxyRunes.Set(float64(e.ProxyText.RuneLen()))
		},
		OnBaseTextRendered: func(_ context.Context, e *domain.TextEvent) {
			m.renders.Inc()
			m.proxyRunes.Set(float64(e.ProxyText.RuneLen()))
		},
		OnRotate: func(_ context.Context, e *domain.RotationEvent) {
			m.rotations.WithLabelValues(strconv.Itoa(e.Index)).Inc()
		},
		OnRotationStop: func(context.Context, *domain.RotationEvent) {
			m.stops.Inc()
		},
	}
}
