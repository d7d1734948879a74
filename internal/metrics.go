package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are created for every runtime and only registered when a
// registerer is configured.
type Metrics struct {
	tracks             prometheus.Counter
	triggers           *prometheus.CounterVec
	effectRuns         prometheus.Counter
	effectsActive      prometheus.Gauge
	readonlyViolations prometheus.Counter
}

func NewMetrics(namespace string, constLabels prometheus.Labels) *Metrics {
	return &Metrics{
		tracks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "tracks_total",
			Help:        "Number of dependency edges recorded.",
			ConstLabels: constLabels,
		}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "triggers_total",
			Help:        "Number of trigger calls by operation.",
			ConstLabels: constLabels,
		}, []string{"op"}),
		effectRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "effect_runs_total",
			Help:        "Number of tracked effect runs.",
			ConstLabels: constLabels,
		}),
		effectsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "effects_active",
			Help:        "Number of effects that have not been stopped.",
			ConstLabels: constLabels,
		}),
		readonlyViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "readonly_violations_total",
			Help:        "Number of refused mutations on readonly proxies.",
			ConstLabels: constLabels,
		}),
	}
}

// Register adds every collector to reg, stopping at the first failure.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}

	return nil
}

// Unregister removes every collector from reg.
func (m *Metrics) Unregister(reg prometheus.Registerer) {
	for _, c := range m.collectors() {
		reg.Unregister(c)
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.tracks,
		m.triggers,
		m.effectRuns,
		m.effectsActive,
		m.readonlyViolations,
	}
}
