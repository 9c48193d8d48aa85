package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics on top of a small fixed set of
// Prometheus collectors, registered once at construction. Prometheus wants
// collectors declared up front rather than a free-form key/value store, so
// Add/Store route by key into the matching collector and fall back to a
// generic counter vector for anything unrecognized (e.g. ObserveRouter's
// "logging.events_total"/"logging.dropped_total" keys).
type PrometheusMetrics struct {
	tickDuration   prometheus.Histogram
	collisionCount prometheus.Counter
	skidEntries    prometheus.Counter
	skidExits      prometheus.Counter
	idlingUnits    prometheus.Gauge
	generic        *prometheus.CounterVec
}

// NewPrometheusMetrics registers the simulation's collectors against reg and
// returns a Metrics adapter over them.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rtscore",
			Subsystem: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one simulation tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		collisionCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtscore",
			Subsystem: "collision",
			Name:      "resolutions_total",
			Help:      "Total unit-unit/unit-feature/unit-static collision resolutions applied.",
		}),
		skidEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtscore",
			Subsystem: "skid",
			Name:      "entries_total",
			Help:      "Total times a unit entered skid state from an impulse.",
		}),
		skidExits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtscore",
			Subsystem: "skid",
			Name:      "exits_total",
			Help:      "Total times a unit recovered from skid state.",
		}),
		idlingUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rtscore",
			Subsystem: "locomotion",
			Name:      "idling_units",
			Help:      "Current count of units classified as idling.",
		}),
		generic: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtscore",
			Subsystem: "sim",
			Name:      "events_total",
			Help:      "Catch-all counter for telemetry keys without a dedicated collector.",
		}, []string{"key"}),
	}

	reg.MustRegister(m.tickDuration, m.collisionCount, m.skidEntries, m.skidExits, m.idlingUnits, m.generic)
	return m
}

// Add implements Metrics, routing well-known keys to their dedicated
// collector and anything else into the generic counter vector.
func (m *PrometheusMetrics) Add(key string, delta uint64) {
	switch key {
	case "collision.resolutions":
		m.collisionCount.Add(float64(delta))
	case "skid.entries":
		m.skidEntries.Add(float64(delta))
	case "skid.exits":
		m.skidExits.Add(float64(delta))
	default:
		m.generic.WithLabelValues(key).Add(float64(delta))
	}
}

// Store implements Metrics for gauge-like keys.
func (m *PrometheusMetrics) Store(key string, value uint64) {
	switch key {
	case "locomotion.idling_units":
		m.idlingUnits.Set(float64(value))
	default:
		m.generic.WithLabelValues(key).Add(float64(value))
	}
}

// ObserveTick records one tick's wall-clock duration in seconds.
func (m *PrometheusMetrics) ObserveTick(seconds float64) {
	m.tickDuration.Observe(seconds)
}
