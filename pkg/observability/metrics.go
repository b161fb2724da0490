package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agrisense"

// Metrics holds the Prometheus counters for telemetry ingest and frost evaluation.
type Metrics struct {
	ReadingsIngested  *prometheus.CounterVec // labels: source={http,mqtt}
	IngestRejected    *prometheus.CounterVec // labels: source, reason
	ReadingsPublished prometheus.Counter
	PublishErrors     prometheus.Counter
	FrostEvaluations  *prometheus.CounterVec // labels: level
	SilentDevices     prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_ingested_total",
			Help:      "Readings stored, by ingest source.",
		}, []string{"source"}),
		IngestRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_rejected_total",
			Help:      "Readings refused before storage, by source and reason.",
		}, []string{"source", "reason"}),
		ReadingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_published_total",
			Help:      "Readings forwarded to the readings topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_publish_errors_total",
			Help:      "Failed forwards to the readings topic.",
		}),
		FrostEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frost_evaluations_total",
			Help:      "Frost-risk evaluations, by resulting level.",
		}, []string{"level"}),
		SilentDevices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "silent_device_checks_total",
			Help:      "Liveness checks that found a device silent.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsIngested,
		m.IngestRejected,
		m.ReadingsPublished,
		m.PublishErrors,
		m.FrostEvaluations,
		m.SilentDevices,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can build as many as they like.
func NewMetricsForTesting() *Metrics { return newMetrics() }
