// Package observability groups the Prometheus instruments used by the engine.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments. A nil *Metrics is valid and
// records nothing, so library code never needs a registry in tests.
type Metrics struct {
	TurnsProcessed      *prometheus.CounterVec
	CrisisInterventions prometheus.Counter
	MemoriesStored      prometheus.Counter
	RetrievalLatency    prometheus.Histogram
	GenerationFallbacks prometheus.Counter
	PersistenceFailures prometheus.Counter
	LiveSessions        prometheus.Gauge
	MemoryNodes         prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith registers against an explicit registry; tests use a fresh
// one to avoid duplicate-registration panics.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_processed_total",
			Help:      "Conversation turns processed, by resulting state.",
		}, []string{"state"}),
		CrisisInterventions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crisis_interventions_total",
			Help:      "Turns that escalated to crisis intervention.",
		}),
		MemoriesStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_stored_total",
			Help:      "Memory nodes stored.",
		}),
		RetrievalLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_latency_ms",
			Help:      "Memory retrieval latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		GenerationFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_fallbacks_total",
			Help:      "Responses served from the template path after a generation failure.",
		}),
		PersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Best-effort persistence writes that failed.",
		}),
		LiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Number of live conversation sessions.",
		}),
		MemoryNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "memory_nodes",
			Help:      "Number of memory nodes in the store.",
		}),
	}
}

func (m *Metrics) TurnProcessed(state string) {
	if m == nil {
		return
	}
	m.TurnsProcessed.WithLabelValues(state).Inc()
}

func (m *Metrics) CrisisIntervention() {
	if m == nil {
		return
	}
	m.CrisisInterventions.Inc()
}

func (m *Metrics) MemoryStored() {
	if m == nil {
		return
	}
	m.MemoriesStored.Inc()
}

func (m *Metrics) ObserveRetrieval(d time.Duration) {
	if m == nil {
		return
	}
	m.RetrievalLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) GenerationFallback() {
	if m == nil {
		return
	}
	m.GenerationFallbacks.Inc()
}

func (m *Metrics) PersistenceFailure() {
	if m == nil {
		return
	}
	m.PersistenceFailures.Inc()
}

func (m *Metrics) SetLiveSessions(n int) {
	if m == nil {
		return
	}
	m.LiveSessions.Set(float64(n))
}

func (m *Metrics) SetMemoryCount(n int) {
	if m == nil {
		return
	}
	m.MemoryNodes.Set(float64(n))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
