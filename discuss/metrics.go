package discuss

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus metrics for discussion execution.
//
// Metrics exposed (all namespaced "consensus_"):
//
//   - inflight_provider_calls (gauge): provider calls currently running.
//   - provider_calls_total (counter): calls by provider and recorded status.
//   - provider_call_duration_ms (histogram): call latency by provider.
//   - rounds_total (counter): rounds closed, by mode.
//   - quorum_failures_total (counter): rounds that failed the quorum check.
//   - discussions_total (counter): finished discussions by mode and outcome
//     ("done" or "failed").
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := discuss.NewMetrics(registry)
//	orch := discuss.NewOrchestrator(reg, discuss.WithMetrics(metrics))
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// All methods are nil-safe so the orchestrator can run without metrics.
type Metrics struct {
	inflightCalls  prometheus.Gauge
	providerCalls  *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	rounds         *prometheus.CounterVec
	quorumFailures prometheus.Counter
	discussions    *prometheus.CounterVec
}

// NewMetrics creates and registers the discussion metrics against the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		inflightCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "consensus",
			Name:      "inflight_provider_calls",
			Help:      "Number of provider calls currently executing.",
		}),
		providerCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider and recorded status.",
		}, []string{"provider", "status"}),
		callDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consensus",
			Name:      "provider_call_duration_ms",
			Help:      "Provider call latency in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"provider"}),
		rounds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "rounds_total",
			Help:      "Rounds closed, by discussion mode.",
		}, []string{"mode"}),
		quorumFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "quorum_failures_total",
			Help:      "Rounds that finished below the success quorum.",
		}),
		discussions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consensus",
			Name:      "discussions_total",
			Help:      "Finished discussions by mode and outcome.",
		}, []string{"mode", "outcome"}),
	}
}

// CallStarted records a provider call entering flight.
func (m *Metrics) CallStarted() {
	if m == nil {
		return
	}
	m.inflightCalls.Inc()
}

// CallFinished records a finished provider call with its recorded status
// and duration.
func (m *Metrics) CallFinished(providerName string, status Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inflightCalls.Dec()
	m.providerCalls.WithLabelValues(providerName, string(status)).Inc()
	m.callDuration.WithLabelValues(providerName).Observe(float64(elapsed.Milliseconds()))
}

// RoundClosed records a closed round for the mode.
func (m *Metrics) RoundClosed(mode Mode) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(string(mode)).Inc()
}

// QuorumFailed records a round failing the quorum check.
func (m *Metrics) QuorumFailed() {
	if m == nil {
		return
	}
	m.quorumFailures.Inc()
}

// DiscussionFinished records a discussion outcome ("done" or "failed").
func (m *Metrics) DiscussionFinished(mode Mode, outcome string) {
	if m == nil {
		return
	}
	m.discussions.WithLabelValues(string(mode), outcome).Inc()
}
