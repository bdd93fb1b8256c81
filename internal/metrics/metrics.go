// Package metrics exports engine, search cache and HTTP counters to
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Divas-Gupta30/adaptive-rag/internal/graph"
)

// Metrics implements graph.Recorder and websearch.CacheObserver.
type Metrics struct {
	runsTotal          *prometheus.CounterVec
	nodeExecutions     *prometheus.CounterVec
	judgmentsTotal     *prometheus.CounterVec
	generationAttempts prometheus.Histogram
	runDuration        prometheus.Histogram
	cacheLookups       *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg. It panics if any
// is already registered there.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_runs_total",
				Help: "Total number of engine runs by outcome",
			},
			[]string{"outcome"},
		),
		nodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"node"},
		),
		judgmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_judgments_total",
				Help: "Judgment labels returned, by judging node",
			},
			[]string{"kind", "label"},
		),
		generationAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_generation_attempts",
				Help:    "Generation attempts per finished run",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_run_duration_seconds",
				Help:    "Duration of engine runs",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_websearch_cache_total",
				Help: "Web search cache lookups by result",
			},
			[]string{"result"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rag_http_request_duration_seconds",
				Help: "Duration of HTTP requests",
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(
		m.runsTotal,
		m.nodeExecutions,
		m.judgmentsTotal,
		m.generationAttempts,
		m.runDuration,
		m.cacheLookups,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) NodeExecuted(n graph.Node) {
	m.nodeExecutions.WithLabelValues(n.String()).Inc()
}

func (m *Metrics) Judged(n graph.Node, label graph.Label) {
	m.judgmentsTotal.WithLabelValues(n.String(), string(label)).Inc()
}

func (m *Metrics) RunFinished(o graph.Outcome, attempts int, elapsed time.Duration) {
	m.runsTotal.WithLabelValues(string(o)).Inc()
	m.generationAttempts.Observe(float64(attempts))
	m.runDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheResult(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
