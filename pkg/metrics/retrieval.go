package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RetrievalMetrics is safe to use as a nil pointer; every method is then a no-op.
type RetrievalMetrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	strategyTotal *prometheus.CounterVec
	cacheTotal    *prometheus.CounterVec
	jobTotal      *prometheus.CounterVec
	replyTotal    *prometheus.CounterVec
	eventTotal    *prometheus.CounterVec
}

func NewRetrievalMetrics() *RetrievalMetrics {
	registry := prometheus.NewRegistry()

	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edu",
			Subsystem: "retrieval",
			Name:      "stage_duration_seconds",
			Help:      "Duration of retrieval and generation stages.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	strategyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "retrieval",
			Name:      "lexical_strategy_total",
			Help:      "Lexical strategy attempts by outcome.",
		},
		[]string{"strategy", "outcome"},
	)
	cacheTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "telemetry",
			Name:      "debug_cache_ops_total",
			Help:      "Debug cache operations by tier and outcome.",
		},
		[]string{"tier", "op", "outcome"},
	)
	jobTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Background jobs by topic and status.",
		},
		[]string{"topic", "status"},
	)
	replyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "assistant",
			Name:      "replies_total",
			Help:      "Assistant replies by outcome.",
		},
		[]string{"outcome"},
	)

	eventTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edu",
			Subsystem: "events",
			Name:      "domain_events_total",
			Help:      "Domain events by type and direction.",
		},
		[]string{"type", "direction"},
	)

	registry.MustRegister(stageDuration, strategyTotal, cacheTotal, jobTotal, replyTotal, eventTotal)

	return &RetrievalMetrics{
		registry:      registry,
		stageDuration: stageDuration,
		strategyTotal: strategyTotal,
		cacheTotal:    cacheTotal,
		jobTotal:      jobTotal,
		replyTotal:    replyTotal,
		eventTotal:    eventTotal,
	}
}

func (m *RetrievalMetrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *RetrievalMetrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *RetrievalMetrics) StrategyAttempt(strategy, outcome string) {
	if m == nil {
		return
	}
	m.strategyTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *RetrievalMetrics) CacheOp(tier, op, outcome string) {
	if m == nil {
		return
	}
	m.cacheTotal.WithLabelValues(tier, op, outcome).Inc()
}

func (m *RetrievalMetrics) Job(topic, status string) {
	if m == nil {
		return
	}
	m.jobTotal.WithLabelValues(topic, status).Inc()
}

func (m *RetrievalMetrics) Reply(outcome string) {
	if m == nil {
		return
	}
	m.replyTotal.WithLabelValues(outcome).Inc()
}

func (m *RetrievalMetrics) Event(eventType, direction string) {
	if m == nil {
		return
	}
	m.eventTotal.WithLabelValues(eventType, direction).Inc()
}
