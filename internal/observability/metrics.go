package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "poule_scoring"

// ScoringMetrics records scoring runs in a Prometheus registry.
type ScoringMetrics struct {
	registry           *prometheus.Registry
	passRuns           *prometheus.CounterVec
	passDuration       *prometheus.HistogramVec
	predictionsUpdated *prometheus.CounterVec
	predictionsFailed  *prometheus.CounterVec
	poolsRanked        prometheus.Counter
	membersUpdated     prometheus.Counter
	membersFailed      prometheus.Counter
}

func NewScoringMetrics(registry *prometheus.Registry) *ScoringMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &ScoringMetrics{
		registry: registry,
		passRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pass_runs_total",
			Help:      "Scoring passes by pass and outcome.",
		}, []string{"pass", "outcome"}),
		passDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of a scoring pass including aggregation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"pass"}),
		predictionsUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_updated_total",
			Help:      "Prediction rows whose points changed.",
		}, []string{"pass"}),
		predictionsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "predictions_failed_total",
			Help:      "Prediction rows whose write failed and was skipped.",
		}, []string{"pass"}),
		poolsRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pools_ranked_total",
			Help:      "Pools whose standings were recalculated.",
		}),
		membersUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "members_updated_total",
			Help:      "Pool member rows rewritten by aggregation.",
		}),
		membersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "members_failed_total",
			Help:      "Pool member writes that failed and were skipped.",
		}),
	}

	registry.MustRegister(
		m.passRuns,
		m.passDuration,
		m.predictionsUpdated,
		m.predictionsFailed,
		m.poolsRanked,
		m.membersUpdated,
		m.membersFailed,
	)
	return m
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors.
func (m *ScoringMetrics) RegisterRuntimeCollectors() {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (m *ScoringMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ScoringMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *ScoringMetrics) PassFinished(pass, outcome string, duration time.Duration) {
	m.passRuns.WithLabelValues(pass, outcome).Inc()
	m.passDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

func (m *ScoringMetrics) PredictionsScored(pass string, updated, failed int) {
	if updated > 0 {
		m.predictionsUpdated.WithLabelValues(pass).Add(float64(updated))
	}
	if failed > 0 {
		m.predictionsFailed.WithLabelValues(pass).Add(float64(failed))
	}
}

func (m *ScoringMetrics) StandingsRecalculated(poolsRanked, membersUpdated, membersFailed int) {
	m.poolsRanked.Add(float64(poolsRanked))
	m.membersUpdated.Add(float64(membersUpdated))
	m.membersFailed.Add(float64(membersFailed))
}
