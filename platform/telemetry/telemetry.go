// Package telemetry holds the Prometheus collectors exported on /metrics.
// All recording methods are safe on a nil *Metrics so tests can omit it.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

type Metrics struct {
	registry *prometheus.Registry

	httpDuration        *prometheus.HistogramVec
	isolationViolations *prometheus.CounterVec
	fetchRetries        *prometheus.CounterVec
	fetchExhausted      *prometheus.CounterVec
	tenantSwitches      *prometheus.CounterVec
	cacheLookups        *prometheus.CounterVec
	staleResponses      prometheus.Counter
	qualityScore        *prometheus.GaugeVec
}

// New builds a dedicated registry with process and Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		isolationViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "isolation_violations_total",
			Help:      "Foreign-tenant records detected in scoped results.",
		}, []string{"table"}),
		fetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_retries_total",
			Help:      "Retried store reads.",
		}, []string{"table"}),
		fetchExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_exhausted_total",
			Help:      "Store reads that failed after every attempt.",
		}, []string{"table"}),
		tenantSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_switches_total",
			Help:      "Active client change attempts.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_cache_lookups_total",
			Help:      "Metrics cache lookups by result.",
		}, []string{"result"}),
		staleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "Dashboard responses discarded because the active client changed.",
		}),
		qualityScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_quality_score",
			Help:      "Last audited data quality score per client.",
		}, []string{"client"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration,
		m.isolationViolations,
		m.fetchRetries,
		m.fetchExhausted,
		m.tenantSwitches,
		m.cacheLookups,
		m.staleResponses,
		m.qualityScore,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GinMiddleware observes request latency keyed by the matched route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IsolationViolation(table string) {
	if m == nil {
		return
	}
	m.isolationViolations.WithLabelValues(table).Inc()
}

func (m *Metrics) FetchRetry(table string) {
	if m == nil {
		return
	}
	m.fetchRetries.WithLabelValues(table).Inc()
}

func (m *Metrics) FetchExhausted(table string) {
	if m == nil {
		return
	}
	m.fetchExhausted.WithLabelValues(table).Inc()
}

func (m *Metrics) TenantSwitch(allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.tenantSwitches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}

func (m *Metrics) QualityScore(client string, score int) {
	if m == nil {
		return
	}
	m.qualityScore.WithLabelValues(client).Set(float64(score))
}
