package server

import (
	"strconv"

	"github.com/getlawrence/prdgate/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prdgate"

// Metrics holds the Prometheus collectors exported by serve
type Metrics struct {
	decisions           *prometheus.CounterVec
	incomplete          prometheus.Counter
	parseErrors         prometheus.Counter
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "PRD decisions made, by outcome.",
		}, []string{"outcome"}),
		incomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incomplete_decisions_total",
			Help:      "Decisions that defaulted to a PRD because points or score were missing.",
		}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backlog_parse_errors_total",
			Help:      "Backlog documents that could not be parsed.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	reg.MustRegister(m.decisions, m.incomplete, m.parseErrors, m.httpRequests, m.httpRequestDuration)
	return m
}

// ObserveDecision counts one decision
func (m *Metrics) ObserveDecision(d domain.Decision) {
	outcome := "skip"
	if d.GeneratePRD {
		outcome = "prd"
	}
	m.decisions.WithLabelValues(outcome).Inc()
	if d.Incomplete() {
		m.incomplete.Inc()
	}
}

// ObserveParseError counts a backlog that failed to parse
func (m *Metrics) ObserveParseError() {
	m.parseErrors.Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route string, code int, seconds float64) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(seconds)
}
