package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Check metrics
	ChecksRun      *prometheus.CounterVec
	CheckDuration  *prometheus.HistogramVec
	IssuesReported *prometheus.CounterVec
	CheckFailures  *prometheus.CounterVec

	// Fix metrics
	FixesExecuted *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates all Prometheus metrics and registers them with reg. A nil reg
// uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Check metrics
		ChecksRun: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgercheck_checks_run_total",
				Help: "Total number of completed check runs",
			},
			[]string{"check"},
		),
		CheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgercheck_check_duration_seconds",
				Help:    "Duration of a single check",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"check"},
		),
		IssuesReported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgercheck_issues_reported_total",
				Help: "Total number of issues reported by check",
			},
			[]string{"check"},
		),
		CheckFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgercheck_check_failures_total",
				Help: "Total number of checks that faulted and were skipped",
			},
			[]string{"check"},
		),

		// Fix metrics
		FixesExecuted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgercheck_fixes_executed_total",
				Help: "Total number of executed fixes by check and outcome",
			},
			[]string{"check", "success"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgercheck_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgercheck_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// ObserveCheck records a completed check.
func (m *Metrics) ObserveCheck(check string, duration time.Duration, issues int) {
	m.ChecksRun.WithLabelValues(check).Inc()
	m.CheckDuration.WithLabelValues(check).Observe(duration.Seconds())
	m.IssuesReported.WithLabelValues(check).Add(float64(issues))
}

// CheckFailed records a check that faulted.
func (m *Metrics) CheckFailed(check string) {
	m.CheckFailures.WithLabelValues(check).Inc()
}

// FixExecuted records a fix attempt.
func (m *Metrics) FixExecuted(check string, ok bool) {
	m.FixesExecuted.WithLabelValues(check, strconv.FormatBool(ok)).Inc()
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
