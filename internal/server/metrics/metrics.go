// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers (or tests) can coexist
// in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal *prometheus.CounterVec
	ReqDuration   *prometheus.HistogramVec
	InFlight      prometheus.Gauge

	AuthAttempts   *prometheus.CounterVec
	BlobDeletions  *prometheus.CounterVec
	DeletionQueue  prometheus.Gauge
	AccountsPurged prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
			[]string{"route", "method", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request duration seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		InFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "auth_attempts_total", Help: "Authentication attempts by method and outcome"},
			[]string{"method", "outcome"},
		),
		BlobDeletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "blob_deletions_total", Help: "Blob deletions by outcome"},
			[]string{"outcome"},
		),
		DeletionQueue: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "blob_deletion_queue_size", Help: "Blob deletions waiting for retry"},
		),
		AccountsPurged: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "accounts_purged_total", Help: "Accounts removed after their grace period"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal, m.ReqDuration, m.InFlight,
		m.AuthAttempts, m.BlobDeletions, m.DeletionQueue, m.AccountsPurged,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthAttempt counts one authentication attempt. A nil receiver is a no-op,
// so components can run without metrics.
func (m *Metrics) AuthAttempt(method string, ok bool) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(method, outcome(ok)).Inc()
}

// BlobDeleted counts one blob deletion attempt.
func (m *Metrics) BlobDeleted(ok bool) {
	if m == nil {
		return
	}
	m.BlobDeletions.WithLabelValues(outcome(ok)).Inc()
}

// SetDeletionQueue records the current backlog.
func (m *Metrics) SetDeletionQueue(n int) {
	if m == nil {
		return
	}
	m.DeletionQueue.Set(float64(n))
}

// AccountPurged counts one account removed by the janitor.
func (m *Metrics) AccountPurged() {
	if m == nil {
		return
	}
	m.AccountsPurged.Inc()
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}
