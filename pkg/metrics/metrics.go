package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	BackendRequestsTotal   *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	FlowsInProgress        prometheus.Gauge
	FlowsTotal             *prometheus.CounterVec
}

// New registers the metrics with reg. Use prometheus.DefaultRegisterer in
// production and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		BackendRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_requests_total",
				Help: "Total number of calls to the price-tracking backend.",
			},
			[]string{"operation", "outcome"}, // outcome: success, http_error, transport_error
		),
		BackendRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_request_duration_seconds",
				Help:    "Duration of calls to the price-tracking backend.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		FlowsInProgress: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "track_flows_in_progress",
				Help: "Current number of running track flows.",
			},
		),
		FlowsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "track_flows_total",
				Help: "Total number of finished track flows.",
			},
			[]string{"outcome"}, // loaded, error, superseded
		),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (m *Metrics) ObserveBackend(operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.BackendRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.BackendRequestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) FlowStarted() {
	if m == nil {
		return
	}
	m.FlowsInProgress.Inc()
}

func (m *Metrics) FlowFinished(outcome string) {
	if m == nil {
		return
	}
	m.FlowsInProgress.Dec()
	m.FlowsTotal.WithLabelValues(outcome).Inc()
}
