package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. Collectors live on a private registry
// so tests can build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	sessionOperations *prometheus.CounterVec
}

// NewMetrics registers the RED and session collectors. serviceName becomes a constant label.
func NewMetrics(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Histogram of HTTP request latency",
				ConstLabels: labels,
				Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_errors_total",
				Help:        "Total number of HTTP requests answered with an error envelope",
				ConstLabels: labels,
			},
			[]string{"method", "path", "code"},
		),
		sessionOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "bookmark_session_operations_total",
				Help:        "Session manager operations by outcome",
				ConstLabels: labels,
			},
			[]string{"operation", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.sessionOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest counts a finished request and observes its latency.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError counts a request that ended in an error envelope.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(method, path, code).Inc()
}

// RecordSessionOperation implements auth.SessionMetrics.
func (m *Metrics) RecordSessionOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.sessionOperations.WithLabelValues(operation, outcome).Inc()
}

// RegisterActiveSessions exposes the session count as a gauge evaluated at scrape time.
func (m *Metrics) RegisterActiveSessions(count func() int) error {
	return m.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bookmark_active_sessions",
			Help: "Sessions currently held by the session registry",
		},
		func() float64 { return float64(count()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
