// Package metrics defines Prometheus metrics for the corral server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corral_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corral_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corral_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	DomainViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "corral_domain_violations_total",
			Help: "Requests refused because a record belongs to another domain",
		},
	)

	AuditQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corral_audit_queue_depth",
			Help: "Current audit worker queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "corral_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	RecordCount = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "corral_records_total",
			Help: "Record count by resource as of the last stats query",
		},
		[]string{"resource"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		DomainViolationsTotal, AuditQueueDepth,
		WSConnections, RecordCount,
	)
}
