package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jobportal_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Counter for login attempts, status = success|failed|blocked
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)

	SecurityViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_security_violations_total",
			Help: "Recorded security violations by type",
		},
		[]string{"type"},
	)

	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobportal_socket_connections",
			Help: "Number of open websocket connections",
		},
	)

	EmailsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobportal_emails_queued_total",
			Help: "E-mails put into the outgoing queue by template",
		},
		[]string{"template"},
	)
)
