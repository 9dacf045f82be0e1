// Package metrics exposes Prometheus collectors for the HTTP layer and the
// lead intake pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	leadIntakeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_intake_total",
			Help: "Lead intake attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	leadAssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_assignments_total",
			Help: "Assignment attempts by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	auditDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_records_dropped_total",
			Help: "Audit records dropped because the buffer was full or the write failed",
		},
	)
)

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordIntake counts one terminal intake outcome.
func RecordIntake(source, outcome string) {
	leadIntakeTotal.WithLabelValues(source, outcome).Inc()
}

// RecordAssignment counts one assignment attempt.
func RecordAssignment(strategy, result string) {
	leadAssignmentsTotal.WithLabelValues(strategy, result).Inc()
}

// RecordAuditDropped counts an audit record that never reached storage.
func RecordAuditDropped() {
	auditDroppedTotal.Inc()
}
