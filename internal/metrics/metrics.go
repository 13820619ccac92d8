// Package metrics owns the prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest sources
const (
	SourceHTTP = "http"
	SourceMQTT = "mqtt"
)

// Metrics groups the service collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	recordsIngested     *prometheus.CounterVec
	featureVectors      prometheus.Counter
	malformedTimestamps prometheus.Counter
	requests            *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		recordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusflow_activity_records_ingested_total",
			Help: "Raw activity records stored, by ingest source.",
		}, []string{"source"}),
		featureVectors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focusflow_feature_vectors_total",
			Help: "Feature vectors computed.",
		}),
		malformedTimestamps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "focusflow_malformed_timestamps_total",
			Help: "Records whose timestamp was missing or unparsable when normalized.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "focusflow_http_requests_total",
			Help: "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "focusflow_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.recordsIngested,
		m.featureVectors,
		m.malformedTimestamps,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordsIngested counts n records stored from source
func (m *Metrics) RecordsIngested(source string, n int) {
	if n > 0 {
		m.recordsIngested.WithLabelValues(source).Add(float64(n))
	}
}

// FeatureVectorComputed counts one feature vector and the malformed
// timestamps met while normalizing its input
func (m *Metrics) FeatureVectorComputed(malformed int) {
	m.featureVectors.Inc()
	if malformed > 0 {
		m.malformedTimestamps.Add(float64(malformed))
	}
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
