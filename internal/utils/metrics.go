package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestLabels = []string{"method", "path", "status"}
	queryLabels   = []string{"query_type", "repository"}
)

// HTTP collectors, labelled by route template rather than raw path so that
// expense and user ids do not blow up cardinality.
var (
	HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, requestLabels)

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, requestLabels)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, requestLabels)

	InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "Current number of in-flight HTTP requests.",
	})
)

// Document store collectors. A managed store answers point reads in a few
// milliseconds, so the buckets start lower than the HTTP ones.
var (
	DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of document store operations in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, append(queryLabels, "status"))

	DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_query_errors_total",
		Help: "Total number of failed document store operations.",
	}, queryLabels)
)
