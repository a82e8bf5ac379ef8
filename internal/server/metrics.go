package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// Prometheus HTTP and analysis metrics.
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcdiag_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pcdiag_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcdiag_analyses_total",
			Help: "Total number of analyzed scans by grade.",
		},
		[]string{"grade"},
	)
	bottlenecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcdiag_bottlenecks_total",
			Help: "Total number of reported bottlenecks by severity and category.",
		},
		[]string{"severity", "category"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(analysesTotal)
	prometheus.MustRegister(bottlenecksTotal)
}

// observeReport records one analysis.
func observeReport(r *model.Report) {
	analysesTotal.WithLabelValues(r.Score.Grade).Inc()
	for _, b := range r.Bottlenecks {
		bottlenecksTotal.WithLabelValues(string(b.Severity), string(b.Category)).Inc()
	}
}
