package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the analytics HTTP handlers, by operation
	AnalyticsRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_request_latency_seconds",
		Help:    "Latency of analytics handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Total number of analytics requests served, by operation
	AnalyticsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_requests_total",
		Help: "Total number of analytics requests",
	}, []string{"operation"})

	// Total number of anomalies flagged, by metric and severity
	AnomaliesDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "anomalies_detected_total",
		Help: "Total number of anomalies detected",
	}, []string{"metric", "severity"})

	// Report cache hit/miss counts
	ReportCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_cache_lookups_total",
		Help: "Report cache lookups by outcome",
	}, []string{"outcome"})
)

func Init() {
	prometheus.MustRegister(
		AnalyticsRequestLatency,
		AnalyticsRequests,
		AnomaliesDetected,
		ReportCacheLookups,
	)
}
