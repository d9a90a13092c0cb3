package rest

import (
	"time"

	"marketPulse/pkg/metrics"
)

type ResponseError struct {
	Message string `json:"message"`
}

// observe records one handler invocation and returns a stop func for the
// latency histogram.
func observe(operation string) func() {
	metrics.AnalyticsRequests.WithLabelValues(operation).Inc()
	start := time.Now()
	return func() {
		metrics.AnalyticsRequestLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
