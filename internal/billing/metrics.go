package billing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "portal_billing_request_duration_seconds",
	Help:    "Latency of billing API calls.",
	Buckets: prometheus.DefBuckets,
}, []string{"endpoint", "status"})

func observe(endpoint, status string, start time.Time) {
	requestDuration.WithLabelValues(endpoint, status).Observe(time.Since(start).Seconds())
}
