package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gateway counters and histograms, partitioned by operation.

var (
	// Inbound
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total inbound requests by route and status code",
	}, []string{"route", "status"})

	// Upstream
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "moralis",
		Name:      "requests_total",
		Help:      "Total upstream calls by operation and outcome",
	}, []string{"operation", "outcome"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gateway",
		Subsystem: "moralis",
		Name:      "request_duration_seconds",
		Help:      "Upstream call duration",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})
)

// Upstream call outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
