package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by strategy and result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"strategy", "result"},
	)

	// CacheReads counts read-through cache lookups per entity and outcome (hit|miss).
	CacheReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_cache_reads_total",
			Help: "Total number of cache lookups on the read path",
		},
		[]string{"entity", "outcome"},
	)

	// CacheInvalidations counts pattern-based invalidations triggered by writes.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_cache_invalidations_total",
			Help: "Total number of cache invalidation sweeps",
		},
		[]string{"entity"},
	)

	// OTPSends counts OTP dispatch attempts by strategy and result (sent|cooldown|error).
	OTPSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocery_otp_sends_total",
			Help: "Total number of OTP send attempts",
		},
		[]string{"strategy", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grocery_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
