package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts catalog cache hits by key kind (albums|songs|album_songs).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbay_cache_hits_total",
			Help: "Total number of catalog cache hits",
		},
		[]string{"key"},
	)

	// CacheMisses counts catalog cache misses by key kind.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbay_cache_misses_total",
			Help: "Total number of catalog cache misses",
		},
		[]string{"key"},
	)

	// CacheInvalidations counts cache key deletions issued by admin mutations.
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbay_cache_invalidations_total",
			Help: "Total number of cache invalidations by mutation type",
		},
		[]string{"mutation"},
	)

	// PaymentOrders records payment order outcomes (created|completed|failed).
	PaymentOrders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundbay_payment_orders_total",
			Help: "Total number of payment orders by outcome",
		},
		[]string{"outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundbay_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
