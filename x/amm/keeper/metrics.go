package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsOnce sync.Once
	sharedAMM   *AMMMetrics
)

// AMMMetrics holds the module's prometheus instruments.
type AMMMetrics struct {
	SwapsTotal   *prometheus.CounterVec
	SwapLatency  prometheus.Histogram
	SwapVolume   *prometheus.CounterVec
	PoolsCreated *prometheus.CounterVec
	RateSyncs    prometheus.Counter
}

// NewAMMMetrics returns the process-wide metrics set. promauto registers on
// the default registry, so the instruments are created exactly once.
func NewAMMMetrics() *AMMMetrics {
	metricsOnce.Do(func() {
		sharedAMM = &AMMMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "pawdex_amm_swaps_total",
					Help: "Total number of swaps executed",
				},
				[]string{"pool_id", "token_in", "token_out", "result"},
			),
			SwapLatency: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "pawdex_amm_swap_latency_seconds",
					Help:    "Swap execution latency",
					Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
				},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "pawdex_amm_swap_volume",
					Help: "Cumulative swap input volume per token",
				},
				[]string{"token"},
			),
			PoolsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "pawdex_amm_pools_created_total",
					Help: "Pools created by kind",
				},
				[]string{"kind"},
			),
			RateSyncs: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "pawdex_amm_rate_syncs_total",
					Help: "Degen rate syncs issued after action lists",
				},
			),
		}
	})
	return sharedAMM
}
