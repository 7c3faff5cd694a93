package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Vector store Prometheus metrics.
var (
	StoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of vector store operations",
		},
		[]string{"backend", "op", "status"},
	)

	StoreOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Vector store operation duration in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"backend", "op"},
	)

	ProfilesStored = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "profiles_stored",
			Help:      "Profiles in the collection, as of the last stats call",
		},
		[]string{"collection"},
	)
)

var registerStore sync.Once

// RegisterStoreMetrics registers vector store metrics. Safe to call more than once.
func RegisterStoreMetrics() {
	registerStore.Do(func() {
		prometheus.MustRegister(StoreOperationsTotal, StoreOperationDuration, ProfilesStored)
	})
}
