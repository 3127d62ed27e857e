package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus metrics for cache operations
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	entryBytes        prometheus.Histogram
	corruptEntries    prometheus.Counter
}

// NewMetrics creates the cache metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cloudrecord_cache_operations_total",
				Help: "Total number of record cache operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cloudrecord_cache_operation_duration_seconds",
				Help:    "Record cache operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		entryBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cloudrecord_cache_entry_bytes",
				Help:    "Size of stored cache entries in bytes",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
		),

		corruptEntries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cloudrecord_cache_corrupt_entries_total",
				Help: "Total number of cache entries that failed verification",
			},
		),
	}
}

// RecordOperation records a cache operation
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveEntrySize records the encoded size of a stored entry
func (m *Metrics) ObserveEntrySize(n int) {
	m.entryBytes.Observe(float64(n))
}

// RecordCorruption counts an entry that failed verification
func (m *Metrics) RecordCorruption() {
	m.corruptEntries.Inc()
}
