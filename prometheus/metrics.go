package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StorageMetrics holds the collectors recorded by the tenant storage layer.
// A nil *StorageMetrics is valid and records nothing.
type StorageMetrics struct {
	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Facade operation metrics
	OperationsCounter *prometheus.CounterVec

	// Fallback path metrics
	FallbackCounter *prometheus.CounterVec

	// Unique constraint conflicts resolved into existing rows
	ConflictCounter *prometheus.CounterVec

	// Long-lived tenant pools currently open
	TenantPoolsGauge prometheus.Gauge
}

// NewStorageMetrics registers the storage collectors on reg
func NewStorageMetrics(reg prometheus.Registerer, prefix string) *StorageMetrics {
	factory := promauto.With(reg)

	return &StorageMetrics{
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of tenant database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_operations_total",
				Help: "Total number of tenant storage operations",
			},
			[]string{"entity", "operation"},
		),
		FallbackCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_fallback_total",
				Help: "Total number of operations served by a fallback path",
			},
			[]string{"operation", "reason"},
		),
		ConflictCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_conflicts_total",
				Help: "Total number of unique constraint conflicts resolved to existing rows",
			},
			[]string{"entity"},
		),
		TenantPoolsGauge: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_tenant_pools",
				Help: "Number of open per-schema connection pools",
			},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *StorageMetrics) TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DbOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOperation increments the counter for facade operations
func (m *StorageMetrics) RecordOperation(entity, operation string) {
	if m == nil {
		return
	}
	m.OperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordFallback increments the counter for fallback executions
func (m *StorageMetrics) RecordFallback(operation, reason string) {
	if m == nil {
		return
	}
	m.FallbackCounter.WithLabelValues(operation, reason).Inc()
}

// RecordConflict increments the counter for resolved conflicts
func (m *StorageMetrics) RecordConflict(entity string) {
	if m == nil {
		return
	}
	m.ConflictCounter.WithLabelValues(entity).Inc()
}

// SetTenantPools updates the open pool gauge
func (m *StorageMetrics) SetTenantPools(count int) {
	if m == nil {
		return
	}
	m.TenantPoolsGauge.Set(float64(count))
}
