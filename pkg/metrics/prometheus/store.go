// Package prometheus provides the Prometheus implementations of the metrics
// interfaces. Importing it registers the constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cabinetfs/cabinet/pkg/metrics"
	"github.com/cabinetfs/cabinet/pkg/vfs"
)

func init() {
	metrics.RegisterStoreMetricsConstructor(NewStoreMetrics)
}

// storeMetrics is the Prometheus implementation of metrics.StoreMetrics.
type storeMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics creates a new Prometheus-backed StoreMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() metrics.StoreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &storeMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "cabinet_store_operations_total",
				Help: "Total number of metadata store operations by operation and status",
			},
			[]string{"op", "status"},
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cabinet_store_operation_duration_milliseconds",
				Help: "Duration of metadata store operations in milliseconds",
				Buckets: []float64{
					0.1,  // 100us - memory store
					0.5,  // 500us
					1,    // 1ms
					5,    // 5ms - embedded stores
					10,   // 10ms
					50,   // 50ms - networked SQL
					100,  // 100ms
					500,  // 500ms
					1000, // 1s
				},
			},
			[]string{"op"},
		),
	}
}

func (m *storeMetrics) ObserveOp(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(op, statusLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(duration.Seconds() * 1000)
}

// statusLabel folds errors into a low-cardinality status label. Expected
// domain outcomes (missing records, conflicts) are distinguished from
// backend failures.
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch {
	case vfs.IsNotFoundError(err):
		return "not_found"
	case vfs.IsConflictError(err):
		return "conflict"
	case vfs.CodeOf(err) == vfs.ErrStorageUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
