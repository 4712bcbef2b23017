package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sensor_collector"

// Metrics groups the collectors exported by the service.
type Metrics struct {
	// StorageOperations counts storage operations by provider, operation and result.
	StorageOperations *prometheus.CounterVec
	// StorageDuration tracks storage operation latency in seconds.
	StorageDuration *prometheus.HistogramVec
	// TasksInflight is the number of background operations currently running.
	TasksInflight prometheus.Gauge
	// TasksTotal counts finished background operations by result.
	TasksTotal *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StorageOperations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Storage operations by provider, operation and result.",
		}, []string{"provider", "operation", "result"}),
		StorageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Storage operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		TasksInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "tasks_inflight",
			Help:      "Background operations currently running.",
		}),
		TasksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "tasks_total",
			Help:      "Finished background operations by result.",
		}, []string{"result"}),
	}
}

// ObserveStorage records the outcome and latency of one storage operation.
func (m *Metrics) ObserveStorage(provider, operation string, err error, elapsed time.Duration) {
	m.StorageOperations.WithLabelValues(provider, operation, Result(err)).Inc()
	m.StorageDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
