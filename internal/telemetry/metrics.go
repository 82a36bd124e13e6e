package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	BatchOrders       *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
	WebhookRejections *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courier_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		BatchOrders: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_batch_orders_total",
				Help: "Total batch order outcomes by carrier and result",
			},
			[]string{"carrier", "result"},
		),
		WebhookEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_webhook_events_total",
				Help: "Total accepted webhook events by status",
			},
			[]string{"status"},
		),
		WebhookRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courier_webhook_rejections_total",
				Help: "Total rejected webhook deliveries by rejection code",
			},
			[]string{"code"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordBatch records per-order outcomes of a batch creation.
func (m *Metrics) RecordBatch(carrier string, success, failed int) {
	m.BatchOrders.WithLabelValues(carrier, "success").Add(float64(success))
	m.BatchOrders.WithLabelValues(carrier, "failed").Add(float64(failed))
}
