// Package prometheus exposes intake pipeline metrics for scraping.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "intake"

// Metrics implements the intake service's metrics contract on a dedicated
// registry, so tests can create as many instances as they like without
// default-registry collisions.
type Metrics struct {
	registry *prometheus.Registry

	emailsProcessed    *prometheus.CounterVec
	extractedItems     prometheus.Counter
	processingDuration prometheus.Histogram
	ordersApproved     prometheus.Counter
}

// NewMetrics creates and registers the intake metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		emailsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "Emails run through the intake pipeline, by outcome.",
		}, []string{"outcome"}),
		extractedItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_items_total",
			Help:      "Order items that survived extraction and filtering.",
		}),
		processingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "End-to-end duration of processing one email.",
			Buckets:   prometheus.DefBuckets,
		}),
		ordersApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_approved_total",
			Help:      "Orders transitioned from pending to approved.",
		}),
	}

	registry.MustRegister(
		m.emailsProcessed,
		m.extractedItems,
		m.processingDuration,
		m.ordersApproved,
	)
	return m
}

// ObserveProcessed records one processed email.
func (m *Metrics) ObserveProcessed(outcome string, itemCount int, elapsed time.Duration) {
	m.emailsProcessed.WithLabelValues(outcome).Inc()
	m.extractedItems.Add(float64(itemCount))
	m.processingDuration.Observe(elapsed.Seconds())
}

// ObserveApproved records one approval.
func (m *Metrics) ObserveApproved() {
	m.ordersApproved.Inc()
}

// Handler serves the metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
