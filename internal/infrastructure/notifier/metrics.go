package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ==============================================================================
// Prometheus Metrics
// ==============================================================================

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_notifier_events_published_total",
		Help: "Change events published, by kind and path (local or redis)",
	}, []string{"kind", "path"})

	eventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_notifier_events_delivered_total",
		Help: "Change events handed to subscriber channels",
	})

	subscribersEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "library_notifier_subscribers_evicted_total",
		Help: "Subscribers dropped because their buffer was full",
	})

	subscribersActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "library_notifier_subscribers",
		Help: "Currently connected subscribers",
	})

	bridgeErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "library_notifier_bridge_errors_total",
		Help: "Redis bridge failures, by operation",
	}, []string{"operation"})
)
