package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pipeline.
type Metrics struct {
	MessagesReceived       prometheus.Counter
	MessagesHandled        *prometheus.CounterVec
	MessagesFailed         *prometheus.CounterVec
	VerificationOutcomes   *prometheus.CounterVec
	NotificationsPublished prometheus.Counter
	NotificationsFailed    prometheus.Counter
}

// New creates all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates all Prometheus metrics on the given registerer.
// Tests pass a fresh registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceverify_queue_messages_received_total",
			Help: "Total number of queue messages received by the consumer",
		}),
		MessagesHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceverify_queue_messages_handled_total",
			Help: "Total number of queue messages handled, by event type",
		}, []string{"event_type"}),
		MessagesFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceverify_queue_messages_failed_total",
			Help: "Total number of queue messages whose handler failed, by event type",
		}, []string{"event_type"}),
		VerificationOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faceverify_verification_outcomes_total",
			Help: "Total number of verifications reaching a terminal status",
		}, []string{"status"}),
		NotificationsPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceverify_notifications_published_total",
			Help: "Total number of face-verified notifications published",
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "faceverify_notifications_failed_total",
			Help: "Total number of face-verified notifications that failed to publish",
		}),
	}
}
