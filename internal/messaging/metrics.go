package messaging

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notificationsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notification publish attempts by status.",
		},
		[]string{"status"},
	)

	notificationsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_received_total",
		Help: "Total number of notification messages received from the broker.",
	})

	notificationsPersistedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_persisted_total",
		Help: "Total number of notifications persisted to the store.",
	})

	notificationsPushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_pushed_total",
		Help: "Total number of notifications pushed to a live WebSocket session.",
	})

	notificationsPushFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_push_failures_total",
		Help: "Total number of failed live pushes (the notification stays persisted).",
	})

	notificationsDeadLetteredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dead_lettered_total",
			Help: "Total number of messages rejected to the dead-letter queue by reason.",
		},
		[]string{"reason"},
	)

	consumerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notifications_consumer_state",
		Help: "Current consumer state: 0 disconnected, 1 connecting, 2 connected.",
	})

	consumerConnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_consumer_connect_attempts_total",
		Help: "Total number of broker connection attempts made by the consumer.",
	})
)
