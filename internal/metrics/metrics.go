package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pantry"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Expiration notifications by slot and outcome.",
		},
		[]string{"slot", "outcome"},
	)

	expirationRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expiration_runs_total",
			Help:      "Expiration check runs by result.",
		},
		[]string{"result"},
	)

	expiringItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expiring_items",
			Help:      "Items in each expiration bucket after the last check.",
		},
		[]string{"bucket"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, notifications, expirationRuns, expiringItems)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncNotification counts a notification for a slot; outcome is sent, skipped or failed.
func IncNotification(slot int, outcome string) {
	notifications.WithLabelValues(strconv.Itoa(slot), outcome).Inc()
}

// IncExpirationRun counts a finished expiration check.
func IncExpirationRun(result string) {
	expirationRuns.WithLabelValues(result).Inc()
}

// SetExpiring records bucket sizes of the last check.
func SetExpiring(today, soon int) {
	expiringItems.WithLabelValues("today").Set(float64(today))
	expiringItems.WithLabelValues("soon").Set(float64(soon))
}
