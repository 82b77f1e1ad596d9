package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type CheckoutMetrics struct {
	SessionsBuilt   *prometheus.CounterVec
	SessionFailures *prometheus.CounterVec
	OutcomeEvents   *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	sessionsBuilt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decor",
		Subsystem: "checkout",
		Name:      "sessions_built_total",
		Help:      "Payment sessions successfully built, by record kind.",
	}, []string{"kind"})
	sessionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decor",
		Subsystem: "checkout",
		Name:      "session_failures_total",
		Help:      "Session build failures, by reason.",
	}, []string{"reason"})
	outcomeEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decor",
		Subsystem: "fulfillment",
		Name:      "outcome_events_total",
		Help:      "Payment outcome events, by processing result.",
	}, []string{"result"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "decor",
		Subsystem: "fulfillment",
		Name:      "notifications_total",
		Help:      "Notification sends, by recipient and result.",
	}, []string{"recipient", "result"})

	reg.MustRegister(sessionsBuilt, sessionFailures, outcomeEvents, notifications)
	return &CheckoutMetrics{
		SessionsBuilt:   sessionsBuilt,
		SessionFailures: sessionFailures,
		OutcomeEvents:   outcomeEvents,
		Notifications:   notifications,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
