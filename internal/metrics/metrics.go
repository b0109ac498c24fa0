package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	LivePushes              *prometheus.CounterVec
	LiveSubscribers         prometheus.Gauge
	VerificationTransitions *prometheus.CounterVec
	NotificationsSent       prometheus.Counter
}

// New creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LivePushes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biolink_live_pushes_total",
			Help: "Live page messages delivered to subscriber channels, by result",
		}, []string{"result"}),
		LiveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "biolink_live_subscribers",
			Help: "Currently subscribed live channels",
		}),
		VerificationTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "biolink_verification_transitions_total",
			Help: "Verification request transitions, by request type and resulting status",
		}, []string{"req_type", "status"}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "biolink_notifications_sent_total",
			Help: "Notifications persisted, including campaign fan-out",
		}),
	}
}

// Nop returns metrics registered nowhere, for code paths that do not export them.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) PushDelivered() {
	m.LivePushes.WithLabelValues("ok").Inc()
}

func (m *Metrics) PushFailed() {
	m.LivePushes.WithLabelValues("error").Inc()
}

func (m *Metrics) Transition(reqType, status string) {
	m.VerificationTransitions.WithLabelValues(reqType, status).Inc()
}

// TransitionN records n transitions applied by one bulk update.
func (m *Metrics) TransitionN(reqType, status string, n int64) {
	m.VerificationTransitions.WithLabelValues(reqType, status).Add(float64(n))
}

func (m *Metrics) NotificationsPersisted(n int) {
	m.NotificationsSent.Add(float64(n))
}
