package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for message handling.
type Metrics struct {
	messages        *prometheus.CounterVec
	messageDuration *prometheus.HistogramVec
	settingsWrites  *prometheus.CounterVec
}

// MustNew registers the collectors with reg. Registration errors panic,
// except when an identical collector is already registered, which is reused.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	messages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txtension",
			Subsystem: "router",
			Name:      "messages_total",
			Help:      "Messages handled, by action, provider and outcome.",
		},
		[]string{"action", "provider", "outcome"},
	)
	messageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "txtension",
			Subsystem: "router",
			Name:      "message_duration_seconds",
			Help:      "Time spent handling a message, including provider latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"action", "provider"},
	)
	settingsWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "txtension",
			Subsystem: "settings",
			Name:      "writes_total",
			Help:      "Settings persistence attempts, by result.",
		},
		[]string{"result"},
	)

	return &Metrics{
		messages:        register(reg, messages).(*prometheus.CounterVec),
		messageDuration: register(reg, messageDuration).(*prometheus.HistogramVec),
		settingsWrites:  register(reg, settingsWrites).(*prometheus.CounterVec),
	}
}

func register(reg prometheus.Registerer, collector prometheus.Collector) prometheus.Collector {
	if err := reg.Register(collector); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return already.ExistingCollector
		}
		panic(err)
	}
	return collector
}

// ObserveMessage records one handled message.
func (m *Metrics) ObserveMessage(action, provider, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(action, provider, outcome).Inc()
	m.messageDuration.WithLabelValues(action, provider).Observe(duration.Seconds())
}

// ObserveSettingsWrite records a settings write attempt.
func (m *Metrics) ObserveSettingsWrite(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.settingsWrites.WithLabelValues(result).Inc()
}
