package subscription

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives instrumentation events from a Manager
type Metrics interface {
	// RecordTransition is called whenever a subscription changes status
	RecordTransition(topicType string, from, to Status)

	// RecordNotification is called for every inbound notification, with dispatched
	// set to false if the notification was dropped
	RecordNotification(topicType string, dispatched bool)

	// RecordRemoteCall is called after every create or delete request
	RecordRemoteCall(op string, err error)
}

// NopMetrics discards all metrics
type NopMetrics struct{}

var _ Metrics = NopMetrics{}

func (NopMetrics) RecordTransition(string, Status, Status) {}
func (NopMetrics) RecordNotification(string, bool)         {}
func (NopMetrics) RecordRemoteCall(string, error)          {}

// PrometheusMetrics records Manager metrics as Prometheus collectors, which are
// registered on first use
type PrometheusMetrics struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	transitions   *prometheus.CounterVec
	entries       *prometheus.GaugeVec
	notifications *prometheus.CounterVec
	remoteCalls   *prometheus.CounterVec
}

var _ Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a Metrics implementation that registers its collectors
// with reg (prometheus.DefaultRegisterer if nil), under the given namespace ("eventsub"
// if empty)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "eventsub"
	}
	return &PrometheusMetrics{reg: reg, namespace: namespace}
}

func (p *PrometheusMetrics) ensureRegistered() {
	p.once.Do(func() {
		p.transitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscription",
			Name:      "transitions_total",
			Help:      "Total subscription status transitions by topic type and target status.",
		}, []string{"type", "from", "to"})

		p.entries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "subscription",
			Name:      "entries",
			Help:      "Current number of pending and active subscriptions by topic type and status.",
		}, []string{"type", "status"})

		p.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscription",
			Name:      "notifications_total",
			Help:      "Total inbound notifications by topic type and result (dispatched, dropped).",
		}, []string{"type", "result"})

		p.remoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "subscription",
			Name:      "remote_calls_total",
			Help:      "Total create/delete requests sent to Twitch by operation and result.",
		}, []string{"op", "result"})

		p.reg.MustRegister(p.transitions)
		p.reg.MustRegister(p.entries)
		p.reg.MustRegister(p.notifications)
		p.reg.MustRegister(p.remoteCalls)
	})
}

func (p *PrometheusMetrics) RecordTransition(topicType string, from, to Status) {
	p.ensureRegistered()
	p.transitions.WithLabelValues(topicType, from.String(), to.String()).Inc()
	if from != StatusNone && from != StatusStopped {
		p.entries.WithLabelValues(topicType, from.String()).Dec()
	}
	if to != StatusStopped {
		p.entries.WithLabelValues(topicType, to.String()).Inc()
	}
}

func (p *PrometheusMetrics) RecordNotification(topicType string, dispatched bool) {
	p.ensureRegistered()
	result := "dispatched"
	if !dispatched {
		result = "dropped"
	}
	p.notifications.WithLabelValues(topicType, result).Inc()
}

func (p *PrometheusMetrics) RecordRemoteCall(op string, err error) {
	p.ensureRegistered()
	result := "success"
	if err != nil {
		result = "failure"
	}
	p.remoteCalls.WithLabelValues(op, result).Inc()
}
