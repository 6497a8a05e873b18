package subscription

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lifecycle and entitlement outcomes.
type Metrics struct {
	provisioned prometheus.Counter
	transitions *prometheus.CounterVec
	planChanges *prometheus.CounterVec
	denials     *prometheus.CounterVec
}

// NewMetrics registers the subscription collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		provisioned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Subsystem: "subscription",
			Name:      "provisioned_total",
			Help:      "Trial subscriptions created on first access.",
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Subsystem: "subscription",
			Name:      "transitions_total",
			Help:      "Status transitions by event.",
		}, []string{"event"}),
		planChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Subsystem: "subscription",
			Name:      "plan_changes_total",
			Help:      "Plan assignments by target plan and outcome.",
		}, []string{"plan", "outcome"}),
		denials: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetdesk",
			Subsystem: "entitlement",
			Name:      "denials_total",
			Help:      "Requests denied by an entitlement check, by error code.",
		}, []string{"code"}),
	}
}

// Nil receivers are no-ops so the service never has to check for metrics.

func (m *Metrics) incProvisioned() {
	if m != nil {
		m.provisioned.Inc()
	}
}

func (m *Metrics) incTransition(e Event) {
	if m != nil {
		m.transitions.WithLabelValues(string(e)).Inc()
	}
}

func (m *Metrics) incPlanChange(p PlanID, outcome string) {
	if m != nil {
		m.planChanges.WithLabelValues(string(p), outcome).Inc()
	}
}

func (m *Metrics) incDenial(code string) {
	if m != nil {
		m.denials.WithLabelValues(code).Inc()
	}
}
