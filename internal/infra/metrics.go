// README: Prometheus collectors for order lifecycle and external calls.
package infra

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the collectors the services report into.
type Metrics struct {
	OrderTransitions *prometheus.CounterVec
	RouteFetches     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmago",
			Name:      "order_transitions_total",
			Help:      "Order status transitions by source and target status.",
		}, []string{"from", "to"}),
		RouteFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pharmago",
			Name:      "route_fetches_total",
			Help:      "Directions API calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
	}
	reg.MustRegister(m.OrderTransitions, m.RouteFetches)
	return m
}
