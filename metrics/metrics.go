// Package metrics exposes guard evaluation counters to Prometheus.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/attrlock/guard"
)

// Collector counts guard evaluations and lock violations. It implements
// guard.Observer and is registered on an evaluator via AddObserver.
type Collector struct {
	evaluations *prometheus.CounterVec
	violations  *prometheus.CounterVec
}

// Interface guard.
var _ guard.Observer = (*Collector)(nil)

// NewCollector creates a collector and registers its metrics with reg.
// A nil registerer leaves the metrics unregistered, which is useful in
// tests.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attrlock_evaluations_total",
			Help: "Guard evaluations of persisted records, by model type.",
		}, []string{"type"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attrlock_violations_total",
			Help: "Locked attributes changed without an active unlock, by model type, attribute, and reaction mode.",
		}, []string{"type", "attribute", "mode"}),
	}

	if reg != nil {
		for _, m := range []prometheus.Collector{c.evaluations, c.violations} {
			if err := reg.Register(m); err != nil {
				return nil, fmt.Errorf("register attrlock metrics: %w", err)
			}
		}
	}
	return c, nil
}

// RecordEvaluated implements guard.Observer.
func (c *Collector) RecordEvaluated(typeName string) {
	c.evaluations.WithLabelValues(typeName).Inc()
}

// LockViolation implements guard.Observer.
func (c *Collector) LockViolation(typeName, attribute string, mode guard.Mode) {
	c.violations.WithLabelValues(typeName, attribute, mode.String()).Inc()
}
