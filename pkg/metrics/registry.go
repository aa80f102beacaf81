// Package metrics exposes prometheus counters/gauges for constraint-engine
// propagation and temporal-network consistency checks. A Registry is
// entirely optional: wiring one in as a ConstraintEngineListener only adds
// observation, never changes propagation outcome.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/plancore/concore/pkg/concore"
)

// Registry collects propagation and violation counts into a prometheus
// registerer. The zero value is not usable; build one with NewRegistry.
type Registry struct {
	propagationsCommenced prometheus.Counter
	propagationsCompleted prometheus.Counter
	propagationsPreempted prometheus.Counter
	constraintsExecuted   prometheus.Counter
	violationsActive      prometheus.Gauge
	tnetConsistencyChecks prometheus.Counter
	tnetInconsistencies   prometheus.Counter
}

// NewRegistry builds a Registry and registers its collectors on reg. Pass
// prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to publish on the process-wide endpoint.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		propagationsCommenced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Name: "propagations_commenced_total",
			Help: "Number of ConstraintEngine.Propagate calls started.",
		}),
		propagationsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Name: "propagations_completed_total",
			Help: "Number of propagation cycles that reached a fixpoint.",
		}),
		propagationsPreempted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Name: "propagations_preempted_total",
			Help: "Number of propagation cycles aborted by context cancellation or hard inconsistency.",
		}),
		constraintsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Name: "constraints_executed_total",
			Help: "Number of constraint propagator executions.",
		}),
		violationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "concore", Name: "violations_active",
			Help: "Current count of constraints in the violated set.",
		}),
		tnetConsistencyChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Subsystem: "tnet", Name: "consistency_checks_total",
			Help: "Number of temporal network propagation/consistency checks run.",
		}),
		tnetInconsistencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "concore", Subsystem: "tnet", Name: "inconsistencies_total",
			Help: "Number of temporal network consistency checks that found a negative cycle.",
		}),
	}
	reg.MustRegister(
		r.propagationsCommenced, r.propagationsCompleted, r.propagationsPreempted,
		r.constraintsExecuted, r.violationsActive,
		r.tnetConsistencyChecks, r.tnetInconsistencies,
	)
	return r
}

// RecordConsistencyCheck increments the temporal-network consistency-check
// counter, and the inconsistency counter when ok is false. Call sites in
// pkg/temporal invoke this after every TemporalNetwork.Propagate.
func (r *Registry) RecordConsistencyCheck(ok bool) {
	r.tnetConsistencyChecks.Inc()
	if !ok {
		r.tnetInconsistencies.Inc()
	}
}

// Listener returns a ConstraintEngineListener that feeds this registry from
// engine lifecycle events.
func (r *Registry) Listener() concore.ConstraintEngineListener {
	return (*engineListener)(r)
}

type engineListener Registry

var _ concore.ConstraintEngineListener = (*engineListener)(nil)

func (l *engineListener) NotifyPropagationCommenced() { l.propagationsCommenced.Inc() }
func (l *engineListener) NotifyPropagationCompleted() { l.propagationsCompleted.Inc() }
func (l *engineListener) NotifyPropagationPreempted() { l.propagationsPreempted.Inc() }

func (l *engineListener) NotifyConstraintAdded(*concore.Constraint)     {}
func (l *engineListener) NotifyConstraintRemoved(*concore.Constraint)   {}
func (l *engineListener) NotifyConstraintActivated(*concore.Constraint) {}
func (l *engineListener) NotifyConstraintDeactivated(*concore.Constraint) {}

func (l *engineListener) NotifyConstraintExecuted(*concore.Constraint) {
	l.constraintsExecuted.Inc()
}

func (l *engineListener) NotifyVariableAdded(*concore.Variable)               {}
func (l *engineListener) NotifyVariableRemoved(*concore.Variable)             {}
func (l *engineListener) NotifyVariableActivated(*concore.Variable)           {}
func (l *engineListener) NotifyVariableDeactivated(*concore.Variable)         {}
func (l *engineListener) NotifyVariableChanged(*concore.Variable, concore.ChangeKind) {}

func (l *engineListener) NotifyViolationAdded(*concore.Constraint) {
	l.violationsActive.Inc()
}

func (l *engineListener) NotifyViolationRemoved(*concore.Constraint) {
	l.violationsActive.Dec()
}
