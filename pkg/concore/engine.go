package concore

import (
	"context"
	"fmt"
)

// Phase tracks the engine's current lifecycle stage. Propagation and
// discard are mutually exclusive: PhasePurging replaces a single mutable
// "is being destroyed" flag with an explicit state a caller can branch on.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePurging
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePurging:
		return "purging"
	default:
		return "idle"
	}
}

// EngineConfig holds the toggles loaded from config.go's yaml schema.
type EngineConfig struct {
	AutoPropagate   bool
	AllowViolations bool
	ViolationBudget int
}

// DefaultEngineConfig returns the conservative defaults: propagation is
// explicit, violations are not tolerated.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{AutoPropagate: false, AllowViolations: false, ViolationBudget: 0}
}

// ConstraintEngine is the bipartite graph of Variables and Constraints
// described in the DATA MODEL, plus the set of Propagators that schedule
// them and the ViolationMgr that recovers from emptied domains. CE
// exclusively owns Variables, Constraints, Propagators, and listeners.
type ConstraintEngine struct {
	cfg EngineConfig

	variables   *entityArena[*Variable]
	constraints *entityArena[*Constraint]
	propagators *entityArena[*Propagator]

	// propagatorOrder is the fixed, insertion-ordered schedule Propagate
	// polls each pass; propagatorByName resolves CreateConstraintIn's
	// group-name argument to the Propagator instance it names.
	propagatorOrder  []*Propagator
	propagatorByName map[string]*Propagator

	// pendingRedundant holds constraints flagged redundant at construction
	// time, awaiting the next clean (non-preempted) propagation pass.
	pendingRedundant []*Constraint

	phase Phase

	listeners   map[Key]ConstraintEngineListener
	listenerSeq uint64

	violations *violationManager

	inconsistent bool
}

// NewConstraintEngine constructs an empty engine with cfg. A zero-value
// EngineConfig is valid and matches DefaultEngineConfig's strictness.
func NewConstraintEngine(cfg EngineConfig) *ConstraintEngine {
	return &ConstraintEngine{
		cfg:              cfg,
		variables:        newEntityArena[*Variable](),
		constraints:      newEntityArena[*Constraint](),
		propagators:      newEntityArena[*Propagator](),
		propagatorByName: make(map[string]*Propagator),
		listeners:        make(map[Key]ConstraintEngineListener),
		violations:       newViolationManager(),
	}
}

// AddListener registers l for engine-lifecycle notifications. The returned
// Subscription's Unsubscribe removes it; callers should keep the
// Subscription alive for as long as they want notifications.
func (e *ConstraintEngine) AddListener(l ConstraintEngineListener) *Subscription {
	id := e.listenerSeq
	e.listenerSeq++
	key := Key(id + 1)
	e.listeners[key] = l
	return &Subscription{unsub: func() { delete(e.listeners, key) }}
}

func (e *ConstraintEngine) forEachListener(f func(ConstraintEngineListener)) {
	for _, l := range e.listeners {
		f(l)
	}
}

// CreateVariable registers a new Variable owned by this engine.
func (e *ConstraintEngine) CreateVariable(typeName string, base Domain, canBeSpecified bool, internal bool, name string) (*Variable, error) {
	if e.phase == PhasePurging {
		return nil, invalidOperation("ConstraintEngine.CreateVariable: engine is purging")
	}
	v := newVariable(e, typeName, base, canBeSpecified, internal, name)
	e.variables.add(v.Key(), v)
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyVariableAdded(v) })
	return v, nil
}

// getOrCreatePropagator resolves name to its Propagator, creating and
// registering one (appended to the fixed schedule order) on first use.
func (e *ConstraintEngine) getOrCreatePropagator(name string) *Propagator {
	if p, ok := e.propagatorByName[name]; ok {
		return p
	}
	p := newPropagator(e, name)
	e.propagators.add(p.Key(), p)
	e.propagatorByName[name] = p
	e.propagatorOrder = append(e.propagatorOrder, p)
	return p
}

// Propagators returns every registered Propagator in fixed schedule order.
func (e *ConstraintEngine) Propagators() []*Propagator {
	out := make([]*Propagator, len(e.propagatorOrder))
	copy(out, e.propagatorOrder)
	return out
}

// CreateConstraint registers a new Constraint over scope in the
// DefaultPropagator group, running handler whenever the engine decides it is
// dirty. The constraint starts dirty, so the first Propagate call checks it
// (unless construction found it scoped over an inactive variable, in which
// case it starts deactivated instead). A constraint found redundant at
// construction still starts active; it is deactivated after the next clean
// Propagate pass.
func (e *ConstraintEngine) CreateConstraint(name string, handler ConstraintHandler, scope ...*Variable) (*Constraint, error) {
	return e.CreateConstraintIn(DefaultPropagatorName, name, handler, scope...)
}

// CreateConstraintIn is CreateConstraint with an explicit Propagator group
// name, so a caller that wants its own scheduling group (the way
// pkg/temporal registers a "TemporalPropagator" group) can ask for one.
func (e *ConstraintEngine) CreateConstraintIn(propagatorName, name string, handler ConstraintHandler, scope ...*Variable) (*Constraint, error) {
	if e.phase == PhasePurging {
		return nil, invalidOperation("ConstraintEngine.CreateConstraintIn: engine is purging")
	}
	for _, v := range scope {
		if v == nil {
			return nil, invalidOperation("ConstraintEngine.CreateConstraintIn: nil variable in scope")
		}
	}
	p := e.getOrCreatePropagator(propagatorName)
	c := newConstraint(e, name, handler, scope)
	c.propagator = p
	p.addConstraint(c)
	e.constraints.add(c.Key(), c)
	if c.redundant {
		e.pendingRedundant = append(e.pendingRedundant, c)
	}
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyConstraintAdded(c) })
	if e.cfg.AutoPropagate {
		_ = e.Propagate(context.Background())
	}
	return c, nil
}

// DiscardConstraint removes c from the engine, detaching it from its scope
// and its propagator.
func (e *ConstraintEngine) DiscardConstraint(c *Constraint) {
	if c == nil {
		return
	}
	c.discard()
	e.violations.remove(c)
	e.constraints.remove(c.key)
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyConstraintRemoved(c) })
}

// DiscardVariable removes v from the engine. Any constraint still scoped
// over v is left dangling for the caller to discard separately; engines are
// expected to tear down constraints before their variables.
func (e *ConstraintEngine) DiscardVariable(v *Variable) {
	if v == nil {
		return
	}
	v.deleted = true
	e.variables.remove(v.key)
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyVariableRemoved(v) })
}

// Purge discards every variable, constraint, and propagator at once,
// skipping the per-entity adjacency bookkeeping that DiscardConstraint/
// DiscardVariable perform one at a time — the whole graph is going away
// together.
func (e *ConstraintEngine) Purge() {
	e.phase = PhasePurging
	e.violations = newViolationManager()
	e.pendingRedundant = nil
	e.constraints.each(func(_ Key, c *Constraint) { c.deleted = true })
	e.variables.each(func(_ Key, v *Variable) { v.deleted = true })
	e.constraints = newEntityArena[*Constraint]()
	e.variables = newEntityArena[*Variable]()
	e.propagators = newEntityArena[*Propagator]()
	e.propagatorOrder = nil
	e.propagatorByName = make(map[string]*Propagator)
	e.phase = PhaseIdle
}

// IsInconsistent reports whether the engine's last propagation pass emptied
// a variable's domain and recovery was not possible within the configured
// violation budget.
func (e *ConstraintEngine) IsInconsistent() bool { return e.inconsistent }

// Violations returns the constraints currently in the violated state, in
// first-violated order.
func (e *ConstraintEngine) Violations() []*Constraint { return e.violations.list() }

// handleVariableDomainChanged is the Variable.NotifyChange callback: every
// active constraint adjacent to v is marked dirty so the next Propagate
// pass re-checks it, and listeners are notified of the raw domain change.
func (e *ConstraintEngine) handleVariableDomainChanged(v *Variable, kind ChangeKind) {
	for _, c := range v.AdjacentConstraints() {
		if c.IsActive() {
			c.markDirty()
		}
	}
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyVariableChanged(v, kind) })
}

// handleBaseRestricted is called when a variable's base domain narrows
// outside of propagation (Variable.RestrictBaseDomain already queued the
// adjacent constraints via notifyBaseRestricted); this hook exists for
// engine-level bookkeeping symmetry and currently does no additional work.
func (e *ConstraintEngine) handleBaseRestricted(v *Variable) {}

// handleConstraintExecuted updates the violated-constraint set and fires
// the Added/Removed/Executed listener notifications for one Execute call.
func (e *ConstraintEngine) handleConstraintExecuted(c *Constraint, wasViolated bool) {
	if c.violated && !wasViolated {
		e.violations.add(c)
		e.forEachListener(func(l ConstraintEngineListener) { l.NotifyViolationAdded(c) })
	} else if !c.violated && wasViolated {
		e.violations.remove(c)
		e.forEachListener(func(l ConstraintEngineListener) { l.NotifyViolationRemoved(c) })
	}
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyConstraintExecuted(c) })
}

func (e *ConstraintEngine) notifyConstraintActivated(c *Constraint) {
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyConstraintActivated(c) })
}

func (e *ConstraintEngine) notifyConstraintDeactivated(c *Constraint) {
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyConstraintDeactivated(c) })
}

func (e *ConstraintEngine) notifyVariableActivated(v *Variable) {
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyVariableActivated(v) })
}

func (e *ConstraintEngine) notifyVariableDeactivated(v *Variable) {
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyVariableDeactivated(v) })
}

// anyPropagatorDirty reports whether any enabled propagator owns an active,
// dirty constraint — Propagate's early-exit test.
func (e *ConstraintEngine) anyPropagatorDirty() bool {
	for _, p := range e.propagatorOrder {
		if p.updateRequired() {
			return true
		}
	}
	return false
}

// processRedundantConstraints deactivates every still-redundant constraint
// queued by a prior CreateConstraintIn call, per §4.3's "queued for eventual
// deactivation after the next successful propagation". Run once per clean
// (non-preempted) Propagate pass.
func (e *ConstraintEngine) processRedundantConstraints() {
	if len(e.pendingRedundant) == 0 {
		return
	}
	pending := e.pendingRedundant
	e.pendingRedundant = nil
	for _, c := range pending {
		if c.deleted || !c.redundant || c.redundantDeactivated {
			continue
		}
		c.redundantDeactivated = true
		c.incDeactivation()
	}
}

// Propagate runs propagation to quiescence: first recovering any variable
// domains a prior pass emptied (ViolationMgr.relaxEmptyVariables), then
// repeatedly asking each enabled Propagator, in fixed insertion order,
// whether it has work; the first one that says yes runs exactly one of its
// dirty constraints before the loop asks again from the top. This continues
// until no propagator has work left or ctx is cancelled.
//
// If AllowViolations is false, the first violation encountered aborts
// propagation and Propagate returns that violation's error; the engine is
// left Inconsistent. If AllowViolations is true, violated constraints are
// left in the violated set and propagation continues, as long as the
// violated count stays within ViolationBudget (0 meaning unlimited); once
// the budget is exceeded, Propagate returns a *ViolationBudgetExceededError
// and the engine is left Inconsistent.
func (e *ConstraintEngine) Propagate(ctx context.Context) error {
	if e.phase == PhasePurging {
		return invalidOperation("ConstraintEngine.Propagate: engine is purging")
	}

	if err := e.violations.relaxEmptyVariables(); err != nil {
		return err
	}

	if !e.anyPropagatorDirty() {
		return nil
	}

	e.phase = PhaseRunning
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyPropagationCommenced() })

	for {
		select {
		case <-ctx.Done():
			e.phase = PhaseIdle
			e.forEachListener(func(l ConstraintEngineListener) { l.NotifyPropagationPreempted() })
			return ctx.Err()
		default:
		}

		var ran *Constraint
		var err error
		for _, p := range e.propagatorOrder {
			if !p.updateRequired() {
				continue
			}
			ran, err = p.execute(ctx)
			break
		}
		if ran == nil {
			break
		}
		if err != nil {
			if !e.cfg.AllowViolations {
				e.inconsistent = true
				e.phase = PhaseIdle
				e.forEachListener(func(l ConstraintEngineListener) { l.NotifyPropagationPreempted() })
				return err
			}
			if budgetErr := e.violations.checkBudget(e.cfg.ViolationBudget); budgetErr != nil {
				e.inconsistent = true
				e.phase = PhaseIdle
				e.forEachListener(func(l ConstraintEngineListener) { l.NotifyPropagationPreempted() })
				return budgetErr
			}
		}
	}

	e.processRedundantConstraints()
	e.inconsistent = false
	e.phase = PhaseIdle
	e.forEachListener(func(l ConstraintEngineListener) { l.NotifyPropagationCompleted() })
	return nil
}

func (e *ConstraintEngine) String() string {
	return fmt.Sprintf("ConstraintEngine(vars=%d, constraints=%d, phase=%s)", e.variables.len(), e.constraints.len(), e.phase)
}
