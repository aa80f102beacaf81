package concore

import (
	"context"
	"fmt"
)

// Constraint binds a ConstraintHandler to an ordered scope of variables and
// belongs to exactly one Propagator (its scheduling group). The engine
// activates/deactivates/executes constraints; callers only create them (via
// ConstraintEngine.CreateConstraint/CreateConstraintIn) and may query their
// state.
type Constraint struct {
	Entity

	engine     *ConstraintEngine
	name       string
	handler    ConstraintHandler
	propagator *Propagator
	scope      []*Variable

	// deactivationRefCount is the number of independent reasons this
	// constraint is not currently propagated: one unit per inactive scope
	// variable (noteArgDeactivated/noteArgActivated), one unit while
	// violated, and one permanent unit once a redundant constraint has
	// been processed by the engine's post-propagation sweep. The
	// constraint is active iff this is zero.
	deactivationRefCount int

	// redundant marks a constraint whose entire scope was already
	// singleton at construction time — its narrowing can never do
	// anything useful, so it is queued for deactivation once propagation
	// first reaches quiescence.
	redundant            bool
	redundantDeactivated bool

	dirty     bool
	violated  bool
	violation error

	deleted bool
}

func newConstraint(e *ConstraintEngine, name string, handler ConstraintHandler, scope []*Variable) *Constraint {
	c := &Constraint{
		Entity:  newEntity(),
		engine:  e,
		name:    name,
		handler: handler,
		scope:   scope,
		dirty:   true,
	}
	for i, v := range scope {
		if !v.IsActive() {
			c.deactivationRefCount++
		}
		v.addConstraint(c, i)
	}
	c.redundant = allSingletonBase(scope)
	return c
}

// allSingletonBase reports whether every variable in scope already has a
// closed, single-valued base domain — the construction-time redundancy test.
func allSingletonBase(scope []*Variable) bool {
	if len(scope) == 0 {
		return false
	}
	for _, v := range scope {
		if !v.base.IsSingleton() {
			return false
		}
	}
	return true
}

// Name returns the constraint's debug name.
func (c *Constraint) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.handler.Name()
}

// Scope returns the constraint's variables in declaration order. Callers
// must not mutate the returned slice.
func (c *Constraint) Scope() []*Variable { return c.scope }

// Propagator returns the scheduling group this constraint belongs to.
func (c *Constraint) Propagator() *Propagator { return c.propagator }

// IsActive reports whether the engine currently propagates this constraint:
// it has no outstanding deactivation reason and has not been discarded.
func (c *Constraint) IsActive() bool { return c.deactivationRefCount == 0 && !c.deleted }

// IsDirty reports whether the constraint is queued for (re-)execution.
func (c *Constraint) IsDirty() bool { return c.dirty }

// IsViolated reports whether the most recent Execute call left this
// constraint in the violated set.
func (c *Constraint) IsViolated() bool { return c.violated }

// Violation returns the error recorded by the last violating Execute, or
// nil if the constraint is not currently violated.
func (c *Constraint) Violation() error { return c.violation }

// GetViolation returns 1.0 while the constraint is violated and 0.0
// otherwise, the numeric violation metric kept for compatibility.
func (c *Constraint) GetViolation() float64 {
	if c.violated {
		return 1.0
	}
	return 0.0
}

// IsRedundant reports whether this constraint's scope was entirely
// singleton at construction time.
func (c *Constraint) IsRedundant() bool { return c.redundant }

// markDirty enqueues the constraint for propagation. No-op if already dirty
// or discarded; the engine's propagator polling skips inactive constraints
// regardless of their dirty flag, and re-checks them once reactivated.
func (c *Constraint) markDirty() {
	if c.deleted || c.dirty {
		return
	}
	c.dirty = true
}

// notifyBaseRestricted is called by a scope variable when its base domain
// narrows; constraints re-check on the next propagation pass regardless, so
// this just ensures the constraint is queued.
func (c *Constraint) notifyBaseRestricted(v *Variable, argIndex int) {
	c.markDirty()
}

// GetModifiedVariables returns this constraint's scope variables other than
// changed — the set a change to changed could, through this constraint's
// handler, affect. A constraint with no internal structure conservatively
// reports every other scope variable; specialized handlers may narrow this
// by embedding their own GetModifiedVariables and having Execute consult it,
// but the default here is what newConstraint wires up.
func (c *Constraint) GetModifiedVariables(changed *Variable) []*Variable {
	out := make([]*Variable, 0, len(c.scope)-1)
	for _, v := range c.scope {
		if v != changed {
			out = append(out, v)
		}
	}
	return out
}

// execute runs the handler and updates the violated/dirty bookkeeping.
// Called only by the owning engine's propagation loop (via Propagator's own
// execute, which this mirrors for a single constraint).
func (c *Constraint) execute(ctx context.Context) error {
	c.dirty = false
	wasViolated := c.violated

	for _, v := range c.scope {
		v.currentPropagatingConstraint = c
	}
	err := c.handler.Execute(ctx, c.scope)
	var emptied []*Variable
	for _, v := range c.scope {
		v.currentPropagatingConstraint = nil
		if v.current.IsEmpty() {
			emptied = append(emptied, v)
		}
	}
	if err == nil && len(emptied) > 0 {
		err = violationErr("constraint %s emptied variable %s", c.Name(), emptied[0].name)
	}

	if err != nil {
		c.violation = err
		if !wasViolated {
			c.violated = true
			c.incDeactivation()
		}
		if c.engine != nil {
			c.engine.violations.handleEmpty(emptied)
		}
	} else if wasViolated {
		c.violated = false
		c.violation = nil
		c.decDeactivation()
	}

	if c.engine != nil {
		c.engine.handleConstraintExecuted(c, wasViolated)
	}
	return err
}

// incDeactivation adds one reason this constraint is inactive, firing the
// Deactivated notification on the 0→1 transition.
func (c *Constraint) incDeactivation() {
	c.deactivationRefCount++
	if c.deactivationRefCount == 1 && c.engine != nil {
		c.engine.notifyConstraintDeactivated(c)
	}
}

// decDeactivation removes one reason this constraint is inactive, marking it
// dirty and firing the Activated notification on the 1→0 transition.
func (c *Constraint) decDeactivation() {
	if c.deactivationRefCount == 0 {
		return
	}
	c.deactivationRefCount--
	if c.deactivationRefCount == 0 {
		c.markDirty()
		if c.engine != nil {
			c.engine.notifyConstraintActivated(c)
		}
	}
}

// noteArgDeactivated/noteArgActivated are called by a scope Variable when
// its own active/inactive state flips, keeping this constraint's refcount in
// sync with §4.3's "each inactive argument contributes one unit" rule.
func (c *Constraint) noteArgDeactivated() { c.incDeactivation() }
func (c *Constraint) noteArgActivated()   { c.decDeactivation() }

// discard detaches the constraint from every scope variable's adjacency
// list and from its propagator. Safe to call more than once.
func (c *Constraint) discard() {
	if c.deleted {
		return
	}
	c.deleted = true
	for _, v := range c.scope {
		v.removeConstraint(c)
	}
	if c.propagator != nil {
		c.propagator.removeConstraint(c)
	}
}

func (c *Constraint) String() string {
	return fmt.Sprintf("%s#%d[%d vars]", c.Name(), c.key, len(c.scope))
}
