package concore

import "fmt"

// constraintRef is one entry in a Variable's adjacency list: the constraint
// that references this variable, and the scope position it occupies.
type constraintRef struct {
	constraint *Constraint
	argIndex   int
}

// Variable owns three logical domains — base, specified, current — per the
// DATA MODEL. The engine is the only code that mutates currentDomain during
// propagation; Specify/Reset/RestrictBaseDomain are the public surface
// external callers use. None of the three checks whether the owning
// engine's propagation is in progress.
type Variable struct {
	Entity

	engine   *ConstraintEngine
	typeName string
	name     string
	internal bool

	canBeSpecified bool
	specified      bool
	specifiedValue Value

	base    Domain
	current Domain

	lastRelaxed uint64 // generation counter, monotonic

	deactivationRefCount int
	adjacency            []constraintRef

	// currentPropagatingConstraint attributes an EMPTIED event to the
	// constraint executing when the domain emptied, for violation recovery.
	currentPropagatingConstraint *Constraint

	deleted bool // guards re-entrancy during discard
}

// newVariable is called by ConstraintEngine.CreateVariable; external callers
// go through the engine so the variable is registered and its current
// domain's listener is wired to the engine.
func newVariable(e *ConstraintEngine, typeName string, base Domain, canBeSpecified bool, internal bool, name string) *Variable {
	v := &Variable{
		Entity:         newEntity(),
		engine:         e,
		typeName:       typeName,
		name:           name,
		internal:       internal,
		canBeSpecified: canBeSpecified,
		base:           base,
		current:        base.Clone(),
	}
	v.current.SetListener(v)
	return v
}

// TypeName returns the declared element type of this variable's domains.
func (v *Variable) TypeName() string { return v.typeName }

// Name returns the variable's debug name (may be empty).
func (v *Variable) Name() string { return v.name }

// IsInternal reports whether this variable was created for internal engine
// bookkeeping rather than by a planner-facing caller.
func (v *Variable) IsInternal() bool { return v.internal }

// Base returns the variable's base (declared-envelope) domain.
func (v *Variable) Base() Domain { return v.base }

// Current returns the variable's current (propagated) domain.
func (v *Variable) Current() Domain { return v.current }

// IsSpecified reports whether Specify has been called and not yet Reset.
func (v *Variable) IsSpecified() bool { return v.specified }

// SpecifiedValue returns the value passed to Specify, if any.
func (v *Variable) SpecifiedValue() (Value, bool) { return v.specifiedValue, v.specified }

// IsActive reports whether the variable's deactivation refcount is zero.
func (v *Variable) IsActive() bool { return v.deactivationRefCount == 0 }

// LastRelaxed returns the generation counter set by the most recent relax.
func (v *Variable) LastRelaxed() uint64 { return v.lastRelaxed }

// CanBeSpecified reports whether Specify is permitted on this variable.
func (v *Variable) CanBeSpecified() bool { return v.canBeSpecified }

// NotifyChange implements DomainListener for this variable's current
// domain: every mutation of current is routed back through the owning
// engine so propagation bookkeeping (dirty flags, emptied-variable set,
// listener fan-out) stays centralized.
func (v *Variable) NotifyChange(kind ChangeKind) {
	if v.engine != nil {
		v.engine.handleVariableDomainChanged(v, kind)
	}
}

// Specify restricts current to the singleton {value}. Requires
// CanBeSpecified; idempotent when value already equals the current
// specified value.
func (v *Variable) Specify(value Value) error {
	if !v.canBeSpecified {
		return invalidOperation("Variable.Specify: variable %s cannot be specified", v.name)
	}
	if v.specified && v.specifiedValue == value {
		return nil
	}
	v.specified = true
	v.specifiedValue = value
	return v.current.Set(value)
}

// Reset clears the specified flag and relaxes current to base, unless base
// is already a closed singleton (in which case current already equals it).
// Like Relax, this reactivates any violated constraint adjacent to v.
func (v *Variable) Reset() error {
	if !v.specified {
		return nil
	}
	v.specified = false
	v.specifiedValue = Value{}
	if size, ok := v.base.Size(); ok && size == 1 && v.base.IsClosed() {
		return nil
	}
	if err := v.current.Relax(v.base); err != nil {
		return err
	}
	if v.engine != nil {
		v.engine.violations.handleRelax(v)
	}
	return nil
}

// Deactivate adds one unit to this variable's deactivation refcount,
// suppressing it from IsActive() and, on the 0→1 transition, propagating
// the same unit onto every adjacent constraint's own deactivationRefCount
// (§4.3) so constraints referencing an inactive variable are themselves
// skipped by propagation. Ref-counted: callers that each have their own
// reason to deactivate a shared variable can do so independently, and the
// variable only becomes active again once every caller has Activated.
func (v *Variable) Deactivate() {
	wasActive := v.IsActive()
	v.deactivationRefCount++
	if !wasActive {
		return
	}
	for _, ref := range v.adjacency {
		ref.constraint.noteArgDeactivated()
	}
	if v.engine != nil {
		v.engine.notifyVariableDeactivated(v)
	}
}

// Activate undoes one Deactivate call. No-op if already fully active.
func (v *Variable) Activate() {
	if v.deactivationRefCount == 0 {
		return
	}
	v.deactivationRefCount--
	if !v.IsActive() {
		return
	}
	for _, ref := range v.adjacency {
		ref.constraint.noteArgActivated()
	}
	if v.engine != nil {
		v.engine.notifyVariableActivated(v)
	}
}

// RestrictBaseDomain narrows the variable's declared envelope. Requires d to
// intersect base. If d narrows base, every adjacent constraint and the
// owning engine are notified of the restriction; if d collapses to a
// singleton and the variable is unspecified, current is forced to that
// singleton directly — this narrows the value to match its now-singleton
// envelope, it does not set the specified flag, so the variable remains
// ordinarily relaxable (and its relax cascades to neighbors) rather than
// becoming pinned the way an explicit Specify call would.
func (v *Variable) RestrictBaseDomain(d Domain) error {
	changed, err := v.base.Intersect(d)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	for _, ref := range v.adjacency {
		ref.constraint.notifyBaseRestricted(v, ref.argIndex)
	}
	if v.engine != nil {
		v.engine.handleBaseRestricted(v)
	}
	if size, ok := v.base.Size(); ok && size == 1 && !v.specified {
		if singleton, ok := v.base.SingletonValue(); ok {
			return v.current.Set(singleton)
		}
	}
	return nil
}

// Relax restores current: to {specifiedValue} if the variable is specified
// (undoing any narrowing propagation did on top of the specified value), or
// to base otherwise. Bumps the generation counter, reactivates any violated
// constraint this variable is adjacent to, and cascades: every other
// variable an active constraint says this one could have modified is
// relaxed in turn, skipping specified variables (their value is pinned
// regardless of what narrowed around them) and anything already visited in
// this cascade.
func (v *Variable) Relax() error {
	return v.relaxCascade(make(map[Key]bool))
}

func (v *Variable) relaxCascade(visited map[Key]bool) error {
	if visited[v.key] {
		return nil
	}
	visited[v.key] = true

	v.lastRelaxed++
	var err error
	if v.specified {
		// Widen back to base first: Set cannot restore a value into a
		// domain that propagation has already emptied.
		if err = v.current.Reset(v.base); err == nil {
			err = v.current.Set(v.specifiedValue)
		}
	} else {
		err = v.current.Relax(v.base)
	}
	if err != nil {
		return err
	}
	if v.engine != nil {
		v.engine.violations.handleRelax(v)
	}
	if v.specified {
		return nil
	}
	for _, other := range v.modifiedVariables() {
		if other.specified || visited[other.key] {
			continue
		}
		if err := other.relaxCascade(visited); err != nil {
			return err
		}
	}
	return nil
}

// addConstraint records that c references this variable at argIndex.
func (v *Variable) addConstraint(c *Constraint, argIndex int) {
	if v.deleted {
		return
	}
	v.adjacency = append(v.adjacency, constraintRef{constraint: c, argIndex: argIndex})
}

// removeConstraint undoes addConstraint. Skipped while the owning engine is
// in its Purging phase, per the two-phase-discard rule: the whole
// collection is being torn down so per-entry bookkeeping is pointless.
func (v *Variable) removeConstraint(c *Constraint) {
	if v.deleted {
		return
	}
	if v.engine != nil && v.engine.phase == PhasePurging {
		return
	}
	for i, ref := range v.adjacency {
		if ref.constraint == c {
			v.adjacency = append(v.adjacency[:i], v.adjacency[i+1:]...)
			return
		}
	}
}

// AdjacentConstraints returns the constraints referencing this variable, in
// addConstraint order.
func (v *Variable) AdjacentConstraints() []*Constraint {
	out := make([]*Constraint, len(v.adjacency))
	for i, ref := range v.adjacency {
		out[i] = ref.constraint
	}
	return out
}

// modifiedVariables is used by the relax cascade: the set of variables that
// would be affected if this variable's value changed, as seen through each
// adjacent active constraint.
func (v *Variable) modifiedVariables() []*Variable {
	seen := make(map[Key]struct{})
	var out []*Variable
	for _, ref := range v.adjacency {
		if !ref.constraint.IsActive() {
			continue
		}
		for _, other := range ref.constraint.GetModifiedVariables(v) {
			if other == nil || other.key == v.key {
				continue
			}
			if _, ok := seen[other.key]; ok {
				continue
			}
			seen[other.key] = struct{}{}
			out = append(out, other)
		}
	}
	return out
}

// Validate checks two of the invariants in VALIDITY: the variable's current
// domain listener is this variable itself (the engine-allocated adapter),
// and every adjacent constraint's declared scope agrees with the recorded
// argIndex. It does not check that current is a subset of base.
func (v *Variable) Validate() error {
	if v.current.Listener() != DomainListener(v) {
		return invalidOperation("Variable.Validate: current domain listener is not engine-allocated")
	}
	for _, ref := range v.adjacency {
		scope := ref.constraint.Scope()
		if ref.argIndex < 0 || ref.argIndex >= len(scope) || scope[ref.argIndex] != v {
			return invalidOperation("Variable.Validate: adjacency argIndex mismatch for constraint %s", ref.constraint.Name())
		}
	}
	return nil
}

func (v *Variable) String() string {
	return fmt.Sprintf("%s#%d(%s)=%s", v.name, v.key, v.typeName, v.current.String())
}
