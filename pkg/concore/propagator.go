package concore

import "context"

// ConstraintHandler is the per-constraint narrowing logic: given the current
// domains of its scope, tighten them (or let a domain run empty, which the
// owning Constraint reports as a violation). This is the source's
// handleExecute — distinct from Propagator below, which schedules many
// Constraints sharing a handler family.
type ConstraintHandler interface {
	// Execute narrows the domains of scope in place. Any non-nil error is
	// handled the same way as a domain this call left empty: the owning
	// Constraint is marked violated, and Propagate aborts on it only when
	// the engine does not allow violations.
	Execute(ctx context.Context, scope []*Variable) error

	// Name identifies the handler's semantics for logging, independent of
	// any particular Constraint instance running it.
	Name() string
}

// ConstraintHandlerFunc adapts a plain function to the ConstraintHandler
// interface, the way http.HandlerFunc adapts a function to http.Handler.
type ConstraintHandlerFunc struct {
	Label string
	Fn    func(ctx context.Context, scope []*Variable) error
}

func (h ConstraintHandlerFunc) Execute(ctx context.Context, scope []*Variable) error {
	return h.Fn(ctx, scope)
}

func (h ConstraintHandlerFunc) Name() string {
	if h.Label == "" {
		return "anonymous"
	}
	return h.Label
}

var _ ConstraintHandler = ConstraintHandlerFunc{}

// DefaultPropagatorName is the scheduling group every CreateConstraint call
// lands in unless the caller asks for CreateConstraintIn with another name.
const DefaultPropagatorName = "DefaultPropagator"

// Propagator owns an ordered set of Constraints and decides, once per
// Propagate pass, whether any of them needs to run. The CE holds a fixed,
// insertion-ordered list of Propagators (Variables/Constraints/Propagators/
// Listeners are exactly what it owns); each pass asks them in that order
// whether updateRequired(), and runs the first dirty Constraint the first
// one that says yes owns. This is the "minimal default propagator" the
// component design allows: it keeps its constraints in insertion order and
// runs them to local fixpoint one at a time, relying on the same Constraint
// that narrowed a neighbor re-dirtying it for the next pass.
type Propagator struct {
	Entity

	engine  *ConstraintEngine
	name    string
	enabled bool

	constraints []*Constraint
	memberSet   map[Key]bool
}

func newPropagator(e *ConstraintEngine, name string) *Propagator {
	return &Propagator{
		Entity:    newEntity(),
		engine:    e,
		name:      name,
		enabled:   true,
		memberSet: make(map[Key]bool),
	}
}

// Name returns the propagator's scheduling-group name.
func (p *Propagator) Name() string { return p.name }

// Enabled reports whether the engine currently considers this propagator for
// scheduling; a disabled propagator's constraints never run even if dirty.
func (p *Propagator) Enabled() bool { return p.enabled }

// SetEnabled toggles the propagator on or off.
func (p *Propagator) SetEnabled(enabled bool) { p.enabled = enabled }

// Constraints returns the propagator's owned constraints in insertion order.
// Callers must not mutate the returned slice.
func (p *Propagator) Constraints() []*Constraint {
	out := make([]*Constraint, len(p.constraints))
	copy(out, p.constraints)
	return out
}

func (p *Propagator) addConstraint(c *Constraint) {
	if p.memberSet[c.key] {
		return
	}
	p.memberSet[c.key] = true
	p.constraints = append(p.constraints, c)
}

func (p *Propagator) removeConstraint(c *Constraint) {
	if !p.memberSet[c.key] {
		return
	}
	delete(p.memberSet, c.key)
	for i, x := range p.constraints {
		if x == c {
			p.constraints = append(p.constraints[:i], p.constraints[i+1:]...)
			break
		}
	}
}

// updateRequired reports whether this propagator owns at least one active,
// dirty constraint.
func (p *Propagator) updateRequired() bool {
	if !p.enabled {
		return false
	}
	for _, c := range p.constraints {
		if c.IsActive() && c.IsDirty() {
			return true
		}
	}
	return false
}

// execute runs the first active, dirty constraint this propagator owns
// (insertion order) and reports which one ran, so the caller can fold its
// result into the outer propagation loop the same way regardless of which
// propagator produced it.
func (p *Propagator) execute(ctx context.Context) (*Constraint, error) {
	for _, c := range p.constraints {
		if c.IsActive() && c.IsDirty() {
			return c, c.execute(ctx)
		}
	}
	return nil, nil
}
