package temporal

import (
	"context"

	"github.com/pkg/errors"

	"github.com/plancore/concore/pkg/concore"
	"github.com/plancore/concore/pkg/tnet"
)

// ErrInconsistent marks a temporal network found inconsistent during
// propagation.
var ErrInconsistent = errors.New("temporal: network inconsistent")

// timepointWrapper is the two-way binding between a CE variable and a TNet
// timepoint, plus the implicit origin→timepoint constraint that mirrors
// the variable's current numeric bounds into the network.
type timepointWrapper struct {
	variable  *concore.Variable
	timepoint *tnet.Timepoint
	originTC  *tnet.TemporalConstraint
}

// TemporalPropagator is a Propagator attached to a ConstraintEngine that
// owns one TemporalNetwork. It keeps CE temporal variables 1:1 with TNet
// timepoints and CE temporal constraints 1:1 with TNet temporal
// constraints, and bridges propagation both ways: CE domain narrowing
// feeds TNet edge windows; TNet-propagated bounds feed back into CE
// current domains.
type TemporalPropagator struct {
	engine *concore.ConstraintEngine
	net    *tnet.TemporalNetwork

	wrappers map[concore.Key]*timepointWrapper

	onConsistencyCheck func(ok bool)
}

// SetConsistencyCheckHook registers fn to be called with the result of
// every TemporalNetwork.Propagate this bridge triggers (used by
// pkg/metrics.Registry.RecordConsistencyCheck; nil disables it).
func (tp *TemporalPropagator) SetConsistencyCheckHook(fn func(ok bool)) {
	tp.onConsistencyCheck = fn
}

// NewTemporalPropagator constructs a bridge over engine, with a fresh
// TemporalNetwork.
func NewTemporalPropagator(engine *concore.ConstraintEngine) *TemporalPropagator {
	return &TemporalPropagator{
		engine:   engine,
		net:      tnet.NewTemporalNetwork(),
		wrappers: make(map[concore.Key]*timepointWrapper),
	}
}

// Network exposes the underlying TemporalNetwork for queries that don't go
// through a CE variable (used by Facade).
func (tp *TemporalPropagator) Network() *tnet.TemporalNetwork { return tp.net }

// Timepoint returns v's bound timepoint, wrapping it first if this is the
// first time v has been referenced. Exposed for callers that need to drive
// the underlying TemporalNetwork directly (diagnostics, scenarios that
// construct edges the three constraint shapes don't cover).
func (tp *TemporalPropagator) Timepoint(v *concore.Variable) (*tnet.Timepoint, error) {
	w, err := tp.wrap(v)
	if err != nil {
		return nil, err
	}
	return w.timepoint, nil
}

// wrap returns v's timepoint wrapper, creating the timepoint and its
// implicit origin constraint on first use.
func (tp *TemporalPropagator) wrap(v *concore.Variable) (*timepointWrapper, error) {
	if w, ok := tp.wrappers[v.Key()]; ok {
		return w, nil
	}
	timepoint := tp.net.AddTimepoint()
	w := &timepointWrapper{variable: v, timepoint: timepoint}
	lo, hi, ok := concore.DomainBounds(v.Current())
	if !ok {
		return nil, errors.Errorf("temporal: variable %s has no numeric domain", v.Name())
	}
	tc, err := tp.net.AddTemporalConstraint(tp.net.Origin(), timepoint, tnet.Time(lo), tnet.Time(hi), true)
	if err != nil {
		return nil, err
	}
	w.originTC = tc
	tp.wrappers[v.Key()] = w
	return w, nil
}

// syncOrigin brings w's implicit origin constraint in line with the
// variable's current bounds: a narrowing updates the window in place; a
// widening (relaxation past the constraint's own bounds) swaps it for a
// fresh, wider one, since narrowTemporalConstraint only accepts a tighter
// window.
func (tp *TemporalPropagator) syncOrigin(w *timepointWrapper) error {
	lo, hi, ok := concore.DomainBounds(w.variable.Current())
	if !ok {
		return nil
	}
	newLb, newUb := tnet.Time(lo), tnet.Time(hi)
	if newLb == w.originTC.Lb && newUb == w.originTC.Ub {
		return nil
	}
	if newLb >= w.originTC.Lb && newUb <= w.originTC.Ub {
		return tp.net.NarrowTemporalConstraint(w.originTC, newLb, newUb)
	}
	tp.net.RemoveTemporalConstraint(w.originTC, false)
	tc, err := tp.net.AddTemporalConstraint(tp.net.Origin(), w.timepoint, newLb, newUb, true)
	if err != nil {
		return err
	}
	w.originTC = tc
	return nil
}

// stepAndReadback is the shared Execute body for precedes/concurrent/
// before: sync every scope variable's origin constraint, propagate the
// network, then intersect the propagated bounds back into each variable's
// current domain. On an inconsistent network it returns ErrInconsistent,
// which the owning Constraint records as violated; the engine's
// AllowViolations setting decides whether that aborts propagation or is
// merely recorded.
func (tp *TemporalPropagator) stepAndReadback(scope []*concore.Variable) error {
	ws := make([]*timepointWrapper, len(scope))
	for i, v := range scope {
		w, err := tp.wrap(v)
		if err != nil {
			return err
		}
		if err := tp.syncOrigin(w); err != nil {
			return err
		}
		ws[i] = w
	}
	ok, _ := tp.net.Propagate()
	if tp.onConsistencyCheck != nil {
		tp.onConsistencyCheck(ok)
	}
	if !ok {
		return ErrInconsistent
	}
	for i, v := range scope {
		lb, ub := tp.net.GetTimepointBounds(ws[i].timepoint)
		if _, err := v.Current().IntersectBounds(float64(lb), float64(ub)); err != nil {
			return err
		}
	}
	return nil
}

// recomputeDuration narrows d to [end.lb − start.ub, end.ub − start.lo],
// the classic token-duration readback, once both endpoints have finite
// bounds.
func (tp *TemporalPropagator) recomputeDuration(s, d, e *concore.Variable) error {
	sLo, sHi, ok := concore.DomainBounds(s.Current())
	if !ok {
		return nil
	}
	eLo, eHi, ok := concore.DomainBounds(e.Current())
	if !ok {
		return nil
	}
	if sHi >= float64(tnet.PosInf) || eLo <= float64(tnet.NegInf) {
		return nil
	}
	_, err := d.Current().IntersectBounds(eLo-sHi, eHi-sLo)
	return err
}

// edgeConstraintPropagator implements precedes/concurrent/before: each
// shares stepAndReadback verbatim since the distinguishing window (their
// [lb,ub]) was already fixed into the TNet temporal constraint at
// construction time.
type edgeConstraintPropagator struct {
	tp    *TemporalPropagator
	label string
}

func (p edgeConstraintPropagator) Name() string { return p.label }

func (p edgeConstraintPropagator) Execute(ctx context.Context, scope []*concore.Variable) error {
	return p.tp.stepAndReadback(scope)
}

// temporalDistancePropagator implements temporalDistance(s,d,e): s+d=e,
// d ∈ [lb,ub]. After the shared endpoint readback it also recomputes d.
type temporalDistancePropagator struct {
	tp      *TemporalPropagator
	s, d, e *concore.Variable
}

func (p temporalDistancePropagator) Name() string { return "temporalDistance" }

func (p temporalDistancePropagator) Execute(ctx context.Context, scope []*concore.Variable) error {
	if err := p.tp.stepAndReadback([]*concore.Variable{p.s, p.e}); err != nil {
		return err
	}
	return p.tp.recomputeDuration(p.s, p.d, p.e)
}

// CreatePrecedes registers s ≤ e: e − s ≥ 0, unbounded above.
func (tp *TemporalPropagator) CreatePrecedes(s, e *concore.Variable) (*concore.Constraint, error) {
	return tp.createEdgeConstraint("precedes", s, e, 0, tnet.PosInf)
}

// CreateConcurrent registers s = e: a zero/zero window, joining the pair
// into a TEQ ring.
func (tp *TemporalPropagator) CreateConcurrent(s, e *concore.Variable) (*concore.Constraint, error) {
	return tp.createEdgeConstraint("concurrent", s, e, 0, 0)
}

// CreateBefore registers the same window as CreatePrecedes, s ≤ e:
// e − s ≥ 0, unbounded above.
func (tp *TemporalPropagator) CreateBefore(s, e *concore.Variable) (*concore.Constraint, error) {
	return tp.createEdgeConstraint("before", s, e, 0, tnet.PosInf)
}

func (tp *TemporalPropagator) createEdgeConstraint(label string, s, e *concore.Variable, lb, ub tnet.Time) (*concore.Constraint, error) {
	ws, err := tp.wrap(s)
	if err != nil {
		return nil, err
	}
	we, err := tp.wrap(e)
	if err != nil {
		return nil, err
	}
	if _, err := tp.net.AddTemporalConstraint(ws.timepoint, we.timepoint, lb, ub, true); err != nil {
		return nil, err
	}
	return tp.engine.CreateConstraintIn(temporalPropagatorGroup, label, edgeConstraintPropagator{tp: tp, label: label}, s, e)
}

// CreateTemporalDistance registers s + d = e with d ∈ [lb,ub] taken from
// d's declared base domain.
func (tp *TemporalPropagator) CreateTemporalDistance(s, d, e *concore.Variable) (*concore.Constraint, error) {
	ws, err := tp.wrap(s)
	if err != nil {
		return nil, err
	}
	we, err := tp.wrap(e)
	if err != nil {
		return nil, err
	}
	lo, hi, ok := concore.DomainBounds(d.Base())
	if !ok {
		return nil, errors.Errorf("temporal: duration variable %s has no numeric domain", d.Name())
	}
	if _, err := tp.net.AddTemporalConstraint(ws.timepoint, we.timepoint, tnet.Time(lo), tnet.Time(hi), true); err != nil {
		return nil, err
	}
	return tp.engine.CreateConstraintIn(temporalPropagatorGroup, "temporalDistance", temporalDistancePropagator{tp: tp, s: s, d: d, e: e}, s, d, e)
}

// temporalPropagatorGroup is the concore.Propagator name every constraint
// this bridge creates is scheduled under, keeping temporal constraints in
// their own group rather than the engine's DefaultPropagator.
const temporalPropagatorGroup = "TemporalPropagator"
