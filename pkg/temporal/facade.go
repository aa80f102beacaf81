package temporal

import (
	"github.com/plancore/concore/pkg/concore"
	"github.com/plancore/concore/pkg/tnet"
)

// Facade exposes the precedence and distance queries a scheduler wants to
// ask of a temporal network, without requiring the caller to know about
// timepoints, edge specs, or TEQ rings.
type Facade struct {
	tp *TemporalPropagator
}

// NewFacade wraps tp for read-only planner queries.
func NewFacade(tp *TemporalPropagator) *Facade {
	return &Facade{tp: tp}
}

// CanPrecede reports whether s could occur no later than e: true unless the
// network already proves e strictly before s.
func (f *Facade) CanPrecede(s, e *concore.Variable) (bool, error) {
	ws, we, err := f.wrapPair(s, e)
	if err != nil {
		return false, err
	}
	return !f.tp.net.IsDistanceLessThan(ws.timepoint, we.timepoint, 0), nil
}

// CanBeConcurrent reports whether s and e could be forced to the same
// instant: true unless the network already proves a nonzero minimum gap in
// either direction.
func (f *Facade) CanBeConcurrent(s, e *concore.Variable) (bool, error) {
	ws, we, err := f.wrapPair(s, e)
	if err != nil {
		return false, err
	}
	if f.tp.net.IsDistanceLessThan(ws.timepoint, we.timepoint, 0) {
		return false, nil
	}
	if f.tp.net.IsDistanceLessThan(we.timepoint, ws.timepoint, 0) {
		return false, nil
	}
	return true, nil
}

// CanFitBetween reports whether a span of length dur could be scheduled
// between s and e, i.e. whether the network doesn't already prove
// dist(s,e) < dur.
func (f *Facade) CanFitBetween(s, e *concore.Variable, dur tnet.Time) (bool, error) {
	ws, we, err := f.wrapPair(s, e)
	if err != nil {
		return false, err
	}
	return !f.tp.net.IsDistanceLessThan(ws.timepoint, we.timepoint, dur), nil
}

// GetTemporalDistanceDomain returns the propagated [lb, ub] distance window
// from src to tgt.
func (f *Facade) GetTemporalDistanceDomain(src, tgt *concore.Variable, exact bool) (tnet.Time, tnet.Time, error) {
	wsrc, wtgt, err := f.wrapPair(src, tgt)
	if err != nil {
		return 0, 0, err
	}
	lb, ub := f.tp.net.CalcDistanceBounds(wsrc.timepoint, wtgt.timepoint, exact)
	return lb, ub, nil
}

// DistanceWindow is the [Lb, Ub] distance window GetTemporalDistanceDomains
// reports for one target — the same shape GetTemporalDistanceDomain returns
// for a single source/target pair, batched.
type DistanceWindow struct {
	Lb, Ub tnet.Time
}

// GetTemporalDistanceDomains batches GetTemporalDistanceDomain's exact
// variant across many targets from one source, one CalcDistanceBounds call
// per target. This costs a bidirectional Dijkstra run per target rather than
// the single run CalcDistanceSigns amortizes across all of them, but callers
// need the full propagated window, not just its sign.
func (f *Facade) GetTemporalDistanceDomains(src *concore.Variable, tgts []*concore.Variable) ([]DistanceWindow, error) {
	wsrc, err := f.tp.wrap(src)
	if err != nil {
		return nil, err
	}
	out := make([]DistanceWindow, len(tgts))
	for i, v := range tgts {
		w, err := f.tp.wrap(v)
		if err != nil {
			return nil, err
		}
		lb, ub := f.tp.net.CalcDistanceBounds(wsrc.timepoint, w.timepoint, true)
		out[i] = DistanceWindow{Lb: lb, Ub: ub}
	}
	return out, nil
}

// GetMinPerturbTimes computes, for each variable (already-wrapped, in the
// order given), a new reference time that minimizes perturbation from the
// lower bound of its current domain while respecting the network's
// propagated bounds.
func (f *Facade) GetMinPerturbTimes(vars []*concore.Variable) ([]tnet.Time, error) {
	tps := make([]*tnet.Timepoint, len(vars))
	oldRef := make([]tnet.Time, len(vars))
	for i, v := range vars {
		w, err := f.tp.wrap(v)
		if err != nil {
			return nil, err
		}
		tps[i] = w.timepoint
		lo, _, ok := concore.DomainBounds(v.Current())
		if !ok {
			lo = 0
		}
		oldRef[i] = tnet.Time(lo)
	}
	return f.tp.net.GetMinPerturbTimes(tps, oldRef), nil
}

func (f *Facade) wrapPair(s, e *concore.Variable) (*timepointWrapper, *timepointWrapper, error) {
	ws, err := f.tp.wrap(s)
	if err != nil {
		return nil, nil, err
	}
	we, err := f.tp.wrap(e)
	if err != nil {
		return nil, nil, err
	}
	return ws, we, nil
}
