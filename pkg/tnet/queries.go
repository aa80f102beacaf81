package tnet

// CalcDistanceBounds computes the [lb, ub] window on the distance from src
// to tgt. When exact is set it runs a forward Dijkstra from src and
// another from tgt to get the tight window
// (−dist(tgt,src), dist(src,tgt)); otherwise it returns the direct edge
// weight between the two (or ±INF if there is none), which is cheap but
// may be looser than the true propagated bound.
func (n *TemporalNetwork) CalcDistanceBounds(src, tgt *Timepoint, exact bool) (Time, Time) {
	if !exact {
		ub := PosInf
		if d, ok := n.graph.EdgeLength(src.id, tgt.id); ok {
			ub = d
		}
		lb := NegInf
		if d, ok := n.graph.EdgeLength(tgt.id, src.id); ok {
			lb = -d
		}
		return lb, ub
	}
	fwd := n.graph.DijkstraForward(src.id, PosInf)
	bwd := n.graph.DijkstraForward(tgt.id, PosInf)
	ub, ok := fwd[tgt.id]
	if !ok {
		ub = PosInf
	}
	backDist, ok := bwd[src.id]
	lb := NegInf
	if ok {
		lb = -backDist
	}
	return lb, ub
}

// SignPair is the {-1, 0, +1} sign of a distance's lower and upper bound,
// sufficient to decide precedence between two timepoints without carrying
// the full numeric window.
type SignPair struct {
	LbSign, UbSign int
}

func sign(t Time) int {
	switch {
	case t < 0:
		return -1
	case t > 0:
		return 1
	default:
		return 0
	}
}

// CalcDistanceSigns computes, for each target, the sign pair of the
// distance window from src, using a bounded (bound = 1) bidirectional
// Dijkstra — enough resolution to classify precedence as before/concurrent/
// after without computing the full distance.
func (n *TemporalNetwork) CalcDistanceSigns(src *Timepoint, tgts []*Timepoint) []SignPair {
	fwd := n.graph.DijkstraForward(src.id, 1)
	bwd := n.graph.DijkstraBackward(src.id, 1)
	out := make([]SignPair, len(tgts))
	for i, tgt := range tgts {
		ub := PosInf
		if d, ok := fwd[tgt.id]; ok {
			ub = d
		}
		lb := NegInf
		if d, ok := bwd[tgt.id]; ok {
			lb = -d
		}
		out[i] = SignPair{LbSign: sign(lb), UbSign: sign(ub)}
	}
	return out
}

// GetMinPerturbTimes computes, for each variable timepoint (in order), a
// new reference time minimizing perturbation from its old reference
// subject to the timepoint's current propagated bounds: lower bounds are
// pulled up from already-assigned predecessors in the vars slice, upper
// bounds pushed down, via a forward and a backward Dijkstra from each
// already-assigned timepoint.
func (n *TemporalNetwork) GetMinPerturbTimes(vars []*Timepoint, oldRef []Time) []Time {
	newRef := make([]Time, len(vars))
	assigned := make(map[NodeID]Time, len(vars))
	for i, tp := range vars {
		lb, ub := tp.lowerBound, tp.upperBound
		for pred, t := range assigned {
			if d, ok := n.graph.DijkstraForward(pred, PosInf)[tp.id]; ok {
				if cand := t + d; cand < ub {
					ub = cand
				}
			}
			if d, ok := n.graph.DijkstraBackward(pred, PosInf)[tp.id]; ok {
				if cand := t - d; cand > lb {
					lb = cand
				}
			}
		}
		want := oldRef[i]
		switch {
		case want < lb:
			want = lb
		case want > ub:
			want = ub
		}
		newRef[i] = want
		assigned[tp.id] = want
	}
	return newRef
}
