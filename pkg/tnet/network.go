package tnet

import "github.com/pkg/errors"

// Timepoint is a node in a TemporalNetwork: the propagated [lowerBound,
// upperBound] distance window from the network's origin, plus TEQ
// (zero-distance equivalence) ring membership.
type Timepoint struct {
	id NodeID

	lowerBound, upperBound Time

	ringLeader    NodeID // 0 means not in a ring
	ringFollowers []NodeID
}

// ID returns the timepoint's underlying graph node identity.
func (tp *Timepoint) ID() NodeID { return tp.id }

// TemporalConstraint binds two timepoints with a [lb, ub] distance window,
// realized as up to two directed edges in the underlying graph.
type TemporalConstraint struct {
	id int

	Head, Foot *Timepoint
	Lb, Ub     Time

	headToFootAdded bool // true iff an edge spec Head->Foot (length Ub) was added
	footToHeadAdded bool // true iff an edge spec Foot->Head (length -Lb) was added
}

// TemporalNetwork wraps a DistanceGraph with the timepoint/edge-spec
// bookkeeping described in the temporal-network component: a distinguished
// origin whose bounds are forever [0,0], TEQ rings for zero-distance
// equivalence classes, and a consistency cache invalidated by deletions.
type TemporalNetwork struct {
	graph  *DistanceGraph
	origin *Timepoint

	timepoints  map[NodeID]*Timepoint
	constraints map[int]*TemporalConstraint
	nextCID     int

	hasDeletions bool
	hasAdditions bool
	consistent   bool
	nogood       []EdgeRef

	refPoint *Timepoint
}

// NewTemporalNetwork constructs a network with just its origin timepoint.
func NewTemporalNetwork() *TemporalNetwork {
	g := NewDistanceGraph()
	originID := g.AddNode()
	origin := &Timepoint{id: originID}
	return &TemporalNetwork{
		graph:       g,
		origin:      origin,
		timepoints:  map[NodeID]*Timepoint{originID: origin},
		constraints: make(map[int]*TemporalConstraint),
		consistent:  true,
	}
}

// Origin returns the network's distinguished zero timepoint.
func (n *TemporalNetwork) Origin() *Timepoint { return n.origin }

// AddTimepoint creates a new timepoint with unconstrained bounds.
func (n *TemporalNetwork) AddTimepoint() *Timepoint {
	id := n.graph.AddNode()
	tp := &Timepoint{id: id, lowerBound: NegInf, upperBound: PosInf}
	n.timepoints[id] = tp
	return tp
}

// DeleteTimepoint removes tp and every edge incident to it. Deleting the
// origin is rejected.
func (n *TemporalNetwork) DeleteTimepoint(tp *Timepoint) error {
	if tp == n.origin {
		return errors.New("tnet: cannot delete the origin timepoint")
	}
	n.graph.RemoveNode(tp.id)
	delete(n.timepoints, tp.id)
	n.hasDeletions = true
	return nil
}

// AddTemporalConstraint registers a [lb, ub] distance window between head
// and foot, realized as up to two edge specs. A zero/zero constraint joins
// the pair into a TEQ ring. If propagate is set, incremental propagation
// runs immediately, seeded from head and foot; on a detected cycle the
// network is left inconsistent with the recovered nogood, and the
// constraint's edges stay in the graph until the constraint is removed.
func (n *TemporalNetwork) AddTemporalConstraint(head, foot *Timepoint, lb, ub Time, propagate bool) (*TemporalConstraint, error) {
	n.nextCID++
	tc := &TemporalConstraint{id: n.nextCID, Head: head, Foot: foot, Lb: lb, Ub: ub}

	if ValidLength(ub) {
		if err := n.graph.AddEdgeSpec(head.id, foot.id, ub); err != nil {
			return nil, err
		}
		tc.headToFootAdded = true
	}
	if ValidLength(-lb) {
		if err := n.graph.AddEdgeSpec(foot.id, head.id, -lb); err != nil {
			if tc.headToFootAdded {
				n.graph.RemoveEdgeSpec(head.id, foot.id, ub)
			}
			return nil, err
		}
		tc.footToHeadAdded = true
	}

	if lb == 0 && ub == 0 {
		joinRing(head, foot)
	}

	n.constraints[tc.id] = tc
	n.hasAdditions = true

	if propagate {
		ok, nogood := n.graph.IncrementalBellmanFordMulti(head.id, foot.id)
		if !ok {
			n.consistent = false
			n.nogood = nogood
			return tc, nil
		}
		n.refreshBoundsCache()
	}
	return tc, nil
}

// joinRing links head and foot into the same TEQ ring. Exactly one becomes
// the ring leader; merging two distinct non-trivial rings is not
// supported, matching the documented limitation that ring membership can
// grow stale across deletions and is rebuilt by a full propagation.
func joinRing(head, foot *Timepoint) {
	switch {
	case head.ringLeader == 0 && foot.ringLeader == 0:
		head.ringLeader = head.id
		head.ringFollowers = append(head.ringFollowers, foot.id)
		foot.ringLeader = head.id
	case head.ringLeader != 0 && foot.ringLeader == 0:
		foot.ringLeader = head.ringLeader
	case foot.ringLeader != 0 && head.ringLeader == 0:
		head.ringLeader = foot.ringLeader
	}
	// both already belong to distinct non-trivial rings: unsupported, no-op.
}

// NarrowTemporalConstraint tightens tc to [newLb, newUb], which must be at
// least as tight as tc's current window. Edge specs are swapped accordingly
// and incremental propagation runs from head and foot.
func (n *TemporalNetwork) NarrowTemporalConstraint(tc *TemporalConstraint, newLb, newUb Time) error {
	if newLb < tc.Lb || newUb > tc.Ub {
		return errors.New("tnet: narrowTemporalConstraint requires a tighter window")
	}
	if tc.headToFootAdded {
		n.graph.RemoveEdgeSpec(tc.Head.id, tc.Foot.id, tc.Ub)
		tc.headToFootAdded = false
	}
	if tc.footToHeadAdded {
		n.graph.RemoveEdgeSpec(tc.Foot.id, tc.Head.id, -tc.Lb)
		tc.footToHeadAdded = false
	}
	tc.Lb, tc.Ub = newLb, newUb
	if ValidLength(newUb) {
		if err := n.graph.AddEdgeSpec(tc.Head.id, tc.Foot.id, newUb); err != nil {
			return err
		}
		tc.headToFootAdded = true
	}
	if ValidLength(-newLb) {
		if err := n.graph.AddEdgeSpec(tc.Foot.id, tc.Head.id, -newLb); err != nil {
			return err
		}
		tc.footToHeadAdded = true
	}
	n.hasAdditions = true
	ok, nogood := n.graph.IncrementalBellmanFordMulti(tc.Head.id, tc.Foot.id)
	if !ok {
		n.consistent = false
		n.nogood = nogood
		return nil
	}
	n.refreshBoundsCache()
	return nil
}

// RemoveTemporalConstraint removes tc's edge specs. If markDeleted is set,
// the network is flagged so the next consistency query runs a full
// Bellman-Ford rather than trusting stale potentials.
func (n *TemporalNetwork) RemoveTemporalConstraint(tc *TemporalConstraint, markDeleted bool) {
	if tc.headToFootAdded {
		n.graph.RemoveEdgeSpec(tc.Head.id, tc.Foot.id, tc.Ub)
	}
	if tc.footToHeadAdded {
		n.graph.RemoveEdgeSpec(tc.Foot.id, tc.Head.id, -tc.Lb)
	}
	delete(n.constraints, tc.id)
	if markDeleted {
		n.hasDeletions = true
	}
}

// GetTimepointBounds propagates if needed and returns tp's [lb, ub]. An
// inconsistent network reports the sentinel empty interval (2, -2).
func (n *TemporalNetwork) GetTimepointBounds(tp *Timepoint) (Time, Time) {
	ok, _ := n.Propagate()
	if !ok {
		return 2, -2
	}
	return tp.lowerBound, tp.upperBound
}

// Propagate returns the cached consistency state when no updates are
// pending. A deletion forces a full Bellman-Ford plus forward/backward
// Dijkstra from the origin (and, if a reference point is set, a reftime
// Dijkstra); additions alone were already folded in incrementally by
// AddTemporalConstraint/NarrowTemporalConstraint.
func (n *TemporalNetwork) Propagate() (bool, []EdgeRef) {
	if !n.hasDeletions && !n.hasAdditions {
		return n.consistent, n.nogood
	}
	if n.hasDeletions {
		ok, nogood := n.graph.FullBellmanFord(n.origin.id)
		n.consistent, n.nogood = ok, nogood
		n.hasDeletions = false
		n.hasAdditions = false
		if !ok {
			return false, nogood
		}
		n.refreshBoundsCache()
		if n.refPoint != nil {
			n.graph.DijkstraForward(n.refPoint.id, PosInf)
		}
		return true, nil
	}
	n.hasAdditions = false
	return n.consistent, n.nogood
}

// refreshBoundsCache reads the origin-relative distances back into every
// live timepoint's lowerBound/upperBound.
func (n *TemporalNetwork) refreshBoundsCache() {
	ub := n.graph.DijkstraForward(n.origin.id, PosInf)
	lb := n.graph.DijkstraBackward(n.origin.id, PosInf)
	for id, tp := range n.timepoints {
		if tp == n.origin {
			tp.lowerBound, tp.upperBound = 0, 0
			continue
		}
		if d, ok := ub[id]; ok {
			tp.upperBound = d
		} else {
			tp.upperBound = PosInf
		}
		if d, ok := lb[id]; ok {
			tp.lowerBound = -d
		} else {
			tp.lowerBound = NegInf
		}
	}
}

// SetReferencePoint designates tp as the reference timepoint used by the
// reftime Dijkstra during a full propagation.
func (n *TemporalNetwork) SetReferencePoint(tp *Timepoint) { n.refPoint = tp }

// IsDistanceLessThan is the cheap DFS precedence test, delegated straight
// to the underlying graph.
func (n *TemporalNetwork) IsDistanceLessThan(src, tgt *Timepoint, bound Time) bool {
	return n.graph.IsDistanceLessThan(src.id, tgt.id, bound)
}
