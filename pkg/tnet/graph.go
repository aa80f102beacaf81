package tnet

import "github.com/pkg/errors"

// EdgeRef names a directed edge by its endpoints.
type EdgeRef struct {
	From, To NodeID
}

type edge struct {
	length Time
	specs  []Time // multiset; length is always min(specs)
}

type node struct {
	out map[NodeID]*edge
	in  map[NodeID]*edge

	potential Time // Johnson-style reference distance, reused across Dijkstra calls
	distance  Time // scratch: holds the prior potential during a full Bellman-Ford
	depth     int  // predecessor-chain length, bounds cycle detection at N nodes
	pred      *EdgeRef

	generation uint64 // valid iff equal to the graph's current generation
	mark       uint64 // valid iff equal to the graph's current markGlobal
}

func newNode() *node {
	return &node{out: make(map[NodeID]*edge), in: make(map[NodeID]*edge)}
}

// DistanceGraph is the domain-agnostic shortest-paths engine: a directed
// graph of nodes and weighted edges (stored as a minimum over a multiset of
// length specs), supporting full/incremental Bellman-Ford and a bounded
// bidirectional Dijkstra reweighted with node potentials.
type DistanceGraph struct {
	nodes  map[NodeID]*node
	nextID NodeID

	generation        uint64
	incrementalSource NodeID
	markGlobal        uint64
}

// NewDistanceGraph constructs an empty graph.
func NewDistanceGraph() *DistanceGraph {
	return &DistanceGraph{nodes: make(map[NodeID]*node)}
}

// AddNode allocates a fresh node with no incident edges.
func (g *DistanceGraph) AddNode() NodeID {
	g.nextID++
	id := g.nextID
	g.nodes[id] = newNode()
	return id
}

// RemoveNode deletes id and every edge incident to it.
func (g *DistanceGraph) RemoveNode(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for to := range n.out {
		delete(g.nodes[to].in, id)
	}
	for from := range n.in {
		delete(g.nodes[from].out, id)
	}
	delete(g.nodes, id)
}

// HasNode reports whether id is a live node.
func (g *DistanceGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdgeSpec appends length to (u,v)'s multiset of length specs and sets
// the edge length to the new minimum. Multiple constraints between the
// same pair of nodes are supported this way without reference-counting the
// edge object itself.
func (g *DistanceGraph) AddEdgeSpec(u, v NodeID, length Time) error {
	if !ValidLength(length) {
		return errors.Errorf("tnet: edge length %d outside [%d,%d]", length, MinLength, MaxLength)
	}
	un, ok := g.nodes[u]
	if !ok {
		return errors.Errorf("tnet: unknown node %d", u)
	}
	if _, ok := g.nodes[v]; !ok {
		return errors.Errorf("tnet: unknown node %d", v)
	}
	e, ok := un.out[v]
	if !ok {
		e = &edge{length: length}
		un.out[v] = e
		g.nodes[v].in[u] = e
	}
	e.specs = append(e.specs, length)
	if length < e.length || len(e.specs) == 1 {
		e.length = minSpec(e.specs)
	}
	return nil
}

// RemoveEdgeSpec pops one occurrence of length from (u,v)'s multiset,
// deleting the edge entirely once its specs are empty.
func (g *DistanceGraph) RemoveEdgeSpec(u, v NodeID, length Time) {
	un, ok := g.nodes[u]
	if !ok {
		return
	}
	e, ok := un.out[v]
	if !ok {
		return
	}
	for i, s := range e.specs {
		if s == length {
			e.specs = append(e.specs[:i], e.specs[i+1:]...)
			break
		}
	}
	if len(e.specs) == 0 {
		delete(un.out, v)
		delete(g.nodes[v].in, u)
		return
	}
	e.length = minSpec(e.specs)
}

func minSpec(specs []Time) Time {
	m := specs[0]
	for _, s := range specs[1:] {
		if s < m {
			m = s
		}
	}
	return m
}

// EdgeLength returns the effective (minimum-spec) length of (u,v), if the
// edge exists.
func (g *DistanceGraph) EdgeLength(u, v NodeID) (Time, bool) {
	un, ok := g.nodes[u]
	if !ok {
		return 0, false
	}
	e, ok := un.out[v]
	if !ok {
		return 0, false
	}
	return e.length, true
}

// Potential returns a node's current Johnson-style reference distance.
func (g *DistanceGraph) Potential(id NodeID) Time {
	if n, ok := g.nodes[id]; ok {
		return n.potential
	}
	return PosInf
}

// FullBellmanFord recomputes every node's potential as its shortest
// distance from source, bounding predecessor-chain depth by the node
// count to detect negative cycles. On success it returns (true, nil); on a
// detected cycle it returns (false, nogood) where nogood is the cycle's
// edges, recovered by walking predecessor edges back from the node where
// the depth bound was exceeded until a node repeats.
func (g *DistanceGraph) FullBellmanFord(source NodeID) (bool, []EdgeRef) {
	for _, n := range g.nodes {
		n.distance = n.potential // stash prior potential
		n.potential = PosInf
		n.depth = 0
		n.pred = nil
	}
	if src, ok := g.nodes[source]; ok {
		src.potential = 0
	}
	g.incrementalSource = 0 // no node has id 0; disables the incremental cycle check below
	return g.relax(map[NodeID]bool{source: true}, len(g.nodes))
}

// IncrementalBellmanFord reuses existing potentials and relaxes only from
// source, the node whose incident edge just changed. A cycle is detected
// if relaxation propagates back to source itself.
func (g *DistanceGraph) IncrementalBellmanFord(source NodeID) (bool, []EdgeRef) {
	g.incrementalSource = source
	for _, n := range g.nodes {
		n.depth = 0
		n.pred = nil
	}
	return g.relax(map[NodeID]bool{source: true}, len(g.nodes))
}

// IncrementalBellmanFordMulti runs IncrementalBellmanFord from each of
// sources in turn, stopping at the first cycle — an edge update touches
// both of its endpoints, so a temporal constraint add/narrow passes head
// and foot.
func (g *DistanceGraph) IncrementalBellmanFordMulti(sources ...NodeID) (bool, []EdgeRef) {
	for _, s := range sources {
		if ok, nogood := g.IncrementalBellmanFord(s); !ok {
			return false, nogood
		}
	}
	return true, nil
}

// relax runs the shared Bellman-Ford worklist loop seeded from seeds.
func (g *DistanceGraph) relax(seeds map[NodeID]bool, bound int) (bool, []EdgeRef) {
	q := NewDqueue()
	for id := range seeds {
		q.Push(id)
	}
	for {
		u, ok := q.Pop()
		if !ok {
			break
		}
		un := g.nodes[u]
		for v, e := range un.out {
			vn := g.nodes[v]
			nd := addSaturating(un.potential, e.length)
			if nd >= vn.potential {
				continue
			}
			vn.potential = nd
			vn.depth = un.depth + 1
			ref := EdgeRef{From: u, To: v}
			vn.pred = &ref
			if v == g.incrementalSource || vn.depth > bound {
				return false, g.traceNogood(v)
			}
			q.Push(v)
		}
	}
	return true, nil
}

// traceNogood follows predecessor edges back from start, marking visited
// nodes, until a node repeats; the edges walked since that repeat form the
// cycle (the nogood).
func (g *DistanceGraph) traceNogood(start NodeID) []EdgeRef {
	seen := make(map[NodeID]int)
	var path []EdgeRef
	cur := start
	for {
		n := g.nodes[cur]
		if n == nil || n.pred == nil {
			return path
		}
		if i, ok := seen[cur]; ok {
			return path[i:]
		}
		seen[cur] = len(path)
		path = append(path, *n.pred)
		cur = n.pred.From
	}
}

// DijkstraForward computes, for every node reachable from source along
// out-edges within bound, its true shortest distance from source. Edge
// weights are reduced via each endpoint's potential (Johnson's technique),
// making Dijkstra valid even when the graph carries negative edges, as
// long as the potentials come from a consistent prior Bellman-Ford run.
func (g *DistanceGraph) DijkstraForward(source NodeID, bound Time) map[NodeID]Time {
	return g.dijkstra(source, bound, func(n *node) map[NodeID]*edge { return n.out },
		func(u, v NodeID) Time { return g.nodes[u].potential - g.nodes[v].potential })
}

// DijkstraBackward computes, for every node that can reach target along
// out-edges within bound, its true shortest distance to target — the
// mirror of DijkstraForward over in-edges with potentials negated.
func (g *DistanceGraph) DijkstraBackward(target NodeID, bound Time) map[NodeID]Time {
	return g.dijkstra(target, bound, func(n *node) map[NodeID]*edge { return n.in },
		func(u, v NodeID) Time { return g.nodes[v].potential - g.nodes[u].potential })
}

// dijkstra is shared by the forward/backward variants: adjacency picks the
// edge set to walk (out-edges forward, in-edges backward), and reweight
// supplies the potential-difference term for the edge from u to the
// neighbor w reached via adjacency(u)[w].
func (g *DistanceGraph) dijkstra(source NodeID, bound Time, adjacency func(*node) map[NodeID]*edge, reweight func(u, v NodeID) Time) map[NodeID]Time {
	g.generation++
	srcPot := g.nodes[source].potential
	visited := make(map[NodeID]bool)
	reducedDist := map[NodeID]Time{source: 0}
	result := make(map[NodeID]Time)

	q := NewBucketQueue()
	q.Push(source, 0)
	for {
		u, rd, ok := q.Pop()
		if !ok {
			break
		}
		if visited[u] {
			continue
		}
		visited[u] = true
		trueDist := rd - reweight(source, u)
		if trueDist > bound {
			continue
		}
		result[u] = trueDist

		for w, e := range adjacency(g.nodes[u]) {
			if visited[w] {
				continue
			}
			reduced := e.length + reweight(u, w)
			nd := rd + reduced
			if cur, has := reducedDist[w]; !has || nd < cur {
				reducedDist[w] = nd
				q.Push(w, nd)
			}
		}
	}
	return result
}

// IsDistanceLessThan reports whether a path from src to tgt shorter than
// bound already exists — equivalently, whether adding the edge tgt→src
// with length −bound would close a negative cycle. It is a plain
// depth-first search rather than a full shortest-path computation, using a
// global mark counter bumped once per call so node visitation state from a
// prior call doesn't need to be reset.
func (g *DistanceGraph) IsDistanceLessThan(src, tgt NodeID, bound Time) bool {
	g.markGlobal++
	return g.dfsUnderBound(src, tgt, 0, bound)
}

func (g *DistanceGraph) dfsUnderBound(u, tgt NodeID, acc, bound Time) bool {
	n, ok := g.nodes[u]
	if !ok {
		return false
	}
	if u == tgt && acc < bound {
		return true
	}
	if n.mark == g.markGlobal {
		return false
	}
	n.mark = g.markGlobal
	for v, e := range n.out {
		if g.dfsUnderBound(v, tgt, acc+e.length, bound) {
			return true
		}
	}
	return false
}
