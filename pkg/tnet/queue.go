package tnet

import "container/heap"

// NodeID identifies a DistanceGraph node.
type NodeID int

type bucketEntry struct {
	node  NodeID
	key   Time
	stamp uint64
}

type bucketHeap []bucketEntry

func (h bucketHeap) Len() int            { return len(h) }
func (h bucketHeap) Less(i, j int) bool  { return h[i].key < h[j].key }
func (h bucketHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *bucketHeap) Push(x interface{}) { *h = append(*h, x.(bucketEntry)) }
func (h *bucketHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BucketQueue is a priority queue of (node, key) ordered by ascending key.
// Pushing a node again supersedes its previous entry: Pop skips stale
// entries (ones superseded by a later push for the same node) rather than
// removing them eagerly, which would require a log-time decrease-key.
type BucketQueue struct {
	heap       bucketHeap
	latest     map[NodeID]uint64
	nextStamp  uint64
}

// NewBucketQueue constructs an empty queue.
func NewBucketQueue() *BucketQueue {
	return &BucketQueue{latest: make(map[NodeID]uint64)}
}

// Push records node at key, superseding any earlier entry for node.
func (q *BucketQueue) Push(node NodeID, key Time) {
	q.nextStamp++
	q.latest[node] = q.nextStamp
	heap.Push(&q.heap, bucketEntry{node: node, key: key, stamp: q.nextStamp})
}

// Pop removes and returns the live entry with the smallest key, discarding
// any stale entries ahead of it. ok is false once the queue is drained.
func (q *BucketQueue) Pop() (node NodeID, key Time, ok bool) {
	for len(q.heap) > 0 {
		e := heap.Pop(&q.heap).(bucketEntry)
		if q.latest[e.node] != e.stamp {
			continue // superseded by a later Push
		}
		delete(q.latest, e.node)
		return e.node, e.key, true
	}
	return 0, 0, false
}

// Empty reports whether every remaining heap entry is stale.
func (q *BucketQueue) Empty() bool {
	for len(q.heap) > 0 {
		if q.latest[q.heap[0].node] == q.heap[0].stamp {
			return false
		}
		heap.Pop(&q.heap)
	}
	return true
}

// Dqueue is a FIFO where each node is queued at most once at a time, guarded
// by a per-node membership flag — the shape Bellman-Ford needs for its
// worklist.
type Dqueue struct {
	items   []NodeID
	queued  map[NodeID]bool
}

// NewDqueue constructs an empty FIFO.
func NewDqueue() *Dqueue {
	return &Dqueue{queued: make(map[NodeID]bool)}
}

// Push enqueues node if it is not already queued.
func (q *Dqueue) Push(node NodeID) {
	if q.queued[node] {
		return
	}
	q.queued[node] = true
	q.items = append(q.items, node)
}

// Pop removes and returns the oldest queued node. ok is false when empty.
func (q *Dqueue) Pop() (node NodeID, ok bool) {
	if len(q.items) == 0 {
		return 0, false
	}
	node = q.items[0]
	q.items = q.items[1:]
	delete(q.queued, node)
	return node, true
}

// Empty reports whether the queue holds no nodes.
func (q *Dqueue) Empty() bool { return len(q.items) == 0 }
