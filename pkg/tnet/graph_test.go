package tnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidLengthBoundary(t *testing.T) {
	require.True(t, ValidLength(MaxLength))
	require.False(t, ValidLength(MaxLength+1))
	require.True(t, ValidLength(MinLength))
	require.False(t, ValidLength(MinLength-1))
}

func TestAddEdgeSpecRejectsOutOfRangeLength(t *testing.T) {
	g := NewDistanceGraph()
	u, v := g.AddNode(), g.AddNode()
	require.NoError(t, g.AddEdgeSpec(u, v, MaxLength))
	err := g.AddEdgeSpec(u, v, MaxLength+1)
	require.Error(t, err)
}

func TestEdgeSpecMultisetTracksMinimum(t *testing.T) {
	g := NewDistanceGraph()
	u, v := g.AddNode(), g.AddNode()
	require.NoError(t, g.AddEdgeSpec(u, v, 10))
	require.NoError(t, g.AddEdgeSpec(u, v, 3))
	length, ok := g.EdgeLength(u, v)
	require.True(t, ok)
	require.Equal(t, Time(3), length)

	g.RemoveEdgeSpec(u, v, 3)
	length, ok = g.EdgeLength(u, v)
	require.True(t, ok)
	require.Equal(t, Time(10), length)

	g.RemoveEdgeSpec(u, v, 10)
	_, ok = g.EdgeLength(u, v)
	require.False(t, ok)
}

// TestStarTopologyBucketQueuePropagation builds a star graph with 100 leaves
// around one center, restricts the center's distance to itself (a zero
// length edge from a fresh source), and checks that a single forward
// Dijkstra reaches every leaf at its correct distance — the seeded
// bucket-queue correctness scenario.
func TestStarTopologyBucketQueuePropagation(t *testing.T) {
	g := NewDistanceGraph()
	center := g.AddNode()
	const leafCount = 100
	leaves := make([]NodeID, leafCount)
	for i := range leaves {
		leaves[i] = g.AddNode()
		require.NoError(t, g.AddEdgeSpec(center, leaves[i], Time(i+1)))
	}

	dist := g.DijkstraForward(center, PosInf)
	for i, leaf := range leaves {
		d, ok := dist[leaf]
		require.True(t, ok, "leaf %d should be reachable", i)
		require.Equal(t, Time(i+1), d)
	}
}

func TestFullBellmanFordDetectsNegativeCycle(t *testing.T) {
	g := NewDistanceGraph()
	a, b := g.AddNode(), g.AddNode()
	require.NoError(t, g.AddEdgeSpec(a, b, -10))
	require.NoError(t, g.AddEdgeSpec(b, a, -10))

	ok, nogood := g.FullBellmanFord(a)
	require.False(t, ok)
	require.NotEmpty(t, nogood)
}

func TestFullBellmanFordResetsStaleIncrementalSource(t *testing.T) {
	g := NewDistanceGraph()
	a, b, c := g.AddNode(), g.AddNode(), g.AddNode()
	require.NoError(t, g.AddEdgeSpec(a, b, 5))
	ok, _ := g.IncrementalBellmanFordMulti(a)
	require.True(t, ok)

	require.NoError(t, g.AddEdgeSpec(b, c, 5))
	ok, _ = g.FullBellmanFord(c)
	require.True(t, ok, "a full BF from an unrelated source must not spuriously detect a cycle through a stale incrementalSource")
}
