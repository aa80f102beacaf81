package tnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddTemporalConstraintPropagatesBounds(t *testing.T) {
	n := NewTemporalNetwork()
	a := n.AddTimepoint()
	_, err := n.AddTemporalConstraint(n.Origin(), a, 5, 10, true)
	require.NoError(t, err)

	lb, ub := n.GetTimepointBounds(a)
	require.Equal(t, Time(5), lb)
	require.Equal(t, Time(10), ub)
}

func TestAddThenRemoveTemporalConstraintRestoresBounds(t *testing.T) {
	n := NewTemporalNetwork()
	a, b := n.AddTimepoint(), n.AddTimepoint()
	_, err := n.AddTemporalConstraint(n.Origin(), a, 0, 100, true)
	require.NoError(t, err)
	_, err = n.AddTemporalConstraint(n.Origin(), b, 0, 100, true)
	require.NoError(t, err)

	preLb, preUb := n.GetTimepointBounds(a)

	tc, err := n.AddTemporalConstraint(a, b, 0, 20, true)
	require.NoError(t, err)
	n.RemoveTemporalConstraint(tc, true)

	postLb, postUb := n.GetTimepointBounds(a)
	require.Equal(t, preLb, postLb)
	require.Equal(t, preUb, postUb)
}

// TestForcedInconsistencyThenRecovery seeds scenario 2: A before B with
// lb=200 is consistent; a contradictory pair on top produces an
// inconsistency with a 2-edge nogood, and removing the last-added
// constraint restores consistency.
func TestForcedInconsistencyThenRecovery(t *testing.T) {
	n := NewTemporalNetwork()
	a, b := n.AddTimepoint(), n.AddTimepoint()

	_, err := n.AddTemporalConstraint(a, b, 200, MaxLength, true)
	require.NoError(t, err)
	ok, _ := n.Propagate()
	require.True(t, ok)

	bad, err := n.AddTemporalConstraint(a, b, MinLength, 100, true)
	require.NoError(t, err)
	ok, nogood := n.Propagate()
	require.False(t, ok)
	require.Len(t, nogood, 2)

	n.RemoveTemporalConstraint(bad, true)
	ok, _ = n.Propagate()
	require.True(t, ok)
}

func TestConcurrentConstraintJoinsTEQRing(t *testing.T) {
	n := NewTemporalNetwork()
	a, b := n.AddTimepoint(), n.AddTimepoint()
	_, err := n.AddTemporalConstraint(a, b, 0, 0, true)
	require.NoError(t, err)

	require.True(t, n.IsDistanceLessThan(b, a, 1))
	require.True(t, n.IsDistanceLessThan(a, b, 1))
}

func TestNarrowTemporalConstraintRejectsWidening(t *testing.T) {
	n := NewTemporalNetwork()
	a := n.AddTimepoint()
	tc, err := n.AddTemporalConstraint(n.Origin(), a, 5, 10, true)
	require.NoError(t, err)

	err = n.NarrowTemporalConstraint(tc, 0, 10)
	require.Error(t, err)

	require.NoError(t, n.NarrowTemporalConstraint(tc, 6, 9))
	lb, ub := n.GetTimepointBounds(a)
	require.Equal(t, Time(6), lb)
	require.Equal(t, Time(9), ub)
}
