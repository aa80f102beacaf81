package concore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpecifyResetRoundTrip(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())
	v, err := e.CreateVariable("int", NewIntInterval(0, 10), true, false, "v")
	require.NoError(t, err)

	require.NoError(t, v.Specify(NumValue(7)))
	require.True(t, v.IsSpecified())

	require.NoError(t, v.Reset())
	require.False(t, v.IsSpecified())
	require.True(t, v.Current().Equal(v.Base()))
}

func TestSpecifyRejectsUnspecifiableVariable(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())
	v, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "v")
	require.NoError(t, err)

	err = v.Specify(NumValue(3))
	require.Error(t, err)
}

func TestValidateCatchesAdjacencyMismatch(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())
	v, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "v")
	require.NoError(t, err)
	other, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "other")
	require.NoError(t, err)
	c, err := e.CreateBuiltinConstraint("eq", v, other)
	require.NoError(t, err)
	require.NoError(t, v.Validate())

	v.adjacency[0].argIndex = 1
	err = v.Validate()
	require.Error(t, err)

	v.adjacency[0].argIndex = 0
	require.NoError(t, v.Validate())

	v.adjacency = append(v.adjacency, constraintRef{constraint: c, argIndex: 5})
	require.Error(t, v.Validate())
}

func TestDeactivateCascadesToAdjacentConstraints(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())
	a, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "a")
	require.NoError(t, err)
	b, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "b")
	require.NoError(t, err)
	c, err := e.CreateBuiltinConstraint("eq", a, b)
	require.NoError(t, err)
	require.True(t, a.IsActive())
	require.True(t, c.IsActive())

	a.Deactivate()
	require.False(t, a.IsActive())
	require.False(t, c.IsActive(), "constraint referencing a deactivated variable must itself deactivate")

	// A second, independent deactivation reason keeps both refcounted.
	a.Deactivate()
	a.Activate()
	require.False(t, a.IsActive(), "one Activate should not undo two Deactivate calls")
	require.False(t, c.IsActive())

	a.Activate()
	require.True(t, a.IsActive())
	require.True(t, c.IsActive(), "constraint reactivates once its last inactive argument does")
}
