package concore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViolationFlowReportsAndRecovers(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.AllowViolations = true
	cfg.ViolationBudget = 1
	e := NewConstraintEngine(cfg)

	x, err := e.CreateVariable("int", NewIntInterval(0, 10), true, false, "x")
	require.NoError(t, err)
	y, err := e.CreateVariable("int", NewIntInterval(0, 10), true, false, "y")
	require.NoError(t, err)
	c, err := e.CreateBuiltinConstraint("eq", x, y)
	require.NoError(t, err)

	require.NoError(t, y.Specify(NumValue(5)))
	require.NoError(t, e.Propagate(context.Background()))

	require.NoError(t, x.Specify(NumValue(9)))
	err = e.Propagate(context.Background())
	require.NoError(t, err, "propagate should return true/nil; the violation is recorded, not a hard failure")
	require.Len(t, e.Violations(), 1)
	require.Same(t, c, e.Violations()[0])
	require.Error(t, c.Violation())
	require.ErrorIs(t, c.Violation(), ErrViolation)

	require.NoError(t, x.Reset())
	require.NoError(t, e.Propagate(context.Background()))
	require.Empty(t, e.Violations())
}

func TestRelaxationCascadeThroughEqualityChain(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())
	mk := func(name string) *Variable {
		v, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, name)
		require.NoError(t, err)
		return v
	}
	x1, x2, x3 := mk("x1"), mk("x2"), mk("x3")
	_, err := e.CreateBuiltinConstraint("eq", x1, x2)
	require.NoError(t, err)
	_, err = e.CreateBuiltinConstraint("eq", x2, x3)
	require.NoError(t, err)

	require.NoError(t, x1.RestrictBaseDomain(NewIntInterval(4, 4)))
	require.NoError(t, e.Propagate(context.Background()))

	v1, _ := x1.Current().SingletonValue()
	v2, _ := x2.Current().SingletonValue()
	v3, _ := x3.Current().SingletonValue()
	require.Equal(t, v1, v2)
	require.Equal(t, v2, v3)

	require.NoError(t, x1.Relax())
	require.NoError(t, e.Propagate(context.Background()))

	require.Equal(t, uint64(1), x1.LastRelaxed())
	require.Equal(t, x1.LastRelaxed(), x2.LastRelaxed())
	require.Equal(t, x1.LastRelaxed(), x3.LastRelaxed())
}

func TestPurgeDestroysConstraintsBeforeVariables(t *testing.T) {
	e := NewConstraintEngine(DefaultEngineConfig())

	var lastNotified *Variable
	e.AddListener(&purgeOrderListener{onVariableRemoved: func(v *Variable) { lastNotified = v }})

	vars := make([]*Variable, 0, 50)
	for i := 0; i < 50; i++ {
		v, err := e.CreateVariable("int", NewIntInterval(0, 10), false, false, "")
		require.NoError(t, err)
		vars = append(vars, v)
	}
	for i := 0; i < 50; i++ {
		_, err := e.CreateBuiltinConstraint("eq", vars[i], vars[(i+1)%50])
		require.NoError(t, err)
	}

	e.Purge()

	require.Equal(t, 0, e.variables.len())
	require.Equal(t, 0, e.constraints.len())
	require.Nil(t, lastNotified, "Purge bypasses per-entity notifications entirely")
}

type purgeOrderListener struct {
	BaseConstraintEngineListener
	onVariableRemoved func(v *Variable)
}

func (l *purgeOrderListener) NotifyVariableRemoved(v *Variable) {
	if l.onVariableRemoved != nil {
		l.onVariableRemoved(v)
	}
}
