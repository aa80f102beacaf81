package temporal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plancore/concore/pkg/concore"
)

func TestFacadeGetTemporalDistanceDomainsMatchesSingular(t *testing.T) {
	engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
	bridge := NewTemporalPropagator(engine)
	facade := NewFacade(bridge)

	s, err := engine.CreateVariable("int", concore.NewIntInterval(0, 10), false, false, "s")
	require.NoError(t, err)
	e1, err := engine.CreateVariable("int", concore.NewIntInterval(0, 20), false, false, "e1")
	require.NoError(t, err)
	e2, err := engine.CreateVariable("int", concore.NewIntInterval(0, 30), false, false, "e2")
	require.NoError(t, err)

	_, err = bridge.CreatePrecedes(s, e1)
	require.NoError(t, err)
	_, err = bridge.CreatePrecedes(s, e2)
	require.NoError(t, err)
	require.NoError(t, engine.Propagate(context.Background()))

	lb1, ub1, err := facade.GetTemporalDistanceDomain(s, e1, true)
	require.NoError(t, err)
	lb2, ub2, err := facade.GetTemporalDistanceDomain(s, e2, true)
	require.NoError(t, err)

	windows, err := facade.GetTemporalDistanceDomains(s, []*concore.Variable{e1, e2})
	require.NoError(t, err)
	require.Len(t, windows, 2)
	require.Equal(t, DistanceWindow{Lb: lb1, Ub: ub1}, windows[0])
	require.Equal(t, DistanceWindow{Lb: lb2, Ub: ub2}, windows[1])
}
