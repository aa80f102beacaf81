package temporal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plancore/concore/pkg/concore"
	"github.com/plancore/concore/pkg/tnet"
)

func TestPrecedesThenTemporalDistanceNarrowsBounds(t *testing.T) {
	engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
	bridge := NewTemporalPropagator(engine)

	sDom := concore.NewIntInterval(0, 10)
	eDom := concore.NewIntInterval(0, 20)
	s, err := engine.CreateVariable("int", sDom, false, false, "s")
	require.NoError(t, err)
	e, err := engine.CreateVariable("int", eDom, false, false, "e")
	require.NoError(t, err)

	_, err = bridge.CreatePrecedes(s, e)
	require.NoError(t, err)
	require.NoError(t, engine.Propagate(context.Background()))

	sLo, sHi, _ := concore.DomainBounds(s.Current())
	eLo, eHi, _ := concore.DomainBounds(e.Current())
	require.Equal(t, 0.0, sLo)
	require.Equal(t, 10.0, sHi)
	require.Equal(t, 0.0, eLo)
	require.Equal(t, 20.0, eHi)

	dDom := concore.NewIntInterval(5, 7)
	d, err := engine.CreateVariable("int", dDom, false, false, "d")
	require.NoError(t, err)
	_, err = bridge.CreateTemporalDistance(s, d, e)
	require.NoError(t, err)
	require.NoError(t, engine.Propagate(context.Background()))

	sLo, sHi, _ = concore.DomainBounds(s.Current())
	eLo, eHi, _ = concore.DomainBounds(e.Current())
	require.Equal(t, 0.0, sLo)
	require.Equal(t, 10.0, sHi, "s's own declared upper bound is untouched: nothing narrows it below the origin-to-s edge")
	require.Equal(t, 5.0, eLo)
	require.Equal(t, 17.0, eHi)
}

func TestFacadeCanPrecedeReflectsPropagatedOrder(t *testing.T) {
	engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
	bridge := NewTemporalPropagator(engine)
	facade := NewFacade(bridge)

	s, err := engine.CreateVariable("int", concore.NewIntInterval(0, 10), false, false, "s")
	require.NoError(t, err)
	e, err := engine.CreateVariable("int", concore.NewIntInterval(0, 20), false, false, "e")
	require.NoError(t, err)

	_, err = bridge.CreatePrecedes(s, e)
	require.NoError(t, err)
	require.NoError(t, engine.Propagate(context.Background()))

	can, err := facade.CanPrecede(s, e)
	require.NoError(t, err)
	require.True(t, can)

	can, err = facade.CanPrecede(e, s)
	require.NoError(t, err)
	require.True(t, can, "precedes(s,e) allows s == e, and e's propagated lb stays 0, so e can still precede s")
}

func TestCreateConcurrentJoinsEndpoints(t *testing.T) {
	engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
	bridge := NewTemporalPropagator(engine)
	facade := NewFacade(bridge)

	s, err := engine.CreateVariable("int", concore.NewIntInterval(0, 10), false, false, "s")
	require.NoError(t, err)
	e, err := engine.CreateVariable("int", concore.NewIntInterval(0, 10), false, false, "e")
	require.NoError(t, err)

	_, err = bridge.CreateConcurrent(s, e)
	require.NoError(t, err)
	require.NoError(t, engine.Propagate(context.Background()))

	can, err := facade.CanBeConcurrent(s, e)
	require.NoError(t, err)
	require.True(t, can)
}

func TestTimepointExposesRawNetworkAccess(t *testing.T) {
	engine := concore.NewConstraintEngine(concore.DefaultEngineConfig())
	bridge := NewTemporalPropagator(engine)

	a, err := engine.CreateVariable("int", concore.NewIntInterval(-100, 100), false, false, "a")
	require.NoError(t, err)
	b, err := engine.CreateVariable("int", concore.NewIntInterval(-100, 100), false, false, "b")
	require.NoError(t, err)

	tpA, err := bridge.Timepoint(a)
	require.NoError(t, err)
	tpB, err := bridge.Timepoint(b)
	require.NoError(t, err)

	net := bridge.Network()
	_, err = net.AddTemporalConstraint(tpA, tpB, 10, tnet.MaxLength, true)
	require.NoError(t, err)
	ok, _ := net.Propagate()
	require.True(t, ok)
}
