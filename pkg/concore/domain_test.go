package concore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	kinds []ChangeKind
}

func (l *recordingListener) NotifyChange(kind ChangeKind) {
	l.kinds = append(l.kinds, kind)
}

func TestIntIntervalIntersectSelfIsNoOp(t *testing.T) {
	d := NewIntInterval(0, 10)
	changed, err := d.Intersect(d.Clone())
	require.NoError(t, err)
	require.False(t, changed)
}

func TestIntIntervalRelaxCurrentIsNoOp(t *testing.T) {
	base := NewIntInterval(0, 10)
	current := base.Clone()
	require.NoError(t, current.Relax(current.Clone()))
	lo, hi := numericBounds(current)
	require.Equal(t, 0.0, lo)
	require.Equal(t, 10.0, hi)
}

func TestFloatIntervalNearZeroEquateViaEpsilonRule(t *testing.T) {
	a := NewFloatInterval(FloatEpsilon/10, 1)
	b := NewFloatInterval(-FloatEpsilon/10, 0)
	changed, err := a.Intersect(b)
	require.NoError(t, err)
	require.True(t, changed)
	require.False(t, a.IsEmpty(), "bounds within epsilon of each other should equate, not empty")
}

func TestEnumNumCloseWithNoInsertEmitsEmptied(t *testing.T) {
	d := NewOpenEnumNum()
	l := &recordingListener{}
	d.SetListener(l)

	require.NoError(t, d.Close())

	require.Len(t, l.kinds, 2)
	require.Equal(t, ChangeClosed, l.kinds[0])
	require.Equal(t, ChangeEmptied, l.kinds[1])
}

func TestDomainBoundsRejectsNonNumeric(t *testing.T) {
	_, _, ok := DomainBounds(NewSymbolDomain())
	require.False(t, ok)
}

func TestDomainBoundsOnNumericDomain(t *testing.T) {
	d := NewIntInterval(3, 9)
	lo, hi, ok := DomainBounds(d)
	require.True(t, ok)
	require.Equal(t, 3.0, lo)
	require.Equal(t, 9.0, hi)
}
