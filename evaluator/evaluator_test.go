package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/evaluator"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

func mapSide(t *testing.T, m *mesh.Mesh, index int, fx, fy, tx, ty float64) *lineseg.Side {
	t.Helper()
	from := m.NewVertex(mesh.Point{X: fx, Y: fy})
	to := m.NewVertex(mesh.Point{X: tx, Y: ty})
	s, err := lineseg.New(m, index, from, to, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)
	s.Front.MapLine = &lineseg.MapLine{Index: index}
	return s.Front
}

func TestChooseReturnsNilWithNoMapCandidates(t *testing.T) {
	m := mesh.New()
	from := m.NewVertex(mesh.Point{X: 0, Y: 0})
	to := m.NewVertex(mesh.Point{X: 1, Y: 0})
	s, err := lineseg.New(m, 0, from, to, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)

	e := evaluator.New(evaluator.DefaultSplitCostFactor)
	require.Nil(t, e.Choose([]*lineseg.Side{s.Front}))
}

func TestChoosePrefersBalancedOverImbalanced(t *testing.T) {
	m := mesh.New()
	balanced := mapSide(t, m, 0, -10, 0, 10, 0)
	imbalanced := mapSide(t, m, 1, -10, 5, 10, 5)
	above := mapSide(t, m, 2, -10, 1, 10, 1)
	below := mapSide(t, m, 3, -10, -1, 10, -1)

	e := evaluator.New(evaluator.DefaultSplitCostFactor)
	best := e.Choose([]*lineseg.Side{balanced, imbalanced, above, below})

	require.Equal(t, balanced, best)
}

func TestChooseTiebreaksByLowerSegmentIndex(t *testing.T) {
	m := mesh.New()
	a := mapSide(t, m, 5, -10, 0, 10, 0)
	b := mapSide(t, m, 2, -10, 0, 10, 0)

	e := evaluator.New(evaluator.DefaultSplitCostFactor)
	best := e.Choose([]*lineseg.Side{a, b})

	require.Equal(t, 2, best.Segment.Index)
}
