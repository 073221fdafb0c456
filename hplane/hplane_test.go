package hplane_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/edgetip"
	"github.com/bloodmagesoftware/bsplevel/hplane"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

func side(t *testing.T, m *mesh.Mesh, index int, fx, fy, tx, ty float64) *lineseg.Side {
	t.Helper()
	from := m.NewVertex(mesh.Point{X: fx, Y: fy})
	to := m.NewVertex(mesh.Point{X: tx, Y: ty})
	s, err := lineseg.New(m, index, from, to, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)
	return s.Front
}

func TestConfigureSnapshotsSource(t *testing.T) {
	m := mesh.New()
	s := side(t, m, 0, 0, 0, 10, 0)

	h := hplane.New()
	h.Configure(s)

	require.Equal(t, s, h.Source)
	require.Equal(t, mesh.Point{X: 0, Y: 0}, h.Origin)
	require.Equal(t, lineseg.SlopeHorizontal, h.SlopeType)
}

func TestIntersectHorizontalUsesExactAxisFormula(t *testing.T) {
	m := mesh.New()
	partition := side(t, m, 0, 0, 0, 10, 0)
	crossing := side(t, m, 1, 3, -5, 3, 5)

	h := hplane.New()
	h.Configure(partition)

	require.Equal(t, 3.0, h.Intersect(crossing, lineseg.From))
}

func TestInterceptIsIdempotentPerSegmentEdge(t *testing.T) {
	m := mesh.New()
	partition := side(t, m, 0, 0, 0, 10, 0)
	crossing := side(t, m, 1, 3, -5, 3, 5)

	h := hplane.New()
	h.Configure(partition)

	first := h.Intercept(crossing, lineseg.From, edgetip.NewMap().At(0))
	require.NotNil(t, first)

	second := h.Intercept(crossing, lineseg.From, edgetip.NewMap().At(0))
	require.Nil(t, second, "the same (segment, edge) pair must not be intercepted twice")
	require.Equal(t, 1, h.InterceptCount())
}

func TestSortAndMergeIntercceptsMergesWithinEpsilon(t *testing.T) {
	m := mesh.New()
	partition := side(t, m, 0, 0, 0, 10, 0)
	a := side(t, m, 1, 3, -5, 3, 5)
	b := side(t, m, 2, 3.001, -5, 3.001, 5)

	h := hplane.New()
	h.Configure(partition)

	h.Intercept(a, lineseg.From, nil)
	h.Intercept(b, lineseg.From, nil)
	h.SortAndMergeIntercepts()

	require.Equal(t, 1, h.InterceptCount(), "intercepts within MergeDistanceEpsilon collapse into one")
}

func TestSortAndMergeIntercceptsKeepsFarApartIntercepts(t *testing.T) {
	m := mesh.New()
	partition := side(t, m, 0, 0, 0, 10, 0)
	a := side(t, m, 1, 3, -5, 3, 5)
	b := side(t, m, 2, 7, -5, 7, 5)

	h := hplane.New()
	h.Configure(partition)

	h.Intercept(a, lineseg.From, nil)
	h.Intercept(b, lineseg.From, nil)
	h.SortAndMergeIntercepts()

	require.Equal(t, 2, h.InterceptCount())
}
