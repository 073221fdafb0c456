package subspace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
	"github.com/bloodmagesoftware/bsplevel/subspace"
)

func squareSides(t *testing.T, m *mesh.Mesh, sector lineseg.SectorID) []*lineseg.Side {
	t.Helper()
	v0 := m.NewVertex(mesh.Point{X: 0, Y: 0})
	v1 := m.NewVertex(mesh.Point{X: 4, Y: 0})
	v2 := m.NewVertex(mesh.Point{X: 4, Y: 4})
	v3 := m.NewVertex(mesh.Point{X: 0, Y: 4})

	pairs := [][2]mesh.VertexID{{v0, v1}, {v1, v2}, {v2, v3}, {v3, v0}}
	sides := make([]*lineseg.Side, len(pairs))
	for i, pr := range pairs {
		s, err := lineseg.New(m, i, pr[0], pr[1], sector, lineseg.NoSector)
		require.NoError(t, err)
		s.Front.MapLine = &lineseg.MapLine{Index: i, FrontSector: sector, BackSector: lineseg.NoSector}
		sides[i] = s.Front
	}
	return sides
}

func TestOrderedSegmentsCoverAllFourSides(t *testing.T) {
	m := mesh.New()
	sides := squareSides(t, m, 0)

	p := subspace.New()
	p.AddSegments(sides)

	ordered := p.OrderedSegments()
	require.Len(t, ordered, 4)
}

func TestAddOneSegmentDeduplicates(t *testing.T) {
	m := mesh.New()
	sides := squareSides(t, m, 0)

	p := subspace.New()
	p.AddOneSegment(sides[0])
	p.AddOneSegment(sides[0])

	require.Equal(t, 1, p.SegmentCount())
}

func TestBuildGeometryProducesPrimaryFaceAndWinningSector(t *testing.T) {
	m := mesh.New()
	sides := squareSides(t, m, 5)

	p := subspace.New()
	p.AddSegments(sides)

	geo, err := p.BuildGeometry(m)
	require.NoError(t, err)
	require.True(t, geo.HasPrimaryFace)
	require.Equal(t, lineseg.SectorID(5), geo.Sector)
	require.Equal(t, 4, m.Face(geo.PrimaryFace).EdgeCount)
	require.Empty(t, geo.ExtraFaces)
}

func TestBuildGeometryRejectsAllSyntheticSegments(t *testing.T) {
	m := mesh.New()
	sides := squareSides(t, m, 0)
	for _, s := range sides {
		s.MapLine = nil
	}

	p := subspace.New()
	p.AddSegments(sides)

	_, err := p.BuildGeometry(m)
	require.ErrorIs(t, err, subspace.ErrNoMapSegment)
}
