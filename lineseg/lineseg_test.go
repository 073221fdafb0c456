package lineseg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

func seg(t *testing.T, m *mesh.Mesh, fx, fy, tx, ty float64) *lineseg.Segment {
	t.Helper()
	from := m.NewVertex(mesh.Point{X: fx, Y: fy})
	to := m.NewVertex(mesh.Point{X: tx, Y: ty})
	s, err := lineseg.New(m, 0, from, to, lineseg.NoSector, lineseg.NoSector)
	require.NoError(t, err)
	return s
}

func TestNewRejectsZeroLength(t *testing.T) {
	m := mesh.New()
	v := m.NewVertex(mesh.Point{X: 1, Y: 1})
	_, err := lineseg.New(m, 0, v, v, lineseg.NoSector, lineseg.NoSector)
	require.ErrorIs(t, err, lineseg.ErrZeroLength)
}

func TestUpdateCacheDerivesAngleAndSlope(t *testing.T) {
	m := mesh.New()
	horizontal := seg(t, m, 0, 0, 4, 0)
	require.Equal(t, lineseg.SlopeHorizontal, horizontal.SlopeType)
	require.InDelta(t, 4.0, horizontal.Length, 1e-9)
	require.InDelta(t, 0.0, horizontal.Angle, 1e-9)

	vertical := seg(t, m, 0, 0, 0, 4)
	require.Equal(t, lineseg.SlopeVertical, vertical.SlopeType)
	require.InDelta(t, 90.0, vertical.Angle, 1e-9)
}

func TestRelationshipCollinear(t *testing.T) {
	m := mesh.New()
	partition := seg(t, m, 0, 0, 10, 0)
	onLine := seg(t, m, 2, 0, 8, 0)

	rel, _, _ := onLine.Front.Relationship(partition.Front)
	require.Equal(t, lineseg.Collinear, rel)
}

func TestRelationshipRightAndLeft(t *testing.T) {
	m := mesh.New()
	partition := seg(t, m, 0, 0, 10, 0)

	right := seg(t, m, 2, -3, 8, -3)
	rel, _, _ := right.Front.Relationship(partition.Front)
	require.Equal(t, lineseg.Right, rel)

	left := seg(t, m, 2, 3, 8, 3)
	rel, _, _ = left.Front.Relationship(partition.Front)
	require.Equal(t, lineseg.Left, rel)
}

func TestRelationshipIntersects(t *testing.T) {
	m := mesh.New()
	partition := seg(t, m, 0, 0, 10, 0)
	crossing := seg(t, m, 5, -5, 5, 5)

	rel, _, _ := crossing.Front.Relationship(partition.Front)
	require.Equal(t, lineseg.Intersects, rel)
}

func TestDistanceSamePartitionLineIsExactZero(t *testing.T) {
	m := mesh.New()
	partition := seg(t, m, 0, 0, 10, 0)
	ml := &lineseg.MapLine{Index: 1}
	partition.Front.PartitionMapLine = ml

	other := seg(t, m, 3, 1e-3, 7, 2e-3)
	other.Front.PartitionMapLine = ml

	fromDist, toDist := other.Front.Distance(partition.Front)
	require.Equal(t, 0.0, fromDist)
	require.Equal(t, 0.0, toDist)
}

func TestReplaceVertexRefreshesBothSidesCache(t *testing.T) {
	m := mesh.New()
	s := seg(t, m, 0, 0, 4, 0)
	newTo := m.NewVertex(mesh.Point{X: 0, Y: 4})

	require.NoError(t, s.ReplaceVertex(lineseg.To, newTo))

	require.InDelta(t, 4.0, s.Length, 1e-9)
	require.Equal(t, lineseg.SlopeVertical, s.SlopeType)
	require.Equal(t, newTo, s.Front.Vertex(lineseg.To))
	require.Equal(t, newTo, s.Back.Vertex(lineseg.To))
}

func TestOtherReturnsOppositeSide(t *testing.T) {
	m := mesh.New()
	s := seg(t, m, 0, 0, 1, 0)
	require.Equal(t, s.Back, s.Front.Other())
	require.Equal(t, s.Front, s.Back.Other())
}

func TestSetMapLineComputesOffsetFromOriginalFrom(t *testing.T) {
	m := mesh.New()
	s := seg(t, m, 0, 0, 10, 0)
	ml := &lineseg.MapLine{Index: 0, Length: 10, From: mesh.Point{X: 0, Y: 0}}

	s.Front.SetMapLine(ml)
	require.InDelta(t, 0.0, s.Front.LineSideOffset, 1e-9)

	split := seg(t, m, 4, 0, 10, 0)
	split.Front.SetMapLine(ml)
	require.InDelta(t, 4.0, split.Front.LineSideOffset, 1e-9)
}

func TestReplaceVertexFromRefreshesLineSideOffset(t *testing.T) {
	m := mesh.New()
	s := seg(t, m, 4, 0, 10, 0)
	ml := &lineseg.MapLine{Index: 0, Length: 10, From: mesh.Point{X: 0, Y: 0}}
	s.Front.SetMapLine(ml)
	require.InDelta(t, 4.0, s.Front.LineSideOffset, 1e-9)

	newFrom := m.NewVertex(mesh.Point{X: 6, Y: 0})
	require.NoError(t, s.ReplaceVertex(lineseg.From, newFrom))
	require.InDelta(t, 6.0, s.Front.LineSideOffset, 1e-9)
}

func TestBoxOnSideStraddles(t *testing.T) {
	m := mesh.New()
	partition := seg(t, m, 0, 0, 10, 0)

	straddling := mesh.Box{Min: mesh.Point{X: 2, Y: -2}, Max: mesh.Point{X: 8, Y: 2}}
	require.Equal(t, 0, partition.Front.BoxOnSide(straddling))

	onlyRight := mesh.Box{Min: mesh.Point{X: 2, Y: -2}, Max: mesh.Point{X: 8, Y: -1}}
	require.Equal(t, 1, partition.Front.BoxOnSide(onlyRight))
}
