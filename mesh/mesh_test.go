package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bloodmagesoftware/bsplevel/mesh"
)

func square(m *mesh.Mesh) mesh.FaceID {
	v0 := m.NewVertex(mesh.Point{X: 0, Y: 0})
	v1 := m.NewVertex(mesh.Point{X: 4, Y: 0})
	v2 := m.NewVertex(mesh.Point{X: 4, Y: 4})
	v3 := m.NewVertex(mesh.Point{X: 0, Y: 4})

	e0 := m.NewHEdge(v0)
	e1 := m.NewHEdge(v1)
	e2 := m.NewHEdge(v2)
	e3 := m.NewHEdge(v3)

	m.LinkNextPrev(e0, e1)
	m.LinkNextPrev(e1, e2)
	m.LinkNextPrev(e2, e3)
	m.LinkNextPrev(e3, e0)

	f := m.NewFace()
	m.Face(f).HalfEdge = e0
	for _, e := range []mesh.HalfEdgeID{e0, e1, e2, e3} {
		m.HEdge(e).Face = f
	}
	m.Face(f).EdgeCount = 4
	return f
}

func TestRingWalksInOrder(t *testing.T) {
	m := mesh.New()
	f := square(m)

	ring := m.Ring(f)
	require.Len(t, ring, 4)
	require.Equal(t, m.Face(f).HalfEdge, ring[0])
}

func TestUpdateBoundsAndCenter(t *testing.T) {
	m := mesh.New()
	f := square(m)

	m.UpdateBounds(f)
	m.UpdateCenter(f)

	require.Equal(t, mesh.Point{X: 0, Y: 0}, m.Face(f).Bounds.Min)
	require.Equal(t, mesh.Point{X: 4, Y: 4}, m.Face(f).Bounds.Max)
	require.Equal(t, mesh.Point{X: 2, Y: 2}, m.Face(f).Center)
}

func TestIsConvexClockwiseRejectsRingBelowThree(t *testing.T) {
	m := mesh.New()
	v0 := m.NewVertex(mesh.Point{X: 0, Y: 0})
	v1 := m.NewVertex(mesh.Point{X: 1, Y: 0})
	e0 := m.NewHEdge(v0)
	e1 := m.NewHEdge(v1)
	m.LinkNextPrev(e0, e1)
	m.LinkNextPrev(e1, e0)
	f := m.NewFace()
	m.Face(f).HalfEdge = e0

	require.False(t, m.IsConvexClockwise(f, 1e-9))
}

func TestLinkTwins(t *testing.T) {
	m := mesh.New()
	v0 := m.NewVertex(mesh.Point{X: 0, Y: 0})
	v1 := m.NewVertex(mesh.Point{X: 1, Y: 0})
	a := m.NewHEdge(v0)
	b := m.NewHEdge(v1)

	m.LinkTwins(a, b)

	require.Equal(t, b, m.HEdge(a).Twin)
	require.Equal(t, a, m.HEdge(b).Twin)
}

func TestRemoveDoesNotCompactArena(t *testing.T) {
	m := mesh.New()
	v0 := m.NewVertex(mesh.Point{X: 1, Y: 1})
	v1 := m.NewVertex(mesh.Point{X: 2, Y: 2})

	m.RemoveVertex(v0)

	require.Equal(t, 2, m.VertexCount())
	require.Equal(t, mesh.Point{X: 2, Y: 2}, m.Vertex(v1).Pos)
}

func TestPointArithmetic(t *testing.T) {
	a := mesh.Point{X: 1, Y: 2}
	b := mesh.Point{X: 3, Y: 4}

	require.Equal(t, mesh.Point{X: 4, Y: 6}, a.Add(b))
	require.Equal(t, mesh.Point{X: -2, Y: -2}, a.Sub(b))
	require.Equal(t, mesh.Point{X: 2, Y: 4}, a.Scale(2))
	require.Equal(t, a.X*b.Y-a.Y*b.X, a.Cross(b))
}
