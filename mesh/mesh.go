// Package mesh implements the doubly-connected edge list (DCEL) the
// builder constructs leaf geometry into: vertices, half-edges and faces,
// addressed by stable handles rather than pointers so the graph's cyclic
// twin/next/prev/face references never become an ownership cycle.
package mesh

import "math"

// VertexID, HalfEdgeID and FaceID are stable handles into a Mesh's arenas:
// indices starting at 0. "None" is expressed by the -1 constants
// NoVertex/NoHalfEdge/NoFace, not by the zero value.
type VertexID int
type HalfEdgeID int
type FaceID int

const (
	NoVertex   VertexID   = -1
	NoHalfEdge HalfEdgeID = -1
	NoFace     FaceID     = -1
)

// Point is a 2D coordinate in map space.
type Point struct {
	X, Y float64
}

func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Cross returns the 2D cross product of p and o treated as vectors.
func (p Point) Cross(o Point) float64 { return p.X*o.Y - p.Y*o.X }

// Vertex is a point in map coordinate space. Identity matters: segments
// and half-edges refer to vertices by handle.
type Vertex struct {
	Pos Point
}

// HalfEdge is a directed edge from Origin. Twin, Face, Next and Prev are
// nullable handles; NewHEdge initializes each to NoHalfEdge/NoFace.
type HalfEdge struct {
	Origin VertexID
	Twin   HalfEdgeID
	Face   FaceID
	Next   HalfEdgeID
	Prev   HalfEdgeID

	// LineSideOffset and Length record this half-edge's position along
	// the map line side it was generated from, for LineSideSegment
	// attachment. Unset (zero) when the half-edge has no map line.
	LineSideOffset float64
	Length         float64
}

// Face is a convex polygon: one boundary half-edge plus cached geometry.
type Face struct {
	HalfEdge  HalfEdgeID
	EdgeCount int
	Bounds    Box
	Center    Point
}

// Box is an axis-aligned bounding box in float map coordinates.
type Box struct {
	Min, Max Point
}

// Mesh owns vertices, half-edges and faces for the lifetime of a build.
type Mesh struct {
	vertices  []Vertex
	halfEdges []HalfEdge
	faces     []Face
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// NewVertex appends a vertex at pos and returns its handle.
func (m *Mesh) NewVertex(pos Point) VertexID {
	m.vertices = append(m.vertices, Vertex{Pos: pos})
	return VertexID(len(m.vertices) - 1)
}

// NewHEdge appends a half-edge with the given origin; twin, face, next
// and prev start unset.
func (m *Mesh) NewHEdge(origin VertexID) HalfEdgeID {
	m.halfEdges = append(m.halfEdges, HalfEdge{
		Origin: origin,
		Twin:   NoHalfEdge,
		Face:   NoFace,
		Next:   NoHalfEdge,
		Prev:   NoHalfEdge,
	})
	return HalfEdgeID(len(m.halfEdges) - 1)
}

// NewFace appends an empty face (no boundary half-edge yet).
func (m *Mesh) NewFace() FaceID {
	m.faces = append(m.faces, Face{HalfEdge: NoHalfEdge})
	return FaceID(len(m.faces) - 1)
}

func (m *Mesh) Vertex(id VertexID) *Vertex     { return &m.vertices[id] }
func (m *Mesh) HEdge(id HalfEdgeID) *HalfEdge   { return &m.halfEdges[id] }
func (m *Mesh) Face(id FaceID) *Face            { return &m.faces[id] }

func (m *Mesh) VertexCount() int   { return len(m.vertices) }
func (m *Mesh) HalfEdgeCount() int { return len(m.halfEdges) }
func (m *Mesh) FaceCount() int     { return len(m.faces) }

// RemoveVertex, RemoveHEdge and RemoveFace mark a handle's slot as removed
// without cascading to referring structures; callers are responsible for
// not leaving dangling handles. Removal never compacts the arena, so
// handles issued before a removal remain valid indices.
func (m *Mesh) RemoveVertex(id VertexID) {
	if int(id) < 0 || int(id) >= len(m.vertices) {
		return
	}
	m.vertices[id] = Vertex{}
}

func (m *Mesh) RemoveHEdge(id HalfEdgeID) {
	if int(id) < 0 || int(id) >= len(m.halfEdges) {
		return
	}
	m.halfEdges[id] = HalfEdge{Twin: NoHalfEdge, Face: NoFace, Next: NoHalfEdge, Prev: NoHalfEdge}
}

func (m *Mesh) RemoveFace(id FaceID) {
	if int(id) < 0 || int(id) >= len(m.faces) {
		return
	}
	m.faces[id] = Face{HalfEdge: NoHalfEdge}
}

// Ring walks the boundary half-edges of a face starting at its HalfEdge,
// following Next, and returns them in order.
func (m *Mesh) Ring(f FaceID) []HalfEdgeID {
	face := m.Face(f)
	if face.HalfEdge == NoHalfEdge {
		return nil
	}
	var ring []HalfEdgeID
	start := face.HalfEdge
	cur := start
	for {
		ring = append(ring, cur)
		cur = m.HEdge(cur).Next
		if cur == start || cur == NoHalfEdge {
			break
		}
	}
	return ring
}

// UpdateBounds recomputes the face's cached bounding box from its ring.
func (m *Mesh) UpdateBounds(f FaceID) {
	ring := m.Ring(f)
	if len(ring) == 0 {
		return
	}
	first := m.Vertex(m.HEdge(ring[0]).Origin).Pos
	box := Box{Min: first, Max: first}
	for _, he := range ring[1:] {
		p := m.Vertex(m.HEdge(he).Origin).Pos
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
	}
	m.Face(f).Bounds = box
}

// UpdateCenter recomputes the face's cached centroid from its ring's
// vertex positions (simple average, not area-weighted).
func (m *Mesh) UpdateCenter(f FaceID) {
	ring := m.Ring(f)
	if len(ring) == 0 {
		return
	}
	var sum Point
	for _, he := range ring {
		sum = sum.Add(m.Vertex(m.HEdge(he).Origin).Pos)
	}
	m.Face(f).Center = sum.Scale(1.0 / float64(len(ring)))
}

// IsConvexClockwise reports whether every consecutive triple of the
// face's ring makes a non-strict clockwise turn, within eps.
func (m *Mesh) IsConvexClockwise(f FaceID, eps float64) bool {
	ring := m.Ring(f)
	if len(ring) < 3 {
		return false
	}
	n := len(ring)
	for i := 0; i < n; i++ {
		a := m.Vertex(m.HEdge(ring[i]).Origin).Pos
		b := m.Vertex(m.HEdge(ring[(i+1)%n]).Origin).Pos
		c := m.Vertex(m.HEdge(ring[(i+2)%n]).Origin).Pos
		cross := b.Sub(a).Cross(c.Sub(b))
		if cross > eps {
			// positive cross under a clockwise (screen-style, y-down-
			// agnostic) convention marks a counter-turn.
			return false
		}
	}
	return true
}

// LinkNextPrev sets a.Next = b and b.Prev = a.
func (m *Mesh) LinkNextPrev(a, b HalfEdgeID) {
	m.HEdge(a).Next = b
	m.HEdge(b).Prev = a
}

// LinkTwins sets a.Twin = b and b.Twin = a.
func (m *Mesh) LinkTwins(a, b HalfEdgeID) {
	m.HEdge(a).Twin = b
	m.HEdge(b).Twin = a
}
