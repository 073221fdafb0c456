// Package subspace implements ConvexSubspaceProxy: the accumulator for
// the segments belonging to one BSP leaf, which orders them clockwise,
// classifies them into sector "continuities", and builds the leaf's DCEL
// face geometry.
package subspace

import (
	"math"
	"sort"

	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

// angleEqEpsilon mirrors the original engine's OrderedSegment equality
// (de::fequal on fromAngle/toAngle) used to detect duplicate positions.
const angleEqEpsilon = 1e-9

// OrderedSegment is a segment annotated with its clockwise angular span
// relative to the subspace's centroid.
type OrderedSegment struct {
	Side      *lineseg.Side
	FromAngle float64
	ToAngle   float64
}

func (a OrderedSegment) sameSpan(b OrderedSegment) bool {
	return math.Abs(a.FromAngle-b.FromAngle) <= angleEqEpsilon &&
		math.Abs(a.ToAngle-b.ToAngle) <= angleEqEpsilon
}

// Continuity is a maximal subset of a leaf's segments all attributed to
// the same front sector, with discordant duplicates separated out.
type Continuity struct {
	Sector   lineseg.SectorID
	Segments []OrderedSegment // non-discordant, in clockwise order
	Discord  []OrderedSegment

	NormCount int
	PartCount int
	SelfCount int
	Coverage  float64
}

// Geometry is the result of Proxy.BuildGeometry: the primary face built
// in the main mesh (if any), zero or more "extra" meshes holding
// discordant-continuity geometry, and the attributed sector.
type Geometry struct {
	HasPrimaryFace bool
	PrimaryFace    mesh.FaceID
	ExtraMeshes    []*mesh.Mesh
	ExtraFaces     []mesh.FaceID
	Sector         lineseg.SectorID
}

// Proxy accumulates the segments of one leaf-to-be.
type Proxy struct {
	segments []*lineseg.Side
	present  map[*lineseg.Side]bool
}

// New returns an empty proxy.
func New() *Proxy {
	return &Proxy{present: make(map[*lineseg.Side]bool)}
}

// SegmentCount returns the number of (deduplicated) segments held.
func (p *Proxy) SegmentCount() int { return len(p.segments) }

// IsEmpty reports whether the proxy holds zero segments.
func (p *Proxy) IsEmpty() bool { return len(p.segments) == 0 }

// Segments returns the raw (unordered) segment list.
func (p *Proxy) Segments() []*lineseg.Side { return p.segments }

// AddOneSegment adds segment if not already present.
func (p *Proxy) AddOneSegment(side *lineseg.Side) {
	if p.present[side] {
		return
	}
	p.present[side] = true
	p.segments = append(p.segments, side)
}

// AddSegments adds every side in sides, pruning duplicates.
func (p *Proxy) AddSegments(sides []*lineseg.Side) {
	for _, s := range sides {
		p.AddOneSegment(s)
	}
}

// OrderedSegments computes the clockwise ordering of the proxy's
// segments: centroid of all endpoints, per-segment (fromAngle, toAngle)
// relative to it, then a double-pass bubble sort — primary descending by
// fromAngle, secondary (on equal fromAngle) longer segment first. The
// bubble sort (rather than sort.Slice) is deliberate: it is what the
// original implementation uses and its O(n^2) stability on a leaf's
// typically-small segment count is not a concern here.
func (p *Proxy) OrderedSegments() []OrderedSegment {
	if len(p.segments) == 0 {
		return nil
	}

	var sum mesh.Point
	n := 0
	for _, s := range p.segments {
		sum = sum.Add(s.Segment.FromPos())
		sum = sum.Add(s.Segment.ToPos())
		n += 2
	}
	centroid := sum.Scale(1 / float64(n))

	ordered := make([]OrderedSegment, len(p.segments))
	for i, s := range p.segments {
		fromAngle := angleOf(s.Segment.FromPos().Sub(centroid))
		toAngle := angleOf(s.Segment.ToPos().Sub(centroid))
		ordered[i] = OrderedSegment{Side: s, FromAngle: fromAngle, ToAngle: toAngle}
	}

	for i := 0; i < len(ordered); i++ {
		for j := 0; j < len(ordered)-1-i; j++ {
			if lessOrdered(ordered[j+1], ordered[j]) {
				ordered[j], ordered[j+1] = ordered[j+1], ordered[j]
			}
		}
	}
	return ordered
}

func lessOrdered(a, b OrderedSegment) bool {
	if math.Abs(a.FromAngle-b.FromAngle) > angleEqEpsilon {
		return a.FromAngle > b.FromAngle // descending
	}
	return a.Side.Segment.Length > b.Side.Segment.Length // longer first
}

func angleOf(v mesh.Point) float64 {
	return math.Mod(math.Atan2(v.Y, v.X)*180/math.Pi+360, 360)
}

// classify groups the clockwise-ordered segments into per-sector
// continuities, detecting discordant duplicate positions (segments whose
// angular span exactly matches one already placed) along the way.
func classify(ordered []OrderedSegment) []*Continuity {
	bySector := map[lineseg.SectorID]*Continuity{}
	var order []lineseg.SectorID

	for _, os := range ordered {
		sector := os.Side.Sector
		c, ok := bySector[sector]
		if !ok {
			c = &Continuity{Sector: sector}
			bySector[sector] = c
			order = append(order, sector)
		}

		discordant := false
		for _, placed := range c.Segments {
			if placed.sameSpan(os) {
				discordant = true
				break
			}
		}

		if discordant {
			c.Discord = append(c.Discord, os)
			continue
		}

		c.Segments = append(c.Segments, os)
		switch {
		case os.Side.MapLine == nil:
			c.PartCount++
		case os.Side.IsSelfReferencing():
			c.SelfCount++
		default:
			c.NormCount++
		}
		c.Coverage += angularSpan(os)
	}

	out := make([]*Continuity, len(order))
	for i, s := range order {
		out[i] = bySector[s]
	}
	return out
}

func angularSpan(os OrderedSegment) float64 {
	return math.Mod(os.FromAngle-os.ToAngle+360, 360)
}

// BuildGeometry builds the primary face (clockwise boundary of every
// non-discordant segment, regardless of which continuity it belongs to)
// in m, an extra mesh+face per continuity that has discordant segments,
// and attributes a winning sector by the stated heuristic: larger
// NormCount wins, ties broken by larger Coverage. The heuristic and the
// near-duplicate merge semantics here are stated as approximate in the
// original source and are preserved verbatim rather than tightened.
func (p *Proxy) BuildGeometry(m *mesh.Mesh) (Geometry, error) {
	ordered := p.OrderedSegments()
	if len(ordered) >= 3 {
		hasMapSeg := false
		for _, os := range ordered {
			if os.Side.MapLine != nil {
				hasMapSeg = true
				break
			}
		}
		if !hasMapSeg {
			return Geometry{}, ErrNoMapSegment
		}
	}

	continuities := classify(ordered)

	var geo Geometry
	geo.Sector = lineseg.NoSector

	// Primary face: every non-discordant segment across all continuities,
	// in the already-clockwise global order.
	var primary []OrderedSegment
	for _, os := range ordered {
		c := findContinuity(continuities, os.Side.Sector)
		for _, s := range c.Segments {
			if s.Side == os.Side {
				primary = append(primary, os)
				break
			}
		}
	}
	primary = dedupOrdered(primary)

	if len(primary) >= 3 {
		face := buildFace(m, primary)
		geo.HasPrimaryFace = true
		geo.PrimaryFace = face
	}

	// Discord handling: one extra mesh+face per continuity with
	// discordant segments.
	for _, c := range continuities {
		if len(c.Discord) == 0 {
			continue
		}
		extra := mesh.New()
		face := buildFace(extra, c.Discord)
		geo.ExtraMeshes = append(geo.ExtraMeshes, extra)
		geo.ExtraFaces = append(geo.ExtraFaces, face)
	}

	// Sector attribution: larger NormCount wins; ties by larger Coverage.
	sort.SliceStable(continuities, func(i, j int) bool {
		a, b := continuities[i], continuities[j]
		if a.NormCount != b.NormCount {
			return a.NormCount > b.NormCount
		}
		return a.Coverage > b.Coverage
	})
	if len(continuities) > 0 {
		geo.Sector = continuities[0].Sector
	}

	return geo, nil
}

func findContinuity(cs []*Continuity, sector lineseg.SectorID) *Continuity {
	for _, c := range cs {
		if c.Sector == sector {
			return c
		}
	}
	return &Continuity{}
}

func dedupOrdered(in []OrderedSegment) []OrderedSegment {
	seen := make(map[*lineseg.Side]bool)
	out := in[:0]
	for _, os := range in {
		if seen[os.Side] {
			continue
		}
		seen[os.Side] = true
		out = append(out, os)
	}
	return out
}

// buildFace creates a face in m from segs (already in clockwise order),
// iterating in reverse so insertion produces a clockwise ring, per
// spec.md §4.7 step 5. Each segment gets a half-edge if it doesn't have
// one yet; existing back-side half-edges are twinned.
func buildFace(m *mesh.Mesh, segs []OrderedSegment) mesh.FaceID {
	face := m.NewFace()
	if len(segs) == 0 {
		return face
	}

	var head mesh.HalfEdgeID = mesh.NoHalfEdge
	var built []mesh.HalfEdgeID

	for i := len(segs) - 1; i >= 0; i-- {
		side := segs[i].Side
		var he mesh.HalfEdgeID
		if side.HalfEdge != mesh.NoHalfEdge {
			he = side.HalfEdge
		} else {
			he = m.NewHEdge(side.Vertex(lineseg.From))
			side.HalfEdge = he
			m.HEdge(he).Length = side.Segment.Length
			if side.MapLine != nil {
				m.HEdge(he).LineSideOffset = side.LineSideOffset
			}
			if other := side.Other(); other.HalfEdge != mesh.NoHalfEdge {
				m.LinkTwins(he, other.HalfEdge)
			}
		}
		m.HEdge(he).Face = face
		built = append(built, he)
		head = he
	}

	// built holds segs in reverse; each half-edge's next is the one
	// inserted just before it, so the ring follows segs' clockwise order.
	n := len(built)
	for i := 0; i < n; i++ {
		m.LinkNextPrev(built[i], built[(i-1+n)%n])
	}

	m.Face(face).HalfEdge = head
	m.Face(face).EdgeCount = len(built)
	m.UpdateBounds(face)
	m.UpdateCenter(face)
	return face
}
