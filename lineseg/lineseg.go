// Package lineseg implements the two-sided oriented line segment that the
// builder partitions map lines into, along with the epsilon-tolerant
// geometric classification (LineRelationship) used throughout the
// builder to decide which side of a partition a segment falls on.
package lineseg

import (
	"math"

	"github.com/bloodmagesoftware/bsplevel/mesh"
)

// Epsilons are centralized here and must never be inlined at use sites
// (Design Notes, spec.md §9).
const (
	// IncidenceEpsilon is the perpendicular-distance tolerance used by
	// Relationship to decide collinearity/incidence, in map units.
	IncidenceEpsilon = 1.0 / 128
	// ShortSplitThreshold is the minimum acceptable fragment length
	// produced by an Intersects split before PartitionEvaluator penalizes
	// the candidate, in map units.
	ShortSplitThreshold = 4.0
)

// SectorID identifies an input sector by its caller-assigned handle.
// NoSector means "no sector attributed" (a one-sided line's missing
// back, or a leaf with no resolvable attribution yet).
type SectorID int

const NoSector SectorID = -1

// SlopeType classifies a direction vector's orientation.
type SlopeType int

const (
	SlopeHorizontal SlopeType = iota
	SlopeVertical
	SlopePositive
	SlopeNegative
)

// LineRelationship is the result of comparing a segment's two endpoints'
// perpendicular distances against a reference line.
type LineRelationship int

const (
	Collinear LineRelationship = iota
	Right
	RightIntercept
	Left
	LeftIntercept
	Intersects
)

// MapLine is the minimal identity of an input map line that segments and
// sides need to retain: its stored index (for deterministic sort order
// and tiebreaks), its two sector attributions, and whether it is
// self-referencing (front sector == back sector).
type MapLine struct {
	Index           int
	FrontSector     SectorID
	BackSector      SectorID
	SelfReferencing bool
	Length          float64
	// From is the original (unsplit) line's own From vertex position,
	// used to measure LineSideOffset for every segment cut from it.
	From mesh.Point
}

// Edge identifies one endpoint of a segment.
type Edge int

const (
	From Edge = iota
	To
)

// SideID identifies one of a segment's two sides.
type SideID int

const (
	FrontSide SideID = iota
	BackSide
)

// Side is one directed aspect of a Segment.
type Side struct {
	Segment *Segment
	ID      SideID

	Sector SectorID

	// MapLine is the originating map line this side was cut from, or nil
	// for a side synthesized purely to close a partition gap.
	MapLine *MapLine
	// PartitionMapLine is set when this segment was generated from a
	// partition, to allow future same-partition collinearity tests.
	PartitionMapLine *MapLine

	// Left and Right are neighbor sides along the same source line,
	// populated after splitting; nil at the original line's own ends.
	Left, Right *Side

	// BlockNode is an index into the owning blocktree.Tree's node arena,
	// or -1 if unlinked. Kept as a plain int (not a blocktree.NodeID) so
	// this package never needs to import blocktree.
	BlockNode int
	// Subspace is an index into the owning Partitioner's list of
	// ConvexSubspaceProxys, or -1 if not yet attributed.
	Subspace int
	// HalfEdge is the DCEL half-edge built for this side, or
	// mesh.NoHalfEdge if none has been built yet.
	HalfEdge mesh.HalfEdgeID

	// LineSideOffset records this side's position along its MapLine. It
	// is set by SetMapLine and refreshed whenever the segment's cached
	// geometry is recomputed.
	LineSideOffset float64
}

func (s *Side) HasMapLine() bool { return s.MapLine != nil }

// SetMapLine attaches ml to this side and recomputes LineSideOffset from
// ml's own From vertex to this side's current From vertex (both lie on
// the same infinite line by construction).
func (s *Side) SetMapLine(ml *MapLine) {
	s.MapLine = ml
	s.refreshLineSideOffset()
}

func (s *Side) refreshLineSideOffset() {
	if s.MapLine == nil {
		return
	}
	from := s.Segment.fromPos()
	s.LineSideOffset = math.Hypot(from.X-s.MapLine.From.X, from.Y-s.MapLine.From.Y)
}

// IsSelfReferencing reports whether this side's originating map line has
// the same front and back sector.
func (s *Side) IsSelfReferencing() bool {
	return s.MapLine != nil && s.MapLine.SelfReferencing
}

// Other returns this segment's opposite side.
func (s *Side) Other() *Side {
	if s.ID == FrontSide {
		return s.Segment.Back
	}
	return s.Segment.Front
}

// Vertex returns the segment's From or To vertex per edge.
func (s *Side) Vertex(e Edge) mesh.VertexID {
	if e == From {
		return s.Segment.From
	}
	return s.Segment.To
}

// Segment is a finite directed line between two mesh vertices, with a
// Front and Back Side sharing those endpoints in opposite orientation.
type Segment struct {
	Index int // stored index, for deterministic sort/tiebreak

	From, To mesh.VertexID
	m        *mesh.Mesh

	Front *Side
	Back  *Side

	// cached geometry, refreshed by updateCache on construction and on
	// every vertex replacement.
	Dir       mesh.Point
	Length    float64
	Angle     float64 // degrees, [0,360)
	SlopeType SlopeType
	PPerp     float64
	PPara     float64
}

// New constructs a segment between from and to, with front/back sector
// attribution, backed by m for vertex position lookups.
func New(m *mesh.Mesh, index int, from, to mesh.VertexID, frontSector, backSector SectorID) (*Segment, error) {
	s := &Segment{Index: index, From: from, To: to, m: m}
	s.Front = &Side{Segment: s, ID: FrontSide, Sector: frontSector, BlockNode: -1, Subspace: -1, HalfEdge: mesh.NoHalfEdge}
	s.Back = &Side{Segment: s, ID: BackSide, Sector: backSector, BlockNode: -1, Subspace: -1, HalfEdge: mesh.NoHalfEdge}
	if err := s.updateCache(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Segment) fromPos() mesh.Point { return s.m.Vertex(s.From).Pos }
func (s *Segment) toPos() mesh.Point   { return s.m.Vertex(s.To).Pos }

// FromPos and ToPos expose endpoint coordinates for callers (blocktree's
// spatial indexing, evaluator's cost function) that need geometry but
// should not need to hold their own *mesh.Mesh reference.
func (s *Segment) FromPos() mesh.Point { return s.fromPos() }
func (s *Segment) ToPos() mesh.Point   { return s.toPos() }

// Pos returns the position of the given edge's vertex.
func (s *Segment) Pos(e Edge) mesh.Point {
	if e == From {
		return s.fromPos()
	}
	return s.toPos()
}

// updateCache recomputes direction, length, angle, slope type and the
// perpendicular/parallel offsets from the current vertex positions.
//
// pPerp = fromY*dirX - fromX*dirY
// pPara = -fromX*dirX - fromY*dirY
func (s *Segment) updateCache() error {
	from, to := s.fromPos(), s.toPos()
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length <= 0 {
		return ErrZeroLength
	}
	s.Dir = mesh.Point{X: dx, Y: dy}
	s.Length = length
	s.Angle = math.Mod(math.Atan2(dy, dx)*180/math.Pi+360, 360)
	s.SlopeType = slopeTypeOf(dx, dy)
	s.PPerp = from.Y*dx - from.X*dy
	s.PPara = -from.X*dx - from.Y*dy
	s.Front.refreshLineSideOffset()
	s.Back.refreshLineSideOffset()
	return nil
}

func slopeTypeOf(dx, dy float64) SlopeType {
	switch {
	case dy == 0:
		return SlopeHorizontal
	case dx == 0:
		return SlopeVertical
	case dy/dx > 0:
		return SlopePositive
	default:
		return SlopeNegative
	}
}

// ReplaceVertex swaps the From or To vertex and refreshes cached geometry
// on both sides atomically — a single-side refresh would leave the other
// side's cache stale since both sides share From/To.
func (s *Segment) ReplaceVertex(e Edge, v mesh.VertexID) error {
	if e == From {
		s.From = v
	} else {
		s.To = v
	}
	return s.updateCache()
}

// distance computes the perpendicular distance from this side's own
// From/To vertices to the infinite line defined by other. Special rule:
// when both sides originated from the same partition map line, both
// distances are forced to exactly zero to avoid drift from repeated
// splitting of the same partition.
func (side *Side) distance(other *Side) (fromDist, toDist float64) {
	if side.PartitionMapLine != nil && other.PartitionMapLine != nil &&
		side.PartitionMapLine == other.PartitionMapLine {
		return 0, 0
	}
	oseg := other.Segment
	origin := oseg.fromPos()
	dir := oseg.Dir
	length := oseg.Length

	from := side.Segment.fromPos()
	to := side.Segment.toPos()

	fromDist = perpDistance(origin, dir, length, from)
	toDist = perpDistance(origin, dir, length, to)
	return fromDist, toDist
}

func perpDistance(origin, dir mesh.Point, length float64, p mesh.Point) float64 {
	rel := p.Sub(origin)
	return rel.Cross(dir) / length
}

// Distance is the exported, unoriented form of distance used by cost
// evaluation (PartitionEvaluator) and HPlane.distance.
func (side *Side) Distance(other *Side) (fromDist, toDist float64) {
	return side.distance(other)
}

// Relationship classifies this side against other (the reference/
// partition line) from the perpendicular distances of this side's own
// endpoints.
func (side *Side) Relationship(other *Side) (rel LineRelationship, fromDist, toDist float64) {
	fromDist, toDist = side.distance(other)
	return relationshipFromDistances(fromDist, toDist), fromDist, toDist
}

func relationshipFromDistances(fromDist, toDist float64) LineRelationship {
	switch {
	case math.Abs(fromDist) <= IncidenceEpsilon && math.Abs(toDist) <= IncidenceEpsilon:
		return Collinear
	case fromDist >= -IncidenceEpsilon && toDist >= -IncidenceEpsilon:
		if math.Abs(fromDist) < IncidenceEpsilon || math.Abs(toDist) < IncidenceEpsilon {
			return RightIntercept
		}
		return Right
	case fromDist <= IncidenceEpsilon && toDist <= IncidenceEpsilon:
		if fromDist > -IncidenceEpsilon || toDist > -IncidenceEpsilon {
			return LeftIntercept
		}
		return Left
	default:
		return Intersects
	}
}

// BoxOnSide is a three-valued point-box test against this side's line,
// matching vanilla fixed-point-compatible semantics for limited box
// extents: -1 entirely left, +1 entirely right, 0 straddles.
func (side *Side) BoxOnSide(box mesh.Box) int {
	corners := [4]mesh.Point{
		{X: box.Min.X, Y: box.Min.Y},
		{X: box.Max.X, Y: box.Min.Y},
		{X: box.Min.X, Y: box.Max.Y},
		{X: box.Max.X, Y: box.Max.Y},
	}
	from := side.Segment.fromPos()
	dir := side.Segment.Dir
	length := side.Segment.Length

	sawLeft, sawRight := false, false
	for _, c := range corners {
		d := perpDistance(from, dir, length, c)
		switch {
		case d < -IncidenceEpsilon:
			sawLeft = true
		case d > IncidenceEpsilon:
			sawRight = true
		default:
			sawLeft, sawRight = true, true
		}
	}
	switch {
	case sawLeft && sawRight:
		return 0
	case sawRight:
		return 1
	default:
		return -1
	}
}
