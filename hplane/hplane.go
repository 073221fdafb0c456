// Package hplane implements the current partition half-plane: the
// partition line itself plus the sorted list of intercepts where
// existing segments cross it, used while dividing a BlockTree node's
// segments during recursive BSP subdivision.
package hplane

import (
	"math"
	"sort"

	"github.com/bloodmagesoftware/bsplevel/edgetip"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

// MergeDistanceEpsilon: two intercepts whose distance delta is within
// this bound are merged by SortAndMergeIntercepts.
const MergeDistanceEpsilon = 1.0 / 128

// Intercept is a point where an existing segment crosses the partition.
type Intercept struct {
	Distance float64
	Seg      *lineseg.Side
	Edge     lineseg.Edge

	Before, After lineseg.SectorID
	// BeforeLine/AfterLine hold the neighboring segment sides resolved
	// alongside Before/After, for self-referencing preference decisions.
	BeforeLine, AfterLine *lineseg.Side
}

func (ic Intercept) LineSegment() *lineseg.Side { return ic.Seg }
func (ic Intercept) LineSegmentEdge() lineseg.Edge { return ic.Edge }
func (ic Intercept) Vertex() mesh.VertexID { return ic.Seg.Vertex(ic.Edge) }

// IsSelfReferencing reports whether the intercepted segment's map line
// is self-referencing.
func (ic Intercept) IsSelfReferencing() bool { return ic.Seg.IsSelfReferencing() }

// HPlane is the current partition: an origin point, a direction vector
// derived from a source side (or synthetic), and the intercepts found
// against it so far.
type HPlane struct {
	Origin    mesh.Point
	Dir       mesh.Point
	SlopeType lineseg.SlopeType
	Source    *lineseg.Side // nil for a synthetic partition

	intercepts []Intercept
	seen       map[interceptKey]bool
}

type interceptKey struct {
	seg  *lineseg.Side
	edge lineseg.Edge
}

// New returns an unconfigured half-plane.
func New() *HPlane {
	return &HPlane{seen: make(map[interceptKey]bool)}
}

// Configure snapshots direction, origin, slope type and source side from
// newLineSeg, clearing any prior intercepts.
func (h *HPlane) Configure(newLineSeg *lineseg.Side) {
	seg := newLineSeg.Segment
	h.Origin = seg.FromPos()
	h.Dir = seg.Dir
	h.SlopeType = seg.SlopeType
	h.Source = newLineSeg
	h.ClearIntercepts()
}

// ClearIntercepts empties the intercept list.
func (h *HPlane) ClearIntercepts() {
	h.intercepts = nil
	h.seen = make(map[interceptKey]bool)
}

// Angle returns the world angle of the partition's direction, in
// degrees.
func (h *HPlane) Angle() float64 {
	return math.Mod(math.Atan2(h.Dir.Y, h.Dir.X)*180/math.Pi+360, 360)
}

// InverseAngle returns the partition angle rotated 180 degrees.
func (h *HPlane) InverseAngle() float64 {
	return math.Mod(h.Angle()+180, 360)
}

// Intersect computes the parallel distance from the partition origin to
// the endpoint of seg identified by edge, along the half-plane's
// direction. Horizontal x vertical special cases return exact
// axis-aligned intersections to avoid floating-point drift.
func (h *HPlane) Intersect(seg *lineseg.Side, edge lineseg.Edge) float64 {
	p := seg.Segment.Pos(edge)

	switch {
	case h.SlopeType == lineseg.SlopeHorizontal:
		if h.Dir.X < 0 {
			return h.Origin.X - p.X
		}
		return p.X - h.Origin.X
	case h.SlopeType == lineseg.SlopeVertical:
		if h.Dir.Y < 0 {
			return h.Origin.Y - p.Y
		}
		return p.Y - h.Origin.Y
	default:
		rel := p.Sub(h.Origin)
		return (rel.X*h.Dir.X + rel.Y*h.Dir.Y) / math.Hypot(h.Dir.X, h.Dir.Y)
	}
}

// Intercept creates a new intercept for (seg, edge) if one does not
// already exist, deriving Before/After sectors from the tips at the
// intersection vertex adjacent (in angular order) to the inverse
// partition angle and the partition angle. Returns nil on a duplicate.
func (h *HPlane) Intercept(seg *lineseg.Side, edge lineseg.Edge, tips *edgetip.Set) *Intercept {
	key := interceptKey{seg, edge}
	if h.seen[key] {
		return nil
	}
	h.seen[key] = true

	dist := h.Intersect(seg, edge)
	ic := Intercept{Distance: dist, Seg: seg, Edge: edge, Before: lineseg.NoSector, After: lineseg.NoSector}

	if tips != nil {
		if afterTip, ok := tips.After(h.Angle(), edgetip.AngleEpsilon); ok {
			ic.After, ic.AfterLine = sectorOfTip(afterTip)
		}
		if beforeTip, ok := tips.After(h.InverseAngle(), edgetip.AngleEpsilon); ok {
			ic.Before, ic.BeforeLine = sectorOfTip(beforeTip)
		}
	}

	h.intercepts = append(h.intercepts, ic)
	return &h.intercepts[len(h.intercepts)-1]
}

func sectorOfTip(t edgetip.Tip) (lineseg.SectorID, *lineseg.Side) {
	if t.FrontSide != nil {
		return t.FrontSide.Sector, t.FrontSide
	}
	if t.BackSide != nil {
		return t.BackSide.Sector, t.BackSide
	}
	return lineseg.NoSector, nil
}

// SortAndMergeIntercepts sorts by distance, then merges pairs within
// MergeDistanceEpsilon, keeping the earlier distance and combining their
// Before/After attributions (self-referencing sides are preferred out).
//
// The original engine's own comment calls this strategy logically
// suspect — merging at the half-plane level can drift vertices away from
// the partition and create new gaps rather than welding them — but the
// behavior is specified and preserved verbatim rather than "fixed".
func (h *HPlane) SortAndMergeIntercepts() {
	sort.SliceStable(h.intercepts, func(i, j int) bool {
		return h.intercepts[i].Distance < h.intercepts[j].Distance
	})

	merged := h.intercepts[:0]
	for _, ic := range h.intercepts {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if ic.Distance-last.Distance <= MergeDistanceEpsilon {
				combineAttribution(last, ic)
				continue
			}
		}
		merged = append(merged, ic)
	}
	h.intercepts = merged
}

func combineAttribution(dst *Intercept, src Intercept) {
	if dst.After == lineseg.NoSector || (dst.AfterLine != nil && dst.AfterLine.IsSelfReferencing() && src.AfterLine != nil && !src.AfterLine.IsSelfReferencing()) {
		if src.After != lineseg.NoSector {
			dst.After, dst.AfterLine = src.After, src.AfterLine
		}
	}
	if dst.Before == lineseg.NoSector || (dst.BeforeLine != nil && dst.BeforeLine.IsSelfReferencing() && src.BeforeLine != nil && !src.BeforeLine.IsSelfReferencing()) {
		if src.Before != lineseg.NoSector {
			dst.Before, dst.BeforeLine = src.Before, src.BeforeLine
		}
	}
}

// Intercepts returns the (possibly unsorted, if SortAndMergeIntercepts
// has not been called since the last modification) list of intercepts.
func (h *HPlane) Intercepts() []Intercept { return h.intercepts }

// InterceptCount returns the current number of intercepts.
func (h *HPlane) InterceptCount() int { return len(h.intercepts) }

// Relationship applies lineseg's epsilon-tolerant classification with
// the half-plane's source side as the reference line.
func (h *HPlane) Relationship(seg *lineseg.Side) (lineseg.LineRelationship, float64, float64) {
	return seg.Relationship(h.Source)
}

// Distance is the unoriented perpendicular-distance form used by cost
// evaluation.
func (h *HPlane) Distance(seg *lineseg.Side) (fromDist, toDist float64) {
	return seg.Distance(h.Source)
}
