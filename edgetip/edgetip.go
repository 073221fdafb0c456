// Package edgetip implements the per-vertex angularly-sorted set of
// outgoing segment orientations used to resolve which sectors lie
// immediately before and after an intersection along a partition.
package edgetip

import (
	"math"
	"sort"

	"github.com/bloodmagesoftware/bsplevel/lineseg"
)

// AngleEpsilon is the angular tolerance (in degrees) used for equality
// comparisons between edge tip angles, per spec.md §5.
const AngleEpsilon = 1.0 / 128

// Tip is one outgoing segment's orientation at a vertex: the world angle
// of the segment, and the front/back sides of the segment at that
// vertex (either may be nil if the segment is one-sided there).
type Tip struct {
	Angle     float64
	FrontSide *lineseg.Side
	BackSide  *lineseg.Side
}

// Set is the ordered (strictly ascending by Angle) collection of Tips at
// one vertex.
type Set struct {
	tips []Tip
}

// New returns an empty tip set.
func New() *Set { return &Set{} }

// Insert adds a tip, keeping the set sorted ascending by angle.
func (s *Set) Insert(t Tip) {
	i := sort.Search(len(s.tips), func(i int) bool { return s.tips[i].Angle >= t.Angle })
	s.tips = append(s.tips, Tip{})
	copy(s.tips[i+1:], s.tips[i:])
	s.tips[i] = t
}

// First returns the tip with smallest angle, and whether one exists.
func (s *Set) First() (Tip, bool) {
	if len(s.tips) == 0 {
		return Tip{}, false
	}
	return s.tips[0], true
}

// Last returns the tip with largest angle, and whether one exists.
func (s *Set) Last() (Tip, bool) {
	if len(s.tips) == 0 {
		return Tip{}, false
	}
	return s.tips[len(s.tips)-1], true
}

// Len reports the number of tips in the set.
func (s *Set) Len() int { return len(s.tips) }

// At returns the tip nearest angle within eps, or false if none is
// within tolerance.
func (s *Set) At(angle, eps float64) (Tip, bool) {
	var best Tip
	var bestDelta float64
	found := false
	for _, t := range s.tips {
		d := math.Abs(angleDelta(t.Angle, angle))
		if d <= eps && (!found || d < bestDelta) {
			best, bestDelta, found = t, d, true
		}
	}
	return best, found
}

// After returns the smallest tip whose angle is strictly greater than
// angle (beyond eps), or false if no such tip exists.
func (s *Set) After(angle, eps float64) (Tip, bool) {
	for _, t := range s.tips {
		if t.Angle > angle+eps {
			return t, true
		}
	}
	return Tip{}, false
}

// ClearByLineSegment removes every tip whose front or back side
// references any side of seg.
func (s *Set) ClearByLineSegment(seg *lineseg.Segment) {
	out := s.tips[:0]
	for _, t := range s.tips {
		if sideBelongsTo(t.FrontSide, seg) || sideBelongsTo(t.BackSide, seg) {
			continue
		}
		out = append(out, t)
	}
	s.tips = out
}

func sideBelongsTo(side *lineseg.Side, seg *lineseg.Segment) bool {
	return side != nil && side.Segment == seg
}

func angleDelta(a, b float64) float64 {
	d := math.Mod(a-b+540, 360) - 180
	return d
}

// Map owns one Set per vertex, indexed by mesh.VertexID converted to int
// by the caller (kept as a plain map to avoid this package depending on
// mesh for the handle type).
type Map struct {
	sets map[int]*Set
}

// NewMap returns an empty per-vertex tip map.
func NewMap() *Map { return &Map{sets: make(map[int]*Set)} }

// At returns (creating if necessary) the tip set for vertex v.
func (m *Map) At(v int) *Set {
	s, ok := m.sets[v]
	if !ok {
		s = New()
		m.sets[v] = s
	}
	return s
}

// Vertices returns the sorted list of vertex handles that currently have
// a non-empty tip set, for deterministic iteration.
func (m *Map) Vertices() []int {
	out := make([]int, 0, len(m.sets))
	for v, s := range m.sets {
		if len(s.tips) > 0 {
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
