// Package bsp orchestrates recursive BSP subdivision: it owns the input
// segments, the half-plane, the per-node block trees and the per-vertex
// edge tip sets, and drives PartitionEvaluator/ConvexSubspaceProxy to
// produce the final BspTree and DCEL mesh. This is the Partitioner of
// spec.md §4.8.
package bsp

import (
	"fmt"
	"math"
	"sort"

	"github.com/bloodmagesoftware/bsplevel/blocktree"
	"github.com/bloodmagesoftware/bsplevel/edgetip"
	"github.com/bloodmagesoftware/bsplevel/evaluator"
	"github.com/bloodmagesoftware/bsplevel/hplane"
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
	"github.com/bloodmagesoftware/bsplevel/subspace"
)

type partitioner struct {
	m    *mesh.Mesh
	opts Options
	eval *evaluator.Evaluator
	hp   *hplane.HPlane
	tips *edgetip.Map

	vertexCache map[[2]float64]mesh.VertexID
	proxies     []*subspace.Proxy
	leaves      []*BspLeaf
	geometries  []subspace.Geometry
	nextIndex   int
}

// Build is the builder's sole entry point: a pure function from (lines,
// mesh, options) to (tree, mesh'), matching Partitioner::makeBspTree.
func Build(lines []Line, m *mesh.Mesh, opts Options) (BspElement, error) {
	if opts.SplitCostFactor == 0 {
		opts.SplitCostFactor = evaluator.DefaultSplitCostFactor
	}

	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Index == sorted[i-1].Index {
			return nil, fmt.Errorf("line index %d: %w", sorted[i].Index, ErrDuplicateLine)
		}
	}

	p := &partitioner{
		m:           m,
		opts:        opts,
		eval:        evaluator.New(opts.SplitCostFactor),
		hp:          hplane.New(),
		tips:        edgetip.NewMap(),
		vertexCache: make(map[[2]float64]mesh.VertexID),
	}
	if len(sorted) > 0 {
		p.nextIndex = sorted[len(sorted)-1].Index + 1
	}

	root, err := p.createInitialLineSegments(sorted)
	if err != nil {
		return nil, err
	}

	elem, err := p.partitionSpace(root, root.Root())
	if err != nil {
		return nil, err
	}

	if err := p.buildSubspaceGeometries(); err != nil {
		return nil, err
	}
	p.closeTwins()
	p.finalizeLeaves()

	return elem, nil
}

func (p *partitioner) getOrCreateVertex(pt mesh.Point) mesh.VertexID {
	key := [2]float64{pt.X, pt.Y}
	if v, ok := p.vertexCache[key]; ok {
		return v
	}
	v := p.m.NewVertex(pt)
	p.vertexCache[key] = v
	return v
}

// createInitialLineSegments builds one Segment per input line, links
// sides with a sector into the root block tree, and seeds EdgeTips at
// both endpoints. The BSP-window sector hint is substituted for a null
// back sector here and only here.
func (p *partitioner) createInitialLineSegments(lines []Line) (*blocktree.Tree, error) {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := math.MinInt, math.MinInt
	for _, l := range lines {
		for _, pt := range [2]mesh.Point{l.From, l.To} {
			minX, maxX = min(minX, int(math.Floor(pt.X))), max(maxX, int(math.Ceil(pt.X)))
			minY, maxY = min(minY, int(math.Floor(pt.Y))), max(maxY, int(math.Ceil(pt.Y)))
		}
	}
	if len(lines) == 0 {
		minX, minY, maxX, maxY = 0, 0, 0, 0
	}
	bounds := blocktree.BlockmapBounds(blocktree.Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY})
	tree := blocktree.New(bounds)

	for _, l := range lines {
		if l.From == l.To {
			return nil, fmt.Errorf("line %d: %w", l.Index, ErrZeroLengthLine)
		}
		fromV := p.getOrCreateVertex(l.From)
		toV := p.getOrCreateVertex(l.To)
		backSector := l.backSectorForSegmentation()

		seg, err := lineseg.New(p.m, l.Index, fromV, toV, l.FrontSector, backSector)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", l.Index, err)
		}
		mapLine := &lineseg.MapLine{
			Index:           l.Index,
			FrontSector:     l.FrontSector,
			BackSector:      backSector,
			SelfReferencing: l.selfReferencing(),
			Length:          seg.Length,
			From:            l.From,
		}
		seg.Front.SetMapLine(mapLine)
		seg.Back.SetMapLine(mapLine)

		if seg.Front.Sector != lineseg.NoSector {
			tree.Link(tree.Root(), seg.Front)
		}
		if seg.Back.Sector != lineseg.NoSector {
			tree.Link(tree.Root(), seg.Back)
		}

		p.insertForwardTip(seg)
		p.insertReverseTip(seg)
	}
	return tree, nil
}

func (p *partitioner) insertForwardTip(seg *lineseg.Segment) {
	p.tips.At(int(seg.From)).Insert(edgetip.Tip{Angle: seg.Angle, FrontSide: seg.Front, BackSide: seg.Back})
}

func (p *partitioner) insertReverseTip(seg *lineseg.Segment) {
	angle := math.Mod(seg.Angle+180, 360)
	p.tips.At(int(seg.To)).Insert(edgetip.Tip{Angle: angle, FrontSide: seg.Back, BackSide: seg.Front})
}

// partitionSpace recursively subdivides the segments held in tree's
// subtree rooted at node, returning the resulting subtree (nil if the
// node held no segments — a degenerate collapse, not an error).
func (p *partitioner) partitionSpace(tree *blocktree.Tree, node blocktree.NodeID) (BspElement, error) {
	segs := tree.Drain(node)
	if len(segs) == 0 {
		return nil, nil
	}

	cand := p.eval.Choose(segs)
	if cand == nil {
		proxy := subspace.New()
		proxy.AddSegments(segs)
		for _, s := range segs {
			s.Subspace = len(p.proxies)
		}
		p.proxies = append(p.proxies, proxy)
		leaf := &BspLeaf{Sector: lineseg.NoSector}
		p.leaves = append(p.leaves, leaf)
		return leaf, nil
	}

	p.hp.Configure(cand)
	origin, dir := p.hp.Origin, p.hp.Dir

	rightTree := blocktree.New(tree.Box(node))
	leftTree := blocktree.New(tree.Box(node))

	if err := p.divideSegments(segs, rightTree, leftTree); err != nil {
		return nil, err
	}
	p.addPartitionLineSegments(rightTree, leftTree)

	if rightTree.SegmentCount(rightTree.Root()) == 0 || leftTree.SegmentCount(leftTree.Root()) == 0 {
		// cand had nothing left to separate from — every side landed on
		// one tree (a lone wall, or a self-referencing line's two
		// collinear sides once nothing else remains to compare against).
		// Recursing would hand partitionSpace the same set again and
		// never terminate, so this is already a leaf.
		remainder := append(rightTree.Drain(rightTree.Root()), leftTree.Drain(leftTree.Root())...)
		proxy := subspace.New()
		proxy.AddSegments(remainder)
		for _, s := range remainder {
			s.Subspace = len(p.proxies)
		}
		p.proxies = append(p.proxies, proxy)
		leaf := &BspLeaf{Sector: lineseg.NoSector}
		p.leaves = append(p.leaves, leaf)
		return leaf, nil
	}

	rightElem, err := p.partitionSpace(rightTree, rightTree.Root())
	if err != nil {
		return nil, err
	}
	leftElem, err := p.partitionSpace(leftTree, leftTree.Root())
	if err != nil {
		return nil, err
	}

	switch {
	case rightElem == nil:
		return leftElem, nil
	case leftElem == nil:
		return rightElem, nil
	default:
		return &BspNode{Origin: origin, Dir: dir, Right: rightElem, Left: leftElem}, nil
	}
}

// divideSegments dispatches every drained side to divideOneSegment. The
// drain itself (tree.Drain) is the pre-order, explicit-stack traversal;
// dispatch here is a flat loop over the drained slice.
func (p *partitioner) divideSegments(segs []*lineseg.Side, rightTree, leftTree *blocktree.Tree) error {
	for _, side := range segs {
		if side == p.hp.Source {
			// the partition's own source side is never re-classified
			// against itself.
			rightTree.Link(rightTree.Root(), side)
			continue
		}
		if err := p.divideOneSegment(side, rightTree, leftTree); err != nil {
			return err
		}
	}
	return nil
}

func (p *partitioner) divideOneSegment(side *lineseg.Side, rightTree, leftTree *blocktree.Tree) error {
	rel, fromDist, toDist := side.Relationship(p.hp.Source)

	switch rel {
	case lineseg.Collinear:
		p.hp.Intercept(side, lineseg.From, p.tips.At(int(side.Vertex(lineseg.From))))
		p.hp.Intercept(side, lineseg.To, p.tips.At(int(side.Vertex(lineseg.To))))
		dot := side.Segment.Dir.X*p.hp.Dir.X + side.Segment.Dir.Y*p.hp.Dir.Y
		if dot < 0 {
			leftTree.Link(leftTree.Root(), side)
		} else {
			rightTree.Link(rightTree.Root(), side)
		}
		return nil

	case lineseg.Right, lineseg.RightIntercept:
		p.interceptNearerEndpoint(side, fromDist, toDist)
		rightTree.Link(rightTree.Root(), side)
		return nil

	case lineseg.Left, lineseg.LeftIntercept:
		p.interceptNearerEndpoint(side, fromDist, toDist)
		leftTree.Link(leftTree.Root(), side)
		return nil

	case lineseg.Intersects:
		point := intersectionPoint(p.hp, side.Segment)
		newSeg, err := p.splitLineSegment(side.Segment, point)
		if err != nil {
			return err
		}
		p.hp.Intercept(side, lineseg.To, p.tips.At(int(side.Vertex(lineseg.To))))

		for _, half := range [2]*lineseg.Segment{side.Segment, newSeg} {
			frontSide := half.Front
			hrel, _, _ := frontSide.Relationship(p.hp.Source)
			switch hrel {
			case lineseg.Left, lineseg.LeftIntercept, lineseg.Collinear:
				if frontSide.Sector != lineseg.NoSector {
					leftTree.Link(leftTree.Root(), frontSide)
				}
				if half.Back.Sector != lineseg.NoSector {
					leftTree.Link(leftTree.Root(), half.Back)
				}
			default:
				if frontSide.Sector != lineseg.NoSector {
					rightTree.Link(rightTree.Root(), frontSide)
				}
				if half.Back.Sector != lineseg.NoSector {
					rightTree.Link(rightTree.Root(), half.Back)
				}
			}
		}
		return nil

	default:
		return nil
	}
}

func (p *partitioner) interceptNearerEndpoint(side *lineseg.Side, fromDist, toDist float64) {
	if math.Abs(fromDist) <= math.Abs(toDist) {
		p.hp.Intercept(side, lineseg.From, p.tips.At(int(side.Vertex(lineseg.From))))
	} else {
		p.hp.Intercept(side, lineseg.To, p.tips.At(int(side.Vertex(lineseg.To))))
	}
}

// intersectionPoint solves for the point where seg crosses the
// half-plane's partition line. Horizontal/vertical partition crossed by
// a vertical/horizontal segment is solved with the exact axis-aligned
// formula instead of the general parametric one, matching what the
// distance functions already assume and avoiding FP drift on the grid
// axes most map geometry is built on. Intersects classification already
// guarantees the two lines are not parallel.
func intersectionPoint(hp *hplane.HPlane, seg *lineseg.Segment) mesh.Point {
	p1, d1 := hp.Origin, hp.Dir
	p2, d2 := seg.FromPos(), seg.Dir

	switch {
	case d1.Y == 0 && d2.X == 0:
		// Horizontal partition, vertical segment.
		return mesh.Point{X: p2.X, Y: p1.Y}
	case d1.X == 0 && d2.Y == 0:
		// Vertical partition, horizontal segment.
		return mesh.Point{X: p1.X, Y: p2.Y}
	default:
		denom := d1.X*d2.Y - d1.Y*d2.X
		u := ((p2.X-p1.X)*d2.Y - (p2.Y-p1.Y)*d2.X) / denom
		return mesh.Point{X: p1.X + d1.X*u, Y: p1.Y + d1.Y*u}
	}
}

// splitLineSegment cuts seg at point: seg is shortened in place (its To
// vertex replaced) and a new segment is returned running from the split
// vertex to seg's original To. Neighbor links and EdgeTips are
// propagated/refreshed for both halves.
func (p *partitioner) splitLineSegment(seg *lineseg.Segment, point mesh.Point) (*lineseg.Segment, error) {
	newSeg, oldTo, err := p.splitLineSegmentLinks(seg, point)
	if err != nil {
		return nil, err
	}

	p.tips.At(int(oldTo)).ClearByLineSegment(seg)
	if err := seg.ReplaceVertex(lineseg.To, newSeg.From); err != nil {
		return nil, err
	}
	p.insertReverseTip(seg)
	p.insertForwardTip(newSeg)
	p.insertReverseTip(newSeg)

	return newSeg, nil
}

// splitOverlappingSegment cuts seg at point the same way splitLineSegment
// does, but leaves EdgeTips untouched: this runs after all partitioning
// and gap-closing is finished, so no later step still consults them.
func (p *partitioner) splitOverlappingSegment(seg *lineseg.Segment, point mesh.Point) (*lineseg.Segment, error) {
	newSeg, _, err := p.splitLineSegmentLinks(seg, point)
	if err != nil {
		return nil, err
	}
	if err := seg.ReplaceVertex(lineseg.To, newSeg.From); err != nil {
		return nil, err
	}
	return newSeg, nil
}

// splitLineSegmentLinks does the shared vertex/neighbor-link wiring for
// a split, without touching EdgeTips or seg's own To vertex.
func (p *partitioner) splitLineSegmentLinks(seg *lineseg.Segment, point mesh.Point) (newSeg *lineseg.Segment, oldTo mesh.VertexID, err error) {
	newV := p.getOrCreateVertex(point)
	oldTo = seg.To

	newSeg, err = lineseg.New(p.m, seg.Index, newV, oldTo, seg.Front.Sector, seg.Back.Sector)
	if err != nil {
		return nil, oldTo, err
	}
	newSeg.Front.SetMapLine(seg.Front.MapLine)
	newSeg.Back.SetMapLine(seg.Back.MapLine)
	newSeg.Front.PartitionMapLine = seg.Front.PartitionMapLine
	newSeg.Back.PartitionMapLine = seg.Back.PartitionMapLine

	if seg.Front.Right != nil {
		newSeg.Front.Right = seg.Front.Right
		seg.Front.Right.Left = newSeg.Front
	}
	seg.Front.Right = newSeg.Front
	newSeg.Front.Left = seg.Front

	if seg.Back.Left != nil {
		newSeg.Back.Left = seg.Back.Left
		seg.Back.Left.Right = newSeg.Back
	}
	seg.Back.Left = newSeg.Back
	newSeg.Back.Right = seg.Back

	return newSeg, oldTo, nil
}

// addPartitionLineSegments sorts and merges the half-plane's intercepts,
// then walks consecutive pairs synthesizing segments that close open
// spans along the partition.
func (p *partitioner) addPartitionLineSegments(rightTree, leftTree *blocktree.Tree) {
	p.hp.SortAndMergeIntercepts()
	intercepts := p.hp.Intercepts()

	var sourceNear, sourceFar float64
	hasSource := p.hp.Source != nil
	if hasSource {
		d1 := p.hp.Intersect(p.hp.Source, lineseg.From)
		d2 := p.hp.Intersect(p.hp.Source, lineseg.To)
		sourceNear, sourceFar = math.Min(d1, d2), math.Max(d1, d2)
	}

	for i := 0; i+1 < len(intercepts); i++ {
		cur, next := intercepts[i], intercepts[i+1]

		if hasSource && cur.Distance >= sourceNear-hplane.MergeDistanceEpsilon && next.Distance <= sourceFar+hplane.MergeDistanceEpsilon {
			continue
		}
		if cur.After == lineseg.NoSector && next.Before == lineseg.NoSector {
			continue
		}

		sector, ok := resolveGapSector(cur, next)
		if !ok {
			mid := (cur.Distance + next.Distance) / 2
			notifySector := cur.After
			if notifySector == lineseg.NoSector {
				notifySector = next.Before
			}
			if p.opts.OnUnclosedSector != nil {
				p.opts.OnUnclosedSector(UnclosedSectorEvent{Sector: notifySector, Point: p.pointAlongPartition(mid)})
			}
			continue
		}

		// One side of the gap carries no sector at all: sector was
		// guessed from whichever side had one, so flag it rather than
		// close it silently.
		if cur.After == lineseg.NoSector || next.Before == lineseg.NoSector {
			if p.opts.OnUnclosedSector != nil {
				mid := (cur.Distance + next.Distance) / 2
				p.opts.OnUnclosedSector(UnclosedSectorEvent{Sector: sector, Point: p.pointAlongPartition(mid)})
			}
		}

		fromV := cur.Vertex()
		toV := next.Vertex()
		newSeg, err := lineseg.New(p.m, p.nextSegmentIndex(), fromV, toV, sector, sector)
		if err != nil {
			continue // zero-length span: nothing to close
		}
		var partLine *lineseg.MapLine
		if p.hp.Source != nil {
			partLine = p.hp.Source.MapLine
		}
		newSeg.Front.PartitionMapLine = partLine
		newSeg.Back.PartitionMapLine = partLine

		rightTree.Link(rightTree.Root(), newSeg.Front)
		leftTree.Link(leftTree.Root(), newSeg.Back)

		p.insertForwardTip(newSeg)
		p.insertReverseTip(newSeg)
	}
}

// resolveGapSector picks the sector to attribute to a synthesized
// segment closing the gap between two intercepts: cur.After is
// preferred, else next.Before when cur has none; when both exist but
// disagree, the non-self-referencing line's sector is preferred (a
// self-referencing line's attribution is definitionally ambiguous about
// which side of itself is "outside").
func resolveGapSector(cur, next hplane.Intercept) (lineseg.SectorID, bool) {
	switch {
	case cur.After != lineseg.NoSector && next.Before != lineseg.NoSector && cur.After == next.Before:
		return cur.After, true
	case cur.After != lineseg.NoSector && next.Before == lineseg.NoSector:
		return cur.After, true
	case cur.After == lineseg.NoSector && next.Before != lineseg.NoSector:
		return next.Before, true
	case cur.After != lineseg.NoSector && next.Before != lineseg.NoSector:
		if cur.AfterLine == nil || !cur.AfterLine.IsSelfReferencing() {
			return cur.After, true
		}
		if next.BeforeLine == nil || !next.BeforeLine.IsSelfReferencing() {
			return next.Before, true
		}
		return cur.After, true
	default:
		return lineseg.NoSector, false
	}
}

func (p *partitioner) pointAlongPartition(dist float64) mesh.Point {
	length := math.Hypot(p.hp.Dir.X, p.hp.Dir.Y)
	if length == 0 {
		return p.hp.Origin
	}
	unit := mesh.Point{X: p.hp.Dir.X / length, Y: p.hp.Dir.Y / length}
	return p.hp.Origin.Add(unit.Scale(dist))
}

func (p *partitioner) nextSegmentIndex() int {
	idx := p.nextIndex
	p.nextIndex++
	return idx
}

// buildSubspaceGeometries runs ConvexSubspaceProxy.BuildGeometry for
// every accumulated leaf proxy, after splitOverlappingSegments has
// resolved any boundary overlap.
func (p *partitioner) buildSubspaceGeometries() error {
	p.splitOverlappingSegments()

	for i, proxy := range p.proxies {
		geo, err := proxy.BuildGeometry(p.m)
		if err != nil {
			return fmt.Errorf("subspace %d: %w", i, err)
		}
		p.geometries = append(p.geometries, geo)
	}
	return nil
}

// splitOverlappingSegments ensures no leaf's boundary contains a
// proper-superset overlap: for each run of segments sharing the same
// fromAngle within a proxy, the longer of any pair is split at the
// shorter's To vertex. EdgeTips are intentionally not refreshed here —
// this pass runs after all partitioning is complete.
func (p *partitioner) splitOverlappingSegments() {
	for _, proxy := range p.proxies {
		ordered := proxy.OrderedSegments()
		for i := 0; i < len(ordered); i++ {
			for j := i + 1; j < len(ordered); j++ {
				if math.Abs(ordered[i].FromAngle-ordered[j].FromAngle) > 1e-9 {
					break
				}
				a, b := ordered[i].Side, ordered[j].Side
				longer, shorter := a, b
				if b.Segment.Length > a.Segment.Length {
					longer, shorter = b, a
				}
				if longer.Segment.Length <= shorter.Segment.Length {
					continue
				}
				_, _ = p.splitOverlappingSegment(longer.Segment, shorter.Segment.ToPos())
			}
		}
	}
}

// finalizeLeaves copies each proxy's built Geometry into its
// corresponding BspLeaf, which was created (face-less) while the tree
// was still being partitioned.
func (p *partitioner) finalizeLeaves() {
	for i, geo := range p.geometries {
		leaf := p.leaves[i]
		leaf.HasFace = geo.HasPrimaryFace
		leaf.Face = geo.PrimaryFace
		leaf.ExtraMeshes = geo.ExtraMeshes
		leaf.ExtraFaces = geo.ExtraFaces
		leaf.Sector = geo.Sector
	}
}

// closeTwins allocates a back half-edge, in the same mesh as the front,
// for every segment side whose front side has a half-edge and whose
// back does not — a final pass separate from per-leaf geometry
// construction because discordant "extra mesh" geometry can still be
// creating back-side half-edges out of leaf order.
func (p *partitioner) closeTwins() {
	seen := make(map[*lineseg.Segment]bool)
	for _, proxy := range p.proxies {
		for _, side := range proxy.Segments() {
			seg := side.Segment
			if seen[seg] {
				continue
			}
			seen[seg] = true
			front, back := seg.Front, seg.Back
			if front.HalfEdge != mesh.NoHalfEdge && back.HalfEdge == mesh.NoHalfEdge {
				he := p.m.NewHEdge(back.Vertex(lineseg.From))
				back.HalfEdge = he
				p.m.LinkTwins(front.HalfEdge, he)
			} else if back.HalfEdge != mesh.NoHalfEdge && front.HalfEdge == mesh.NoHalfEdge {
				he := p.m.NewHEdge(front.Vertex(lineseg.From))
				front.HalfEdge = he
				p.m.LinkTwins(back.HalfEdge, he)
			}
		}
	}
}
