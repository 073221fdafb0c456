package bsp

import (
	"github.com/bloodmagesoftware/bsplevel/lineseg"
	"github.com/bloodmagesoftware/bsplevel/mesh"
)

// Line is one input map line: two endpoints (by coordinate — callers
// sharing a vertex across lines get it deduplicated into one mesh
// vertex by Build), front/back sector attribution, a stored index used
// for every deterministic sort/tiebreak in the builder, and the
// deprecated-but-still-honored BSP window sector hint.
type Line struct {
	Index int
	From  mesh.Point
	To    mesh.Point

	FrontSector lineseg.SectorID
	BackSector  lineseg.SectorID // lineseg.NoSector if one-sided

	// BSPWindowSector, when set (!= lineseg.NoSector) on a one-sided
	// line, is substituted for BackSector during initial segmentation
	// only — a compatibility construct prebuilt maps may still rely on.
	BSPWindowSector lineseg.SectorID
}

func (l Line) backSectorForSegmentation() lineseg.SectorID {
	if l.BackSector == lineseg.NoSector && l.BSPWindowSector != lineseg.NoSector {
		return l.BSPWindowSector
	}
	return l.BackSector
}

func (l Line) selfReferencing() bool {
	return l.FrontSector != lineseg.NoSector && l.FrontSector == l.BackSector
}

// BspElement is either a *BspNode or a *BspLeaf.
type BspElement interface {
	isBspElement()
}

// BspNode is an internal partition node: the partition line (as an
// origin point + direction vector) and its two children, ordered Right
// then Left — Right is the half in front of the partition when oriented
// along its direction vector.
type BspNode struct {
	Origin mesh.Point
	Dir    mesh.Point
	Right  BspElement
	Left   BspElement
}

func (*BspNode) isBspElement() {}

// BspLeaf is a terminal convex subspace: its DCEL face (if it has one),
// any extra discordant-continuity meshes/faces, and its attributed
// sector.
type BspLeaf struct {
	HasFace bool
	Face    mesh.FaceID

	ExtraMeshes []*mesh.Mesh
	ExtraFaces  []mesh.FaceID

	Sector lineseg.SectorID
}

func (*BspLeaf) isBspElement() {}

// UnclosedSectorEvent is the non-fatal map-quality warning emitted when
// a gap along a partition cannot be closed unambiguously.
type UnclosedSectorEvent struct {
	Sector lineseg.SectorID
	Point  mesh.Point
}

// Options configures a Build call.
type Options struct {
	// SplitCostFactor weights the split-count term of the partition cost
	// function. Zero means evaluator.DefaultSplitCostFactor.
	SplitCostFactor int
	// OnUnclosedSector, if non-nil, is called once per unclosed-sector
	// gap found while closing partition spans. The build continues
	// regardless of what this callback does.
	OnUnclosedSector func(UnclosedSectorEvent)
}
