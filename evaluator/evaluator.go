// Package evaluator implements PartitionEvaluator: the cost function
// that scores candidate partition segments by balance and split count,
// used by the Partitioner to choose the next partition at each level of
// recursive subdivision.
package evaluator

import (
	"math"

	"github.com/bloodmagesoftware/bsplevel/lineseg"
)

// DefaultSplitCostFactor is the default weight applied to the split
// count term of the cost formula.
const DefaultSplitCostFactor = 7

// Evaluator scores candidate partitions within a fixed set of sides.
type Evaluator struct {
	SplitCostFactor int
}

// New returns an evaluator with the given split-cost factor.
func New(splitCostFactor int) *Evaluator {
	return &Evaluator{SplitCostFactor: splitCostFactor}
}

// Choose scores every map-originated side in candidates (synthesized
// partition sides are never themselves considered) against the rest of
// the set, and returns the minimum-cost candidate. Returns nil if no
// map-originated candidate exists — the caller should then make the set
// a leaf.
func (e *Evaluator) Choose(candidates []*lineseg.Side) *lineseg.Side {
	var best *lineseg.Side
	bestCost := math.MaxFloat64

	for _, cand := range candidates {
		if cand.MapLine == nil {
			continue
		}
		cost := e.cost(cand, candidates)
		if cost < bestCost || (cost == bestCost && best != nil && cand.Segment.Index < best.Segment.Index) {
			best = cand
			bestCost = cost
		}
	}
	return best
}

func (e *Evaluator) cost(cand *lineseg.Side, all []*lineseg.Side) float64 {
	var right, left, split int
	var penalty float64

	for _, other := range all {
		if other == cand {
			continue
		}
		rel, fromDist, toDist := other.Relationship(cand)
		switch rel {
		case lineseg.Collinear:
			// no cost
		case lineseg.Right, lineseg.RightIntercept:
			right++
		case lineseg.Left, lineseg.LeftIntercept:
			left++
		case lineseg.Intersects:
			split++
			penalty += shortSplitPenalty(other, fromDist, toDist)
		}
	}

	imbalance := math.Abs(float64(right - left))
	return imbalance + float64(split)*float64(e.SplitCostFactor) + penalty
}

// shortSplitPenalty adds a penalty when the fragment the split would
// produce on either side of the partition is shorter than
// lineseg.ShortSplitThreshold.
func shortSplitPenalty(side *lineseg.Side, fromDist, toDist float64) float64 {
	length := side.Segment.Length
	// Approximate fragment lengths either side of the intersection by
	// projecting the distances proportionally along the segment.
	total := math.Abs(fromDist) + math.Abs(toDist)
	if total == 0 {
		return 0
	}
	nearFrag := length * math.Abs(fromDist) / total
	farFrag := length - nearFrag

	var penalty float64
	if nearFrag < lineseg.ShortSplitThreshold {
		penalty++
	}
	if farFrag < lineseg.ShortSplitThreshold {
		penalty++
	}
	return penalty
}
