package subspace

import "errors"

var (
	// ErrNoMapSegment indicates a subspace with 3 or more segments but no
	// map-originated segment — a structural invariant violation.
	ErrNoMapSegment = errors.New("subspace: convex subspace has segments but no map-originated segment")
)
