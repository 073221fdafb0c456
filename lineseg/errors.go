package lineseg

import "errors"

var (
	// ErrZeroLength indicates a segment was constructed or would be
	// constructed between two coincident vertices.
	ErrZeroLength = errors.New("lineseg: segment has zero length")
)
