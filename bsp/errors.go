package bsp

import "errors"

var (
	// ErrDuplicateLine indicates two input lines share the same stored
	// index — unsortable, ambiguous input.
	ErrDuplicateLine = errors.New("bsp: duplicate line index in input")
	// ErrZeroLengthLine indicates an input line's two endpoints coincide.
	ErrZeroLengthLine = errors.New("bsp: input line has zero length")
)
