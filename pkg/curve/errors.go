package curve

import "errors"

// Curve errors.
var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrParamOutOfRange = errors.New("curve parameter outside [0,1]")
	ErrTooFewAnchors   = errors.New("too few anchors")
	ErrCyclicSplit     = errors.New("cannot split a cyclic curve")
)
