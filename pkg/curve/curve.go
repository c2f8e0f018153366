// Package curve models an ordered sequence of anchor points forming a
// piecewise cubic Bezier path, plus the index-range descriptors that
// reference it.
package curve

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// Anchor is a curve control point. Tangent offsets are relative to Position.
type Anchor struct {
	Position     math.Vec3 `yaml:"position"`
	LeftTangent  math.Vec3 `yaml:"left_tangent"`
	RightTangent math.Vec3 `yaml:"right_tangent"`
}

// LeftControl returns the world position of the left control point.
func (a Anchor) LeftControl() math.Vec3 {
	return a.Position.Add(a.LeftTangent)
}

// RightControl returns the world position of the right control point.
func (a Anchor) RightControl() math.Vec3 {
	return a.Position.Add(a.RightTangent)
}

// Curve owns the anchor arena. Anchors are addressed by their index; the
// intervals attached to a curve are kept consistent through every mutation.
type Curve struct {
	anchors   []Anchor
	cyclic    bool
	intervals []*Interval
}

// New creates a non-cyclic curve from the given anchors.
func New(anchors ...Anchor) *Curve {
	c := &Curve{anchors: make([]Anchor, len(anchors))}
	copy(c.anchors, anchors)
	return c
}

// Straight builds a curve through points with tangents pointing a third of
// the way to each neighbour, so every segment is a straight line.
func Straight(points ...math.Vec3) *Curve {
	anchors := make([]Anchor, len(points))
	for i, p := range points {
		anchors[i].Position = p
		if i > 0 {
			anchors[i].LeftTangent = points[i-1].Sub(p).Scale(1.0 / 3)
		}
		if i < len(points)-1 {
			anchors[i].RightTangent = points[i+1].Sub(p).Scale(1.0 / 3)
		}
	}
	return New(anchors...)
}

// Len returns the number of anchors.
func (c *Curve) Len() int {
	return len(c.anchors)
}

// Cyclic reports whether the last anchor connects back to the first.
func (c *Curve) Cyclic() bool {
	return c.cyclic
}

// SetCyclic toggles wrap-around. A cyclic curve needs at least three anchors.
func (c *Curve) SetCyclic(cyclic bool) error {
	if cyclic && len(c.anchors) < 3 {
		return fmt.Errorf("%w: cyclic curve needs 3, have %d", ErrTooFewAnchors, len(c.anchors))
	}
	c.cyclic = cyclic
	c.clampIntervals()
	return nil
}

// Anchor returns the anchor at index i.
func (c *Curve) Anchor(i int) (Anchor, error) {
	if i < 0 || i >= len(c.anchors) {
		return Anchor{}, fmt.Errorf("%w: anchor %d of %d", ErrIndexOutOfRange, i, len(c.anchors))
	}
	return c.anchors[i], nil
}

// SetAnchor replaces the anchor at index i.
func (c *Curve) SetAnchor(i int, a Anchor) error {
	if i < 0 || i >= len(c.anchors) {
		return fmt.Errorf("%w: anchor %d of %d", ErrIndexOutOfRange, i, len(c.anchors))
	}
	c.anchors[i] = a
	return nil
}

// Anchors returns a copy of the anchor list.
func (c *Curve) Anchors() []Anchor {
	out := make([]Anchor, len(c.anchors))
	copy(out, c.anchors)
	return out
}

// SegmentCount returns the number of Bezier segments.
func (c *Curve) SegmentCount() int {
	if c.cyclic {
		return len(c.anchors)
	}
	if len(c.anchors) == 0 {
		return 0
	}
	return len(c.anchors) - 1
}

// Segment returns the cubic for segment i. The last segment of a cyclic
// curve ends at anchor 0.
func (c *Curve) Segment(i int) (Bezier, error) {
	n := c.SegmentCount()
	if i < 0 || i >= n {
		return Bezier{}, fmt.Errorf("%w: segment %d of %d", ErrIndexOutOfRange, i, n)
	}
	a := c.anchors[i]
	b := c.anchors[(i+1)%len(c.anchors)]
	return Bezier{
		P0: a.Position,
		P1: a.RightControl(),
		P2: b.LeftControl(),
		P3: b.Position,
	}, nil
}

// Evaluate returns the point at t on segment i. Out-of-range arguments are
// reported, never clamped.
func (c *Curve) Evaluate(i int, t float64) (math.Vec3, error) {
	if t < 0 || t > 1 || gomath.IsNaN(t) {
		return math.Vec3{}, fmt.Errorf("%w: t=%v", ErrParamOutOfRange, t)
	}
	seg, err := c.Segment(i)
	if err != nil {
		return math.Vec3{}, err
	}
	return seg.Eval(t), nil
}

// SplitParam decomposes a global parameter p in [0, SegmentCount] into a
// segment index and local t.
func (c *Curve) SplitParam(p float64) (int, float64, error) {
	n := c.SegmentCount()
	if n == 0 || p < 0 || p > float64(n) || gomath.IsNaN(p) {
		return 0, 0, fmt.Errorf("%w: global parameter %v outside [0,%d]", ErrParamOutOfRange, p, n)
	}
	i := int(gomath.Floor(p))
	if i >= n {
		i = n - 1
	}
	return i, p - float64(i), nil
}

// EvaluateParam evaluates the curve at a global parameter (segment + t).
func (c *Curve) EvaluateParam(p float64) (math.Vec3, error) {
	i, t, err := c.SplitParam(p)
	if err != nil {
		return math.Vec3{}, err
	}
	return c.Evaluate(i, t)
}

// TangentParam returns the unit tangent at a global parameter.
func (c *Curve) TangentParam(p float64) (math.Vec3, error) {
	i, t, err := c.SplitParam(p)
	if err != nil {
		return math.Vec3{}, err
	}
	seg, err := c.Segment(i)
	if err != nil {
		return math.Vec3{}, err
	}
	return seg.Tangent(t), nil
}

// Validate checks the anchor count against the cyclic flag.
func (c *Curve) Validate() error {
	if c.cyclic && len(c.anchors) < 3 {
		return fmt.Errorf("%w: cyclic curve needs 3, have %d", ErrTooFewAnchors, len(c.anchors))
	}
	if len(c.anchors) < 2 {
		return fmt.Errorf("%w: need 2, have %d", ErrTooFewAnchors, len(c.anchors))
	}
	return nil
}
