package curve

import "fmt"

// InsertAnchor inserts a at index k (0 <= k <= Len). Every attached interval
// index at or after k moves up by one.
func (c *Curve) InsertAnchor(k int, a Anchor) error {
	if k < 0 || k > len(c.anchors) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndexOutOfRange, k, len(c.anchors))
	}

	c.anchors = append(c.anchors, Anchor{})
	copy(c.anchors[k+1:], c.anchors[k:])
	c.anchors[k] = a

	for _, iv := range c.intervals {
		if iv.StartIndex >= k {
			iv.StartIndex++
		}
		if iv.EndIndex >= k {
			iv.EndIndex++
		}
	}
	c.clampIntervals()
	return nil
}

// RemoveAnchor deletes the anchor at index k. The segments on either side
// of k merge into segment k-1, so every interval index at or after k moves
// down by one; StartIndex and EndIndex follow the same rule. Removing the
// first anchor drops segment 0 and removing the last open anchor drops the
// final segment. Ranges that would invert are clamped.
func (c *Curve) RemoveAnchor(k int) error {
	if k < 0 || k >= len(c.anchors) {
		return fmt.Errorf("%w: remove %d of %d", ErrIndexOutOfRange, k, len(c.anchors))
	}
	minimum := 1
	if c.cyclic {
		minimum = 3
	}
	if len(c.anchors)-1 < minimum {
		return fmt.Errorf("%w: removing anchor %d leaves %d", ErrTooFewAnchors, k, len(c.anchors)-1)
	}

	c.anchors = append(c.anchors[:k], c.anchors[k+1:]...)

	for _, iv := range c.intervals {
		if iv.StartIndex >= k && iv.StartIndex > 0 {
			iv.StartIndex--
		}
		if iv.EndIndex >= k && iv.EndIndex > 0 {
			iv.EndIndex--
		}
	}
	c.clampIntervals()
	return nil
}

// SubdivideSegment inserts an anchor at t on segment i without changing the
// curve's shape. It returns the new anchor's index.
func (c *Curve) SubdivideSegment(i int, t float64) (int, error) {
	if t <= 0 || t >= 1 {
		return 0, fmt.Errorf("%w: subdivide at t=%v", ErrParamOutOfRange, t)
	}
	seg, err := c.Segment(i)
	if err != nil {
		return 0, err
	}
	left, right := seg.Split(t)

	next := (i + 1) % len(c.anchors)
	c.anchors[i].RightTangent = left.P1.Sub(left.P0)
	c.anchors[next].LeftTangent = right.P2.Sub(right.P3)

	mid := Anchor{
		Position:     left.P3,
		LeftTangent:  left.P2.Sub(left.P3),
		RightTangent: right.P1.Sub(right.P0),
	}
	if err := c.InsertAnchor(i+1, mid); err != nil {
		return 0, err
	}
	return i + 1, nil
}

// SplitAt cuts a non-cyclic curve at anchor k. The receiver keeps anchors
// [0, k]; the returned tail holds a copy of anchor k followed by the rest.
//
// Attached intervals are distributed: whole-curve intervals are copied to the
// tail, ranges reaching past the split get a rebased copy on the tail, and
// ranges entirely past the split are detached from the receiver. The
// returned map links each original interval to its tail copy.
func (c *Curve) SplitAt(k int) (*Curve, map[*Interval]*Interval, error) {
	if c.cyclic {
		return nil, nil, ErrCyclicSplit
	}
	if k <= 0 || k >= len(c.anchors)-1 {
		return nil, nil, fmt.Errorf("%w: split at anchor %d of %d", ErrIndexOutOfRange, k, len(c.anchors))
	}

	tail := New(c.anchors[k:]...)
	c.anchors = c.anchors[: k+1 : k+1]

	moved := make(map[*Interval]*Interval)
	var order []*Interval
	kept := c.intervals[:0]
	for _, iv := range c.intervals {
		switch {
		case iv.Whole:
			cp := *iv
			moved[iv] = &cp
			order = append(order, iv)
			kept = append(kept, iv)
		case iv.EndIndex >= k:
			cp := *iv
			cp.StartIndex -= k
			cp.EndIndex -= k
			moved[iv] = &cp
			order = append(order, iv)
			if iv.StartIndex >= k {
				continue
			}
			cp.StartIndex = 0
			cp.StartOffset = 0
			iv.EndIndex = k - 1
			iv.EndOffset = 1
			kept = append(kept, iv)
		default:
			kept = append(kept, iv)
		}
	}
	c.intervals = kept
	c.clampIntervals()

	for _, orig := range order {
		tail.Attach(moved[orig])
	}
	return tail, moved, nil
}
