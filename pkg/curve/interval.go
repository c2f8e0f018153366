package curve

import "fmt"

// Interval is an index range over a curve's segments with percentage
// offsets inside the two boundary segments. Lanes and prefab lines embed
// one to describe the part of the road they cover.
//
// StartIndex and EndIndex address segments, which coincide with the index
// of the segment's first anchor.
type Interval struct {
	Whole       bool    `yaml:"whole"`
	StartIndex  int     `yaml:"start_index"`
	StartOffset float64 `yaml:"start_offset"`
	EndIndex    int     `yaml:"end_index"`
	EndOffset   float64 `yaml:"end_offset"`
}

// WholeInterval returns an interval covering the entire curve.
func WholeInterval() Interval {
	return Interval{Whole: true, EndOffset: 1}
}

// Bounds returns the interval as global curve parameters [start, end].
func (iv Interval) Bounds(c *Curve) (start, end float64, err error) {
	n := c.SegmentCount()
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: curve has no segments", ErrTooFewAnchors)
	}
	if iv.Whole {
		return 0, float64(n), nil
	}
	if iv.StartIndex < 0 || iv.StartIndex >= n {
		return 0, 0, fmt.Errorf("%w: start segment %d of %d", ErrIndexOutOfRange, iv.StartIndex, n)
	}
	if iv.EndIndex < iv.StartIndex || iv.EndIndex >= n {
		return 0, 0, fmt.Errorf("%w: end segment %d (start %d, count %d)", ErrIndexOutOfRange, iv.EndIndex, iv.StartIndex, n)
	}
	start = float64(iv.StartIndex) + clamp01(iv.StartOffset)
	end = float64(iv.EndIndex) + clamp01(iv.EndOffset)
	return start, end, nil
}

// ParamInterval returns the interval between global parameters start and
// end. An end on a segment boundary stays on the earlier segment.
func ParamInterval(c *Curve, start, end float64) (Interval, error) {
	if end < start {
		return Interval{}, fmt.Errorf("%w: interval [%v,%v] is inverted", ErrParamOutOfRange, start, end)
	}
	si, st, err := c.SplitParam(start)
	if err != nil {
		return Interval{}, err
	}
	ei, et, err := c.SplitParam(end)
	if err != nil {
		return Interval{}, err
	}
	if et == 0 && ei > si {
		ei, et = ei-1, 1
	}
	return Interval{StartIndex: si, StartOffset: st, EndIndex: ei, EndOffset: et}, nil
}

// Clamp forces the interval into a valid state for a curve with n segments.
func (iv *Interval) Clamp(n int) {
	last := max(n-1, 0)
	iv.StartIndex = min(max(iv.StartIndex, 0), last)
	iv.EndIndex = min(max(iv.EndIndex, iv.StartIndex), last)
	iv.StartOffset = clamp01(iv.StartOffset)
	iv.EndOffset = clamp01(iv.EndOffset)
	if !iv.Whole && iv.StartIndex == iv.EndIndex && iv.EndOffset < iv.StartOffset {
		iv.EndOffset = iv.StartOffset
	}
}

// Attach registers an interval so its indices follow anchor insertion and
// removal. Attaching twice is a no-op.
func (c *Curve) Attach(iv *Interval) {
	if c.Attached(iv) {
		return
	}
	iv.Clamp(c.SegmentCount())
	c.intervals = append(c.intervals, iv)
}

// Detach stops tracking an interval.
func (c *Curve) Detach(iv *Interval) {
	for i, other := range c.intervals {
		if other == iv {
			c.intervals = append(c.intervals[:i], c.intervals[i+1:]...)
			return
		}
	}
}

// Attached reports whether iv is tracked by the curve.
func (c *Curve) Attached(iv *Interval) bool {
	for _, other := range c.intervals {
		if other == iv {
			return true
		}
	}
	return false
}

func (c *Curve) clampIntervals() {
	n := c.SegmentCount()
	for _, iv := range c.intervals {
		iv.Clamp(n)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
