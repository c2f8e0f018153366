// Package arclen samples Bezier curves into polylines and maps between curve
// parameters and accumulated arc length.
package arclen

import (
	"errors"
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// ErrOutOfRange is returned when an arc length lies outside [0, total].
var ErrOutOfRange = errors.New("arc length out of range")

// Options controls sampling density and distance metric.
type Options struct {
	// DetailLevel is samples per world unit of segment chord length.
	DetailLevel float64
	// UseElevation measures full 3D distance instead of planar XZ distance.
	UseElevation bool
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{DetailLevel: 10}
}

// Sample is one polyline vertex of a sampled segment.
type Sample struct {
	T        float64
	Position math.Vec3
}

// Table is the arc-length table of one segment. Lengths is non-decreasing and
// Lengths[i] is the distance travelled from t=0 to Samples[i].T.
type Table struct {
	Samples []Sample
	Lengths []float64
}

// SampleCount returns max(3, ceil(chord * detailLevel)).
func SampleCount(seg curve.Bezier, detailLevel float64) int {
	n := int(gomath.Ceil(seg.Chord() * detailLevel))
	return max(3, n)
}

// SampleSegment walks segment i of c at uniform parameter steps.
func SampleSegment(c *curve.Curve, i int, opts Options) (*Table, error) {
	seg, err := c.Segment(i)
	if err != nil {
		return nil, err
	}
	return sampleBezier(seg, opts), nil
}

func sampleBezier(seg curve.Bezier, opts Options) *Table {
	n := SampleCount(seg, opts.DetailLevel)
	tbl := &Table{
		Samples: make([]Sample, n),
		Lengths: make([]float64, n),
	}

	var total float64
	for j := 0; j < n; j++ {
		t := float64(j) / float64(n-1)
		p := seg.Eval(t)
		if j > 0 {
			total += distance(tbl.Samples[j-1].Position, p, opts.UseElevation)
		}
		tbl.Samples[j] = Sample{T: t, Position: p}
		tbl.Lengths[j] = total
	}
	return tbl
}

// Length returns the total length of the sampled segment.
func (tbl *Table) Length() float64 {
	if len(tbl.Lengths) == 0 {
		return 0
	}
	return tbl.Lengths[len(tbl.Lengths)-1]
}

// ArcLengthAt returns the distance travelled at parameter t, interpolating
// linearly between the bracketing samples.
func (tbl *Table) ArcLengthAt(t float64) (float64, error) {
	if t < 0 || t > 1 || gomath.IsNaN(t) {
		return 0, fmt.Errorf("%w: t=%v", curve.ErrParamOutOfRange, t)
	}
	n := len(tbl.Samples)
	i := sort.Search(n, func(i int) bool { return tbl.Samples[i].T >= t })
	if i == 0 {
		return tbl.Lengths[0], nil
	}
	if i >= n {
		return tbl.Length(), nil
	}
	if tbl.Samples[i].T == t {
		return tbl.Lengths[i], nil
	}
	a, b := tbl.Samples[i-1], tbl.Samples[i]
	f := (t - a.T) / (b.T - a.T)
	return tbl.Lengths[i-1] + (tbl.Lengths[i]-tbl.Lengths[i-1])*f, nil
}

// ParamAtArcLength is the inverse of ArcLengthAt. Flat stretches of the table
// resolve to their first parameter.
func (tbl *Table) ParamAtArcLength(s float64) (float64, error) {
	total := tbl.Length()
	if s < 0 || s > total || gomath.IsNaN(s) {
		return 0, fmt.Errorf("%w: %v not in [0,%v]", ErrOutOfRange, s, total)
	}
	n := len(tbl.Lengths)
	i := sort.SearchFloat64s(tbl.Lengths, s)
	if i == 0 {
		return tbl.Samples[0].T, nil
	}
	if i >= n {
		return tbl.Samples[n-1].T, nil
	}
	if tbl.Lengths[i] == s {
		return tbl.Samples[i].T, nil
	}
	l0, l1 := tbl.Lengths[i-1], tbl.Lengths[i]
	f := (s - l0) / (l1 - l0)
	t0, t1 := tbl.Samples[i-1].T, tbl.Samples[i].T
	return t0 + (t1-t0)*f, nil
}

// SegmentLength returns the sampled length of segment i.
func SegmentLength(c *curve.Curve, i int, opts Options) (float64, error) {
	tbl, err := SampleSegment(c, i, opts)
	if err != nil {
		return 0, err
	}
	return tbl.Length(), nil
}

func distance(a, b math.Vec3, useElevation bool) float64 {
	if useElevation {
		return a.Distance(b)
	}
	return a.PlanarDistance(b)
}
