package arclen

import (
	"fmt"
	gomath "math"
	"sort"

	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// PathPoint is a sample of a multi-segment path. Param is the global curve
// parameter (segment index + t); Distance is the arc length from the path start.
type PathPoint struct {
	Param    float64
	Position math.Vec3
	Distance float64
}

// Path is a sampled stretch of a curve between two global parameters.
type Path struct {
	Curve      *curve.Curve
	StartParam float64
	EndParam   float64
	Points     []PathPoint
}

// Build samples c between global parameters start and end.
func Build(c *curve.Curve, start, end float64, opts Options) (*Path, error) {
	n := c.SegmentCount()
	if start < 0 || end > float64(n) || start > end {
		return nil, fmt.Errorf("%w: path [%v,%v] on %d segments", curve.ErrParamOutOfRange, start, end, n)
	}

	p := &Path{Curve: c, StartParam: start, EndParam: end}
	first := int(gomath.Floor(start))
	last := int(gomath.Ceil(end)) - 1
	first = min(first, n-1)
	last = max(last, first)

	for i := first; i <= last; i++ {
		tbl, err := SampleSegment(c, i, opts)
		if err != nil {
			return nil, err
		}
		lo := max(start-float64(i), 0)
		hi := min(end-float64(i), 1)

		if err := p.push(c, i, lo, opts); err != nil {
			return nil, err
		}
		for _, s := range tbl.Samples {
			if s.T > lo && s.T < hi {
				p.pushSample(float64(i)+s.T, s.Position, opts)
			}
		}
		if err := p.push(c, i, hi, opts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// BuildInterval samples the part of c covered by iv.
func BuildInterval(c *curve.Curve, iv curve.Interval, opts Options) (*Path, error) {
	start, end, err := iv.Bounds(c)
	if err != nil {
		return nil, err
	}
	return Build(c, start, end, opts)
}

func (p *Path) push(c *curve.Curve, seg int, t float64, opts Options) error {
	b, err := c.Segment(seg)
	if err != nil {
		return err
	}
	p.pushSample(float64(seg)+t, b.Eval(t), opts)
	return nil
}

func (p *Path) pushSample(param float64, pos math.Vec3, opts Options) {
	if k := len(p.Points); k > 0 {
		prev := p.Points[k-1]
		if param <= prev.Param {
			return
		}
		p.Points = append(p.Points, PathPoint{
			Param:    param,
			Position: pos,
			Distance: prev.Distance + distance(prev.Position, pos, opts.UseElevation),
		})
		return
	}
	p.Points = append(p.Points, PathPoint{Param: param, Position: pos})
}

// Length returns the total arc length of the path.
func (p *Path) Length() float64 {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Distance
}

// ParamAt returns the global curve parameter at arc length s.
func (p *Path) ParamAt(s float64) (float64, error) {
	total := p.Length()
	if s < 0 || s > total || gomath.IsNaN(s) {
		return 0, fmt.Errorf("%w: %v not in [0,%v]", ErrOutOfRange, s, total)
	}
	n := len(p.Points)
	i := sort.Search(n, func(i int) bool { return p.Points[i].Distance >= s })
	if i == 0 {
		return p.Points[0].Param, nil
	}
	if i >= n {
		return p.Points[n-1].Param, nil
	}
	if p.Points[i].Distance == s {
		return p.Points[i].Param, nil
	}
	a, b := p.Points[i-1], p.Points[i]
	f := (s - a.Distance) / (b.Distance - a.Distance)
	return a.Param + (b.Param-a.Param)*f, nil
}

// DistanceAt returns the arc length at global parameter param.
func (p *Path) DistanceAt(param float64) (float64, error) {
	if param < p.StartParam || param > p.EndParam || gomath.IsNaN(param) {
		return 0, fmt.Errorf("%w: parameter %v not in [%v,%v]", curve.ErrParamOutOfRange, param, p.StartParam, p.EndParam)
	}
	n := len(p.Points)
	i := sort.Search(n, func(i int) bool { return p.Points[i].Param >= param })
	if i == 0 {
		return 0, nil
	}
	if i >= n {
		return p.Length(), nil
	}
	if p.Points[i].Param == param {
		return p.Points[i].Distance, nil
	}
	a, b := p.Points[i-1], p.Points[i]
	f := (param - a.Param) / (b.Param - a.Param)
	return a.Distance + (b.Distance-a.Distance)*f, nil
}

// PositionAt returns the exact curve point at arc length s.
func (p *Path) PositionAt(s float64) (math.Vec3, error) {
	param, err := p.ParamAt(s)
	if err != nil {
		return math.Vec3{}, err
	}
	return p.Curve.EvaluateParam(param)
}
