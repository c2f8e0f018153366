// Package placement computes where repeated elements (prefabs, lane
// segments, markings) go along a curve.
package placement

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// Placement errors.
var (
	ErrDegenerateInterval = errors.New("degenerate placement interval")
	ErrInvalidWidth       = errors.New("element width must be positive")
)

// OffsetMode selects how the lateral offset profile is sampled.
type OffsetMode int

const (
	// OffsetPerSegment evaluates the profile at the local t of each segment.
	OffsetPerSegment OffsetMode = iota
	// OffsetAlongInterval evaluates the profile at the fraction of the
	// interval's arc length travelled.
	OffsetAlongInterval
)

// String returns the mode name.
func (m OffsetMode) String() string {
	switch m {
	case OffsetPerSegment:
		return "per_segment"
	case OffsetAlongInterval:
		return "along_interval"
	default:
		return fmt.Sprintf("OffsetMode(%d)", int(m))
	}
}

// ParseOffsetMode converts a mode name.
func ParseOffsetMode(s string) (OffsetMode, error) {
	switch s {
	case "", "per_segment":
		return OffsetPerSegment, nil
	case "along_interval":
		return OffsetAlongInterval, nil
	}
	return OffsetPerSegment, fmt.Errorf("unknown offset mode %q", s)
}

// Spacing is the start-to-start distance policy between elements.
type Spacing struct {
	// Spacing is the fixed spacing, or the lower bound when randomized.
	Spacing float64
	// MaxSpacing is the upper bound when randomized.
	MaxSpacing float64
	Randomize  bool
	// FillGap forces spacing to the element width.
	FillGap bool
}

// next returns the distance from the current start boundary to the next one.
// A start is only emitted after the current element ended, so spacing never
// drops below width.
func (s Spacing) next(width float64, rng *rand.Rand) float64 {
	if s.FillGap {
		return width
	}
	v := s.Spacing
	if s.Randomize && s.MaxSpacing > s.Spacing {
		v = s.Spacing + rng.Float64()*(s.MaxSpacing-s.Spacing)
	}
	return max(v, width)
}

// Record is one planned element.
type Record struct {
	StartPoint math.Vec3
	MainPoint  math.Vec3
	EndPoint   math.Vec3

	// StartParam and EndParam are global curve parameters (segment + t).
	StartParam float64
	EndParam   float64

	// StartOffset and EndOffset are the lateral offsets at the boundaries.
	StartOffset float64
	EndOffset   float64

	// Percentage is the main point's fraction of the interval length.
	Percentage float64
	// Segment is the segment holding the main point.
	Segment int

	// StartDistance and EndDistance are arc lengths from the interval start.
	StartDistance float64
	EndDistance   float64

	// Forward runs from StartPoint to EndPoint in the XZ plane; Left is its
	// horizontal perpendicular.
	Forward math.Vec3
	Left    math.Vec3
}

// Planner sweeps a curve interval emitting element boundaries.
type Planner struct {
	mode   OffsetMode
	offset curve.Profile
	opts   arclen.Options
	seed   uint64
}

// New creates a planner. offset is the lateral displacement profile (empty
// for none); seed drives spacing randomization so reruns are identical.
func New(mode OffsetMode, offset curve.Profile, opts arclen.Options, seed uint64) *Planner {
	return &Planner{mode: mode, offset: offset, opts: opts, seed: seed}
}

type state int

const (
	awaitingMain state = iota
	awaitingEnd
	awaitingStart
)

type boundary struct {
	param    float64
	point    math.Vec3
	offset   float64
	distance float64
}

// Plan returns the complete elements of the given width that fit in iv.
// Trailing elements without an end boundary are dropped.
func (p *Planner) Plan(c *curve.Curve, spacing Spacing, width float64, iv curve.Interval) ([]Record, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWidth, width)
	}
	path, err := arclen.BuildInterval(c, iv, p.opts)
	if err != nil {
		return nil, err
	}
	total := path.Length()
	if total <= 1e-9 {
		return nil, fmt.Errorf("%w: interval [%v,%v] has length %v", ErrDegenerateInterval, path.StartParam, path.EndParam, total)
	}
	eps := 1e-9 * max(1, total)
	rng := rand.New(rand.NewPCG(p.seed, p.seed^0x9e3779b97f4a7c15))

	var (
		records []Record
		cur     Record
		st      = awaitingMain
		startS  float64
		step    = spacing.next(width, rng)
	)

	start, err := p.boundaryAt(path, 0, total)
	if err != nil {
		return nil, err
	}
	cur = p.open(start)

	threshold := func() float64 {
		switch st {
		case awaitingMain:
			return startS + width/2
		case awaitingEnd:
			return startS + width
		default:
			return startS + step
		}
	}

	for j := 1; j < len(path.Points); j++ {
		reach := path.Points[j].Distance
		if j == len(path.Points)-1 {
			reach += eps
		}
		for target := threshold(); target <= reach; target = threshold() {
			s := min(target, total)
			b, err := p.boundaryAt(path, s, total)
			if err != nil {
				return nil, err
			}
			switch st {
			case awaitingMain:
				cur.MainPoint = b.point
				cur.Percentage = min(s/total, 1)
				seg, _, _ := c.SplitParam(b.param)
				cur.Segment = seg
				st = awaitingEnd
			case awaitingEnd:
				p.close(&cur, b)
				records = append(records, cur)
				st = awaitingStart
			case awaitingStart:
				startS = s
				cur = p.open(b)
				step = spacing.next(width, rng)
				st = awaitingMain
			}
		}
	}
	return records, nil
}

func (p *Planner) open(b boundary) Record {
	return Record{
		StartPoint:    b.point,
		StartParam:    b.param,
		StartOffset:   b.offset,
		StartDistance: b.distance,
	}
}

func (p *Planner) close(r *Record, b boundary) {
	r.EndPoint = b.point
	r.EndParam = b.param
	r.EndOffset = b.offset
	r.EndDistance = b.distance
	r.Forward = r.EndPoint.Sub(r.StartPoint).Flat().Normalize()
	r.Left = math.LeftOf(r.Forward)
}

// boundaryAt resolves arc length s into a parameter and laterally offset point.
func (p *Planner) boundaryAt(path *arclen.Path, s, total float64) (boundary, error) {
	param, err := path.ParamAt(s)
	if err != nil {
		return boundary{}, err
	}
	c := path.Curve
	pos, err := c.EvaluateParam(param)
	if err != nil {
		return boundary{}, err
	}
	b := boundary{param: param, point: pos, distance: s}

	if len(p.offset.Keys) == 0 {
		return b, nil
	}
	switch p.mode {
	case OffsetAlongInterval:
		b.offset = p.offset.Evaluate(s / total)
	default:
		_, t, err := c.SplitParam(param)
		if err != nil {
			return boundary{}, err
		}
		b.offset = p.offset.Evaluate(t)
	}
	tangent, err := c.TangentParam(param)
	if err != nil {
		return boundary{}, err
	}
	b.point = b.point.Add(math.LeftOf(tangent).Scale(b.offset))
	return b, nil
}
