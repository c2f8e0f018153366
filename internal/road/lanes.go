package road

import (
	"fmt"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// LaneMesh builds the surface strip of lane i. Lanes are laid side by side
// from left to right, centred on the curve; at each sample the cross
// section only counts the lanes that cover it.
func LaneMesh(r *Road, i int, opts arclen.Options) (*deform.Mesh, error) {
	if i < 0 || i >= len(r.Lanes) {
		return nil, fmt.Errorf("lane %d of %d: out of range", i, len(r.Lanes))
	}
	paths := make([]*arclen.Path, len(r.Lanes))
	for j, l := range r.Lanes {
		p, err := arclen.BuildInterval(r.Curve, l.Interval, opts)
		if err != nil {
			if j == i {
				return nil, err
			}
			continue
		}
		paths[j] = p
	}
	own := paths[i]
	if own.Length() <= 1e-9 {
		return nil, fmt.Errorf("%w: lane %d", placement.ErrDegenerateInterval, i)
	}
	lane := r.Lanes[i]

	left := make([]math.Vec3, 0, len(own.Points))
	right := make([]math.Vec3, 0, len(own.Points))
	for _, pt := range own.Points {
		tangent, err := r.Curve.TangentParam(pt.Param)
		if err != nil {
			return nil, err
		}
		side := math.LeftOf(tangent)

		var total, before, width float64
		for j, other := range r.Lanes {
			w, ok := widthAt(paths[j], other, pt.Param)
			if !ok {
				continue
			}
			switch {
			case j < i:
				before += w
			case j == i:
				width = w
			}
			total += w
		}

		lift := math.Vec3{Y: lane.YOffset.Evaluate(pt.Distance / own.Length())}
		edge := total/2 - before
		left = append(left, pt.Position.Add(side.Scale(edge)).Add(lift))
		right = append(right, pt.Position.Add(side.Scale(edge-width)).Add(lift))
	}
	return deform.NewStrip(left, right), nil
}

// widthAt evaluates a lane's width at a global curve parameter, reporting
// false when the lane does not cover it.
func widthAt(p *arclen.Path, l *Lane, param float64) (float64, bool) {
	const slack = 1e-9
	if p == nil || param < p.StartParam-slack || param > p.EndParam+slack {
		return 0, false
	}
	param = min(max(param, p.StartParam), p.EndParam)
	d, err := p.DistanceAt(param)
	if err != nil {
		return 0, false
	}
	pct := 0.0
	if total := p.Length(); total > 0 {
		pct = d / total
	}
	return l.Width.Evaluate(pct), true
}
