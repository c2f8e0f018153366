package intersection

import (
	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// CornerCurves returns the curb curve between each connection and the next
// in bearing order: from the left edge of connection i to the right edge of
// connection i+1, wrapping around. Connections must be sorted.
func (x *Intersection) CornerCurves() []curve.Bezier {
	n := len(x.Connections)
	if n < 2 {
		return nil
	}
	corners := make([]curve.Bezier, n)
	for i, a := range x.Connections {
		b := x.Connections[(i+1)%n]
		corners[i] = curve.Bezier{
			P0: a.LeftPoint,
			P1: a.LeftPoint.Add(a.LeftTangent),
			P2: b.RightPoint.Add(b.RightTangent),
			P3: b.RightPoint,
		}
	}
	return corners
}

// Outline returns the closed junction boundary: each connection's road end
// from right to left edge followed by its corner curve sampled at
// cornerSamples interior points.
func (x *Intersection) Outline(cornerSamples int) []math.Vec3 {
	corners := x.CornerCurves()
	if corners == nil {
		return nil
	}
	cornerSamples = max(cornerSamples, 0)
	var out []math.Vec3
	for i, c := range x.Connections {
		out = append(out, c.RightPoint, c.LeftPoint)
		for k := 1; k <= cornerSamples; k++ {
			out = append(out, corners[i].Eval(float64(k)/float64(cornerSamples+1)))
		}
	}
	return out
}

// Mesh triangulates the outline as a fan around the intersection center.
func (x *Intersection) Mesh(cornerSamples int) *deform.Mesh {
	outline := x.Outline(cornerSamples)
	m := &deform.Mesh{}
	if len(outline) < 3 {
		return m
	}
	center := x.Center
	if len(x.Connections) > 0 {
		var sum math.Vec3
		for _, c := range x.Connections {
			sum = sum.Add(c.Point)
		}
		center.Y = sum.Scale(1 / float64(len(x.Connections))).Y
	}
	m.Positions = append(m.Positions, center)
	m.Positions = append(m.Positions, outline...)
	n := uint32(len(outline))
	for k := uint32(0); k < n; k++ {
		m.Indices = append(m.Indices, 0, 1+k, 1+(k+1)%n)
	}
	m.RecalculateNormals()
	m.RecalculateBounds()
	return m
}
