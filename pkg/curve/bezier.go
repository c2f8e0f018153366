package curve

import "github.com/Faultbox/roadcraft/pkg/math"

// Bezier is a cubic Bezier segment in 3D.
// P0 and P3 are the anchors, P1 and P2 the tangent-derived control points.
type Bezier struct {
	P0, P1, P2, P3 math.Vec3
}

// Eval returns the point at t using the Bernstein form.
func (b Bezier) Eval(t float64) math.Vec3 {
	mt := 1 - t
	a := b.P0.Scale(mt * mt * mt)
	c1 := b.P1.Scale(3 * mt * mt * t)
	c2 := b.P2.Scale(3 * mt * t * t)
	d := b.P3.Scale(t * t * t)
	return a.Add(c1).Add(c2).Add(d)
}

// Derivative returns the first derivative at t.
func (b Bezier) Derivative(t float64) math.Vec3 {
	mt := 1 - t
	d01 := b.P1.Sub(b.P0).Scale(3 * mt * mt)
	d12 := b.P2.Sub(b.P1).Scale(6 * mt * t)
	d23 := b.P3.Sub(b.P2).Scale(3 * t * t)
	return d01.Add(d12).Add(d23)
}

// Tangent returns the unit direction of travel at t.
// Degenerate control points fall back to the chord direction.
func (b Bezier) Tangent(t float64) math.Vec3 {
	d := b.Derivative(t)
	if d.Length() < 1e-9 {
		d = b.P3.Sub(b.P0)
	}
	return d.Normalize()
}

// Chord returns the straight-line distance between the two anchors.
func (b Bezier) Chord() float64 {
	return b.P0.Distance(b.P3)
}

// Split subdivides the segment at t using de Casteljau.
func (b Bezier) Split(t float64) (Bezier, Bezier) {
	p01 := b.P0.Lerp(b.P1, t)
	p12 := b.P1.Lerp(b.P2, t)
	p23 := b.P2.Lerp(b.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	m := p012.Lerp(p123, t)
	return Bezier{b.P0, p01, p012, m}, Bezier{m, p123, p23, b.P3}
}
