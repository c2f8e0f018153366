package deform

import "github.com/Faultbox/roadcraft/pkg/math"

// NewBox builds a box mesh centered on X and Z with its base at Y=0. The
// box is cut into segments slices along X so it can bend.
func NewBox(size math.Vec3, segments int) *Mesh {
	segments = max(segments, 1)
	hx, hz := size.X/2, size.Z/2
	m := &Mesh{}

	for i := 0; i <= segments; i++ {
		x := -hx + size.X*float64(i)/float64(segments)
		m.Positions = append(m.Positions,
			math.Vec3{X: x, Y: 0, Z: -hz},
			math.Vec3{X: x, Y: size.Y, Z: -hz},
			math.Vec3{X: x, Y: size.Y, Z: hz},
			math.Vec3{X: x, Y: 0, Z: hz},
		)
	}
	for i := 0; i < segments; i++ {
		for k := uint32(0); k < 4; k++ {
			a := uint32(i)*4 + k
			b := uint32(i)*4 + (k+1)%4
			c := uint32(i+1)*4 + (k+1)%4
			d := uint32(i+1)*4 + k
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	last := uint32(segments) * 4
	m.Indices = append(m.Indices,
		0, 2, 1, 0, 3, 2,
		last, last+1, last+2, last, last+2, last+3,
	)

	m.RecalculateNormals()
	m.RecalculateBounds()
	return m
}

// NewStrip builds a flat strip from parallel left and right edge polylines.
// Edges must have equal length of at least 2.
func NewStrip(left, right []math.Vec3) *Mesh {
	n := min(len(left), len(right))
	m := &Mesh{}
	if n < 2 {
		return m
	}
	for i := range n {
		m.Positions = append(m.Positions, left[i], right[i])
	}
	for i := 0; i < n-1; i++ {
		a := uint32(i * 2)
		m.Indices = append(m.Indices, a, a+2, a+1, a+1, a+2, a+3)
	}
	m.RecalculateNormals()
	m.RecalculateBounds()
	return m
}
