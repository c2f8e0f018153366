// Package deform bends source meshes onto curve placements and conforms
// them to terrain. Source meshes are never modified; every call returns a
// new vertex buffer.
package deform

import (
	"errors"
	"fmt"

	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// Mesh errors.
var (
	ErrMissingGeometry = errors.New("mesh has no vertex data")
	ErrInvalidMesh     = errors.New("invalid mesh")
)

// Mesh is an indexed triangle mesh in object-local space.
type Mesh struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
	Bounds    spatial.AABB
}

// Validate checks that the mesh has vertices and its indices are in range.
func (m *Mesh) Validate() error {
	if m == nil || len(m.Positions) == 0 {
		return ErrMissingGeometry
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a triangle list", ErrInvalidMesh, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("%w: index %d at %d exceeds %d vertices", ErrInvalidMesh, idx, i, len(m.Positions))
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Positions: make([]math.Vec3, len(m.Positions)),
		Normals:   make([]math.Vec3, len(m.Normals)),
		Indices:   make([]uint32, len(m.Indices)),
		Bounds:    m.Bounds,
	}
	copy(out.Positions, m.Positions)
	copy(out.Normals, m.Normals)
	copy(out.Indices, m.Indices)
	return out
}

// RecalculateBounds recomputes Bounds from Positions.
func (m *Mesh) RecalculateBounds() {
	m.Bounds = boundsOf(m.Positions)
}

func boundsOf(positions []math.Vec3) spatial.AABB {
	if len(positions) == 0 {
		return spatial.AABB{}
	}
	b := spatial.AABB{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		b = b.Expand(p)
	}
	return b
}

// RecalculateNormals rebuilds smooth vertex normals from area-weighted face
// normals.
func (m *Mesh) RecalculateNormals() {
	normals := make([]math.Vec3, len(m.Positions))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		e1 := m.Positions[b].Sub(m.Positions[a])
		e2 := m.Positions[c].Sub(m.Positions[a])
		n := e1.Cross(e2)
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}

// Transform is an object's local-to-world placement.
type Transform struct {
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: math.QuatIdentity(), Scale: math.Vec3{X: 1, Y: 1, Z: 1}}
}

// Apply maps a local point to world space.
func (t Transform) Apply(p math.Vec3) math.Vec3 {
	return t.Rotation.Rotate(p.Mul(t.Scale)).Add(t.Position)
}

// Inverse maps a world point to local space. Zero scale components map to 0.
func (t Transform) Inverse(p math.Vec3) math.Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position)).Div(t.Scale)
}

// Matrix returns the transform as a column-major TRS matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.TRS(t.Position, t.Rotation, t.Scale)
}
