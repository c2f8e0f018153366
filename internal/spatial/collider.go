package spatial

import (
	gomath "math"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// Collider is anything a ray can hit.
type Collider interface {
	Layer() Layer
	// Raycast returns the hit distance along r, if any, within maxDistance.
	Raycast(r Ray, maxDistance float64) (float64, bool)
}

// Box is an axis-aligned box collider.
type Box struct {
	Bounds AABB
	On     Layer
}

// Layer returns the collider layer.
func (b *Box) Layer() Layer { return b.On }

// Raycast implements Collider.
func (b *Box) Raycast(r Ray, maxDistance float64) (float64, bool) {
	t, ok := r.IntersectAABB(b.Bounds)
	if !ok || t > maxDistance {
		return 0, false
	}
	return t, true
}

// Plane is an infinite horizontal plane.
type Plane struct {
	Y  float64
	On Layer
}

// Layer returns the collider layer.
func (p *Plane) Layer() Layer { return p.On }

// Raycast implements Collider.
func (p *Plane) Raycast(r Ray, maxDistance float64) (float64, bool) {
	t, ok := r.IntersectPlaneY(p.Y)
	if !ok || t > maxDistance {
		return 0, false
	}
	return t, true
}

// Heightfield is a regular grid of terrain heights in the XZ plane.
// Heights is indexed [x][z]; cell (x, z) spans
// Origin + (x*CellSize, z*CellSize) to Origin + ((x+1)*CellSize, (z+1)*CellSize).
type Heightfield struct {
	Origin   math.Vec2 // world X, Z of sample (0, 0)
	CellSize float64
	Heights  [][]float64
	On       Layer
}

// NewHeightfield creates a flat heightfield of w×d samples.
func NewHeightfield(origin math.Vec2, cellSize float64, w, d int) *Heightfield {
	heights := make([][]float64, w)
	for x := range w {
		heights[x] = make([]float64, d)
	}
	return &Heightfield{Origin: origin, CellSize: cellSize, Heights: heights, On: LayerTerrain}
}

// Layer returns the collider layer.
func (h *Heightfield) Layer() Layer { return h.On }

// Size returns the sample counts along X and Z.
func (h *Heightfield) Size() (int, int) {
	if len(h.Heights) == 0 {
		return 0, 0
	}
	return len(h.Heights), len(h.Heights[0])
}

// HeightAt returns the bilinearly interpolated height at world (x, z).
// Returns false outside the grid.
func (h *Heightfield) HeightAt(x, z float64) (float64, bool) {
	w, d := h.Size()
	if w < 2 || d < 2 || h.CellSize <= 0 {
		return 0, false
	}
	fx := (x - h.Origin.X) / h.CellSize
	fz := (z - h.Origin.Y) / h.CellSize
	if fx < 0 || fz < 0 || fx > float64(w-1) || fz > float64(d-1) {
		return 0, false
	}

	cx := min(int(fx), w-2)
	cz := min(int(fz), d-2)
	fracX := clampf(fx-float64(cx), 0, 1)
	fracZ := clampf(fz-float64(cz), 0, 1)

	// South edge (lower Z), then north edge, then between them.
	south := h.Heights[cx][cz]*(1-fracX) + h.Heights[cx+1][cz]*fracX
	north := h.Heights[cx][cz+1]*(1-fracX) + h.Heights[cx+1][cz+1]*fracX
	return south*(1-fracZ) + north*fracZ, true
}

// Raycast implements Collider. Only rays pointing straight down are
// answered.
func (h *Heightfield) Raycast(r Ray, maxDistance float64) (float64, bool) {
	if gomath.Abs(r.Direction.X) > 1e-9 || gomath.Abs(r.Direction.Z) > 1e-9 || r.Direction.Y >= 0 {
		return 0, false
	}
	height, ok := h.HeightAt(r.Origin.X, r.Origin.Z)
	if !ok {
		return 0, false
	}
	t := (r.Origin.Y - height) / -r.Direction.Y
	if t < 0 || t > maxDistance {
		return 0, false
	}
	return t, true
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
