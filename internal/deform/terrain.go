package deform

import (
	gomath "math"

	"github.com/Faultbox/roadcraft/pkg/math"
)

// columnKey is a world XZ position quantized to the edge quantum.
type columnKey [2]int64

type columnHit struct {
	y   float64
	hit bool
}

// groundAt returns the terrain height below world (x, z), casting from
// RayLift above top. It consults the pass cache first; misses are cached too.
func (d *Deformer) groundAt(p math.Vec3, top float64) (float64, bool) {
	key := columnKey{int64(gomath.Round(p.X * edgeQuantum)), int64(gomath.Round(p.Z * edgeQuantum))}
	if c, ok := d.cache[key]; ok {
		d.stats.CacheHits++
		return c.y, c.hit
	}
	d.stats.Rays++
	origin := math.Vec3{X: p.X, Y: top + d.opts.RayLift, Z: p.Z}
	hit, ok := d.rays.RaycastDown(origin, d.opts.RayMaxDistance, d.opts.Mask)
	d.cache[key] = columnHit{y: hit.Y, hit: ok}
	return hit.Y, ok
}

// conform moves vertices of out onto terrain. src supplies the original
// local heights and vertex columns.
func (d *Deformer) conform(src, out *Mesh, xf Transform) {
	scaleY := xf.Scale.Y
	if scaleY == 0 {
		return
	}

	// Rays start above the placed object, not above each vertex.
	top := xf.Position.Y
	for _, v := range out.Positions {
		top = max(top, xf.Apply(v).Y)
	}

	if d.opts.Terrain == TerrainCentral {
		y, ok := d.groundAt(xf.Position, top)
		if !ok {
			return
		}
		delta := (y - xf.Position.Y) / scaleY
		for i := range out.Positions {
			out.Positions[i].Y += delta
		}
		return
	}

	b := boundsOf(src.Positions)
	height := b.Max.Y - b.Min.Y

	// Local terrain height per source column.
	columns := make(map[columnKey]columnHit)
	for i, v := range src.Positions {
		ck := columnKey{int64(gomath.Round(v.X * edgeQuantum)), int64(gomath.Round(v.Z * edgeQuantum))}
		col, seen := columns[ck]
		if !seen {
			world := xf.Apply(out.Positions[i])
			y, ok := d.groundAt(world, top)
			col = columnHit{y: (y - xf.Position.Y) / scaleY, hit: ok}
			columns[ck] = col
		}
		if !col.hit {
			continue
		}

		switch d.opts.Terrain {
		case TerrainPerColumn:
			out.Positions[i].Y = v.Y + col.y
		case TerrainBottomOnly:
			if v.Y == b.Min.Y {
				out.Positions[i].Y = v.Y + col.y
			}
		case TerrainBridgePillar:
			n := 1.0
			if height > 0 {
				n = (v.Y - b.Min.Y) / height
			}
			out.Positions[i].Y = col.y + (v.Y-col.y)*n
		}
	}
}
