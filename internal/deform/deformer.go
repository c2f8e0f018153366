package deform

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// Raycaster answers downward terrain queries.
type Raycaster interface {
	RaycastDown(origin math.Vec3, maxDistance float64, mask spatial.Layer) (math.Vec3, bool)
}

// EdgeKey identifies a vertex on a mesh boundary by its quantized
// cross-section coordinates (height, lateral).
type EdgeKey [2]int64

// Edge holds the world positions of a placed mesh's boundary vertices.
type Edge map[EdgeKey]math.Vec3

const edgeQuantum = 1e4

func edgeKeyOf(height, lateral float64) EdgeKey {
	return EdgeKey{int64(gomath.Round(height * edgeQuantum)), int64(gomath.Round(lateral * edgeQuantum))}
}

// Stats counts raycast work done by a Deformer.
type Stats struct {
	Rays      int
	CacheHits int
}

// Deformer deforms meshes placed along one curve. Create one per
// regeneration pass: its column cache assumes terrain does not change.
type Deformer struct {
	curve *curve.Curve
	rays  Raycaster
	opts  Options
	cache map[columnKey]columnHit
	stats Stats
}

// New creates a deformer for placements on c. rays may be nil when terrain
// conforming is off.
func New(c *curve.Curve, rays Raycaster, opts Options) *Deformer {
	opts.Mask &^= spatial.AuthoringLayers
	return &Deformer{
		curve: c,
		rays:  rays,
		opts:  opts,
		cache: make(map[columnKey]columnHit),
	}
}

// Options returns the deformer configuration.
func (d *Deformer) Options() Options {
	return d.opts
}

// Stats returns raycast counters for this pass.
func (d *Deformer) Stats() Stats {
	return d.stats
}

// Deform returns a new mesh for src placed with xf at rec. prev is the right
// edge of the previous element (nil for the first); the returned Edge is
// this element's right edge, to be fed to the next call.
func (d *Deformer) Deform(src *Mesh, rec placement.Record, xf Transform, prev Edge) (*Mesh, Edge, error) {
	if err := src.Validate(); err != nil {
		return nil, nil, err
	}
	out := src.Clone()

	var right Edge
	if d.opts.Bend != BendNone {
		var err error
		right, err = d.bend(src, out, rec, xf, prev)
		if err != nil {
			return nil, nil, err
		}
	}
	if d.opts.Terrain != TerrainNone && d.rays != nil {
		d.conform(src, out, xf)
	}

	out.RecalculateNormals()
	out.RecalculateBounds()
	return out, right, nil
}

// bend writes bent local positions into out and returns the right edge.
func (d *Deformer) bend(src, out *Mesh, rec placement.Record, xf Transform, prev Edge) (Edge, error) {
	axis, lo, hi := d.axisExtent(boundsOf(src.Positions))
	reversed := xf.Rotation.Rotate(axis).Dot(rec.Forward) < 0
	base := xf
	base.Position = xf.Position.Sub(math.Vec3{Y: d.opts.YOffset})
	forwardYaw := math.YawOf(rec.Forward)

	right := make(Edge)
	for i, v := range src.Positions {
		along := v.Dot(axis)
		u := 0.5
		if hi > lo {
			u = (along - lo) / (hi - lo)
		}
		if reversed {
			u = 1 - u
		}
		cross := v.Sub(axis.Scale(along))
		key := edgeKeyOf(cross.Y, cross.X+cross.Z)

		if u <= 1e-9 && prev != nil {
			if w, ok := prev[key]; ok {
				out.Positions[i] = base.Inverse(w)
				continue
			}
		}

		center, tangent, err := d.frame(rec, u)
		if err != nil {
			return nil, fmt.Errorf("bending vertex %d: %w", i, err)
		}
		turn := math.QuatFromYaw(math.YawOf(tangent) - forwardYaw)

		world := center.Add(turn.Rotate(xf.Rotation.Rotate(cross.Mul(xf.Scale))))
		out.Positions[i] = base.Inverse(world)

		if u >= 1-1e-9 {
			right[key] = world
		}
	}
	return right, nil
}

// frame returns the laterally offset centre and horizontal tangent at
// fraction u of the placement. Record boundary points already carry the
// offset; curve samples do not.
func (d *Deformer) frame(rec placement.Record, u float64) (math.Vec3, math.Vec3, error) {
	if d.opts.Bend == BendStraight || d.curve == nil {
		return rec.StartPoint.Lerp(rec.EndPoint, u), rec.Forward, nil
	}
	p := rec.StartParam + (rec.EndParam-rec.StartParam)*u
	center, err := d.curve.EvaluateParam(p)
	if err != nil {
		return math.Vec3{}, math.Vec3{}, err
	}
	tangent, err := d.curve.TangentParam(p)
	if err != nil {
		return math.Vec3{}, math.Vec3{}, err
	}
	tangent = tangent.Flat().Normalize()
	if tangent == (math.Vec3{}) {
		tangent = rec.Forward
	}
	offset := rec.StartOffset + (rec.EndOffset-rec.StartOffset)*u
	return center.Add(math.LeftOf(tangent).Scale(offset)), tangent, nil
}

func (d *Deformer) axisExtent(b spatial.AABB) (math.Vec3, float64, float64) {
	if d.opts.ForwardAxis == AxisZ {
		return math.Vec3{Z: 1}, b.Min.Z, b.Max.Z
	}
	return math.Vec3{X: 1}, b.Min.X, b.Max.X
}
