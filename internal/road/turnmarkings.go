package road

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/roadcraft/internal/deform"
	"github.com/Faultbox/roadcraft/internal/intersection"
	"github.com/Faultbox/roadcraft/internal/logger"
	"github.com/Faultbox/roadcraft/internal/placement"
	"github.com/Faultbox/roadcraft/internal/spatial"
	"github.com/Faultbox/roadcraft/pkg/arclen"
	"github.com/Faultbox/roadcraft/pkg/curve"
	"github.com/Faultbox/roadcraft/pkg/math"
)

// ErrNoArrowPrefab is returned for a turn arrow with no prefab configured.
var ErrNoArrowPrefab = errors.New("turn arrow has no prefab")

// defaultMarkingLength is the footprint along the road of markings whose
// forward prefab has no mesh.
const defaultMarkingLength = 1.0

// Roads resolves connected roads by ID.
type Roads interface {
	Road(id string) (*Road, error)
}

// TurnMarkingRows plans one record of the given length per turn marking row
// of c on r, nearest the junction first. Rows past the far end of the road
// are dropped.
func TurnMarkingRows(r *Road, c *intersection.Connection, length float64, opts arclen.Options) ([]placement.Record, error) {
	tm := c.TurnMarkings
	if tm.Repetitions <= 0 {
		return nil, nil
	}
	n := r.Curve.SegmentCount()
	path, err := arclen.Build(r.Curve, 0, float64(n), opts)
	if err != nil {
		return nil, err
	}
	total := path.Length()

	rows := 0
	for rows < tm.Repetitions && tm.StartOffset+float64(rows)*tm.ContinuousOffset+length <= total+1e-9 {
		rows++
	}
	if rows == 0 {
		return nil, nil
	}

	lo := tm.StartOffset
	hi := min(lo+float64(rows-1)*tm.ContinuousOffset+length, total)
	if c.EndConnection {
		lo, hi = max(total-hi, 0), total-lo
	}
	start, err := path.ParamAt(lo)
	if err != nil {
		return nil, err
	}
	end, err := path.ParamAt(hi)
	if err != nil {
		return nil, err
	}
	iv, err := curve.ParamInterval(r.Curve, start, end)
	if err != nil {
		return nil, err
	}

	planner := placement.New(placement.OffsetPerSegment, curve.Profile{}, opts, 0)
	recs, err := planner.Plan(r.Curve, placement.Spacing{Spacing: tm.ContinuousOffset}, length, iv)
	if err != nil {
		return nil, err
	}
	if c.EndConnection {
		slices.Reverse(recs)
	}
	return recs[:min(len(recs), rows)], nil
}

// arrowPrefabs returns the prefab of every arrow set in a.
func arrowPrefabs(tm *intersection.TurnMarkings, a intersection.TurnArrows) []AssetRef {
	var refs []AssetRef
	if a.Left {
		refs = append(refs, AssetRef(tm.LeftPrefab))
	}
	if a.Forward {
		refs = append(refs, AssetRef(tm.ForwardPrefab))
	}
	if a.Right {
		refs = append(refs, AssetRef(tm.RightPrefab))
	}
	return refs
}

// RegenerateTurnMarkings replaces the arrow instances painted on the roads
// connected to x. Arrows point into the junction; marking m of row r sits
// XOffset(r, m) from the left road edge.
func (g *Generator) RegenerateTurnMarkings(s *Session, x *intersection.Intersection, roads Roads) (*Report, error) {
	owner := "intersection/" + x.ID + "/turns"
	rep := &Report{Run: s.NewRun(), Owner: owner}
	log := logger.ForRun(rep.Run, owner, s.ID)

	var (
		instances []Instance
		errs      error
		assets    = make(map[AssetRef]Asset)
	)
	resolve := func(ref AssetRef) (Asset, error) {
		if ref == "" {
			return Asset{}, ErrNoArrowPrefab
		}
		if a, ok := assets[ref]; ok {
			return a, nil
		}
		a, err := g.assets.Resolve(ref)
		if err != nil {
			return Asset{}, err
		}
		if err := a.Mesh.Validate(); err != nil {
			return Asset{}, fmt.Errorf("arrow prefab %q: %w", ref, err)
		}
		assets[ref] = a
		return a, nil
	}

	for _, c := range x.Connections {
		if c.TurnMarkings.Repetitions <= 0 {
			continue
		}
		c.TurnMarkings.Normalize()
		tm := &c.TurnMarkings

		r, err := roads.Road(c.Road.Road)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("connection %s: %w", c.Road, err))
			continue
		}
		length := defaultMarkingLength
		if a, err := resolve(AssetRef(tm.ForwardPrefab)); err == nil && extent(a.Mesh, deform.AxisZ) > 0 {
			length = extent(a.Mesh, deform.AxisZ)
		}
		recs, err := TurnMarkingRows(r, c, length, g.opts.Sampling)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("connection %s: %w", c.Road, err))
			continue
		}

		width := c.LeftPoint.Distance(c.RightPoint)
		for row, rec := range recs {
			in := rec.Forward
			if !c.EndConnection {
				in = in.Neg()
			}
			left := math.LeftOf(in)
			rot := math.QuatFromYaw(math.YawOf(in))
			for m, arrows := range tm.Markings {
				pos := rec.MainPoint.
					Add(left.Scale(width/2 - tm.XOffset(row, m))).
					Add(math.Vec3{Y: tm.YOffset})
				for _, ref := range arrowPrefabs(tm, arrows) {
					asset, err := resolve(ref)
					if err != nil {
						errs = multierr.Append(errs, fmt.Errorf("connection %s row %d marking %d: %w", c.Road, row, m, err))
						rep.Skipped++
						continue
					}
					instances = append(instances, Instance{
						Owner:  owner,
						Index:  len(instances),
						Asset:  ref,
						Handle: asset.Handle,
						Transform: deform.Transform{
							Position: pos,
							Rotation: rot,
							Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
						},
						Mesh:  asset.Mesh.Clone(),
						Layer: spatial.LayerIntersection,
					})
				}
			}
		}
	}

	if err := g.sink.Replace(owner, instances); err != nil {
		return rep, fmt.Errorf("replacing instances of %s: %w", owner, err)
	}
	rep.Placed = len(instances)
	rep.Errs = errs
	log.Info("turn markings regenerated",
		zap.Int("placed", rep.Placed),
		zap.Int("skipped", rep.Skipped),
	)
	return rep, nil
}
